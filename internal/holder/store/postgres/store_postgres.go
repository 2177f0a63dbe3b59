package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"trafix/internal/holder/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
	txcontext "trafix/pkg/platform/tx"
)

// Store persists licence holders in PostgreSQL. Pure I/O; business rules
// belong in the service layer.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// execer joins an ambient transaction when one is in context so point
// adjustments participate in the violation unit of work.
func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const holderColumns = `licence_number, full_name, phone, address, points, created_at, updated_at`

func scanHolder(row interface{ Scan(...any) error }) (*models.Holder, error) {
	var h models.Holder
	var licence string
	if err := row.Scan(&licence, &h.FullName, &h.Phone, &h.Address, &h.Points, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	h.Licence = id.LicenceNumber(licence)
	return &h, nil
}

func (s *Store) Create(ctx context.Context, holder *models.Holder) error {
	query := `
		INSERT INTO licence_holders (` + holderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		holder.Licence.String(), holder.FullName, holder.Phone, holder.Address,
		holder.Points, holder.CreatedAt, holder.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("licence %s already registered: %w", holder.Licence, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create licence holder: %w", err)
	}
	return nil
}

func (s *Store) GetByLicence(ctx context.Context, licence id.LicenceNumber) (*models.Holder, error) {
	query := `SELECT ` + holderColumns + ` FROM licence_holders WHERE licence_number = $1`
	holder, err := scanHolder(s.execer(ctx).QueryRowContext(ctx, query, licence.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get licence holder: %w", err)
	}
	return holder, nil
}

func (s *Store) List(ctx context.Context) ([]*models.Holder, error) {
	query := `SELECT ` + holderColumns + ` FROM licence_holders ORDER BY licence_number`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list licence holders: %w", err)
	}
	defer rows.Close()

	var out []*models.Holder
	for rows.Next() {
		holder, err := scanHolder(rows)
		if err != nil {
			return nil, fmt.Errorf("list licence holders: %w", err)
		}
		out = append(out, holder)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, holder *models.Holder) error {
	query := `
		UPDATE licence_holders
		SET full_name = $2, phone = $3, address = $4, updated_at = $5
		WHERE licence_number = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		holder.Licence.String(), holder.FullName, holder.Phone, holder.Address, holder.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update licence holder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, licence id.LicenceNumber) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM licence_holders WHERE licence_number = $1`, licence.String())
	if err != nil {
		return fmt.Errorf("delete licence holder: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) AdjustPoints(ctx context.Context, licence id.LicenceNumber, delta int) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE licence_holders SET points = points + $2, updated_at = NOW() WHERE licence_number = $1`,
		licence.String(), delta,
	)
	if err != nil {
		return fmt.Errorf("adjust holder points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("licence holder not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
