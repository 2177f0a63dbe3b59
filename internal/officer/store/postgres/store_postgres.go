package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"trafix/internal/officer/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
	txcontext "trafix/pkg/platform/tx"
)

// Store persists officers in PostgreSQL. Pure I/O; business rules belong in
// the service layer.
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

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const officerColumns = `officer_number, full_name, phone, station, rank, points, created_at, updated_at`

func scanOfficer(row interface{ Scan(...any) error }) (*models.Officer, error) {
	var o models.Officer
	var number string
	if err := row.Scan(&number, &o.FullName, &o.Phone, &o.Station, &o.Rank, &o.Points, &o.CreatedAt, &o.UpdatedAt); err != nil {
		return nil, err
	}
	o.OfficerNumber = id.OfficerNumber(number)
	return &o, nil
}

func (s *Store) Create(ctx context.Context, officer *models.Officer) error {
	query := `
		INSERT INTO officers (` + officerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		officer.OfficerNumber.String(), officer.FullName, officer.Phone,
		officer.Station, officer.Rank, officer.Points, officer.CreatedAt, officer.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("officer %s already registered: %w", officer.OfficerNumber, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create officer: %w", err)
	}
	return nil
}

func (s *Store) GetByNumber(ctx context.Context, number id.OfficerNumber) (*models.Officer, error) {
	query := `SELECT ` + officerColumns + ` FROM officers WHERE officer_number = $1`
	officer, err := scanOfficer(s.execer(ctx).QueryRowContext(ctx, query, number.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get officer: %w", err)
	}
	return officer, nil
}

func (s *Store) List(ctx context.Context) ([]*models.Officer, error) {
	query := `SELECT ` + officerColumns + ` FROM officers ORDER BY officer_number`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list officers: %w", err)
	}
	defer rows.Close()

	var out []*models.Officer
	for rows.Next() {
		officer, err := scanOfficer(rows)
		if err != nil {
			return nil, fmt.Errorf("list officers: %w", err)
		}
		out = append(out, officer)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, officer *models.Officer) error {
	query := `
		UPDATE officers
		SET full_name = $2, phone = $3, station = $4, rank = $5, updated_at = $6
		WHERE officer_number = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		officer.OfficerNumber.String(), officer.FullName, officer.Phone,
		officer.Station, officer.Rank, officer.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update officer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, number id.OfficerNumber) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`DELETE FROM officers WHERE officer_number = $1`, number.String())
	if err != nil {
		return fmt.Errorf("delete officer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) AdjustPoints(ctx context.Context, number id.OfficerNumber, delta int) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE officers SET points = points + $2, updated_at = NOW() WHERE officer_number = $1`,
		number.String(), delta,
	)
	if err != nil {
		return fmt.Errorf("adjust officer points: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("officer not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
