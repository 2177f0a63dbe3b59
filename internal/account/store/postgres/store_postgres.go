package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"

	"trafix/internal/account/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
	txcontext "trafix/pkg/platform/tx"
)

// Store persists accounts in PostgreSQL. Emails are stored lowercased so the
// unique index enforces case-insensitive uniqueness.
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

const accountColumns = `id, email, full_name, password_hash, role, status, created_at, updated_at`

func scanAccount(row interface{ Scan(...any) error }) (*models.Account, error) {
	var a models.Account
	var accountID string
	if err := row.Scan(&accountID, &a.Email, &a.FullName, &a.PasswordHash, &a.Role, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := id.ParseAccountID(accountID)
	if err != nil {
		return nil, fmt.Errorf("scan account id: %w", err)
	}
	a.ID = parsed
	return &a, nil
}

func (s *Store) Create(ctx context.Context, account *models.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		account.ID.String(), account.Email, account.FullName, account.PasswordHash,
		account.Role, account.Status, account.CreatedAt, account.UpdatedAt,
	)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return fmt.Errorf("email %s already registered: %w", account.Email, sentinel.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("create account: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, accountID id.AccountID) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	account, err := scanAccount(s.execer(ctx).QueryRowContext(ctx, query, accountID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}
	return account, nil
}

func (s *Store) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	account, err := scanAccount(s.execer(ctx).QueryRowContext(ctx, query, strings.ToLower(strings.TrimSpace(email))))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by email: %w", err)
	}
	return account, nil
}

func (s *Store) List(ctx context.Context) ([]*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts ORDER BY email`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	defer rows.Close()

	var out []*models.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("list accounts: %w", err)
		}
		out = append(out, account)
	}
	return out, rows.Err()
}

func (s *Store) SetStatus(ctx context.Context, accountID id.AccountID, status models.Status) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE accounts SET status = $2, updated_at = NOW() WHERE id = $1`,
		accountID.String(), status,
	)
	if err != nil {
		return fmt.Errorf("set account status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
