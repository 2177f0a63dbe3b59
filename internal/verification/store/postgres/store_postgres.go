package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"trafix/internal/verification/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
)

// Store persists verification challenges in PostgreSQL for deployments
// without Redis. Consume runs in a transaction with a row lock so two racing
// verifies cannot both succeed.
//
// Schema:
//
//	CREATE TABLE verification_challenges (
//	    licence_number TEXT NOT NULL,
//	    phone          TEXT NOT NULL,
//	    code           TEXT NOT NULL,
//	    created_at     TIMESTAMPTZ NOT NULL,
//	    expires_at     TIMESTAMPTZ NOT NULL,
//	    PRIMARY KEY (licence_number, phone)
//	);
type Store struct {
	db *sql.DB
}

// New constructs a PostgreSQL-backed challenge store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Put(ctx context.Context, challenge *models.Challenge) error {
	query := `
		INSERT INTO verification_challenges (licence_number, phone, code, created_at, expires_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (licence_number, phone) DO UPDATE SET
			code = EXCLUDED.code,
			created_at = EXCLUDED.created_at,
			expires_at = EXCLUDED.expires_at
	`
	_, err := s.db.ExecContext(ctx, query,
		challenge.Licence.String(),
		challenge.Phone,
		challenge.Code,
		challenge.CreatedAt,
		challenge.ExpiresAt,
	)
	if err != nil {
		return fmt.Errorf("put challenge: %w", err)
	}
	return nil
}

func (s *Store) Consume(ctx context.Context, licence id.LicenceNumber, phone, code string, now time.Time) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("consume challenge: begin: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var stored string
	var expiresAt time.Time
	query := `
		SELECT code, expires_at
		FROM verification_challenges
		WHERE licence_number = $1 AND phone = $2
		FOR UPDATE
	`
	err = tx.QueryRowContext(ctx, query, licence.String(), phone).Scan(&stored, &expiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("challenge not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("consume challenge: %w", err)
	}

	if now.After(expiresAt) {
		// Delete the stale entry so it cannot be probed further.
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM verification_challenges WHERE licence_number = $1 AND phone = $2`,
			licence.String(), phone); err != nil {
			return fmt.Errorf("consume challenge: delete expired: %w", err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("consume challenge: commit: %w", err)
		}
		return fmt.Errorf("challenge expired at %s: %w", expiresAt.Format(time.RFC3339), sentinel.ErrExpired)
	}

	if stored != code {
		// Entry kept; the correct code remains usable until expiry.
		return fmt.Errorf("verification code mismatch: %w", sentinel.ErrMismatch)
	}

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM verification_challenges WHERE licence_number = $1 AND phone = $2`,
		licence.String(), phone); err != nil {
		return fmt.Errorf("consume challenge: delete: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("consume challenge: commit: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, licence id.LicenceNumber, phone string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_challenges WHERE licence_number = $1 AND phone = $2`,
		licence.String(), phone)
	if err != nil {
		return fmt.Errorf("delete challenge: %w", err)
	}
	return nil
}

func (s *Store) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM verification_challenges WHERE expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired challenges: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired challenges: %w", err)
	}
	return int(n), nil
}
