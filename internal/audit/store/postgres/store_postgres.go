// Package postgres implements the audit store as a transactional outbox.
// Appends issued inside a SQL transaction commit or roll back with the domain
// write, so the trail never records an action that did not happen.
//
// Schema:
//
//	CREATE TABLE audit_outbox (
//	    id           UUID PRIMARY KEY,
//	    kind         TEXT NOT NULL,
//	    actor        TEXT NOT NULL DEFAULT '',
//	    subject      TEXT NOT NULL,
//	    detail       JSONB,
//	    created_at   TIMESTAMPTZ NOT NULL,
//	    published_at TIMESTAMPTZ
//	);
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"trafix/internal/audit"
	txcontext "trafix/pkg/platform/tx"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) Append(ctx context.Context, event audit.Event) error {
	var detail []byte
	if event.Detail != nil {
		var err error
		if detail, err = json.Marshal(event.Detail); err != nil {
			return fmt.Errorf("marshal audit detail: %w", err)
		}
	}
	_, err := s.execer(ctx).ExecContext(ctx, `
		INSERT INTO audit_outbox (id, kind, actor, subject, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, event.ID, event.Kind, event.Actor, event.Subject, detail, event.CreatedAt)
	if err != nil {
		return fmt.Errorf("append audit event: %w", err)
	}
	return nil
}

func (s *Store) ListBySubject(ctx context.Context, subject string) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, actor, subject, detail, created_at
		FROM audit_outbox
		WHERE subject = $1
		ORDER BY created_at
	`, subject)
	if err != nil {
		return nil, fmt.Errorf("list audit events: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) NextBatch(ctx context.Context, limit int) ([]audit.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, kind, actor, subject, detail, created_at
		FROM audit_outbox
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("load audit backlog: %w", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (s *Store) MarkPublished(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := s.db.ExecContext(ctx,
		`UPDATE audit_outbox SET published_at = NOW() WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return fmt.Errorf("mark audit events published: %w", err)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var out []audit.Event
	for rows.Next() {
		var event audit.Event
		var detail []byte
		if err := rows.Scan(&event.ID, &event.Kind, &event.Actor, &event.Subject, &detail, &event.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		if len(detail) > 0 {
			if err := json.Unmarshal(detail, &event.Detail); err != nil {
				return nil, fmt.Errorf("decode audit detail: %w", err)
			}
		}
		out = append(out, event)
	}
	return out, rows.Err()
}
