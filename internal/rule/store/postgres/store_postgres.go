package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"trafix/internal/rule/models"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
	txcontext "trafix/pkg/platform/tx"
)

// Store persists rules in PostgreSQL.
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

const ruleColumns = `id, section, provision, fine, points, created_at, updated_at`

func scanRule(row interface{ Scan(...any) error }) (*models.Rule, error) {
	var r models.Rule
	var ruleID string
	if err := row.Scan(&ruleID, &r.Section, &r.Provision, &r.Fine, &r.Points, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	parsed, err := id.ParseRuleID(ruleID)
	if err != nil {
		return nil, fmt.Errorf("scan rule id: %w", err)
	}
	r.ID = parsed
	return &r, nil
}

func (s *Store) Create(ctx context.Context, rule *models.Rule) error {
	query := `
		INSERT INTO rules (` + ruleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		rule.ID.String(), rule.Section, rule.Provision, rule.Fine, rule.Points,
		rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create rule: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, ruleID id.RuleID) (*models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules WHERE id = $1`
	rule, err := scanRule(s.execer(ctx).QueryRowContext(ctx, query, ruleID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get rule: %w", err)
	}
	return rule, nil
}

func (s *Store) List(ctx context.Context) ([]*models.Rule, error) {
	query := `SELECT ` + ruleColumns + ` FROM rules ORDER BY section`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	defer rows.Close()

	var out []*models.Rule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("list rules: %w", err)
		}
		out = append(out, rule)
	}
	return out, rows.Err()
}

func (s *Store) Update(ctx context.Context, rule *models.Rule) error {
	query := `
		UPDATE rules
		SET section = $2, provision = $3, fine = $4, points = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		rule.ID.String(), rule.Section, rule.Provision, rule.Fine, rule.Points, rule.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, ruleID id.RuleID) error {
	res, err := s.execer(ctx).ExecContext(ctx, `DELETE FROM rules WHERE id = $1`, ruleID.String())
	if err != nil {
		return fmt.Errorf("delete rule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("rule not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
