// Package postgres persists violation records.
//
// Schema:
//
//	CREATE TABLE violations (
//	    id              UUID PRIMARY KEY,
//	    licence_number  TEXT NOT NULL REFERENCES licence_holders (licence_number),
//	    holder_name     TEXT NOT NULL,
//	    officer_number  TEXT NOT NULL REFERENCES officers (officer_number),
//	    officer_name    TEXT NOT NULL,
//	    phone           TEXT NOT NULL,
//	    vehicle_number  TEXT NOT NULL,
//	    location        TEXT NOT NULL,
//	    rule_id         UUID NOT NULL,
//	    rule_section    TEXT NOT NULL,
//	    rule_provision  TEXT NOT NULL,
//	    rule_fine       BIGINT NOT NULL,
//	    rule_points     INT NOT NULL,
//	    notes           TEXT NOT NULL DEFAULT '',
//	    occurred_at     TIMESTAMPTZ NOT NULL,
//	    status          TEXT NOT NULL,
//	    payment_status  TEXT NOT NULL,
//	    created_at      TIMESTAMPTZ NOT NULL,
//	    updated_at      TIMESTAMPTZ NOT NULL
//	);
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"trafix/internal/violation/models"
	"trafix/internal/violation/store"
	id "trafix/pkg/domain"
	"trafix/pkg/platform/sentinel"
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
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

const violationColumns = `id, licence_number, holder_name, officer_number, officer_name, phone,
	vehicle_number, location, rule_id, rule_section, rule_provision, rule_fine, rule_points,
	notes, occurred_at, status, payment_status, created_at, updated_at`

func scanRecord(row interface{ Scan(...any) error }) (*models.Record, error) {
	var r models.Record
	var recordID, licence, officer, ruleID string
	err := row.Scan(
		&recordID, &licence, &r.HolderName, &officer, &r.OfficerName, &r.Phone,
		&r.VehicleNumber, &r.Location, &ruleID, &r.RuleSection, &r.RuleProvision,
		&r.RuleFine, &r.RulePoints, &r.Notes, &r.OccurredAt, &r.Status,
		&r.PaymentStatus, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if r.ID, err = id.ParseViolationID(recordID); err != nil {
		return nil, fmt.Errorf("scan violation id: %w", err)
	}
	if r.RuleID, err = id.ParseRuleID(ruleID); err != nil {
		return nil, fmt.Errorf("scan rule id: %w", err)
	}
	r.Licence = id.LicenceNumber(licence)
	r.OfficerNumber = id.OfficerNumber(officer)
	return &r, nil
}

func (s *Store) Create(ctx context.Context, record *models.Record) error {
	query := `
		INSERT INTO violations (` + violationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		record.ID.String(), record.Licence.String(), record.HolderName,
		record.OfficerNumber.String(), record.OfficerName, record.Phone,
		record.VehicleNumber, record.Location, record.RuleID.String(),
		record.RuleSection, record.RuleProvision, record.RuleFine, record.RulePoints,
		record.Notes, record.OccurredAt, record.Status, record.PaymentStatus,
		record.CreatedAt, record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create violation: %w", err)
	}
	return nil
}

func (s *Store) GetByID(ctx context.Context, violationID id.ViolationID) (*models.Record, error) {
	query := `SELECT ` + violationColumns + ` FROM violations WHERE id = $1`
	record, err := scanRecord(s.execer(ctx).QueryRowContext(ctx, query, violationID.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("violation not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get violation: %w", err)
	}
	return record, nil
}

func (s *Store) List(ctx context.Context, filter store.Filter) ([]*models.Record, error) {
	var conds []string
	var args []any
	if !filter.Licence.IsEmpty() {
		args = append(args, filter.Licence.String())
		conds = append(conds, fmt.Sprintf("licence_number = $%d", len(args)))
	}
	if !filter.OfficerNumber.IsEmpty() {
		args = append(args, filter.OfficerNumber.String())
		conds = append(conds, fmt.Sprintf("officer_number = $%d", len(args)))
	}
	query := `SELECT ` + violationColumns + ` FROM violations`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY occurred_at DESC"

	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list violations: %w", err)
	}
	defer rows.Close()

	var out []*models.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("list violations: %w", err)
		}
		out = append(out, record)
	}
	return out, rows.Err()
}

func (s *Store) SetStatus(ctx context.Context, violationID id.ViolationID, status models.Status) error {
	if status == models.StatusCancelled {
		// Guard the transition in SQL so two concurrent cancels cannot both win.
		res, err := s.execer(ctx).ExecContext(ctx,
			`UPDATE violations SET status = $2, updated_at = NOW() WHERE id = $1 AND status = $3`,
			violationID.String(), status, models.StatusActive,
		)
		if err != nil {
			return fmt.Errorf("set violation status: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return s.classifyMissedUpdate(ctx, violationID)
		}
		return nil
	}

	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE violations SET status = $2, updated_at = NOW() WHERE id = $1`,
		violationID.String(), status,
	)
	if err != nil {
		return fmt.Errorf("set violation status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("violation not found: %w", sentinel.ErrNotFound)
	}
	return nil
}

// classifyMissedUpdate distinguishes a missing row from a row in the wrong
// state after a guarded update touched nothing.
func (s *Store) classifyMissedUpdate(ctx context.Context, violationID id.ViolationID) error {
	var status string
	err := s.execer(ctx).QueryRowContext(ctx,
		`SELECT status FROM violations WHERE id = $1`, violationID.String()).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("violation not found: %w", sentinel.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("set violation status: %w", err)
	}
	return fmt.Errorf("violation is %s: %w", status, sentinel.ErrInvalidState)
}

func (s *Store) SetPaymentStatus(ctx context.Context, violationID id.ViolationID, payment models.PaymentStatus) error {
	res, err := s.execer(ctx).ExecContext(ctx,
		`UPDATE violations SET payment_status = $2, updated_at = NOW() WHERE id = $1`,
		violationID.String(), payment,
	)
	if err != nil {
		return fmt.Errorf("set payment status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("violation not found: %w", sentinel.ErrNotFound)
	}
	return nil
}
