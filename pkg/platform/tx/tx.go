package tx

import (
	"context"
	"database/sql"
	"sync"
	"time"

	dErrors "trafix/pkg/domain-errors"
)

type ctxKey struct{}

var txKey = ctxKey{}

// WithTx stores a SQL transaction in context so downstream stores join the
// same unit of work instead of running on their own connections.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey, tx)
}

// From extracts a SQL transaction from context if present.
func From(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey).(*sql.Tx)
	return tx, ok
}

type undoCtxKey struct{}

var undoKey = undoCtxKey{}

type undoStack struct {
	fns []func(context.Context) error
}

// OnRollback registers a compensating action for the current unit of work,
// called after each applied write. Under SQLRunner this is a no-op because
// the database rollback discards partial writes; under LockRunner the
// registered actions are the rollback, replayed in reverse order when fn
// fails.
func OnRollback(ctx context.Context, fn func(context.Context) error) {
	if stack, ok := ctx.Value(undoKey).(*undoStack); ok {
		stack.fns = append(stack.fns, fn)
	}
}

const defaultTimeout = 5 * time.Second

// Runner executes fn as one atomic unit of work. Stores called inside fn see
// the ambient transaction through the context.
type Runner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// SQLRunner runs fn inside a database transaction. Rollback on any error.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
}

func NewSQLRunner(db *sql.DB) *SQLRunner {
	return &SQLRunner{db: db, timeout: defaultTimeout}
}

func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sqlTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = sqlTx.Rollback()
	}()

	if err := fn(WithTx(ctx, sqlTx)); err != nil {
		return err
	}
	return sqlTx.Commit()
}

// LockRunner serializes units of work behind one mutex for memory-backed
// single-process deployments. There is no database rollback here: when fn
// fails, the actions it registered through OnRollback are replayed in reverse
// order to undo the writes already applied.
type LockRunner struct {
	mu sync.Mutex
}

func NewLockRunner() *LockRunner {
	return &LockRunner{}
}

func (r *LockRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return dErrors.Wrap(err, dErrors.CodeTimeout, "transaction aborted: context cancelled")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	stack := &undoStack{}
	err := fn(context.WithValue(ctx, undoKey, stack))
	if err == nil {
		return nil
	}
	for i := len(stack.fns) - 1; i >= 0; i-- {
		if undoErr := stack.fns[i](ctx); undoErr != nil {
			// A failed undo leaves the stores inconsistent; surface that as
			// the fatal condition it is rather than the original error.
			return dErrors.Wrap(undoErr, dErrors.CodeInvariantViolation,
				"compensation failed, stores may be inconsistent")
		}
	}
	return err
}
