package tx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "trafix/pkg/domain-errors"
)

func TestLockRunnerCommitSkipsUndo(t *testing.T) {
	runner := NewLockRunner()
	undone := false

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		OnRollback(ctx, func(context.Context) error {
			undone = true
			return nil
		})
		return nil
	})

	require.NoError(t, err)
	assert.False(t, undone, "successful unit of work must not replay undo actions")
}

func TestLockRunnerReplaysUndoInReverse(t *testing.T) {
	runner := NewLockRunner()
	var order []string

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		OnRollback(ctx, func(context.Context) error {
			order = append(order, "first")
			return nil
		})
		OnRollback(ctx, func(context.Context) error {
			order = append(order, "second")
			return nil
		})
		return assert.AnError
	})

	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, []string{"second", "first"}, order)
}

func TestLockRunnerFailedUndoIsInvariantViolation(t *testing.T) {
	runner := NewLockRunner()

	err := runner.RunInTx(context.Background(), func(ctx context.Context) error {
		OnRollback(ctx, func(context.Context) error {
			return assert.AnError
		})
		return assert.AnError
	})

	require.Error(t, err)
	assert.Equal(t, dErrors.CodeInvariantViolation, dErrors.CodeOf(err))
}

func TestOnRollbackWithoutRunnerIsNoop(t *testing.T) {
	// Registering outside a LockRunner unit of work (e.g. under SQLRunner,
	// where the database rollback is authoritative) must not panic.
	OnRollback(context.Background(), func(context.Context) error { return nil })
}

func TestLockRunnerCancelledContext(t *testing.T) {
	runner := NewLockRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := runner.RunInTx(ctx, func(context.Context) error { return nil })

	require.Error(t, err)
	assert.Equal(t, dErrors.CodeTimeout, dErrors.CodeOf(err))
}
