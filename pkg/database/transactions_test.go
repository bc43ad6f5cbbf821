package database

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestImplicitTransactionSingleExecution(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	statement := NewCachedStatement(FromHere(), manager, "SELECT 1")

	tx, err := manager.StartTransaction(context.Background(), TransactionImplicit)
	require.NoError(t, err)
	assert.Equal(t, TransactionImplicit, tx.Type())

	require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))

	err = statement.ExecuteWithoutResult(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBadSequenceOfCalls,
		"an implicit transaction accepts exactly one execution")
	assert.Equal(t, 1, factory.lastConn().executions)

	require.NoError(t, tx.Commit())
	assert.Nil(t, manager.ActiveTransaction())

	err = statement.ExecuteWithoutResult(context.Background(), nil)
	assert.ErrorIs(t, err, ErrBadSequenceOfCalls, "a completed transaction rejects executions")
}

func TestImplicitTransactionSilentDoubleExecution(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t), WithErrorOnDoubleExecution(false))
	defer manager.Close()

	statement := NewCachedStatement(FromHere(), manager, "SELECT publicId FROM resources")

	tx, err := manager.StartTransaction(context.Background(), TransactionImplicit)
	require.NoError(t, err)

	factory.lastConn().rows = [][]Value{{Utf8("study")}}

	reader, err := statement.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.False(t, reader.IsDone())

	// The second execution is skipped: no error, but an empty result and
	// nothing reaches the engine.
	skipped, err := statement.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, skipped.IsDone())
	assert.Equal(t, 0, skipped.FieldsCount())
	assert.Equal(t, 1, factory.lastConn().executions)

	require.NoError(t, tx.Commit())
}

func TestImplicitTransactionCommitRequiresExecution(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	statement := NewCachedStatement(FromHere(), manager, "SELECT 1")

	tx, err := manager.StartTransaction(context.Background(), TransactionImplicit)
	require.NoError(t, err)

	err = tx.Commit()
	require.ErrorIs(t, err, ErrBadSequenceOfCalls,
		"committing before the execution must be rejected")

	// The failed commit leaves the transaction usable.
	require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))
	require.NoError(t, tx.Commit())
	assert.Equal(t, 1, factory.lastConn().commits)
}

func TestImplicitTransactionRejectsRollback(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	statement := NewCachedStatement(FromHere(), manager, "SELECT 1")

	tx, err := manager.StartTransaction(context.Background(), TransactionImplicit)
	require.NoError(t, err)

	assert.ErrorIs(t, tx.Rollback(), ErrBadSequenceOfCalls)

	require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))
	assert.ErrorIs(t, tx.Rollback(), ErrBadSequenceOfCalls,
		"autocommit cannot be undone, even right after the execution")

	require.NoError(t, tx.Commit())
	assert.ErrorIs(t, tx.Rollback(), ErrBadSequenceOfCalls)
	assert.Equal(t, 0, factory.lastConn().rollbacks)
}

func TestExplicitTransactionLifecycle(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	statement := NewCachedStatement(FromHere(), manager, "SELECT 1")

	t.Run("commit is single shot", func(t *testing.T) {
		tx, err := manager.StartTransaction(context.Background(), TransactionReadWrite)
		require.NoError(t, err)

		// Any number of executions while active.
		for i := 0; i < 3; i++ {
			require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))
		}

		require.NoError(t, tx.Commit())
		assert.ErrorIs(t, tx.Commit(), ErrBadSequenceOfCalls)
		assert.ErrorIs(t, tx.Rollback(), ErrBadSequenceOfCalls)

		err = statement.ExecuteWithoutResult(context.Background(), nil)
		assert.ErrorIs(t, err, ErrBadSequenceOfCalls)
	})

	t.Run("rollback is single shot", func(t *testing.T) {
		tx, err := manager.StartTransaction(context.Background(), TransactionReadWrite)
		require.NoError(t, err)

		require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))
		require.NoError(t, tx.Rollback())
		assert.Equal(t, 1, factory.lastConn().rollbacks)

		assert.ErrorIs(t, tx.Rollback(), ErrBadSequenceOfCalls)
		assert.ErrorIs(t, tx.Commit(), ErrBadSequenceOfCalls)
		assert.Nil(t, manager.ActiveTransaction())
	})
}

func TestReadOnlyTransactionRefusesWrites(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	tx, err := manager.StartTransaction(context.Background(), TransactionReadOnly)
	require.NoError(t, err)
	require.Equal(t, TransactionReadOnly, tx.Type())

	write := NewCachedStatement(FromHere(), manager, "DELETE FROM resources")
	err = write.ExecuteWithoutResult(context.Background(), nil)
	require.ErrorIs(t, err, ErrBadSequenceOfCalls,
		"a statement not declared read-only must be rejected")
	assert.Equal(t, 0, factory.lastConn().executions)

	read := NewCachedStatement(FromHere(), manager,
		"SELECT publicId FROM resources").SetReadOnly(true)
	require.NoError(t, read.ExecuteWithoutResult(context.Background(), nil))

	require.NoError(t, tx.Commit())
}

func TestTransactionCloseRollsBackWhenActive(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	statement := NewCachedStatement(FromHere(), manager, "DELETE FROM metadata")

	t.Run("active transaction is rolled back", func(t *testing.T) {
		func() {
			tx, err := manager.StartTransaction(context.Background(), TransactionReadWrite)
			require.NoError(t, err)
			defer tx.Close()

			require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))
			// No Commit: leaving the scope must undo the work.
		}()

		assert.Equal(t, 1, factory.lastConn().rollbacks)
		assert.Nil(t, manager.ActiveTransaction())
		assert.Equal(t, 1, manager.Stats().TransactionsRolledBack)
	})

	t.Run("committed transaction is left alone", func(t *testing.T) {
		tx, err := manager.StartTransaction(context.Background(), TransactionReadWrite)
		require.NoError(t, err)
		defer tx.Close()

		require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))
		require.NoError(t, tx.Commit())

		tx.Close()
		assert.Equal(t, 1, factory.lastConn().rollbacks, "close after commit must not roll back")
	})

	t.Run("implicit transaction is detached without rollback", func(t *testing.T) {
		tx, err := manager.StartTransaction(context.Background(), TransactionImplicit)
		require.NoError(t, err)

		tx.Close()
		assert.Nil(t, manager.ActiveTransaction())
		assert.Equal(t, 1, factory.lastConn().rollbacks)

		_, err = manager.StartTransaction(context.Background(), TransactionImplicit)
		assert.NoError(t, err, "a closed transaction must free its slot")
		manager.Rollback()
	})
}

func TestTransactionCommitFailure(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	statement := NewCachedStatement(FromHere(), manager, "DELETE FROM metadata")

	tx, err := manager.StartTransaction(context.Background(), TransactionReadWrite)
	require.NoError(t, err)
	require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))

	conn := factory.lastConn()
	conn.commitErr = fmt.Errorf("%w: connection reset", ErrDatabaseUnavailable)

	err = tx.Commit()
	require.ErrorIs(t, err, ErrDatabaseUnavailable)

	assert.False(t, tx.IsOpen())
	assert.Nil(t, manager.ActiveTransaction())
	assert.True(t, conn.closed)

	stats := manager.Stats()
	assert.Equal(t, 0, stats.TransactionsCommitted)
	assert.Equal(t, 1, stats.UnavailableFailures)
}

func TestTransactionExecuteDefaultsParameters(t *testing.T) {
	factory := newFakeFactory()
	manager := NewManager(factory, newMockLogger(t))
	defer manager.Close()

	// A statement without placeholders accepts a nil dictionary.
	statement := NewCachedStatement(FromHere(), manager, "SELECT COUNT(*) FROM resources")

	_, err := manager.StartTransaction(context.Background(), TransactionImplicit)
	require.NoError(t, err)
	require.NoError(t, statement.ExecuteWithoutResult(context.Background(), nil))
	require.NoError(t, manager.Commit())
}
