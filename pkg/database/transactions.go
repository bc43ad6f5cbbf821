package database

import (
	"context"
	"errors"
	"fmt"
)

type transactionState int

const (
	// stateReady is the initial state of an implicit transaction, before
	// its single allowed execution.
	stateReady transactionState = iota

	// stateActive is the initial state of an explicit transaction.
	stateActive

	// stateExecuted is an implicit transaction after its execution.
	stateExecuted

	stateCommitted
	stateRolledBack

	// stateClosed is a transaction detached by Close without an explicit
	// completion call.
	stateClosed
)

// ManagedTransaction wraps an engine transaction with a strict state
// machine.
//
// Explicit transactions (read-write, read-only) accept any number of
// executions while active, then exactly one Commit or Rollback.
//
// Implicit transactions accept exactly one execution, then one Commit;
// Rollback is always rejected, because autocommit cannot be undone.
// Committing an implicit transaction that never executed is rejected
// too.
//
// Close rolls back whatever is still open and never fails, so deferring
// it right after StartTransaction gives destructor-like cleanup: a
// transaction left neither committed nor rolled back at scope exit is
// rolled back.
type ManagedTransaction struct {
	manager         *Manager
	inner           Transaction
	transactionType TransactionType
	state           transactionState
}

func newManagedTransaction(manager *Manager, inner Transaction, transactionType TransactionType) *ManagedTransaction {
	state := stateActive
	if transactionType == TransactionImplicit {
		state = stateReady
	}
	return &ManagedTransaction{
		manager:         manager,
		inner:           inner,
		transactionType: transactionType,
		state:           state,
	}
}

// Type returns the transaction semantics requested at start.
func (t *ManagedTransaction) Type() TransactionType {
	return t.transactionType
}

// IsOpen reports whether the transaction still accepts executions or a
// completion call.
func (t *ManagedTransaction) IsOpen() bool {
	switch t.state {
	case stateReady, stateActive, stateExecuted:
		return true
	default:
		return false
	}
}

// execute runs one statement inside the transaction, enforcing the state
// machine and the read-only restriction before anything reaches the
// engine. The skipped result (implicit double execution with the
// error toggle off) is an empty, exhausted result set.
func (t *ManagedTransaction) execute(ctx context.Context, statement Statement,
	parameters *Dictionary, wantResult bool) (ResultSet, error) {

	switch t.transactionType {
	case TransactionImplicit:
		switch t.state {
		case stateReady:
			// The single allowed execution.
		case stateExecuted:
			if t.manager.errorOnDoubleExecution {
				return nil, fmt.Errorf("%w: the implicit transaction was already executed",
					ErrBadSequenceOfCalls)
			}
			t.manager.logger.Debug("skipping the second execution of an implicit transaction", nil, nil)
			return emptyResultSet{}, nil
		default:
			return nil, fmt.Errorf("%w: the implicit transaction is completed", ErrBadSequenceOfCalls)
		}

	default:
		if t.state != stateActive {
			return nil, fmt.Errorf("%w: the transaction is not active", ErrBadSequenceOfCalls)
		}
	}

	if t.transactionType == TransactionReadOnly && !statement.Query().IsReadOnly() {
		return nil, fmt.Errorf("%w: statement not declared read-only inside a read-only transaction",
			ErrBadSequenceOfCalls)
	}

	if parameters == nil {
		parameters = NewDictionary()
	}

	var result ResultSet
	var err error
	if wantResult {
		result, err = t.inner.Execute(ctx, statement, parameters)
	} else {
		err = t.inner.ExecuteWithoutResult(ctx, statement, parameters)
	}
	if err != nil {
		if errors.Is(err, ErrBadParameterType) {
			t.manager.logger.Debug("statement parameters rejected", err, map[string]interface{}{
				"parameters": describeParameters(parameters),
			})
		}
		t.manager.CloseIfUnavailable(err)
		return nil, err
	}

	if t.transactionType == TransactionImplicit {
		t.state = stateExecuted
	}
	t.manager.stats.StatementsExecuted++
	return result, nil
}

// Commit completes the transaction. Committing twice, committing after
// Rollback, or committing an implicit transaction that never executed
// all fail with ErrBadSequenceOfCalls.
func (t *ManagedTransaction) Commit() error {
	switch t.state {
	case stateCommitted, stateRolledBack, stateClosed:
		return fmt.Errorf("%w: the transaction is already completed", ErrBadSequenceOfCalls)
	case stateReady:
		return fmt.Errorf("%w: committing an implicit transaction that was never executed",
			ErrBadSequenceOfCalls)
	}

	if err := t.inner.Commit(); err != nil {
		t.state = stateRolledBack
		t.manager.clearTransaction(t)
		t.manager.CloseIfUnavailable(err)
		return err
	}

	t.state = stateCommitted
	t.manager.clearTransaction(t)
	t.manager.stats.TransactionsCommitted++
	return nil
}

// Rollback aborts an explicit transaction. It is single-shot like
// Commit, and always rejected on implicit transactions.
func (t *ManagedTransaction) Rollback() error {
	if t.transactionType == TransactionImplicit {
		return fmt.Errorf("%w: an implicit transaction cannot be rolled back", ErrBadSequenceOfCalls)
	}
	if t.state != stateActive {
		return fmt.Errorf("%w: the transaction is already completed", ErrBadSequenceOfCalls)
	}

	err := t.inner.Rollback()
	t.state = stateRolledBack
	t.manager.clearTransaction(t)
	t.manager.stats.TransactionsRolledBack++
	if err != nil {
		t.manager.CloseIfUnavailable(err)
		return err
	}
	return nil
}

// Close releases the transaction no matter its state: an explicit
// transaction still active is rolled back, an implicit one is simply
// detached. Errors are logged and swallowed so Close can be deferred.
func (t *ManagedTransaction) Close() {
	switch t.state {
	case stateCommitted, stateRolledBack, stateClosed:
		return
	}

	if t.transactionType != TransactionImplicit && t.state == stateActive {
		if err := t.inner.Rollback(); err != nil {
			t.manager.logger.Warn("failed to roll back a transaction on close", err, nil)
		}
		t.state = stateRolledBack
		t.manager.stats.TransactionsRolledBack++
	} else {
		t.state = stateClosed
	}
	t.manager.clearTransaction(t)
}

// forceRollback is the recovery path used by CloseIfUnavailable: it
// abandons the transaction without touching the manager's tx pointer,
// which the caller owns at that point.
func (t *ManagedTransaction) forceRollback() {
	switch t.state {
	case stateCommitted, stateRolledBack, stateClosed:
		return
	}

	if t.transactionType != TransactionImplicit && t.state == stateActive {
		if err := t.inner.Rollback(); err != nil {
			t.manager.logger.Debug("rollback of a failed transaction reported an error", err, nil)
		}
		t.state = stateRolledBack
		t.manager.stats.TransactionsRolledBack++
	} else {
		t.state = stateClosed
	}
}

// describeParameters renders the dictionary's effective types for the
// parameter-rejection diagnostic.
func describeParameters(parameters *Dictionary) map[string]interface{} {
	description := make(map[string]interface{}, parameters.Count())
	for name, t := range parameters.ParameterTypes() {
		description[name] = t.String()
	}
	return description
}

// emptyResultSet is the exhausted result returned for the silently
// skipped second execution of an implicit transaction.
type emptyResultSet struct{}

func (emptyResultSet) IsDone() bool { return true }

func (emptyResultSet) Next(context.Context) error {
	return fmt.Errorf("%w: no more rows", ErrInexistentItem)
}

func (emptyResultSet) FieldsCount() int { return 0 }

func (emptyResultSet) Field(int) (Value, error) {
	return nil, fmt.Errorf("%w: empty result", ErrInexistentItem)
}

func (emptyResultSet) SetExpectedType(int, Type) error { return nil }

func (emptyResultSet) Close() error { return nil }
