package sqldriver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// Tx runs statements either inside an explicit *sql.Tx, or directly on
// the session when tx is nil (implicit autocommit mode).
type Tx struct {
	db *DB
	tx *sql.Tx
}

// Execute implements database.Transaction.
func (t *Tx) Execute(ctx context.Context, statement database.Statement,
	parameters *database.Dictionary) (database.ResultSet, error) {

	prepared, args, err := t.bind(ctx, statement, parameters)
	if err != nil {
		return nil, err
	}

	rows, err := prepared.QueryContext(ctx, args...)
	if err != nil {
		return nil, t.db.translate(err)
	}
	return newRows(t.db, rows)
}

// ExecuteWithoutResult implements database.Transaction.
func (t *Tx) ExecuteWithoutResult(ctx context.Context, statement database.Statement,
	parameters *database.Dictionary) error {

	prepared, args, err := t.bind(ctx, statement, parameters)
	if err != nil {
		return err
	}

	if _, err := prepared.ExecContext(ctx, args...); err != nil {
		return t.db.translate(err)
	}
	return nil
}

// bind resolves the statement against this transaction and converts the
// dictionary into driver arguments.
func (t *Tx) bind(ctx context.Context, statement database.Statement,
	parameters *database.Dictionary) (*sql.Stmt, []interface{}, error) {

	s, ok := statement.(*Statement)
	if !ok || s.db != t.db {
		return nil, nil, fmt.Errorf("%w: the statement was compiled on another session",
			database.ErrBadSequenceOfCalls)
	}

	args, err := bindParameters(s, parameters)
	if err != nil {
		return nil, nil, err
	}

	prepared := s.prepared
	if t.tx != nil {
		// The rebound statement is closed together with the transaction.
		prepared = t.tx.StmtContext(ctx, s.prepared)
	}
	return prepared, args, nil
}

// Commit implements database.Transaction. In autocommit mode every
// execution is already durable, so there is nothing to do.
func (t *Tx) Commit() error {
	if t.tx == nil {
		return nil
	}
	if err := t.tx.Commit(); err != nil {
		return t.db.translate(err)
	}
	return nil
}

// Rollback implements database.Transaction.
func (t *Tx) Rollback() error {
	if t.tx == nil {
		return fmt.Errorf("%w: an autocommit statement cannot be rolled back",
			database.ErrBadSequenceOfCalls)
	}
	if err := t.tx.Rollback(); err != nil {
		return t.db.translate(err)
	}
	return nil
}
