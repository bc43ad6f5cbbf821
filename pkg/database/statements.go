package database

import (
	"context"
	"fmt"
)

// CachedStatement is the main execution front end: a call site declares
// its SQL once, and every execution reuses the statement compiled for
// that call site from the manager's cache.
//
//	s := database.NewCachedStatement(database.FromHere(), manager,
//	    "SELECT publicId FROM resources WHERE internalId = ${id}").
//	    SetReadOnly(true)
type CachedStatement struct {
	id       StatementID
	manager  *Manager
	sql      string
	readOnly bool
	types    map[string]Type
}

// NewCachedStatement declares a statement owned by the given call site.
// Capture the identity with FromHere, or FromHereDynamic when the SQL is
// built at run time.
func NewCachedStatement(id StatementID, manager *Manager, sql string) *CachedStatement {
	return &CachedStatement{
		id:      id,
		manager: manager,
		sql:     sql,
		types:   make(map[string]Type),
	}
}

// SetReadOnly declares that the statement only reads data, which allows
// it inside read-only transactions. It must be set before the first
// execution; it participates in the compiled statement.
func (s *CachedStatement) SetReadOnly(readOnly bool) *CachedStatement {
	s.readOnly = readOnly
	return s
}

// SetParameterType declares the type of a parameter ahead of
// compilation, for engines that need it.
func (s *CachedStatement) SetParameterType(name string, t Type) *CachedStatement {
	s.types[name] = t
	return s
}

// Execute runs the statement inside the manager's active transaction and
// returns a Reader over the produced rows.
func (s *CachedStatement) Execute(ctx context.Context, parameters *Dictionary) (*Reader, error) {
	result, err := s.execute(ctx, parameters, true)
	if err != nil {
		return nil, err
	}
	return newReader(result, s.manager.logger), nil
}

// ExecuteWithoutResult runs the statement and discards any rows.
func (s *CachedStatement) ExecuteWithoutResult(ctx context.Context, parameters *Dictionary) error {
	_, err := s.execute(ctx, parameters, false)
	return err
}

func (s *CachedStatement) execute(ctx context.Context, parameters *Dictionary, wantResult bool) (ResultSet, error) {
	tx := s.manager.tx
	if tx == nil {
		return nil, fmt.Errorf("%w: no active transaction for statement %s",
			ErrBadSequenceOfCalls, s.id)
	}

	statement, err := s.manager.cachedStatement(ctx, s.id, s.sql, s.readOnly, s.types)
	if err != nil {
		return nil, err
	}

	return tx.execute(ctx, statement, parameters, wantResult)
}

// StandaloneStatement compiles, executes and releases a statement
// outside of the cache, for one-off queries. The release ordering is a
// contract: Close releases the result set BEFORE the statement, and the
// API offers no way to do it the other way around.
type StandaloneStatement struct {
	manager  *Manager
	sql      string
	readOnly bool
	types    map[string]Type

	statement Statement
	reader    *Reader
}

// NewStandaloneStatement declares a one-off statement. It can be
// executed once; Close must be called (deferring it is fine).
func NewStandaloneStatement(manager *Manager, sql string) *StandaloneStatement {
	return &StandaloneStatement{
		manager: manager,
		sql:     sql,
		types:   make(map[string]Type),
	}
}

// SetReadOnly declares that the statement only reads data.
func (s *StandaloneStatement) SetReadOnly(readOnly bool) *StandaloneStatement {
	s.readOnly = readOnly
	return s
}

// SetParameterType declares the type of a parameter ahead of
// compilation.
func (s *StandaloneStatement) SetParameterType(name string, t Type) *StandaloneStatement {
	s.types[name] = t
	return s
}

// Execute compiles and runs the statement inside the manager's active
// transaction. The returned Reader stays owned by the statement: it is
// released by Close, result first, statement second.
func (s *StandaloneStatement) Execute(ctx context.Context, parameters *Dictionary) (*Reader, error) {
	result, err := s.execute(ctx, parameters, true)
	if err != nil {
		return nil, err
	}
	s.reader = newReader(result, s.manager.logger)
	return s.reader, nil
}

// ExecuteWithoutResult compiles and runs the statement, discarding any
// rows and releasing the compiled statement right away.
func (s *StandaloneStatement) ExecuteWithoutResult(ctx context.Context, parameters *Dictionary) error {
	_, err := s.execute(ctx, parameters, false)
	s.Close()
	return err
}

func (s *StandaloneStatement) execute(ctx context.Context, parameters *Dictionary, wantResult bool) (ResultSet, error) {
	if s.statement != nil {
		return nil, fmt.Errorf("%w: a standalone statement can only be executed once",
			ErrBadSequenceOfCalls)
	}

	tx := s.manager.tx
	if tx == nil {
		return nil, fmt.Errorf("%w: no active transaction", ErrBadSequenceOfCalls)
	}

	conn, err := s.manager.open(ctx)
	if err != nil {
		s.manager.CloseIfUnavailable(err)
		return nil, err
	}

	statement, err := s.manager.compile(ctx, conn, s.sql, s.readOnly, s.types)
	if err != nil {
		s.manager.CloseIfUnavailable(err)
		return nil, err
	}
	s.statement = statement

	result, err := tx.execute(ctx, statement, parameters, wantResult)
	if err != nil {
		s.Close()
		return nil, err
	}
	return result, nil
}

// Close releases the result set, then the statement. It is idempotent;
// errors are logged and swallowed.
func (s *StandaloneStatement) Close() {
	if s.reader != nil {
		s.reader.Close()
		s.reader = nil
	}
	if s.statement != nil {
		if err := s.statement.Close(); err != nil {
			s.manager.logger.Warn("failed to close a standalone statement", err, nil)
		}
		s.statement = nil
	}
}
