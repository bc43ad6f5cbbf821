package database

import (
	"context"
	"fmt"
)

// Logger defines the interface for logging operations within the
// database package. It provides methods for different logging levels to
// track statement compilation, transaction lifecycle and connection
// recovery.

//go:generate mockgen -source=setup.go -destination=mock_logger.go -package=database
type Logger interface {
	Info(msg string, err error, fields ...map[string]interface{})
	Debug(msg string, err error, fields ...map[string]interface{})
	Warn(msg string, err error, fields ...map[string]interface{})
	Error(msg string, err error, fields ...map[string]interface{})
	Fatal(msg string, err error, fields ...map[string]interface{})
}

// Manager owns one lazily-opened connection, at most one active
// transaction and a never-evicted cache of compiled statements keyed by
// call site.
//
// A Manager is not safe for concurrent use: give each goroutine its own
// Manager. Two managers over the same factory share nothing, not even
// cached statements.
type Manager struct {
	factory Factory
	logger  Logger

	errorOnDoubleExecution bool

	conn       Connection
	everOpened bool
	tx         *ManagedTransaction
	cache      map[StatementID]Statement
	stats      Stats
}

// ManagerOption customizes a Manager at construction time.
type ManagerOption func(*Manager)

// WithErrorOnDoubleExecution controls what happens when an implicit
// transaction is executed a second time: an ErrBadSequenceOfCalls
// failure when enabled (the default), a silent no-op returning an empty
// result when disabled.
func WithErrorOnDoubleExecution(enabled bool) ManagerOption {
	return func(m *Manager) {
		m.errorOnDoubleExecution = enabled
	}
}

// NewManager creates a Manager over the given factory. The connection is
// only opened on first use.
func NewManager(factory Factory, logger Logger, opts ...ManagerOption) *Manager {
	m := &Manager{
		factory:                factory,
		logger:                 logger,
		errorOnDoubleExecution: true,
		cache:                  make(map[StatementID]Statement),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dialect reports the dialect of the underlying engine without opening
// the connection.
func (m *Manager) Dialect() Dialect {
	return m.factory.Dialect()
}

// open returns the current connection, establishing it on first use and
// after any unavailable error closed the previous one.
func (m *Manager) open(ctx context.Context) (Connection, error) {
	if m.conn != nil {
		return m.conn, nil
	}

	conn, err := m.factory.Open(ctx)
	if err != nil {
		return nil, err
	}

	if m.everOpened {
		m.stats.Reconnects++
		m.logger.Info("reconnected to the database", nil, map[string]interface{}{
			"dialect": conn.Dialect().String(),
		})
	} else {
		m.logger.Info("connected to the database", nil, map[string]interface{}{
			"dialect": conn.Dialect().String(),
		})
	}
	m.everOpened = true
	m.conn = conn
	return conn, nil
}

// Close rolls back any active transaction, releases every cached
// statement and closes the connection. It is idempotent and safe to
// defer right after NewManager.
func (m *Manager) Close() error {
	if m.tx != nil {
		m.logger.Warn("closing the manager while a transaction is active", nil, nil)
		m.tx.forceRollback()
		m.tx = nil
	}
	return m.closeConnection()
}

func (m *Manager) closeConnection() error {
	if m.conn == nil {
		return nil
	}

	for id, statement := range m.cache {
		if err := statement.Close(); err != nil {
			m.logger.Warn("failed to close a cached statement", err, map[string]interface{}{
				"statement": id.String(),
			})
		}
	}
	m.cache = make(map[StatementID]Statement)

	err := m.conn.Close()
	m.conn = nil
	if err != nil {
		m.logger.Warn("failed to close the database connection", err, nil)
		return err
	}
	return nil
}

// StartTransaction begins a transaction of the given type. At most one
// transaction can be active per Manager; starting another one fails with
// ErrBadSequenceOfCalls.
func (m *Manager) StartTransaction(ctx context.Context, transactionType TransactionType) (*ManagedTransaction, error) {
	if m.tx != nil {
		return nil, fmt.Errorf("%w: a transaction is already active", ErrBadSequenceOfCalls)
	}

	conn, err := m.open(ctx)
	if err != nil {
		m.CloseIfUnavailable(err)
		return nil, err
	}

	var inner Transaction
	if transactionType == TransactionImplicit {
		inner = conn.Implicit()
	} else {
		inner, err = conn.Begin(ctx, transactionType)
		if err != nil {
			m.CloseIfUnavailable(err)
			return nil, err
		}
	}

	m.tx = newManagedTransaction(m, inner, transactionType)
	m.stats.TransactionsStarted++
	return m.tx, nil
}

// ActiveTransaction returns the transaction currently owned by the
// manager, or nil.
func (m *Manager) ActiveTransaction() *ManagedTransaction {
	return m.tx
}

// Connection returns the lazily opened connection, establishing it on
// first use. Schema installation and introspection go through it; for
// statements, use the manager's transactions instead.
func (m *Manager) Connection(ctx context.Context) (Connection, error) {
	conn, err := m.open(ctx)
	if err != nil {
		m.CloseIfUnavailable(err)
		return nil, err
	}
	return conn, nil
}

// Commit commits the active transaction. Committing with no active
// transaction fails with ErrBadSequenceOfCalls.
func (m *Manager) Commit() error {
	if m.tx == nil {
		return fmt.Errorf("%w: no active transaction to commit", ErrBadSequenceOfCalls)
	}
	return m.tx.Commit()
}

// Rollback rolls back the active transaction. With no active transaction
// it only logs, mirroring destructor-style cleanup paths that must never
// fail.
func (m *Manager) Rollback() {
	if m.tx == nil {
		m.logger.Debug("rollback requested with no active transaction", nil, nil)
		return
	}
	if err := m.tx.Rollback(); err != nil {
		m.logger.Warn("rollback failed", err, nil)
	}
}

// clearTransaction detaches tx from the manager once it completed. Stale
// handles from an earlier recovery must not clear a newer transaction.
func (m *Manager) clearTransaction(tx *ManagedTransaction) {
	if m.tx == tx {
		m.tx = nil
	}
}

// CloseIfUnavailable applies the failure policy to an error reported by
// the engine: collisions keep the transaction alive so the caller can
// retry the whole unit; any other error discards the active transaction;
// an unavailable error additionally closes the connection and drops the
// statement cache so the next use reconnects.
func (m *Manager) CloseIfUnavailable(err error) {
	if err == nil {
		return
	}

	if IsCollision(err) {
		m.stats.Collisions++
		return
	}

	if m.tx != nil {
		m.tx.forceRollback()
		m.tx = nil
	}

	if IsUnavailable(err) {
		m.stats.UnavailableFailures++
		m.logger.Error("database is unavailable, closing the connection", err, nil)
		if closeErr := m.closeConnection(); closeErr != nil {
			m.logger.Warn("error while closing an unavailable connection", closeErr, nil)
		}
	}
}

// cachedStatement returns the compiled statement for the given call
// site, compiling and caching it on first sight.
func (m *Manager) cachedStatement(ctx context.Context, id StatementID, sql string,
	readOnly bool, types map[string]Type) (Statement, error) {

	if statement, ok := m.cache[id]; ok {
		m.stats.CacheHits++
		return statement, nil
	}

	conn, err := m.open(ctx)
	if err != nil {
		m.CloseIfUnavailable(err)
		return nil, err
	}

	statement, err := m.compile(ctx, conn, sql, readOnly, types)
	if err != nil {
		m.CloseIfUnavailable(err)
		return nil, err
	}

	m.cache[id] = statement
	m.stats.StatementsCompiled++
	m.logger.Debug("compiled and cached a statement", nil, map[string]interface{}{
		"statement": id.String(),
	})
	return statement, nil
}

func (m *Manager) compile(ctx context.Context, conn Connection, sql string,
	readOnly bool, types map[string]Type) (Statement, error) {

	query, err := NewQuery(sql)
	if err != nil {
		return nil, err
	}
	query.SetReadOnly(readOnly)
	for name, t := range types {
		if err := query.SetType(name, t); err != nil {
			return nil, err
		}
	}
	return conn.Compile(ctx, query)
}

// Stats returns a snapshot of the manager's counters.
func (m *Manager) Stats() Stats {
	stats := m.stats
	stats.CachedStatements = len(m.cache)
	return stats
}
