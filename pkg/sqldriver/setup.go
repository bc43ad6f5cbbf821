package sqldriver

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// Factory opens sessions over database/sql. One Factory can serve any
// number of managers; every Open returns an independent session.
type Factory struct {
	cfg    Config
	logger database.Logger
}

// NewFactory validates the configuration and returns a Factory for it.
// No connection is attempted yet.
func NewFactory(cfg Config, logger database.Logger) (*Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Factory{cfg: cfg.normalized(), logger: logger}, nil
}

// Dialect implements database.Factory.
func (f *Factory) Dialect() database.Dialect {
	return f.cfg.Dialect
}

// Open implements database.Factory: sql.Open plus a bounded ping, so an
// unreachable server surfaces immediately as ErrDatabaseUnavailable
// instead of on the first statement.
func (f *Factory) Open(ctx context.Context) (database.Connection, error) {
	pool, err := sql.Open(f.cfg.DriverName, f.cfg.DSN)
	if err != nil {
		return nil, Translate(f.cfg.DriverName, err)
	}

	// The manager owns exactly one session: implicit statements, explicit
	// transactions and introspection must all observe the same connection
	// state.
	pool.SetMaxOpenConns(1)
	pool.SetMaxIdleConns(1)
	if lifetime := f.cfg.ConnectionDetails.ConnMaxLifetime; lifetime > 0 {
		pool.SetConnMaxLifetime(lifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, f.cfg.ConnectionDetails.PingTimeout)
	defer cancel()
	if err := pool.PingContext(pingCtx); err != nil {
		pool.Close()
		if ctx.Err() == nil && pingCtx.Err() != nil {
			return nil, fmt.Errorf("%w: ping timed out after %s",
				database.ErrDatabaseUnavailable, f.cfg.ConnectionDetails.PingTimeout)
		}
		return nil, Translate(f.cfg.DriverName, err)
	}

	f.logger.Debug("opened a database session", nil, map[string]interface{}{
		"driver":  f.cfg.DriverName,
		"dialect": f.cfg.Dialect.String(),
	})
	return &DB{cfg: f.cfg, pool: pool, logger: f.logger}, nil
}

// DB is one open session, implementing database.Connection.
type DB struct {
	cfg    Config
	pool   *sql.DB
	logger database.Logger
}

func (db *DB) translate(err error) error {
	return Translate(db.cfg.DriverName, err)
}

// Dialect implements database.Connection.
func (db *DB) Dialect() database.Dialect {
	return db.cfg.Dialect
}

// Compile implements database.Connection. The query is formatted with
// the session's dialect pair, adapted to the driver's marker style where
// needed, and prepared on the session.
func (db *DB) Compile(ctx context.Context, query *database.Query) (database.Statement, error) {
	formatter := database.NewGenericFormatter(db.cfg.Dialect)
	formatter.SetNamedDialect(db.cfg.MarkerDialect)

	text, err := query.Format(formatter)
	if err != nil {
		return nil, err
	}
	text = rewriteMarkers(text, db.cfg.DriverName)

	prepared, err := db.pool.PrepareContext(ctx, text)
	if err != nil {
		return nil, db.translate(err)
	}

	count := formatter.ParameterCount()
	names := make([]string, count)
	types := make([]database.Type, count)
	for i := 0; i < count; i++ {
		names[i], _ = formatter.ParameterName(i)
		types[i], _ = formatter.ParameterType(i)
	}

	return &Statement{
		db:       db,
		query:    query,
		sql:      text,
		prepared: prepared,
		names:    names,
		types:    types,
	}, nil
}

// Begin implements database.Connection. Explicit transactions run under
// serializable isolation where the driver lets us ask for it; an ODBC
// transport leaves isolation to the data source configuration. The
// read-only attribute is forwarded only to drivers that accept it.
func (db *DB) Begin(ctx context.Context, transactionType database.TransactionType) (database.Transaction, error) {
	options := &sql.TxOptions{}
	if db.cfg.DriverName != "odbc" {
		options.Isolation = sql.LevelSerializable
	}
	if transactionType == database.TransactionReadOnly && readOnlySupported(db.cfg.DriverName) {
		options.ReadOnly = true
	}

	tx, err := db.pool.BeginTx(ctx, options)
	if err != nil {
		return nil, db.translate(err)
	}
	return &Tx{db: db, tx: tx}, nil
}

// readOnlySupported reports whether the driver accepts the read-only
// transaction attribute. go-sqlite3, go-mssqldb and odbc all reject it,
// so there the restriction is enforced client-side only.
func readOnlySupported(driverName string) bool {
	switch driverName {
	case "pgx", "mysql":
		return true
	default:
		return false
	}
}

// Implicit implements database.Connection: statements run directly on
// the session, in autocommit mode.
func (db *DB) Implicit() database.Transaction {
	return &Tx{db: db}
}

// Close implements database.Connection.
func (db *DB) Close() error {
	if err := db.pool.Close(); err != nil {
		return db.translate(err)
	}
	return nil
}
