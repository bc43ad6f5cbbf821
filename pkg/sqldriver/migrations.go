package sqldriver

import (
	"context"
	"fmt"
	"strings"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// The introspection queries pick their catalog by the engine dialect and
// their parameter marker by the marker dialect, because an ODBC
// transport keeps "?" markers regardless of the engine behind it.

// DoesTableExist implements database.Connection.
func (db *DB) DoesTableExist(ctx context.Context, name string) (bool, error) {
	switch db.cfg.Dialect {
	case database.DialectSQLite:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = "+db.marker(1),
			name)
	case database.DialectPostgreSQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = 'public' AND table_name = "+db.marker(1),
			strings.ToLower(name))
	case database.DialectMySQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = database() AND table_name = "+db.marker(1),
			name)
	case database.DialectMSSQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM sys.tables WHERE name = "+db.marker(1),
			name)
	default:
		return false, fmt.Errorf("%w: %q", database.ErrUnknownDialect, db.cfg.Dialect)
	}
}

// DoesIndexExist implements database.Connection.
func (db *DB) DoesIndexExist(ctx context.Context, name string) (bool, error) {
	switch db.cfg.Dialect {
	case database.DialectSQLite:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = "+db.marker(1),
			name)
	case database.DialectPostgreSQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM pg_indexes WHERE schemaname = 'public' AND indexname = "+db.marker(1),
			strings.ToLower(name))
	case database.DialectMySQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM information_schema.statistics WHERE table_schema = database() AND index_name = "+db.marker(1),
			name)
	case database.DialectMSSQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM sys.indexes WHERE name = "+db.marker(1),
			name)
	default:
		return false, fmt.Errorf("%w: %q", database.ErrUnknownDialect, db.cfg.Dialect)
	}
}

// DoesTriggerExist implements database.Connection.
func (db *DB) DoesTriggerExist(ctx context.Context, name string) (bool, error) {
	switch db.cfg.Dialect {
	case database.DialectSQLite:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM sqlite_master WHERE type = 'trigger' AND name = "+db.marker(1),
			name)
	case database.DialectPostgreSQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM information_schema.triggers WHERE trigger_name = "+db.marker(1),
			strings.ToLower(name))
	case database.DialectMySQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM information_schema.triggers WHERE trigger_schema = database() AND trigger_name = "+db.marker(1),
			name)
	case database.DialectMSSQL:
		return db.exists(ctx,
			"SELECT COUNT(*) FROM sys.triggers WHERE name = "+db.marker(1),
			name)
	default:
		return false, fmt.Errorf("%w: %q", database.ErrUnknownDialect, db.cfg.Dialect)
	}
}

// marker renders the parameter marker at the given 1-based position in
// the session's marker dialect.
func (db *DB) marker(position int) string {
	if db.cfg.MarkerDialect == database.DialectPostgreSQL {
		return fmt.Sprintf("$%d", position)
	}
	return "?"
}

func (db *DB) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	query = rewriteMarkers(query, db.cfg.DriverName)

	var count int64
	if err := db.pool.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, db.translate(err)
	}
	return count > 0, nil
}

// ExecuteMultiLines implements database.Connection: a DDL batch split on
// semicolons, preserving trigger bodies, executed in order on the
// session.
func (db *DB) ExecuteMultiLines(ctx context.Context, script string) error {
	for _, statement := range splitStatements(script) {
		if _, err := db.pool.ExecContext(ctx, statement); err != nil {
			return db.translate(err)
		}
	}
	return nil
}
