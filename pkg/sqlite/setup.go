package sqlite

import (
	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// DriverName is the name go-sqlite3 registers with database/sql.
const DriverName = "sqlite3"

// NewFactory builds a session factory for a SQLite database. SQLite
// needs no server, so the factory never reports the database as
// unavailable unless the file itself cannot be opened.
func NewFactory(cfg Config, logger database.Logger) (*sqldriver.Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return sqldriver.NewFactory(sqldriver.Config{
		DriverName: DriverName,
		DSN:        cfg.DSN(),
		Dialect:    database.DialectSQLite,
	}, logger)
}
