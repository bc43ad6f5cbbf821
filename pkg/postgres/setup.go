package postgres

import (
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// DriverName is the name pgx registers with database/sql.
const DriverName = "pgx"

// NewFactory builds a session factory for a PostgreSQL server. The
// factory itself never dials; the first connection is opened by the
// Manager on first use.
func NewFactory(cfg Config, logger database.Logger) (*sqldriver.Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return sqldriver.NewFactory(sqldriver.Config{
		DriverName: DriverName,
		DSN:        cfg.DSN(),
		Dialect:    database.DialectPostgreSQL,
		ConnectionDetails: sqldriver.ConnectionDetails{
			ConnMaxLifetime: cfg.ConnectionDetails.ConnMaxLifetime,
			PingTimeout:     cfg.ConnectionDetails.PingTimeout,
		},
	}, logger)
}
