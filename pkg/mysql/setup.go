package mysql

import (
	_ "github.com/go-sql-driver/mysql" // registers the "mysql" driver

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// DriverName is the name go-sql-driver registers with database/sql.
const DriverName = "mysql"

// NewFactory builds a session factory for a MySQL or MariaDB server.
func NewFactory(cfg Config, logger database.Logger) (*sqldriver.Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return sqldriver.NewFactory(sqldriver.Config{
		DriverName: DriverName,
		DSN:        cfg.DSN(),
		Dialect:    database.DialectMySQL,
		ConnectionDetails: sqldriver.ConnectionDetails{
			ConnMaxLifetime: cfg.ConnectionDetails.ConnMaxLifetime,
			PingTimeout:     cfg.ConnectionDetails.PingTimeout,
		},
	}, logger)
}
