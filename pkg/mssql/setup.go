package mssql

import (
	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// DriverName is the name go-mssqldb registers with database/sql.
const DriverName = "sqlserver"

// NewFactory builds a session factory for a SQL Server instance.
func NewFactory(cfg Config, logger database.Logger) (*sqldriver.Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return sqldriver.NewFactory(sqldriver.Config{
		DriverName: DriverName,
		DSN:        cfg.DSN(),
		Dialect:    database.DialectMSSQL,
		ConnectionDetails: sqldriver.ConnectionDetails{
			ConnMaxLifetime: cfg.ConnectionDetails.ConnMaxLifetime,
			PingTimeout:     cfg.ConnectionDetails.PingTimeout,
		},
	}, logger)
}
