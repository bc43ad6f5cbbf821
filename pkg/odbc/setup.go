package odbc

import (
	_ "github.com/alexbrainman/odbc" // registers the "odbc" driver

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

// DriverName is the name alexbrainman/odbc registers with database/sql.
const DriverName = "odbc"

// NewFactory builds a session factory over an ODBC data source. The
// engine behind the transport is named by the configuration, so the
// formatter emits the right SQL fragments while the markers stay in
// ODBC's "?" form.
func NewFactory(cfg Config, logger database.Logger) (*sqldriver.Factory, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return sqldriver.NewFactory(sqldriver.Config{
		DriverName:    DriverName,
		DSN:           cfg.Connection.DSN,
		Dialect:       cfg.Connection.Dialect,
		MarkerDialect: database.DialectMSSQL,
		ConnectionDetails: sqldriver.ConnectionDetails{
			ConnMaxLifetime: cfg.ConnectionDetails.ConnMaxLifetime,
			PingTimeout:     cfg.ConnectionDetails.PingTimeout,
		},
	}, logger)
}
