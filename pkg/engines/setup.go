package engines

import (
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/mssql"
	"github.com/pacsforge/dicomdb/pkg/mysql"
	"github.com/pacsforge/dicomdb/pkg/odbc"
	"github.com/pacsforge/dicomdb/pkg/postgres"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
	"github.com/pacsforge/dicomdb/pkg/sqlite"
)

// NewFactory builds the session factory for the configured engine.
func NewFactory(cfg Config, logger database.Logger) (*sqldriver.Factory, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.SQLite == nil {
			return nil, missingConfig(cfg.Type)
		}
		return sqlite.NewFactory(*cfg.SQLite, logger)
	case "postgres":
		if cfg.Postgres == nil {
			return nil, missingConfig(cfg.Type)
		}
		return postgres.NewFactory(*cfg.Postgres, logger)
	case "mysql":
		if cfg.MySQL == nil {
			return nil, missingConfig(cfg.Type)
		}
		return mysql.NewFactory(*cfg.MySQL, logger)
	case "mssql":
		if cfg.MSSQL == nil {
			return nil, missingConfig(cfg.Type)
		}
		return mssql.NewFactory(*cfg.MSSQL, logger)
	case "odbc":
		if cfg.ODBC == nil {
			return nil, missingConfig(cfg.Type)
		}
		return odbc.NewFactory(*cfg.ODBC, logger)
	default:
		return nil, fmt.Errorf("%w: unknown engine type %q",
			database.ErrBadParameterType, cfg.Type)
	}
}

func missingConfig(engineType string) error {
	return fmt.Errorf("%w: engine type %q without its configuration",
		database.ErrBadParameterType, engineType)
}
