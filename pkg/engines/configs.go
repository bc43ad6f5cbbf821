package engines

import (
	"github.com/pacsforge/dicomdb/pkg/mssql"
	"github.com/pacsforge/dicomdb/pkg/mysql"
	"github.com/pacsforge/dicomdb/pkg/odbc"
	"github.com/pacsforge/dicomdb/pkg/postgres"
	"github.com/pacsforge/dicomdb/pkg/sqlite"
)

// Config selects one engine and carries its configuration.
// Use one of the helper functions (SQLiteConfig, PostgresConfig, ...) to
// create it.
type Config struct {
	// Type is the engine type ("sqlite", "postgres", "mysql", "mssql"
	// or "odbc")
	Type string

	// SQLite configuration (used when Type = "sqlite")
	SQLite *sqlite.Config

	// Postgres configuration (used when Type = "postgres")
	Postgres *postgres.Config

	// MySQL configuration (used when Type = "mysql")
	MySQL *mysql.Config

	// MSSQL configuration (used when Type = "mssql")
	MSSQL *mssql.Config

	// ODBC configuration (used when Type = "odbc")
	ODBC *odbc.Config
}

// SQLiteConfig creates an engines.Config for SQLite.
// Use this in your fx.Provide function.
//
// Example:
//
//	fx.Provide(func() engines.Config {
//	    return engines.SQLiteConfig(sqlite.Config{
//	        Connection: sqlite.Connection{
//	            Path: "/var/lib/dicomdb/index.db",
//	        },
//	    })
//	})
func SQLiteConfig(cfg sqlite.Config) Config {
	return Config{
		Type:   "sqlite",
		SQLite: &cfg,
	}
}

// PostgresConfig creates an engines.Config for PostgreSQL.
// Use this in your fx.Provide function.
//
// Example:
//
//	fx.Provide(func() engines.Config {
//	    return engines.PostgresConfig(postgres.Config{
//	        Connection: postgres.Connection{
//	            Host: "localhost",
//	            // ...
//	        },
//	    })
//	})
func PostgresConfig(cfg postgres.Config) Config {
	return Config{
		Type:     "postgres",
		Postgres: &cfg,
	}
}

// MySQLConfig creates an engines.Config for MySQL/MariaDB.
func MySQLConfig(cfg mysql.Config) Config {
	return Config{
		Type:  "mysql",
		MySQL: &cfg,
	}
}

// MSSQLConfig creates an engines.Config for SQL Server.
func MSSQLConfig(cfg mssql.Config) Config {
	return Config{
		Type:  "mssql",
		MSSQL: &cfg,
	}
}

// ODBCConfig creates an engines.Config for an ODBC data source.
func ODBCConfig(cfg odbc.Config) Config {
	return Config{
		Type: "odbc",
		ODBC: &cfg,
	}
}
