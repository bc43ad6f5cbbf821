package database

import "fmt"

// Dialect identifies the SQL flavor spoken by an engine. ODBC is a
// transport, not a dialect: an ODBC connection carries the dialect of
// the server behind it.
type Dialect string

const (
	DialectSQLite     Dialect = "sqlite"
	DialectPostgreSQL Dialect = "postgresql"
	DialectMySQL      Dialect = "mysql"
	DialectMSSQL      Dialect = "mssql"
)

// String implements fmt.Stringer.
func (d Dialect) String() string {
	return string(d)
}

// Valid reports whether d is one of the supported dialects.
func (d Dialect) Valid() bool {
	switch d {
	case DialectSQLite, DialectPostgreSQL, DialectMySQL, DialectMSSQL:
		return true
	default:
		return false
	}
}

// ParseDialect converts a configuration string into a Dialect, accepting
// the common aliases for each engine family.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "sqlite", "sqlite3":
		return DialectSQLite, nil
	case "postgresql", "postgres", "pgsql":
		return DialectPostgreSQL, nil
	case "mysql", "mariadb":
		return DialectMySQL, nil
	case "mssql", "sqlserver":
		return DialectMSSQL, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, s)
	}
}
