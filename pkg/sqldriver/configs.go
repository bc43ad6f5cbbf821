package sqldriver

import (
	"fmt"
	"time"

	"github.com/pacsforge/dicomdb/pkg/database"
)

type Config struct {
	// DriverName is the name the driver registered with database/sql,
	// e.g. "sqlite3", "pgx", "mysql", "sqlserver", "odbc".
	DriverName string

	// DSN in the driver's native format.
	DSN string

	// Dialect of the engine behind the connection. It selects the SQL
	// fragments (autoincrement, introspection queries).
	Dialect database.Dialect

	// MarkerDialect selects the parameter marker style. Leave empty to
	// follow Dialect; ODBC transports set it explicitly because their
	// markers belong to the transport, not to the engine.
	MarkerDialect database.Dialect

	ConnectionDetails ConnectionDetails
}

type ConnectionDetails struct {
	// ConnMaxLifetime recycles the session after this duration. Zero
	// keeps it forever.
	ConnMaxLifetime time.Duration

	// PingTimeout bounds the liveness probe when opening. Zero means
	// defaultPingTimeout.
	PingTimeout time.Duration
}

const defaultPingTimeout = 10 * time.Second

// Validate checks the configuration before any connection is attempted.
func (c Config) Validate() error {
	if c.DriverName == "" {
		return fmt.Errorf("%w: missing driver name", database.ErrBadParameterType)
	}
	if c.DSN == "" {
		return fmt.Errorf("%w: missing DSN", database.ErrBadParameterType)
	}
	if !c.Dialect.Valid() {
		return fmt.Errorf("%w: %q", database.ErrUnknownDialect, c.Dialect)
	}
	if c.MarkerDialect != "" && !c.MarkerDialect.Valid() {
		return fmt.Errorf("%w: %q", database.ErrUnknownDialect, c.MarkerDialect)
	}
	return nil
}

// normalized returns a copy with the defaults applied.
func (c Config) normalized() Config {
	if c.MarkerDialect == "" {
		c.MarkerDialect = c.Dialect
	}
	if c.ConnectionDetails.PingTimeout == 0 {
		c.ConnectionDetails.PingTimeout = defaultPingTimeout
	}
	return c
}
