package odbc

import (
	"fmt"
	"time"

	"github.com/pacsforge/dicomdb/pkg/database"
)

type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails
}

type Connection struct {
	// DSN is the raw ODBC connection string, handed to the driver
	// manager untouched ("DSN=name;UID=user;PWD=secret" or a full
	// DRIVER={...} string).
	DSN string

	// Dialect names the engine behind the transport. It selects the SQL
	// fragments and catalog queries; the parameter markers stay "?"
	// regardless, because they belong to ODBC itself.
	Dialect database.Dialect
}

type ConnectionDetails struct {
	ConnMaxLifetime time.Duration // Recycle the session after this duration; zero keeps it forever
	PingTimeout     time.Duration // Bound on the liveness probe when connecting
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Connection.DSN == "" {
		return fmt.Errorf("%w: missing ODBC connection string",
			database.ErrBadParameterType)
	}
	if !c.Connection.Dialect.Valid() {
		return fmt.Errorf("%w: %q", database.ErrUnknownDialect, c.Connection.Dialect)
	}
	return nil
}
