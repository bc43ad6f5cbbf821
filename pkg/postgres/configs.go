package postgres

import (
	"fmt"
	"strings"
	"time"

	"github.com/pacsforge/dicomdb/pkg/database"
)

type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails
}

type Connection struct {
	Host     string
	Port     string // Defaults to 5432 when empty
	User     string
	Password string
	DbName   string
	SSLMode  string // disable, prefer, require, ...; the driver default when empty
}

type ConnectionDetails struct {
	ConnMaxLifetime time.Duration // Recycle the session after this duration; zero keeps it forever
	PingTimeout     time.Duration // Bound on the liveness probe when connecting
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if c.Connection.Host == "" || c.Connection.User == "" || c.Connection.DbName == "" {
		return fmt.Errorf("%w: host, user and dbname are required",
			database.ErrBadParameterType)
	}
	return nil
}

// DSN builds the keyword/value connection string understood by pgx.
func (c Config) DSN() string {
	port := c.Connection.Port
	if port == "" {
		port = "5432"
	}

	parts := []string{
		"host=" + c.Connection.Host,
		"port=" + port,
		"user=" + c.Connection.User,
	}
	if c.Connection.Password != "" {
		parts = append(parts, "password="+c.Connection.Password)
	}
	parts = append(parts, "dbname="+c.Connection.DbName)
	if c.Connection.SSLMode != "" {
		parts = append(parts, "sslmode="+c.Connection.SSLMode)
	}
	return strings.Join(parts, " ")
}
