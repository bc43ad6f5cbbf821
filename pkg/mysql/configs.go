package mysql

import (
	"fmt"
	"sort"
	"time"

	"github.com/pacsforge/dicomdb/pkg/database"
)

type Config struct {
	Connection        Connection
	ConnectionDetails ConnectionDetails
}

type Connection struct {
	Host     string
	Port     string // Defaults to 3306 when empty
	User     string
	Password string
	DbName   string
	Charset  string            // Defaults to utf8mb4
	TLS      string            // TLS mode as understood by go-sql-driver; off when empty
	Params   map[string]string // Extra system variables set on the session
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

// DSN builds the connection string in go-sql-driver's format:
// username:password@tcp(host:port)/dbname?param=value
func (c Config) DSN() string {
	port := c.Connection.Port
	if port == "" {
		port = "3306"
	}
	charset := c.Connection.Charset
	if charset == "" {
		charset = "utf8mb4"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=%s",
		c.Connection.User,
		c.Connection.Password,
		c.Connection.Host,
		port,
		c.Connection.DbName,
		charset,
	)

	if c.Connection.TLS != "" {
		dsn += "&tls=" + c.Connection.TLS
	}

	names := make([]string, 0, len(c.Connection.Params))
	for name := range c.Connection.Params {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		dsn += "&" + name + "=" + c.Connection.Params[name]
	}
	return dsn
}
