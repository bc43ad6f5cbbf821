package sqlite

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/pacsforge/dicomdb/pkg/database"
)

type Config struct {
	Connection Connection
}

type Connection struct {
	Path        string        // Database file path; ignored when InMemory is set
	InMemory    bool          // Keep the whole database in memory
	BusyTimeout time.Duration // How long the engine waits on a locked database before reporting busy
	ForeignKeys bool          // Enforce foreign key constraints
	WAL         bool          // Use write-ahead logging instead of the rollback journal
}

// Validate checks the configuration.
func (c Config) Validate() error {
	if !c.Connection.InMemory && c.Connection.Path == "" {
		return fmt.Errorf("%w: either a file path or in-memory mode is required",
			database.ErrBadParameterType)
	}
	return nil
}

// DSN builds the connection string in go-sqlite3's format.
func (c Config) DSN() string {
	query := url.Values{}
	if c.Connection.BusyTimeout > 0 {
		query.Set("_busy_timeout", strconv.FormatInt(c.Connection.BusyTimeout.Milliseconds(), 10))
	}
	if c.Connection.ForeignKeys {
		query.Set("_foreign_keys", "on")
	}
	if c.Connection.WAL {
		query.Set("_journal_mode", "WAL")
	}

	source := c.Connection.Path
	if c.Connection.InMemory {
		source = ":memory:"
	}
	if encoded := query.Encode(); encoded != "" {
		return "file:" + source + "?" + encoded
	}
	return source
}
