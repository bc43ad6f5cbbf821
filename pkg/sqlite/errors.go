package sqlite

import (
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

func init() {
	sqldriver.RegisterTranslator(DriverName, translateError)
}

// translateError classifies go-sqlite3 failures: a locked database is a
// collision (another writer holds the file), an unopenable or corrupt
// file is unavailable, everything else is a plain engine error.
func translateError(err error) error {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return nil
	}

	switch sqliteErr.Code {
	case sqlite3.ErrBusy, sqlite3.ErrLocked:
		return fmt.Errorf("%w: %w", database.ErrCannotSerialize, err)
	case sqlite3.ErrCantOpen, sqlite3.ErrNotADB:
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", database.ErrDatabase, err)
	}
}
