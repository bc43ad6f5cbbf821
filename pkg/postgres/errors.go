package postgres

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

func init() {
	sqldriver.RegisterTranslator(DriverName, translateError)
}

// translateError classifies pgx failures by SQLSTATE. Serialization
// failures and deadlocks are collisions the caller may retry as a whole
// transaction; connection exceptions (class 08), server shutdown states
// and connection exhaustion mean the database is unavailable.
func translateError(err error) error {
	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) {
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return nil
	}

	switch {
	case pgErr.Code == "40001" || pgErr.Code == "40P01":
		return fmt.Errorf("%w: %w", database.ErrCannotSerialize, err)
	case strings.HasPrefix(pgErr.Code, "08"),
		pgErr.Code == "57P01", pgErr.Code == "57P02", pgErr.Code == "57P03",
		pgErr.Code == "53300":
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", database.ErrDatabase, err)
	}
}
