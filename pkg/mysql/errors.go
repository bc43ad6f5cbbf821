package mysql

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

func init() {
	sqldriver.RegisterTranslator(DriverName, translateError)
}

// translateError classifies go-sql-driver failures. Deadlocks and lock
// wait timeouts are collisions between concurrent transactions; a dead
// session and server shutdown states mean the database is unavailable.
// Network-level failures carry no MySQL error number and are left to
// the generic classification.
func translateError(err error) error {
	if errors.Is(err, mysql.ErrInvalidConn) {
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	}

	var mysqlErr *mysql.MySQLError
	if !errors.As(err, &mysqlErr) {
		return nil
	}

	switch mysqlErr.Number {
	case 1213, 1205:
		return fmt.Errorf("%w: %w", database.ErrCannotSerialize, err)
	case 1053, 1040:
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", database.ErrDatabase, err)
	}
}
