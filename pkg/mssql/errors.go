package mssql

import (
	"errors"
	"fmt"

	mssql "github.com/microsoft/go-mssqldb"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

func init() {
	sqldriver.RegisterTranslator(DriverName, translateError)
}

// translateError classifies go-mssqldb failures by server error number.
// A deadlock victim is a collision; an unopenable database or a failed
// login means the instance is unavailable. Network failures surface as
// plain net errors and are left to the generic classification.
func translateError(err error) error {
	var serverErr mssql.Error
	if !errors.As(err, &serverErr) {
		return nil
	}

	switch serverErr.Number {
	case 1205:
		return fmt.Errorf("%w: %w", database.ErrCannotSerialize, err)
	case 4060, 18456:
		return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
	default:
		return fmt.Errorf("%w: %w", database.ErrDatabase, err)
	}
}
