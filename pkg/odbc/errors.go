package odbc

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexbrainman/odbc"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqldriver"
)

func init() {
	sqldriver.RegisterTranslator(DriverName, translateError)
}

// translateError classifies ODBC failures by the SQLSTATE of their
// diagnostic records. SQLSTATE 40001 is a collision; class 08
// (connection exceptions) and the HYT00/HYT01 timeouts mean the data
// source is unavailable.
func translateError(err error) error {
	var odbcErr *odbc.Error
	if !errors.As(err, &odbcErr) {
		return nil
	}

	for _, diag := range odbcErr.Diag {
		switch {
		case diag.State == "40001":
			return fmt.Errorf("%w: %w", database.ErrCannotSerialize, err)
		case strings.HasPrefix(diag.State, "08"),
			diag.State == "HYT00", diag.State == "HYT01":
			return fmt.Errorf("%w: %w", database.ErrDatabaseUnavailable, err)
		}
	}
	return fmt.Errorf("%w: %w", database.ErrDatabase, err)
}
