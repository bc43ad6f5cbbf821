package sqldriver

import (
	"database/sql"
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// Statement is a query prepared on one session, carrying the positional
// parameter list recorded while formatting.
type Statement struct {
	db       *DB
	query    *database.Query
	sql      string
	prepared *sql.Stmt
	names    []string
	types    []database.Type
}

// Query implements database.Statement.
func (s *Statement) Query() *database.Query {
	return s.query
}

// SQL implements database.Statement: the formatted text sent to the
// driver.
func (s *Statement) SQL() string {
	return s.sql
}

// Close implements database.Statement.
func (s *Statement) Close() error {
	if err := s.prepared.Close(); err != nil {
		return s.db.translate(err)
	}
	return nil
}

// bindParameters converts dictionary values into driver arguments, in
// the positional order recorded at compile time. Dictionary entries the
// statement does not reference are ignored; referenced names missing
// from the dictionary are an error, and a value that cannot convert to
// the type the statement declared for its slot is one too.
func bindParameters(s *Statement, parameters *database.Dictionary) ([]interface{}, error) {
	args := make([]interface{}, len(s.names))
	for i, name := range s.names {
		value, ok := parameters.Value(name)
		if !ok {
			return nil, fmt.Errorf("%w: missing parameter %q", database.ErrBadParameterType, name)
		}

		if declared := s.types[i]; declared != database.TypeNull && value.Type() != declared {
			if _, isNull := value.(database.Null); !isNull {
				converted, err := value.Convert(declared)
				if err != nil {
					return nil, fmt.Errorf("parameter %q: %w", name, err)
				}
				value = converted
			}
		}

		switch v := value.(type) {
		case database.Null:
			args[i] = nullArgument(parameters, name)
		case database.Integer64:
			args[i] = int64(v)
		case database.Utf8:
			args[i] = string(v)
		case database.Binary:
			args[i] = []byte(v)
		case database.InputFile:
			// An input file travels as its binary payload.
			args[i] = []byte(v)
		default:
			return nil, fmt.Errorf("%w: parameter %q holds %s, which cannot be bound",
				database.ErrBadParameterType, name, value.Type())
		}
	}
	return args, nil
}

// nullArgument binds a NULL with the column affinity the dictionary
// declared for it. ODBC data sources and SQL Server refuse an untyped
// nil in some parameter positions; SetUtf8Null and SetBinaryNull exist
// so those bindings can still be described.
func nullArgument(parameters *database.Dictionary, name string) interface{} {
	declared, _ := parameters.DeclaredType(name)
	switch declared {
	case database.TypeUtf8:
		return sql.NullString{}
	case database.TypeBinary:
		return []byte(nil)
	default:
		return nil
	}
}
