package database

import (
	"fmt"
	"strconv"
)

// ParameterFormatter turns ${name} placeholders into dialect-specific
// SQL fragments while recording, in order, the parameters that will have
// to be bound at execution time.
type ParameterFormatter interface {
	// Format returns the SQL fragment replacing one placeholder
	// occurrence. It is called once per occurrence, left to right.
	Format(name string, declaredType Type) (string, error)

	// ParameterCount returns how many bindable parameters have been
	// formatted so far. The autoincrement placeholder registers none.
	ParameterCount() int

	// ParameterName returns the name of the i-th bindable parameter.
	ParameterName(index int) (string, error)

	// ParameterType returns the declared type of the i-th bindable
	// parameter.
	ParameterType(index int) (Type, error)
}

// GenericFormatter formats placeholders for all supported dialects. It
// carries two independent dialect settings: the autoincrement dialect
// picks the fragment expanding ${AUTOINCREMENT}, and the named dialect
// picks the parameter markers. They only diverge on ODBC transports,
// where markers are always "?" while the autoincrement fragment still
// belongs to the server behind the connection.
type GenericFormatter struct {
	autoincrementDialect Dialect
	namedDialect         Dialect

	placeholders int
	names        []string
	types        []Type
}

// NewGenericFormatter returns a formatter with both dialect settings
// pointing at d.
func NewGenericFormatter(d Dialect) *GenericFormatter {
	return &GenericFormatter{
		autoincrementDialect: d,
		namedDialect:         d,
	}
}

// SetAutoincrementDialect overrides the dialect expanding
// ${AUTOINCREMENT}.
func (f *GenericFormatter) SetAutoincrementDialect(d Dialect) {
	f.autoincrementDialect = d
}

// AutoincrementDialect returns the dialect expanding ${AUTOINCREMENT}.
func (f *GenericFormatter) AutoincrementDialect() Dialect {
	return f.autoincrementDialect
}

// SetNamedDialect overrides the dialect emitting parameter markers.
func (f *GenericFormatter) SetNamedDialect(d Dialect) {
	f.namedDialect = d
}

// NamedDialect returns the dialect emitting parameter markers.
func (f *GenericFormatter) NamedDialect() Dialect {
	return f.namedDialect
}

// Dialect is the generic accessor for callers that need "the" dialect of
// the formatter. It fails with ErrBadSequenceOfCalls when the two
// settings diverge, because there is no single answer then.
func (f *GenericFormatter) Dialect() (Dialect, error) {
	if f.autoincrementDialect != f.namedDialect {
		return "", fmt.Errorf("%w: autoincrement dialect %q diverges from named dialect %q",
			ErrBadSequenceOfCalls, f.autoincrementDialect, f.namedDialect)
	}
	return f.namedDialect, nil
}

// Format implements ParameterFormatter.
func (f *GenericFormatter) Format(name string, declaredType Type) (string, error) {
	if name == AutoincrementParameter {
		return f.formatAutoincrement()
	}

	f.placeholders++
	f.names = append(f.names, name)
	f.types = append(f.types, declaredType)

	switch f.namedDialect {
	case DialectPostgreSQL:
		return "$" + strconv.Itoa(len(f.names)), nil
	case DialectSQLite, DialectMySQL, DialectMSSQL:
		return "?", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, f.namedDialect)
	}
}

func (f *GenericFormatter) formatAutoincrement() (string, error) {
	if f.placeholders > 0 {
		return "", fmt.Errorf("%w: the AUTOINCREMENT placeholder must be the first one of the query",
			ErrBadSequenceOfCalls)
	}
	f.placeholders++

	switch f.autoincrementDialect {
	case DialectPostgreSQL:
		return "DEFAULT, ", nil
	case DialectMySQL, DialectSQLite:
		return "NULL, ", nil
	case DialectMSSQL:
		// The identity column is simply omitted from the INSERT list.
		return "", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownDialect, f.autoincrementDialect)
	}
}

// ParameterCount implements ParameterFormatter.
func (f *GenericFormatter) ParameterCount() int {
	return len(f.names)
}

// ParameterName implements ParameterFormatter.
func (f *GenericFormatter) ParameterName(index int) (string, error) {
	if index < 0 || index >= len(f.names) {
		return "", fmt.Errorf("%w: parameter index %d out of range", ErrInexistentItem, index)
	}
	return f.names[index], nil
}

// ParameterType implements ParameterFormatter.
func (f *GenericFormatter) ParameterType(index int) (Type, error) {
	if index < 0 || index >= len(f.types) {
		return TypeNull, fmt.Errorf("%w: parameter index %d out of range", ErrInexistentItem, index)
	}
	return f.types[index], nil
}
