package database

import (
	"fmt"
	"strconv"
)

// Type enumerates the kinds of values that can travel through the
// engine, either as statement parameters or as result fields.
type Type int

const (
	TypeNull Type = iota
	TypeInteger64
	TypeUtf8
	TypeBinary
	TypeInputFile
	TypeResultFile
)

// String implements fmt.Stringer.
func (t Type) String() string {
	switch t {
	case TypeNull:
		return "null"
	case TypeInteger64:
		return "integer64"
	case TypeUtf8:
		return "utf8"
	case TypeBinary:
		return "binary"
	case TypeInputFile:
		return "input-file"
	case TypeResultFile:
		return "result-file"
	default:
		return fmt.Sprintf("type(%d)", int(t))
	}
}

// Value is a typed statement parameter or result field. Values are
// immutable once constructed.
//
// Convert implements a deliberately sparse conversion table: every type
// converts to itself, Binary converts to Null, and InputFile converts to
// Binary. Every other pair fails with ErrBadParameterType.
type Value interface {
	Type() Type
	Format() string
	Convert(target Type) (Value, error)
}

func conversionError(from, to Type) error {
	return fmt.Errorf("%w: no conversion from %s to %s", ErrBadParameterType, from, to)
}

// Null is the SQL NULL value.
type Null struct{}

func (Null) Type() Type     { return TypeNull }
func (Null) Format() string { return "(null)" }

func (n Null) Convert(target Type) (Value, error) {
	if target == TypeNull {
		return n, nil
	}
	return nil, conversionError(TypeNull, target)
}

// Integer64 is a 64-bit integer value.
type Integer64 int64

func (v Integer64) Type() Type     { return TypeInteger64 }
func (v Integer64) Format() string { return strconv.FormatInt(int64(v), 10) }

func (v Integer64) Convert(target Type) (Value, error) {
	if target == TypeInteger64 {
		return v, nil
	}
	return nil, conversionError(TypeInteger64, target)
}

// Utf8 is a UTF-8 string value.
type Utf8 string

func (v Utf8) Type() Type     { return TypeUtf8 }
func (v Utf8) Format() string { return string(v) }

func (v Utf8) Convert(target Type) (Value, error) {
	if target == TypeUtf8 {
		return v, nil
	}
	return nil, conversionError(TypeUtf8, target)
}

// Binary is a raw byte string with no encoding assumption.
type Binary []byte

func (v Binary) Type() Type { return TypeBinary }

func (v Binary) Format() string {
	return fmt.Sprintf("(binary - %d bytes)", len(v))
}

func (v Binary) Convert(target Type) (Value, error) {
	switch target {
	case TypeBinary:
		return v, nil
	case TypeNull:
		return Null{}, nil
	default:
		return nil, conversionError(TypeBinary, target)
	}
}

// InputFile is a large binary payload travelling into the database. It
// carries the same bytes as Binary but marks the intent, so storage
// paths can treat it differently from ordinary parameters.
type InputFile []byte

func (v InputFile) Type() Type { return TypeInputFile }

func (v InputFile) Format() string {
	return fmt.Sprintf("(input file - %d bytes)", len(v))
}

func (v InputFile) Convert(target Type) (Value, error) {
	switch target {
	case TypeInputFile:
		return v, nil
	case TypeBinary:
		return Binary(v), nil
	default:
		return nil, conversionError(TypeInputFile, target)
	}
}

// ResultFile is a large binary payload travelling out of the database.
// It is only ever produced by an engine materializing results and is
// never a legal statement parameter.
type ResultFile struct {
	content []byte
}

// NewResultFile wraps content fetched from the database.
func NewResultFile(content []byte) ResultFile {
	return ResultFile{content: content}
}

func (v ResultFile) Type() Type { return TypeResultFile }

func (v ResultFile) Format() string {
	return fmt.Sprintf("(result file - %d bytes)", len(v.content))
}

func (v ResultFile) Convert(target Type) (Value, error) {
	if target == TypeResultFile {
		return v, nil
	}
	return nil, conversionError(TypeResultFile, target)
}

// Content returns the fetched payload.
func (v ResultFile) Content() []byte {
	return v.content
}

// Size returns the payload size in bytes.
func (v ResultFile) Size() int64 {
	return int64(len(v.content))
}
