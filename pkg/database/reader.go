package database

import (
	"context"
	"fmt"
	"math"
)

// Reader wraps an engine ResultSet with typed field accessors. Every
// accessor first checks that a current row exists (ErrInexistentItem
// otherwise), then the column index, then the field type
// (ErrBadParameterType on mismatch).
type Reader struct {
	result ResultSet
	logger Logger
	closed bool
}

func newReader(result ResultSet, logger Logger) *Reader {
	return &Reader{result: result, logger: logger}
}

// IsDone reports whether the cursor is exhausted. Check it before any
// field access and after each Next.
func (r *Reader) IsDone() bool {
	return r.result.IsDone()
}

// Next advances to the following row.
func (r *Reader) Next(ctx context.Context) error {
	return r.result.Next(ctx)
}

// FieldsCount returns the number of columns.
func (r *Reader) FieldsCount() int {
	return r.result.FieldsCount()
}

// SetExpectedType asks the engine to coerce a column when materializing
// fields.
func (r *Reader) SetExpectedType(index int, t Type) error {
	return r.result.SetExpectedType(index, t)
}

// Field returns the index-th field of the current row.
func (r *Reader) Field(index int) (Value, error) {
	if r.result.IsDone() {
		return nil, fmt.Errorf("%w: no current row", ErrInexistentItem)
	}
	if index < 0 || index >= r.result.FieldsCount() {
		return nil, fmt.Errorf("%w: field index %d out of range", ErrInexistentItem, index)
	}
	return r.result.Field(index)
}

// IsNull reports whether the index-th field of the current row is NULL.
func (r *Reader) IsNull(index int) (bool, error) {
	field, err := r.Field(index)
	if err != nil {
		return false, err
	}
	return field.Type() == TypeNull, nil
}

// ReadInteger64 reads an Integer64 field.
func (r *Reader) ReadInteger64(index int) (int64, error) {
	field, err := r.Field(index)
	if err != nil {
		return 0, err
	}
	v, ok := field.(Integer64)
	if !ok {
		return 0, fmt.Errorf("%w: field %d holds %s, not an integer", ErrBadParameterType,
			index, field.Type())
	}
	return int64(v), nil
}

// ReadInteger32 reads an Integer64 field and narrows it to 32 bits,
// failing with ErrOverflow when the value does not fit.
func (r *Reader) ReadInteger32(index int) (int32, error) {
	v, err := r.ReadInteger64(index)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, ErrOverflow
	}
	return int32(v), nil
}

// ReadString reads a Utf8 or Binary field as a string.
func (r *Reader) ReadString(index int) (string, error) {
	field, err := r.Field(index)
	if err != nil {
		return "", err
	}
	switch v := field.(type) {
	case Utf8:
		return string(v), nil
	case Binary:
		return string(v), nil
	default:
		return "", fmt.Errorf("%w: field %d holds %s, not a string", ErrBadParameterType,
			index, field.Type())
	}
}

// ReadLargeObject reads a ResultFile or Binary field as raw bytes.
func (r *Reader) ReadLargeObject(index int) ([]byte, error) {
	field, err := r.Field(index)
	if err != nil {
		return nil, err
	}
	switch v := field.(type) {
	case ResultFile:
		return v.Content(), nil
	case Binary:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("%w: field %d holds %s, not a large object", ErrBadParameterType,
			index, field.Type())
	}
}

// Close releases the underlying result set. It is idempotent; errors are
// logged and swallowed so Close can be deferred.
func (r *Reader) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if err := r.result.Close(); err != nil && r.logger != nil {
		r.logger.Warn("failed to close a result set", err, nil)
	}
}
