package sqldriver

import (
	"context"
	"database/sql"
	"fmt"
	"math"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// Rows implements database.ResultSet over *sql.Rows, materializing one
// row at a time into values. The first row is loaded eagerly so IsDone
// answers right after the execution.
type Rows struct {
	db       *DB
	rows     *sql.Rows
	columns  int
	expected map[int]database.Type
	current  []database.Value
	done     bool
}

func newRows(db *DB, rows *sql.Rows) (*Rows, error) {
	columns, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, db.translate(err)
	}

	r := &Rows{
		db:       db,
		rows:     rows,
		columns:  len(columns),
		expected: make(map[int]database.Type),
	}
	if err := r.advance(); err != nil {
		rows.Close()
		return nil, err
	}
	return r, nil
}

// advance loads the next row, or marks the set as exhausted.
func (r *Rows) advance() error {
	if !r.rows.Next() {
		if err := r.rows.Err(); err != nil {
			return r.db.translate(err)
		}
		r.done = true
		r.current = nil
		return nil
	}

	cells := make([]interface{}, r.columns)
	scan := make([]interface{}, r.columns)
	for i := range cells {
		scan[i] = &cells[i]
	}
	if err := r.rows.Scan(scan...); err != nil {
		return r.db.translate(err)
	}

	r.current = make([]database.Value, r.columns)
	for i, cell := range cells {
		value, err := materialize(cell)
		if err != nil {
			return err
		}
		r.current[i] = r.coerce(i, value)
	}
	return nil
}

// materialize converts one scanned cell into a value. MySQL reports
// unsigned BIGINT columns (LAST_INSERT_ID among them) as uint64.
func materialize(cell interface{}) (database.Value, error) {
	switch v := cell.(type) {
	case nil:
		return database.Null{}, nil
	case int64:
		return database.Integer64(v), nil
	case uint64:
		if v > math.MaxInt64 {
			return nil, fmt.Errorf("%w: unsigned value %d", database.ErrOverflow, v)
		}
		return database.Integer64(int64(v)), nil
	case string:
		return database.Utf8(v), nil
	case []byte:
		// database/sql may reuse the scan buffer between rows.
		return database.Binary(append([]byte(nil), v...)), nil
	default:
		return nil, fmt.Errorf("%w: unsupported column type %T", database.ErrDatabase, cell)
	}
}

// coerce applies the expected type declared for a column: text and
// binary payloads convert into each other, and either wraps into a
// result file. Anything else keeps the scanned value.
func (r *Rows) coerce(index int, value database.Value) database.Value {
	expected, ok := r.expected[index]
	if !ok {
		return value
	}

	switch expected {
	case database.TypeBinary:
		if v, ok := value.(database.Utf8); ok {
			return database.Binary(v)
		}
	case database.TypeUtf8:
		if v, ok := value.(database.Binary); ok {
			return database.Utf8(v)
		}
	case database.TypeResultFile:
		switch v := value.(type) {
		case database.Binary:
			return database.NewResultFile([]byte(v))
		case database.Utf8:
			return database.NewResultFile([]byte(v))
		}
	}
	return value
}

// IsDone implements database.ResultSet.
func (r *Rows) IsDone() bool {
	return r.done
}

// Next implements database.ResultSet.
func (r *Rows) Next(ctx context.Context) error {
	if r.done {
		return fmt.Errorf("%w: no more rows", database.ErrInexistentItem)
	}
	return r.advance()
}

// FieldsCount implements database.ResultSet.
func (r *Rows) FieldsCount() int {
	return r.columns
}

// Field implements database.ResultSet.
func (r *Rows) Field(index int) (database.Value, error) {
	if r.done {
		return nil, fmt.Errorf("%w: no current row", database.ErrInexistentItem)
	}
	if index < 0 || index >= r.columns {
		return nil, fmt.Errorf("%w: field index %d out of range", database.ErrInexistentItem, index)
	}
	return r.current[index], nil
}

// SetExpectedType implements database.ResultSet. The first row is
// materialized before the caller can declare expectations, so the
// declaration also applies to the current row.
func (r *Rows) SetExpectedType(index int, t database.Type) error {
	if index < 0 || index >= r.columns {
		return fmt.Errorf("%w: field index %d out of range", database.ErrInexistentItem, index)
	}
	r.expected[index] = t
	if !r.done && r.current != nil {
		r.current[index] = r.coerce(index, r.current[index])
	}
	return nil
}

// Close implements database.ResultSet.
func (r *Rows) Close() error {
	if err := r.rows.Close(); err != nil {
		return r.db.translate(err)
	}
	return nil
}
