package database

import (
	"errors"
)

// Sentinel errors shared by the whole engine stack. Engine packages
// translate their driver-specific failures into these, so applications
// can classify any error with errors.Is regardless of the engine in use.
var (
	// ErrBadSequenceOfCalls is returned when the API is driven through an
	// illegal state transition: executing on a completed transaction,
	// starting a transaction while one is active, committing an implicit
	// transaction that never executed, rolling back an implicit
	// transaction, placing ${AUTOINCREMENT} anywhere but first, or asking
	// a formatter with divergent dialects for "the" dialect.
	ErrBadSequenceOfCalls = errors.New("bad sequence of calls")

	// ErrBadParameterType is returned for an undefined value conversion,
	// a missing or mistyped statement parameter, or a typed field read
	// aimed at a field of another type.
	ErrBadParameterType = errors.New("bad type of parameter")

	// ErrInexistentItem is returned when reading past the end of a result
	// set, addressing an out-of-range column, or looking up a record that
	// does not exist.
	ErrInexistentItem = errors.New("accessing an inexistent item")

	// ErrDatabaseUnavailable is returned when the database cannot be
	// reached. The owning Manager reacts by closing the connection so the
	// next use reconnects, and RetryFactory retries on it.
	ErrDatabaseUnavailable = errors.New("database unavailable")

	// ErrCannotSerialize is returned when concurrent transactions collide
	// (serialization failure or deadlock). The active transaction is kept
	// so the caller can roll back and retry the whole unit. It is never
	// retried automatically.
	ErrCannotSerialize = errors.New("cannot serialize a transaction")

	// ErrDatabase is returned for any other failure reported by the
	// engine (constraint violation, syntax error, ...).
	ErrDatabase = errors.New("error with the database engine")

	// ErrOverflow is returned when a 64-bit integer field does not fit
	// into the 32 bits requested by the reader.
	ErrOverflow = errors.New("Integer overflow")

	// ErrBadQueryTemplate is returned when a ${...} template cannot be
	// parsed (unterminated placeholder, empty or malformed name).
	ErrBadQueryTemplate = errors.New("invalid query template")

	// ErrUnknownDialect is returned when a formatter or an engine is
	// configured with a dialect it does not support.
	ErrUnknownDialect = errors.New("unknown database dialect")
)

// ErrorCategory represents the coarse classification of an engine error.
type ErrorCategory int

const (
	// CategoryGeneric covers plain database errors with no special policy.
	CategoryGeneric ErrorCategory = iota

	// CategoryUnavailable covers connection-level failures.
	CategoryUnavailable

	// CategoryCollision covers serialization failures between concurrent
	// transactions.
	CategoryCollision

	// CategoryBadSequence covers API misuse.
	CategoryBadSequence

	// CategoryParameter covers value and parameter type mismatches.
	CategoryParameter

	// CategoryInexistent covers reads of absent rows, columns or records.
	CategoryInexistent

	// CategoryOverflow covers failed integer narrowing.
	CategoryOverflow
)

// GetErrorCategory returns the category of the given error.
func GetErrorCategory(err error) ErrorCategory {
	switch {
	case errors.Is(err, ErrDatabaseUnavailable):
		return CategoryUnavailable
	case errors.Is(err, ErrCannotSerialize):
		return CategoryCollision
	case errors.Is(err, ErrBadSequenceOfCalls), errors.Is(err, ErrBadQueryTemplate), errors.Is(err, ErrUnknownDialect):
		return CategoryBadSequence
	case errors.Is(err, ErrBadParameterType):
		return CategoryParameter
	case errors.Is(err, ErrInexistentItem):
		return CategoryInexistent
	case errors.Is(err, ErrOverflow):
		return CategoryOverflow
	default:
		return CategoryGeneric
	}
}

// IsUnavailable reports whether err is a connection-level failure that
// warrants closing and reopening the connection.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrDatabaseUnavailable)
}

// IsCollision reports whether err is a serialization failure between
// concurrent transactions. The caller owns the retry decision.
func IsCollision(err error) bool {
	return errors.Is(err, ErrCannotSerialize)
}

// IsRetryable reports whether the engine stack itself may retry the
// failed operation. Only unavailable errors qualify; collisions must be
// retried by the caller as a whole transaction.
func IsRetryable(err error) bool {
	return IsUnavailable(err)
}

// IsTemporary reports whether err can be expected to go away on its own:
// either the database comes back, or the colliding transaction finishes.
func IsTemporary(err error) bool {
	return IsUnavailable(err) || IsCollision(err)
}

// IsPermanent reports whether retrying is pointless without changing the
// calling code or the data.
func IsPermanent(err error) bool {
	return err != nil && !IsTemporary(err)
}
