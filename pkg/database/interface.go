package database

import "context"

// TransactionType selects the transaction semantics requested from an
// engine.
type TransactionType int

const (
	// TransactionReadWrite is an explicit transaction that may modify
	// data.
	TransactionReadWrite TransactionType = iota

	// TransactionReadOnly is an explicit transaction restricted to
	// statements declared read-only. Engines treat the restriction as a
	// hint and may not enforce it server-side.
	TransactionReadOnly

	// TransactionImplicit runs each statement in autocommit mode. At most
	// one execution is allowed per implicit transaction.
	TransactionImplicit
)

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	switch t {
	case TransactionReadWrite:
		return "read-write"
	case TransactionReadOnly:
		return "read-only"
	case TransactionImplicit:
		return "implicit"
	default:
		return "unknown"
	}
}

// Factory opens connections to one database. The Manager calls Open
// lazily on first use and again after an unavailable error closed the
// previous connection. Wrap a Factory in a RetryFactory to add a retry
// budget.
type Factory interface {
	Open(ctx context.Context) (Connection, error)
	Dialect() Dialect
}

// Connection is one open connection to a database engine. A Manager owns
// at most one and drives it from a single goroutine.
type Connection interface {
	// Compile formats the query for the engine's dialect and prepares it.
	Compile(ctx context.Context, query *Query) (Statement, error)

	// Begin starts an explicit transaction of the given type. Implicit
	// transactions are obtained from Implicit instead.
	Begin(ctx context.Context, transactionType TransactionType) (Transaction, error)

	// Implicit returns the autocommit pseudo-transaction of this
	// connection. Its Commit is a no-op and its Rollback is rejected by
	// the managed layer before reaching the engine.
	Implicit() Transaction

	// ExecuteMultiLines runs a batch of semicolon-separated statements,
	// outside of any prepared-statement machinery. Used for schema setup.
	ExecuteMultiLines(ctx context.Context, sql string) error

	DoesTableExist(ctx context.Context, name string) (bool, error)
	DoesIndexExist(ctx context.Context, name string) (bool, error)
	DoesTriggerExist(ctx context.Context, name string) (bool, error)

	Dialect() Dialect
	Close() error
}

// Transaction executes compiled statements. Engine transactions carry no
// state machine of their own; the ManagedTransaction wrapper enforces
// call ordering before anything reaches the engine.
type Transaction interface {
	Execute(ctx context.Context, statement Statement, parameters *Dictionary) (ResultSet, error)
	ExecuteWithoutResult(ctx context.Context, statement Statement, parameters *Dictionary) error
	Commit() error
	Rollback() error
}

// Statement is a compiled statement bound to its connection.
type Statement interface {
	// Query returns the template the statement was compiled from.
	Query() *Query

	// SQL returns the dialect-formatted text that was prepared.
	SQL() string

	Close() error
}

// ResultSet is a forward-only cursor over the rows produced by Execute.
// After Execute the cursor sits on the first row when there is one;
// IsDone reports exhaustion BEFORE any field access is legal.
type ResultSet interface {
	IsDone() bool

	// Next advances to the following row. Advancing past the last row
	// flips IsDone; advancing an exhausted cursor fails with
	// ErrInexistentItem.
	Next(ctx context.Context) error

	FieldsCount() int

	// Field materializes the index-th field of the current row.
	Field(index int) (Value, error)

	// SetExpectedType asks the engine to coerce the index-th column to t
	// when materializing, for engines whose wire types are ambiguous.
	SetExpectedType(index int, t Type) error

	Close() error
}
