package database

// Stats is a snapshot of a Manager's counters, exposed for monitoring.
type Stats struct {
	// StatementsCompiled counts cache misses that led to a compilation.
	StatementsCompiled int

	// CacheHits counts executions served by an already-compiled statement.
	CacheHits int

	// CachedStatements is the current size of the statement cache.
	CachedStatements int

	// StatementsExecuted counts successful statement executions.
	StatementsExecuted int

	TransactionsStarted    int
	TransactionsCommitted  int
	TransactionsRolledBack int

	// Collisions counts serialization failures between concurrent
	// transactions.
	Collisions int

	// UnavailableFailures counts connection-level failures that closed
	// the connection.
	UnavailableFailures int

	// Reconnects counts connections opened after the first one.
	Reconnects int
}
