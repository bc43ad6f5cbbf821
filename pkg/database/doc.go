// Package database implements a dialect-agnostic SQL statement and
// transaction engine: typed parameter values, named-parameter templates,
// per-call-site statement caching and strict transaction state machines,
// independent of the engine that ultimately runs the SQL.
//
// This package never interprets SQL. It owns statement lifecycle,
// parameter binding order, transaction state and failure policy; engine
// packages (sqlite, postgres, mysql, mssql, odbc) own the wire protocol,
// the type mapping and the raw error surface.
//
// # Philosophy
//
// The package follows Go's "accept interfaces, return structs" principle:
//   - Applications depend on the Manager and its statement helpers
//   - Engines implement the Factory, Connection, Transaction, Statement
//     and ResultSet interfaces
//   - The Manager orchestrates engines through those interfaces only
//
// This enables:
//   - True engine-agnostic application code
//   - Switching engines via configuration
//   - Testing the whole orchestration layer against an in-memory fake
//
// # Values and parameters
//
// Statement parameters and result fields are typed Values: Null,
// Integer64, Utf8, Binary, InputFile and ResultFile. Conversions between
// them are deliberately sparse; anything not explicitly defined fails
// with ErrBadParameterType. Parameters travel in a Dictionary keyed by
// name, with last-write-wins semantics.
//
// # Templates
//
// SQL text is written once with ${name} placeholders and formatted per
// dialect by a GenericFormatter: PostgreSQL gets $1, $2, ... markers,
// the other dialects get ?. The reserved ${AUTOINCREMENT} placeholder
// must come first in a query and expands to the dialect's way of letting
// the engine assign a primary key.
//
// # Statement caching
//
// Statements are compiled once per call site and cached forever on the
// owning Manager. The cache key is a StatementID captured with FromHere
// (file and line) or FromHereDynamic (file, line and a hash of the SQL).
// The cache is dropped only when the connection closes.
//
// # Transactions
//
// A Manager holds at most one active transaction: read-write, read-only
// or implicit (autocommit). Implicit transactions allow exactly one
// execution and can never be rolled back. Explicit transactions are
// single-shot on Commit and Rollback; Close rolls back anything left
// open, so a deferred Close gives destructor-like cleanup.
//
// # Failure policy
//
// Every engine error is classified: ErrDatabaseUnavailable closes the
// connection (and cache) so the next use reconnects, ErrCannotSerialize
// keeps the transaction alive so the caller can retry the whole unit,
// anything else discards the active transaction. A RetryFactory adds a
// fixed-interval retry budget on top of any Factory, applied only to
// unavailable errors.
//
// # Basic Usage
//
//	factory, err := sqlite.NewFactory(sqlite.Config{Connection: sqlite.Connection{InMemory: true}}, log)
//	if err != nil {
//	    return err
//	}
//	manager := database.NewManager(factory, log)
//	defer manager.Close()
//
//	tx, err := manager.StartTransaction(ctx, database.TransactionReadWrite)
//	if err != nil {
//	    return err
//	}
//	defer tx.Close()
//
//	s := database.NewCachedStatement(database.FromHere(), manager,
//	    "INSERT INTO resources VALUES(${AUTOINCREMENT} ${publicId}, ${type})")
//	args := database.NewDictionary()
//	args.SetUtf8("publicId", "1.2.840.113619.2.1")
//	args.SetInteger64("type", 2)
//	if err := s.ExecuteWithoutResult(ctx, args); err != nil {
//	    return err
//	}
//	return tx.Commit()
package database
