// Package sqldriver binds the database contract to Go's database/sql.
//
// It is the single concrete engine core: every supported engine is this
// package plus a thin glue package (sqlite, postgres, mysql, mssql,
// odbc) contributing a driver import, a DSN builder and an error
// translator. sqldriver itself imports no driver.
//
// # Sessions
//
// Factory.Open returns one session pinned to one underlying connection
// (MaxOpenConns = 1). A database.Manager requires this: its implicit
// statements, explicit transactions and schema introspection must all
// observe the same connection state. Pool-style concurrency comes from
// opening more sessions, not from sharing one.
//
// # Markers
//
// Queries are formatted by the core GenericFormatter, with the engine
// dialect driving the autoincrement fragment and the marker dialect
// driving parameter markers. The formatted text is then adapted to the
// driver where database/sql and the wire protocol disagree: go-mssqldb
// rejects "?" and gets ordinal @pN markers instead.
//
// # Error translation
//
// Engine glue packages register a TranslateFunc for their driver in
// init(). Every error leaving this package is routed through that
// translator and a generic fallback, so callers only ever deal with the
// database sentinels (ErrDatabaseUnavailable, ErrCannotSerialize,
// ErrDatabase, ...).
package sqldriver
