// Package mssql provides the SQL Server engine, on top of go-mssqldb.
//
// Two deviations from the other engines, both absorbed below this
// package so callers never see them:
//
//   - go-mssqldb refuses "?" markers, so statements are rewritten to
//     ordinal @p1..@pN form before preparation. Binding stays
//     positional; parameter names never reach the server.
//   - The driver rejects the read-only transaction attribute, so
//     read-only transactions are enforced client-side only, like on
//     SQLite.
//
// The empty table-key fragment in autoincrement inserts comes from the
// formatter: an IDENTITY column must not be mentioned in VALUES at all,
// not even as NULL or DEFAULT.
package mssql
