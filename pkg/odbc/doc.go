// Package odbc provides database access through an ODBC driver manager,
// for engines without a native driver in this module or for deployments
// standardized on ODBC data sources.
//
// ODBC is a transport, not an engine: the configuration names the
// dialect behind it, which selects SQL fragments and catalog queries,
// while the parameter markers stay in ODBC's "?" form regardless of the
// engine. This is the one place where the formatter's two dialects
// diverge.
//
// Transaction isolation is left to the data source configuration, and
// the read-only attribute is enforced client-side only; both belong to
// the driver manager's domain, not ours.
//
// # Basic Usage
//
//	factory, err := odbc.NewFactory(odbc.Config{
//		Connection: odbc.Connection{
//			DSN:     "DSN=dicomdb;UID=dicom;PWD=secret",
//			Dialect: database.DialectPostgreSQL,
//		},
//	}, logger)
package odbc
