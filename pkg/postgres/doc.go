// Package postgres provides the PostgreSQL engine, on top of pgx in
// database/sql compatibility mode.
//
// The engine honors both transaction attributes: explicit transactions
// run at the serializable isolation level, and read-only transactions
// are declared to the server, which then rejects writes with SQLSTATE
// 25006 regardless of what the client promised.
//
// Statements are formatted with numbered markers ($1, $2, ...), the
// native PostgreSQL style, so no rewriting happens between the
// formatter and the wire.
//
// # Basic Usage
//
//	factory, err := postgres.NewFactory(postgres.Config{
//		Connection: postgres.Connection{
//			Host:    "localhost",
//			User:    "dicom",
//			DbName:  "dicomdb",
//			SSLMode: "disable",
//		},
//	}, logger)
//	if err != nil {
//		return err
//	}
//	manager := database.NewManager(factory, logger)
//	defer manager.Close()
package postgres
