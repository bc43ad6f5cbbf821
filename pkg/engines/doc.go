// Package engines selects a database engine from configuration, for
// deployments where the engine is an operator's choice rather than a
// build-time decision.
//
// # Basic Usage
//
//	factory, err := engines.NewFactory(engines.SQLiteConfig(sqlite.Config{
//		Connection: sqlite.Connection{Path: "/var/lib/dicomdb/index.db"},
//	}), logger)
//	if err != nil {
//		return err
//	}
//	manager := database.NewManager(factory, logger)
//	defer manager.Close()
package engines
