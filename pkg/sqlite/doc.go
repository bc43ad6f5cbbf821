// Package sqlite glues the engine core to SQLite through
// github.com/mattn/go-sqlite3.
//
// SQLite is the zero-configuration engine: a file path or in-memory
// mode, no server. It is also the engine with two deliberate deviations
// from the common behavior: the read-only transaction attribute is not
// forwarded to the driver (SQLite has a single writer, the hint is
// meaningless and the driver rejects it), and a locked database reports
// a transaction collision rather than an unavailable database, because
// the lock holder is just another local writer.
//
// # Basic Usage
//
//	factory, err := sqlite.NewFactory(sqlite.Config{
//	    Connection: sqlite.Connection{
//	        Path:        "/var/lib/pacs/index.db",
//	        BusyTimeout: 5 * time.Second,
//	        ForeignKeys: true,
//	        WAL:         true,
//	    },
//	}, log)
//	if err != nil {
//	    return err
//	}
//
//	manager := database.NewManager(factory, log)
//	defer manager.Close()
//
// In-memory databases suit tests:
//
//	factory, err := sqlite.NewFactory(sqlite.Config{
//	    Connection: sqlite.Connection{InMemory: true},
//	}, log)
package sqlite
