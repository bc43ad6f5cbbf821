// Package index stores the DICOM resource hierarchy in a relational
// database: patients own studies, studies own series, series own
// instances. Each resource carries typed metadata entries and
// attachment records pointing into a storage area.
//
// The package is a client of the database package: it declares its
// whole statement set once, runs everything through managed
// transactions, and works unchanged on SQLite, PostgreSQL, MySQL and
// SQL Server. The schema differs per dialect only where the engines
// force it to (identity columns, foreign keys, triggers).
//
// Deleting a resource removes its whole subtree. The UUIDs of the
// attachments dropped along the way are collected in the deletedfiles
// table; PopDeletedFiles drains that table so the caller can remove the
// payloads from the storage area after the transaction committed.
//
// # Basic Usage
//
//	backend, err := index.NewBackend(manager, log)
//	if err != nil {
//	    return err
//	}
//	if err := backend.Open(ctx); err != nil {
//	    return err
//	}
//
//	var study int64
//	err = backend.RunTransaction(ctx, database.TransactionReadWrite,
//	    func(tx *index.Transaction) error {
//	        var err error
//	        study, err = tx.CreateResource(ctx, "1.2.840.113619.2.1", index.ResourceStudy)
//	        return err
//	    })
package index
