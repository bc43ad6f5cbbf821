// Package storage keeps the DICOM files themselves, addressed by the
// uuids the index records in its attachment table.
//
// Two interchangeable backends implement the Area interface:
//
//   - SQLArea stores each file as a blob in the relational database,
//     which keeps small deployments down to a single service and makes
//     file writes transactional.
//   - MinioArea stores each file as an object in an S3-compatible
//     bucket, for deployments where the image volume outgrows the
//     database.
//
// Both backends speak the same error vocabulary: a missing uuid is
// database.ErrInexistentItem and an out-of-bounds range request is
// database.ErrBadParameterType, whichever backend is configured.
//
// Basic Usage:
//
//	factory, _ := sqlite.NewFactory(cfg, log)
//	area, err := storage.NewArea(storage.SQLAreaConfig(), factory, log)
//	if err != nil {
//		return err
//	}
//	if openable, ok := area.(storage.Openable); ok {
//		if err := openable.Open(ctx); err != nil {
//			return err
//		}
//	}
//
//	if err := area.Create(ctx, uuid, dicomBytes); err != nil {
//		return err
//	}
//	header, err := area.ReadRange(ctx, uuid, 0, 132)
//
// FX Module Integration:
//
//	app := fx.New(
//		logger.FXModule,
//		engines.FXModule,
//		storage.FXModule, // opens the area at startup, closes it at shutdown
//		// ... other modules
//	)
//	app.Run()
package storage
