package index

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/mock/gomock"

	"github.com/pacsforge/dicomdb/pkg/database"
	"github.com/pacsforge/dicomdb/pkg/sqlite"
)

func newMockLogger(t *testing.T) *database.MockLogger {
	ctrl := gomock.NewController(t)
	mockLogger := database.NewMockLogger(ctrl)
	mockLogger.EXPECT().Info(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Error(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Debug(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Warn(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	mockLogger.EXPECT().Fatal(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()
	return mockLogger
}

func newTestBackend(t *testing.T, opts ...BackendOption) *Backend {
	t.Helper()

	factory, err := sqlite.NewFactory(sqlite.Config{
		Connection: sqlite.Connection{InMemory: true, ForeignKeys: true},
	}, newMockLogger(t))
	require.NoError(t, err)

	manager := database.NewManager(factory, newMockLogger(t))
	t.Cleanup(func() { manager.Close() })

	backend, err := NewBackend(manager, newMockLogger(t), opts...)
	require.NoError(t, err)
	require.NoError(t, backend.Open(context.Background()))
	return backend
}

// createResource commits one root resource and returns its internal
// identifier.
func createResource(t *testing.T, backend *Backend, publicID string, resourceType ResourceType) int64 {
	t.Helper()

	var internalID int64
	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			var err error
			internalID, err = tx.CreateResource(context.Background(), publicID, resourceType)
			return err
		}))
	return internalID
}

func TestResourceTypeString(t *testing.T) {
	assert.Equal(t, "patient", ResourcePatient.String())
	assert.Equal(t, "instance", ResourceInstance.String())
	assert.Equal(t, "resource-type(99)", ResourceType(99).String())
	assert.True(t, ResourceSeries.Valid())
	assert.False(t, ResourceType(99).Valid())
}

func TestOpenIsIdempotent(t *testing.T) {
	backend := newTestBackend(t)
	require.NoError(t, backend.Open(context.Background()))

	conn, err := backend.manager.Connection(context.Background())
	require.NoError(t, err)

	for _, table := range []string{"resources", "metadata", "attachedfiles", "deletedfiles"} {
		exists, err := conn.DoesTableExist(context.Background(), table)
		require.NoError(t, err)
		assert.True(t, exists, table)
	}

	exists, err := conn.DoesIndexExist(context.Background(), "UniquePublicId")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = conn.DoesTriggerExist(context.Background(), "AttachedFileDeleted")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCreateAndLookupResource(t *testing.T) {
	backend := newTestBackend(t)
	study := createResource(t, backend, "1.2.840.113619.2.1", ResourceStudy)
	assert.Greater(t, study, int64(0))

	err := backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			internalID, resourceType, err := tx.LookupResource(context.Background(), "1.2.840.113619.2.1")
			require.NoError(t, err)
			assert.Equal(t, study, internalID)
			assert.Equal(t, ResourceStudy, resourceType)

			publicID, err := tx.GetPublicID(context.Background(), study)
			require.NoError(t, err)
			assert.Equal(t, "1.2.840.113619.2.1", publicID)

			exists, err := tx.IsExistingResource(context.Background(), study)
			require.NoError(t, err)
			assert.True(t, exists)

			_, _, err = tx.LookupResource(context.Background(), "no-such-resource")
			assert.ErrorIs(t, err, database.ErrInexistentItem)

			_, err = tx.GetPublicID(context.Background(), study+1000)
			assert.ErrorIs(t, err, database.ErrInexistentItem)
			return nil
		})
	require.NoError(t, err)
}

func TestCreateResourceRejectsInvalidType(t *testing.T) {
	backend := newTestBackend(t)

	err := backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			_, err := tx.CreateResource(context.Background(), "junk", ResourceType(99))
			return err
		})
	assert.ErrorIs(t, err, database.ErrBadParameterType)
}

func TestDuplicatePublicIdentifier(t *testing.T) {
	backend := newTestBackend(t)
	createResource(t, backend, "duplicated", ResourcePatient)

	err := backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			_, err := tx.CreateResource(context.Background(), "duplicated", ResourceStudy)
			return err
		})
	assert.ErrorIs(t, err, database.ErrDatabase)
}

func TestResourceHierarchy(t *testing.T) {
	backend := newTestBackend(t)
	patient := createResource(t, backend, "patient", ResourcePatient)
	studyA := createResource(t, backend, "study-a", ResourceStudy)
	studyB := createResource(t, backend, "study-b", ResourceStudy)
	series := createResource(t, backend, "series", ResourceSeries)

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			if err := tx.AttachChild(context.Background(), patient, studyA); err != nil {
				return err
			}
			if err := tx.AttachChild(context.Background(), patient, studyB); err != nil {
				return err
			}
			return tx.AttachChild(context.Background(), studyA, series)
		}))

	err := backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			children, err := tx.GetChildrenPublicIDs(context.Background(), patient)
			require.NoError(t, err)
			assert.Equal(t, []string{"study-a", "study-b"}, children)

			children, err = tx.GetChildrenPublicIDs(context.Background(), series)
			require.NoError(t, err)
			assert.Empty(t, children)
			return nil
		})
	require.NoError(t, err)

	// Deleting the patient takes the whole subtree with it.
	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.DeleteResource(context.Background(), patient)
		}))

	err = backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			for _, internalID := range []int64{patient, studyA, studyB, series} {
				exists, err := tx.IsExistingResource(context.Background(), internalID)
				require.NoError(t, err)
				assert.False(t, exists)
			}
			return nil
		})
	require.NoError(t, err)
}

func TestAttachChildToMissingParent(t *testing.T) {
	backend := newTestBackend(t)
	study := createResource(t, backend, "orphan", ResourceStudy)

	err := backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.AttachChild(context.Background(), study+1000, study)
		})
	assert.ErrorIs(t, err, database.ErrDatabase,
		"attaching to an inexistent parent must violate the foreign key")
}

func TestDeleteMissingResource(t *testing.T) {
	backend := newTestBackend(t)

	err := backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.DeleteResource(context.Background(), 12345)
		})
	assert.ErrorIs(t, err, database.ErrInexistentItem)
}

func TestMetadataLifecycle(t *testing.T) {
	backend := newTestBackend(t)
	study := createResource(t, backend, "study", ResourceStudy)
	const metadataType = int32(4) // e.g. the modality

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.SetMetadata(context.Background(), study, metadataType, "CT")
		}))

	// Overwriting replaces the previous value.
	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.SetMetadata(context.Background(), study, metadataType, "MR")
		}))

	err := backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			value, err := tx.LookupMetadata(context.Background(), study, metadataType)
			require.NoError(t, err)
			assert.Equal(t, "MR", value)

			_, err = tx.LookupMetadata(context.Background(), study, metadataType+1)
			assert.ErrorIs(t, err, database.ErrInexistentItem)
			return nil
		})
	require.NoError(t, err)

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.DeleteMetadata(context.Background(), study, metadataType)
		}))

	err = backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			_, err := tx.LookupMetadata(context.Background(), study, metadataType)
			assert.ErrorIs(t, err, database.ErrInexistentItem)
			return nil
		})
	require.NoError(t, err)
}

func TestAttachmentLifecycle(t *testing.T) {
	backend := newTestBackend(t)
	instance := createResource(t, backend, "instance", ResourceInstance)

	stored := Attachment{
		FileType:         1,
		UUID:             "7f27ed60-2b4a-4a6c-9f28-d2cf54da93c5",
		CompressedSize:   512,
		UncompressedSize: 2048,
		CompressionType:  1,
	}

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.AddAttachment(context.Background(), instance, stored)
		}))

	// One attachment per file type.
	err := backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			return tx.AddAttachment(context.Background(), instance, stored)
		})
	assert.ErrorIs(t, err, database.ErrDatabase)

	err = backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			attachment, err := tx.LookupAttachment(context.Background(), instance, stored.FileType)
			require.NoError(t, err)
			assert.Equal(t, stored, attachment)

			_, err = tx.LookupAttachment(context.Background(), instance, stored.FileType+1)
			assert.ErrorIs(t, err, database.ErrInexistentItem)
			return nil
		})
	require.NoError(t, err)

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			if err := tx.DeleteAttachment(context.Background(), instance, stored.FileType); err != nil {
				return err
			}
			uuids, err := tx.PopDeletedFiles(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{stored.UUID}, uuids,
				"the trigger must record the removed attachment")
			return nil
		}))

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			uuids, err := tx.PopDeletedFiles(context.Background())
			require.NoError(t, err)
			assert.Empty(t, uuids, "the list must be drained by the previous pop")
			return nil
		}))
}

func TestDeleteResourceReportsCascadedAttachments(t *testing.T) {
	backend := newTestBackend(t)
	series := createResource(t, backend, "series", ResourceSeries)
	instance := createResource(t, backend, "instance", ResourceInstance)

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			if err := tx.AttachChild(context.Background(), series, instance); err != nil {
				return err
			}
			return tx.AddAttachment(context.Background(), instance, Attachment{
				FileType:         1,
				UUID:             "cascaded-uuid",
				CompressedSize:   10,
				UncompressedSize: 10,
			})
		}))

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			if err := tx.DeleteResource(context.Background(), series); err != nil {
				return err
			}
			uuids, err := tx.PopDeletedFiles(context.Background())
			require.NoError(t, err)
			assert.Equal(t, []string{"cascaded-uuid"}, uuids,
				"deleting an ancestor must surface the attachment for cleanup")
			return nil
		}))
}

func TestDroppedTransactionRollsBack(t *testing.T) {
	backend := newTestBackend(t)
	study := createResource(t, backend, "survivor", ResourceStudy)

	func() {
		tx, err := backend.Begin(context.Background(), database.TransactionReadWrite)
		require.NoError(t, err)
		defer tx.Close()

		require.NoError(t, tx.DeleteResource(context.Background(), study))
		// No commit: leaving the scope must undo the delete.
	}()

	err := backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			exists, err := tx.IsExistingResource(context.Background(), study)
			require.NoError(t, err)
			assert.True(t, exists, "the delete was never committed")
			return nil
		})
	require.NoError(t, err)
}

func TestRunTransactionRollsBackOnError(t *testing.T) {
	backend := newTestBackend(t)
	boom := errors.New("application failure")

	err := backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			if _, err := tx.CreateResource(context.Background(), "doomed", ResourceStudy); err != nil {
				return err
			}
			return boom
		})
	assert.ErrorIs(t, err, boom, "the callback's error must surface untouched")

	err = backend.RunTransaction(context.Background(), database.TransactionReadOnly,
		func(tx *Transaction) error {
			_, _, err := tx.LookupResource(context.Background(), "doomed")
			assert.ErrorIs(t, err, database.ErrInexistentItem)
			return nil
		})
	require.NoError(t, err)
}

func TestRunTransactionImplicit(t *testing.T) {
	backend := newTestBackend(t)
	study := createResource(t, backend, "study", ResourceStudy)

	// A single statement fits an implicit transaction.
	err := backend.RunTransaction(context.Background(), database.TransactionImplicit,
		func(tx *Transaction) error {
			exists, err := tx.IsExistingResource(context.Background(), study)
			require.NoError(t, err)
			assert.True(t, exists)
			return nil
		})
	require.NoError(t, err)

	// A second statement does not.
	err = backend.RunTransaction(context.Background(), database.TransactionImplicit,
		func(tx *Transaction) error {
			if _, err := tx.IsExistingResource(context.Background(), study); err != nil {
				return err
			}
			_, err := tx.IsExistingResource(context.Background(), study)
			return err
		})
	assert.ErrorIs(t, err, database.ErrBadSequenceOfCalls)
}

func TestOperationsOnCompletedTransaction(t *testing.T) {
	backend := newTestBackend(t)

	tx, err := backend.Begin(context.Background(), database.TransactionReadWrite)
	require.NoError(t, err)
	require.NoError(t, tx.Commit())

	_, err = tx.CreateResource(context.Background(), "late", ResourceStudy)
	assert.ErrorIs(t, err, database.ErrBadSequenceOfCalls)

	_, err = tx.IsExistingResource(context.Background(), 1)
	assert.ErrorIs(t, err, database.ErrBadSequenceOfCalls)
}

func TestStatementsCompiledOncePerOperation(t *testing.T) {
	backend := newTestBackend(t)
	createResource(t, backend, "first", ResourceStudy)
	createResource(t, backend, "second", ResourceStudy)

	stats := backend.manager.Stats()
	assert.Equal(t, 2, stats.StatementsCompiled, "insert and identity read, compiled once each")
	assert.Equal(t, 2, stats.CacheHits, "the second create must reuse both statements")
	assert.Equal(t, 4, stats.StatementsExecuted)
}

type fakeTracer struct {
	started []string
	errors  []error
}

func (f *fakeTracer) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	f.started = append(f.started, name)
	span := noop.Span{}
	return trace.ContextWithSpan(ctx, span), span
}

func (f *fakeTracer) RecordErrorOnSpan(span trace.Span, err error) {
	f.errors = append(f.errors, err)
}

func TestRunTransactionTracing(t *testing.T) {
	tracer := &fakeTracer{}
	backend := newTestBackend(t, WithTracer(tracer))

	require.NoError(t, backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error {
			_, err := tx.CreateResource(context.Background(), "traced", ResourceStudy)
			return err
		}))
	assert.Equal(t, []string{"index.transaction"}, tracer.started)
	assert.Empty(t, tracer.errors)

	boom := errors.New("traced failure")
	err := backend.RunTransaction(context.Background(), database.TransactionReadWrite,
		func(tx *Transaction) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.Len(t, tracer.errors, 1)
	assert.ErrorIs(t, tracer.errors[0], boom)
}
