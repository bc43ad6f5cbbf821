package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// minioSetupTimeout bounds the connection validation and the bucket
// check performed by NewMinioArea.
const minioSetupTimeout = 30 * time.Second

// MinioArea stores files as objects in an S3-compatible bucket, one
// object per uuid. Errors from the object store are translated to the
// same sentinel errors the SQL area returns, so callers never need to
// know which backend is configured.
type MinioArea struct {
	client  *minio.Client
	bucket  string
	logger  Logger
	buffers *BufferPool
}

// NewMinioArea connects to the object store, validates the credentials
// and makes sure the configured bucket exists, creating it when needed.
func NewMinioArea(cfg MinioConfig, logger Logger) (*MinioArea, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := minio.New(cfg.Connection.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.Connection.AccessKeyID, cfg.Connection.SecretAccessKey, ""),
		Secure: cfg.Connection.UseSSL,
		Region: cfg.Connection.Region,
	})
	if err != nil {
		return nil, translateMinioError(err)
	}

	area := &MinioArea{
		client:  client,
		bucket:  cfg.Connection.Bucket,
		logger:  logger,
		buffers: NewBufferPool(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), minioSetupTimeout)
	defer cancel()

	if err := area.validateConnection(ctx); err != nil {
		logger.Error("failed to validate object store connection", err, map[string]interface{}{
			"endpoint": cfg.Connection.Endpoint,
			"bucket":   cfg.Connection.Bucket,
		})
		return nil, translateMinioError(err)
	}
	if err := area.ensureBucketExists(ctx, cfg.Connection.Region); err != nil {
		logger.Error("failed to verify bucket", err, map[string]interface{}{
			"endpoint": cfg.Connection.Endpoint,
			"bucket":   cfg.Connection.Bucket,
		})
		return nil, translateMinioError(err)
	}

	logger.Info("connected to object store", nil, map[string]interface{}{
		"endpoint": cfg.Connection.Endpoint,
		"bucket":   cfg.Connection.Bucket,
	})
	return area, nil
}

// validateConnection lists the buckets, which needs minimal permissions
// and proves both connectivity and credentials.
func (a *MinioArea) validateConnection(ctx context.Context) error {
	_, err := a.client.ListBuckets(ctx)
	return err
}

func (a *MinioArea) ensureBucketExists(ctx context.Context, region string) error {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return fmt.Errorf("checking bucket %q: %w", a.bucket, err)
	}
	if exists {
		return nil
	}

	a.logger.Info("bucket does not exist, creating it", nil, map[string]interface{}{
		"bucket": a.bucket,
		"region": region,
	})
	return a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{Region: region})
}

// Create implements Area. An existing object with the same uuid is
// overwritten; the index layer never reuses identifiers.
func (a *MinioArea) Create(ctx context.Context, uuid string, content []byte) error {
	_, err := a.client.PutObject(ctx, a.bucket, uuid, bytes.NewReader(content),
		int64(len(content)), minio.PutObjectOptions{})
	if err != nil {
		return translateMinioError(err)
	}
	return nil
}

// ReadWhole implements Area.
func (a *MinioArea) ReadWhole(ctx context.Context, uuid string) ([]byte, error) {
	object, err := a.client.GetObject(ctx, a.bucket, uuid, minio.GetObjectOptions{})
	if err != nil {
		return nil, translateMinioError(err)
	}
	defer a.closeObject(object)

	// GetObject is lazy; Stat issues the request and surfaces a
	// missing key before any read.
	info, err := object.Stat()
	if err != nil {
		return nil, translateMinioError(err)
	}

	content, err := a.readAll(object, info.Size)
	if err != nil {
		return nil, translateMinioError(err)
	}
	return content, nil
}

// ReadRange implements Area. The store clamps a range that overshoots
// the object instead of failing, so the returned length is checked.
func (a *MinioArea) ReadRange(ctx context.Context, uuid string, start, end int64) ([]byte, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}

	options := minio.GetObjectOptions{}
	// SetRange takes an inclusive last offset.
	if err := options.SetRange(start, end-1); err != nil {
		return nil, fmt.Errorf("%w: %v", database.ErrBadParameterType, err)
	}

	object, err := a.client.GetObject(ctx, a.bucket, uuid, options)
	if err != nil {
		return nil, translateMinioError(err)
	}
	defer a.closeObject(object)

	content, err := a.readAll(object, end-start)
	if err != nil {
		return nil, translateMinioError(err)
	}
	if int64(len(content)) != end-start {
		return nil, fmt.Errorf("%w: range [%d, %d) exceeds the stored size",
			database.ErrBadParameterType, start, end)
	}
	return content, nil
}

// Remove implements Area. The object is checked first because S3
// deletes are idempotent and would hide a missing file.
func (a *MinioArea) Remove(ctx context.Context, uuid string) error {
	if _, err := a.client.StatObject(ctx, a.bucket, uuid, minio.StatObjectOptions{}); err != nil {
		return translateMinioError(err)
	}
	if err := a.client.RemoveObject(ctx, a.bucket, uuid, minio.RemoveObjectOptions{}); err != nil {
		return translateMinioError(err)
	}
	return nil
}

// readAll drains the reader through a pooled buffer and returns an
// independent copy that survives buffer reuse.
func (a *MinioArea) readAll(reader io.Reader, sizeHint int64) ([]byte, error) {
	buffer := a.buffers.Get()
	defer a.buffers.Put(buffer)

	buffer.Reset()
	if sizeHint > 0 && buffer.Cap() < int(sizeHint) {
		buffer.Grow(int(sizeHint) - buffer.Cap())
	}
	if _, err := buffer.ReadFrom(reader); err != nil {
		return nil, err
	}

	content := make([]byte, buffer.Len())
	copy(content, buffer.Bytes())
	return content, nil
}

func (a *MinioArea) closeObject(object io.Closer) {
	if err := object.Close(); err != nil {
		a.logger.Warn("failed to close object reader", err)
	}
}
