package storage

import (
	"fmt"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// Config selects one storage area and carries its configuration.
// Use one of the helper functions (SQLAreaConfig, MinioAreaConfig) to
// create it.
type Config struct {
	// Type is the area type ("sql" or "minio")
	Type string

	// Minio configuration (used when Type = "minio")
	Minio *MinioConfig
}

// SQLAreaConfig creates a storage.Config for the SQL area, which keeps
// the payloads in the database itself and needs no configuration beyond
// the engine's.
func SQLAreaConfig() Config {
	return Config{Type: "sql"}
}

// MinioAreaConfig creates a storage.Config for the MinIO area.
func MinioAreaConfig(cfg MinioConfig) Config {
	return Config{Type: "minio", Minio: &cfg}
}

// MinioConfig configures the MinIO-backed area.
type MinioConfig struct {
	Connection MinioConnection
}

// MinioConnection contains the MinIO server connection details.
type MinioConnection struct {
	Endpoint        string // MinIO server endpoint, e.g. "localhost:9000"
	AccessKeyID     string // MinIO access key
	SecretAccessKey string // MinIO secret key
	UseSSL          bool   // Use SSL (true for "https", false for "http")
	Bucket          string // Bucket holding the stored files
	Region          string // Region used when the bucket must be created
}

// Validate checks the configuration.
func (c MinioConfig) Validate() error {
	if c.Connection.Endpoint == "" {
		return fmt.Errorf("%w: a MinIO endpoint is required", database.ErrBadParameterType)
	}
	if c.Connection.Bucket == "" {
		return fmt.Errorf("%w: a MinIO bucket name is required", database.ErrBadParameterType)
	}
	return nil
}
