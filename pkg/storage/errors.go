package storage

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/minio/minio-go/v7"

	"github.com/pacsforge/dicomdb/pkg/database"
)

// translateMinioError maps object store failures onto the sentinel
// errors the SQL area uses, so Area callers handle a single error
// vocabulary regardless of the configured backend.
func translateMinioError(err error) error {
	if err == nil {
		return nil
	}

	var response minio.ErrorResponse
	if errors.As(err, &response) {
		switch response.Code {
		case "NoSuchKey", "NoSuchBucket":
			return fmt.Errorf("%w: %v", database.ErrInexistentItem, err)
		case "InvalidRange":
			return fmt.Errorf("%w: %v", database.ErrBadParameterType, err)
		default:
			return err
		}
	}

	// Transport failures mean the store is unreachable, the same
	// situation an engine connection loss signals.
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return fmt.Errorf("%w: %v", database.ErrDatabaseUnavailable, err)
	}

	return err
}
