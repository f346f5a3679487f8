// Package storage holds the document files behind the portal. Invoices and
// credit notes arrive as PDFs during import and are served back to company
// users either through presigned URLs (S3 driver) or streamed from disk
// (local driver).
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Common errors
var (
	ErrEmptyStorageKey    = errors.New("storage key is required")
	ErrObjectNotFound     = errors.New("object not found")
	ErrPresignUnsupported = errors.New("driver does not support presigned URLs")
)

// DocumentStorage stores and retrieves document files by storage key.
type DocumentStorage interface {
	// Upload stores data under the key, overwriting any existing object.
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error

	// Download returns the object's content.
	Download(ctx context.Context, storageKey string) ([]byte, error)

	// Delete removes the object. Deleting a missing object is not an error.
	Delete(ctx context.Context, storageKey string) error

	// Exists reports whether the object is present.
	Exists(ctx context.Context, storageKey string) (bool, error)

	// PresignDownloadURL returns a time-limited download URL with a
	// content-disposition filename. Drivers without presign support
	// return ErrPresignUnsupported; callers then stream via Download.
	PresignDownloadURL(ctx context.Context, storageKey, fileName string, expiresIn time.Duration) (string, time.Time, error)
}

// DocumentKey builds the storage key for a document file. Keys are grouped
// by company so retention sweeps and audits can list per company.
// Layout: documents/<company-id>/<kind>/<document-id>.pdf
func DocumentKey(companyID, documentID uuid.UUID, kind string) string {
	return fmt.Sprintf("documents/%s/%s/%s.pdf", companyID, kind, documentID)
}
