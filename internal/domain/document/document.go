// Package document holds the invoice and credit note aggregates. Documents
// arrive through staff imports, belong to exactly one company, reference the
// issuing supplier and carry the stored file alongside the structured header
// data shown in listings.
package document

import (
	"strings"
	"time"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Kind distinguishes the two document types sharing the portal's
// listing, download and retention machinery.
type Kind string

const (
	KindInvoice    Kind = "invoice"
	KindCreditNote Kind = "credit_note"
)

// Status represents a document's lifecycle on the portal
type Status string

const (
	StatusAvailable Status = "available" // Visible and downloadable
	StatusArchived  Status = "archived"  // Hidden from company users, staff only
	StatusExpired   Status = "expired"   // Past retention, file purged
)

// StoredFile describes the uploaded document file
type StoredFile struct {
	StorageKey  string `gorm:"type:varchar(500);not null"` // Object key in the document store
	FileName    string `gorm:"type:varchar(255);not null"`
	ContentType string `gorm:"type:varchar(100);not null;default:'application/pdf'"`
	FileSize    int64  `gorm:"not null;default:0"`
	Checksum    string `gorm:"type:varchar(64)"` // SHA-256 hex of the file content
}

// Validate checks the stored file metadata
func (f StoredFile) Validate() error {
	if strings.TrimSpace(f.StorageKey) == "" {
		return shared.NewDomainError("INVALID_FILE", "Storage key cannot be empty")
	}
	if strings.TrimSpace(f.FileName) == "" {
		return shared.NewDomainError("INVALID_FILE", "File name cannot be empty")
	}
	if f.FileSize < 0 {
		return shared.NewDomainError("INVALID_FILE", "File size cannot be negative")
	}

	return nil
}

func validateDocumentNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot be empty")
	}
	if len(number) > 100 {
		return shared.NewDomainError("INVALID_DOCUMENT_NUMBER", "Document number cannot exceed 100 characters")
	}

	return nil
}

func validateCurrency(currency string) error {
	if len(currency) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be a 3-letter ISO code")
	}
	if currency != strings.ToUpper(currency) {
		return shared.NewDomainError("INVALID_CURRENCY", "Currency must be uppercase")
	}

	return nil
}

// retentionExpiry computes the purge deadline from the issue date.
// A zero retention means documents never expire.
func retentionExpiry(issueDate time.Time, retention time.Duration) *time.Time {
	if retention <= 0 {
		return nil
	}
	expiry := issueDate.Add(retention)
	return &expiry
}
