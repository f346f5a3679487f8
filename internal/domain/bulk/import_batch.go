// Package bulk tracks staff document imports. A batch is one upload: its rows
// are processed asynchronously and the batch records the outcome per row, so
// staff can review failures and companies get one summary mail per batch.
package bulk

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// BatchStatus represents the status of an import batch
type BatchStatus string

const (
	BatchStatusPending    BatchStatus = "pending"
	BatchStatusProcessing BatchStatus = "processing"
	BatchStatusCompleted  BatchStatus = "completed"
	BatchStatusFailed     BatchStatus = "failed"
	BatchStatusCancelled  BatchStatus = "cancelled"
)

// IsValid checks if the status is valid
func (s BatchStatus) IsValid() bool {
	switch s {
	case BatchStatusPending, BatchStatusProcessing, BatchStatusCompleted,
		BatchStatusFailed, BatchStatusCancelled:
		return true
	}
	return false
}

// IsTerminal returns true if this is a terminal state
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusFailed || s == BatchStatusCancelled
}

// RowError represents a detailed error for a specific row
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column,omitempty"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// ImportBatch tracks one document import run
type ImportBatch struct {
	shared.BaseAggregateRoot
	FileName      string      `gorm:"type:varchar(255);not null"`
	FileSize      int64       `gorm:"not null;default:0"`
	Status        BatchStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	TotalRows     int         `gorm:"not null;default:0"`
	ImportedRows  int         `gorm:"not null;default:0"`
	FailedRows    int         `gorm:"not null;default:0"`
	SkippedRows   int         `gorm:"not null;default:0"` // Duplicate document numbers
	RowErrors     []RowError  `gorm:"-"`
	RowErrorsJSON string      `gorm:"column:row_errors;type:jsonb;default:'[]'"`
	ImportedBy    uuid.UUID   `gorm:"type:uuid;not null;index"`
	StartedAt     *time.Time
	CompletedAt   *time.Time
	NotifiedAt    *time.Time // Summary mails sent
}

// TableName returns the table name for GORM
func (ImportBatch) TableName() string {
	return "import_batches"
}

// NewImportBatch creates a new import batch record
func NewImportBatch(fileName string, fileSize int64, importedBy uuid.UUID) (*ImportBatch, error) {
	if fileName == "" {
		return nil, shared.NewDomainError("INVALID_FILE_NAME", "File name cannot be empty")
	}
	if fileSize < 0 {
		return nil, shared.NewDomainError("INVALID_FILE_SIZE", "File size cannot be negative")
	}
	if importedBy == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_IMPORTER", "Importer cannot be empty")
	}

	return &ImportBatch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		FileName:          fileName,
		FileSize:          fileSize,
		Status:            BatchStatusPending,
		RowErrors:         make([]RowError, 0),
		RowErrorsJSON:     "[]",
		ImportedBy:        importedBy,
	}, nil
}

// StartProcessing marks the batch as started
func (b *ImportBatch) StartProcessing(totalRows int) error {
	if b.Status != BatchStatusPending {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot start processing from state: %s", b.Status))
	}
	if totalRows < 0 {
		return shared.NewDomainError("INVALID_TOTAL_ROWS", "Total rows cannot be negative")
	}

	b.Status = BatchStatusProcessing
	b.TotalRows = totalRows
	now := time.Now()
	b.StartedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}

// Complete marks the batch as finished with the given counts
func (b *ImportBatch) Complete(importedRows, failedRows, skippedRows int, rowErrors []RowError) error {
	if b.Status != BatchStatusProcessing {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot complete from state: %s", b.Status))
	}

	status := BatchStatusCompleted
	if failedRows > 0 && importedRows == 0 {
		status = BatchStatusFailed
	}

	b.Status = status
	b.ImportedRows = importedRows
	b.FailedRows = failedRows
	b.SkippedRows = skippedRows
	b.RowErrors = rowErrors
	now := time.Now()
	b.CompletedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}

// Fail marks the batch as failed outright
func (b *ImportBatch) Fail(rowErrors []RowError) error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot fail from terminal state: %s", b.Status))
	}

	b.Status = BatchStatusFailed
	b.RowErrors = rowErrors
	now := time.Now()
	b.CompletedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}

// Cancel marks the batch as cancelled
func (b *ImportBatch) Cancel() error {
	if b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot cancel from terminal state: %s", b.Status))
	}

	b.Status = BatchStatusCancelled
	now := time.Now()
	b.CompletedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}

// MarkNotified records that the summary mails for this batch went out
func (b *ImportBatch) MarkNotified() error {
	if !b.Status.IsTerminal() {
		return shared.NewDomainError("INVALID_STATE", "Batch has not finished yet")
	}
	if b.NotifiedAt != nil {
		return shared.NewDomainError("ALREADY_NOTIFIED", "Summary mails already sent")
	}

	now := time.Now()
	b.NotifiedAt = &now
	b.UpdatedAt = now
	b.IncrementVersion()

	return nil
}

// IsCompleted returns true if the batch completed (possibly with row errors)
func (b *ImportBatch) IsCompleted() bool {
	return b.Status == BatchStatusCompleted
}

// IsFailed returns true if the batch failed completely
func (b *ImportBatch) IsFailed() bool {
	return b.Status == BatchStatusFailed
}

// HasErrors returns true if any rows failed
func (b *ImportBatch) HasErrors() bool {
	return len(b.RowErrors) > 0
}

// MarshalRowErrors serializes the row errors into the persisted column
func (b *ImportBatch) MarshalRowErrors() error {
	if len(b.RowErrors) == 0 {
		b.RowErrorsJSON = "[]"
		return nil
	}
	data, err := json.Marshal(b.RowErrors)
	if err != nil {
		return fmt.Errorf("failed to marshal row errors: %w", err)
	}
	b.RowErrorsJSON = string(data)
	return nil
}

// UnmarshalRowErrors parses the persisted column back into row errors
func (b *ImportBatch) UnmarshalRowErrors() error {
	if b.RowErrorsJSON == "" || b.RowErrorsJSON == "[]" {
		b.RowErrors = make([]RowError, 0)
		return nil
	}
	var rowErrors []RowError
	if err := json.Unmarshal([]byte(b.RowErrorsJSON), &rowErrors); err != nil {
		return fmt.Errorf("failed to unmarshal row errors: %w", err)
	}
	b.RowErrors = rowErrors
	return nil
}

// SuccessRate returns the imported share as a percentage (0-100)
func (b *ImportBatch) SuccessRate() float64 {
	if b.TotalRows == 0 {
		return 0
	}
	return float64(b.ImportedRows) / float64(b.TotalRows) * 100
}

// Duration returns how long the batch ran
func (b *ImportBatch) Duration() time.Duration {
	if b.StartedAt == nil {
		return 0
	}
	end := time.Now()
	if b.CompletedAt != nil {
		end = *b.CompletedAt
	}
	return end.Sub(*b.StartedAt)
}
