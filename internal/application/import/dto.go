package importapp

import (
	"time"

	"github.com/google/uuid"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/bulk"
)

// StartImportInput contains one uploaded import: the CSV manifest plus the
// document files it references, keyed by file name.
type StartImportInput struct {
	FileName string
	CSVData  []byte
	Files    map[string][]byte
}

// BatchDTO represents an import batch for transfer
type BatchDTO struct {
	ID           uuid.UUID      `json:"id"`
	FileName     string         `json:"file_name"`
	FileSize     int64          `json:"file_size"`
	Status       string         `json:"status"`
	TotalRows    int            `json:"total_rows"`
	ImportedRows int            `json:"imported_rows"`
	FailedRows   int            `json:"failed_rows"`
	SkippedRows  int            `json:"skipped_rows"`
	Errors       []bulk.RowError `json:"errors,omitempty"`
	ImportedBy   uuid.UUID      `json:"imported_by"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

func batchToDTO(b *bulk.ImportBatch) BatchDTO {
	return BatchDTO{
		ID:           b.ID,
		FileName:     b.FileName,
		FileSize:     b.FileSize,
		Status:       string(b.Status),
		TotalRows:    b.TotalRows,
		ImportedRows: b.ImportedRows,
		FailedRows:   b.FailedRows,
		SkippedRows:  b.SkippedRows,
		Errors:       b.RowErrors,
		ImportedBy:   b.ImportedBy,
		StartedAt:    b.StartedAt,
		CompletedAt:  b.CompletedAt,
		CreatedAt:    b.CreatedAt,
	}
}
