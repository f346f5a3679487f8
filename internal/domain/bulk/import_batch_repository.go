package bulk

import (
	"context"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// ImportBatchRepository defines the persistence contract for import batches
type ImportBatchRepository interface {
	Save(ctx context.Context, batch *ImportBatch) error
	FindByID(ctx context.Context, id uuid.UUID) (*ImportBatch, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*ImportBatch], error)
	// FindStale finds non-terminal batches, used for recovery after restart
	FindStale(ctx context.Context) ([]*ImportBatch, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
