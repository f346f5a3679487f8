package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// SupplierRepository defines the persistence contract for suppliers
type SupplierRepository interface {
	Save(ctx context.Context, supplier *Supplier) error
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	FindByCode(ctx context.Context, code string) (*Supplier, error)
	FindByEDISenderID(ctx context.Context, senderID string) (*Supplier, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Supplier], error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
