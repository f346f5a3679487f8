package directory

import (
	"context"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// CompanyRepository defines the persistence contract for companies
type CompanyRepository interface {
	Save(ctx context.Context, company *Company) error
	FindByID(ctx context.Context, id uuid.UUID) (*Company, error)
	FindByCode(ctx context.Context, code string) (*Company, error)
	FindByEDIPartnerID(ctx context.Context, partnerID string) (*Company, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Company], error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Count(ctx context.Context) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
