package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// UserRepository defines the persistence contract for users
type UserRepository interface {
	Save(ctx context.Context, user *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*User], error)
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*User], error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
