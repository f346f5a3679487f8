package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// InvoiceRepository defines the persistence contract for invoices
type InvoiceRepository interface {
	Save(ctx context.Context, invoice *Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*Invoice, error)
	FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*Invoice, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*Invoice], error)
	FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*Invoice, error)
	ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error)
	CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)
	CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// CreditNoteRepository defines the persistence contract for credit notes
type CreditNoteRepository interface {
	Save(ctx context.Context, note *CreditNote) error
	FindByID(ctx context.Context, id uuid.UUID) (*CreditNote, error)
	FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*CreditNote, error)
	FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*CreditNote, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*CreditNote], error)
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*CreditNote], error)
	FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*CreditNote, error)
	ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error)
	CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)
	CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
