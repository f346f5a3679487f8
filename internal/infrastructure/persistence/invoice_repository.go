package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// Save creates or updates an invoice
func (r *GormInvoiceRepository) Save(ctx context.Context, invoice *document.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

// FindByID finds an invoice by its ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.Invoice, error) {
	var invoice document.Invoice
	if err := r.db.WithContext(ctx).First(&invoice, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByIDForCompany finds an invoice by ID within a company. Company users
// can never reach another company's documents through this lookup.
func (r *GormInvoiceRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*document.Invoice, error) {
	var invoice document.Invoice
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindByNumber finds an invoice by its number within a company and supplier
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*document.Invoice, error) {
	var invoice document.Invoice
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND supplier_id = ? AND invoice_number = ?", companyID, supplierID, number).
		First(&invoice).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

// FindAll finds all invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*document.Invoice], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&document.Invoice{}), filter)
}

// FindByCompanyID finds invoices belonging to a company
func (r *GormInvoiceRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*document.Invoice], error) {
	query := r.db.WithContext(ctx).Model(&document.Invoice{}).Where("company_id = ?", companyID)
	return r.findPage(ctx, query, filter)
}

// FindPastRetention finds available or archived invoices whose retention
// deadline has passed, oldest first
func (r *GormInvoiceRepository) FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*document.Invoice, error) {
	var invoices []*document.Invoice
	if err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ? AND status <> ?", asOf, document.StatusExpired).
		Order("expires_at ASC").
		Limit(limit).
		Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

// ExistsByNumber checks whether an invoice number exists for a company and supplier
func (r *GormInvoiceRepository) ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&document.Invoice{}).
		Where("company_id = ? AND supplier_id = ? AND invoice_number = ?", companyID, supplierID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCompanyID counts invoices belonging to a company
func (r *GormInvoiceRepository) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&document.Invoice{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountUnreadByCompanyID counts available invoices never opened by a company user
func (r *GormInvoiceRepository) CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&document.Invoice{}).
		Where("company_id = ? AND status = ? AND first_viewed_at IS NULL", companyID, document.StatusAvailable).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete deletes an invoice
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.Invoice{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormInvoiceRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*document.Invoice], error) {
	query = r.applyFilterConditions(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "issue_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var invoices []*document.Invoice
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&invoices).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(invoices, total, filter.Page, filter.Limit())
	return &page, nil
}

func (r *GormInvoiceRepository) applyFilterConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("invoice_number ILIKE ? OR order_number ILIKE ? OR delivery_note_number ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "issued_from":
			query = query.Where("issue_date >= ?", value)
		case "issued_to":
			query = query.Where("issue_date < ?", value)
		case "unread":
			if value == true {
				query = query.Where("first_viewed_at IS NULL")
			}
		case "import_batch_id":
			query = query.Where("import_batch_id = ?", value)
		}
	}

	return query
}
