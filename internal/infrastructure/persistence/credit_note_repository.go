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

// GormCreditNoteRepository implements CreditNoteRepository using GORM
type GormCreditNoteRepository struct {
	db *gorm.DB
}

// NewGormCreditNoteRepository creates a new GormCreditNoteRepository
func NewGormCreditNoteRepository(db *gorm.DB) *GormCreditNoteRepository {
	return &GormCreditNoteRepository{db: db}
}

// Save creates or updates a credit note
func (r *GormCreditNoteRepository) Save(ctx context.Context, note *document.CreditNote) error {
	return r.db.WithContext(ctx).Save(note).Error
}

// FindByID finds a credit note by its ID
func (r *GormCreditNoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*document.CreditNote, error) {
	var note document.CreditNote
	if err := r.db.WithContext(ctx).First(&note, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindByIDForCompany finds a credit note by ID within a company
func (r *GormCreditNoteRepository) FindByIDForCompany(ctx context.Context, companyID, id uuid.UUID) (*document.CreditNote, error) {
	var note document.CreditNote
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND id = ?", companyID, id).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindByNumber finds a credit note by its number within a company and supplier
func (r *GormCreditNoteRepository) FindByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (*document.CreditNote, error) {
	var note document.CreditNote
	if err := r.db.WithContext(ctx).
		Where("company_id = ? AND supplier_id = ? AND credit_note_number = ?", companyID, supplierID, number).
		First(&note).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &note, nil
}

// FindAll finds all credit notes matching the filter
func (r *GormCreditNoteRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*document.CreditNote], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&document.CreditNote{}), filter)
}

// FindByCompanyID finds credit notes belonging to a company
func (r *GormCreditNoteRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*document.CreditNote], error) {
	query := r.db.WithContext(ctx).Model(&document.CreditNote{}).Where("company_id = ?", companyID)
	return r.findPage(ctx, query, filter)
}

// FindPastRetention finds credit notes whose retention deadline has passed,
// oldest first
func (r *GormCreditNoteRepository) FindPastRetention(ctx context.Context, asOf time.Time, limit int) ([]*document.CreditNote, error) {
	var notes []*document.CreditNote
	if err := r.db.WithContext(ctx).
		Where("expires_at IS NOT NULL AND expires_at <= ? AND status <> ?", asOf, document.StatusExpired).
		Order("expires_at ASC").
		Limit(limit).
		Find(&notes).Error; err != nil {
		return nil, err
	}
	return notes, nil
}

// ExistsByNumber checks whether a credit note number exists for a company and supplier
func (r *GormCreditNoteRepository) ExistsByNumber(ctx context.Context, companyID, supplierID uuid.UUID, number string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&document.CreditNote{}).
		Where("company_id = ? AND supplier_id = ? AND credit_note_number = ?", companyID, supplierID, number).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountByCompanyID counts credit notes belonging to a company
func (r *GormCreditNoteRepository) CountByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&document.CreditNote{}).
		Where("company_id = ?", companyID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountUnreadByCompanyID counts available credit notes never opened by a company user
func (r *GormCreditNoteRepository) CountUnreadByCompanyID(ctx context.Context, companyID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&document.CreditNote{}).
		Where("company_id = ? AND status = ? AND first_viewed_at IS NULL", companyID, document.StatusAvailable).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete deletes a credit note
func (r *GormCreditNoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&document.CreditNote{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCreditNoteRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*document.CreditNote], error) {
	query = r.applyFilterConditions(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CreditNoteSortFields, "issue_date")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var notes []*document.CreditNote
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&notes).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(notes, total, filter.Page, filter.Limit())
	return &page, nil
}

func (r *GormCreditNoteRepository) applyFilterConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("credit_note_number ILIKE ? OR invoice_number ILIKE ?",
			searchPattern, searchPattern)
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
