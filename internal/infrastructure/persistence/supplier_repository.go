package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *directory.Supplier) error {
	return r.db.WithContext(ctx).Save(supplier).Error
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Supplier, error) {
	var supplier directory.Supplier
	if err := r.db.WithContext(ctx).First(&supplier, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindByCode finds a supplier by its code. Codes are stored uppercased.
func (r *GormSupplierRepository) FindByCode(ctx context.Context, code string) (*directory.Supplier, error) {
	var supplier directory.Supplier
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindByEDISenderID finds a supplier by the sender identifier carried on
// imported documents
func (r *GormSupplierRepository) FindByEDISenderID(ctx context.Context, senderID string) (*directory.Supplier, error) {
	if senderID == "" {
		return nil, shared.NewDomainError("INVALID_EDI_SENDER_ID", "EDI sender ID cannot be empty")
	}
	var supplier directory.Supplier
	if err := r.db.WithContext(ctx).
		Where("edi_sender_id = ?", senderID).
		First(&supplier).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &supplier, nil
}

// FindAll finds all suppliers matching the filter
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*directory.Supplier], error) {
	query := r.applyFilterConditions(r.db.WithContext(ctx).Model(&directory.Supplier{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, SupplierSortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var suppliers []*directory.Supplier
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&suppliers).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(suppliers, total, filter.Page, filter.Limit())
	return &page, nil
}

// ExistsByCode checks whether a supplier with the code exists
func (r *GormSupplierRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&directory.Supplier{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete deletes a supplier
func (r *GormSupplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&directory.Supplier{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormSupplierRepository) applyFilterConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR edi_sender_id ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "city":
			query = query.Where("city = ?", value)
		case "country":
			query = query.Where("country = ?", value)
		}
	}

	return query
}
