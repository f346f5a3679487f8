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

// GormCompanyRepository implements CompanyRepository using GORM
type GormCompanyRepository struct {
	db *gorm.DB
}

// NewGormCompanyRepository creates a new GormCompanyRepository
func NewGormCompanyRepository(db *gorm.DB) *GormCompanyRepository {
	return &GormCompanyRepository{db: db}
}

// Save creates or updates a company
func (r *GormCompanyRepository) Save(ctx context.Context, company *directory.Company) error {
	return r.db.WithContext(ctx).Save(company).Error
}

// FindByID finds a company by its ID
func (r *GormCompanyRepository) FindByID(ctx context.Context, id uuid.UUID) (*directory.Company, error) {
	var company directory.Company
	if err := r.db.WithContext(ctx).First(&company, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// FindByCode finds a company by its code. Codes are stored uppercased.
func (r *GormCompanyRepository) FindByCode(ctx context.Context, code string) (*directory.Company, error) {
	var company directory.Company
	if err := r.db.WithContext(ctx).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// FindByEDIPartnerID finds a company by the receiver identifier carried on
// imported documents
func (r *GormCompanyRepository) FindByEDIPartnerID(ctx context.Context, partnerID string) (*directory.Company, error) {
	if partnerID == "" {
		return nil, shared.NewDomainError("INVALID_EDI_PARTNER_ID", "EDI partner ID cannot be empty")
	}
	var company directory.Company
	if err := r.db.WithContext(ctx).
		Where("edi_partner_id = ?", partnerID).
		First(&company).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &company, nil
}

// FindAll finds all companies matching the filter
func (r *GormCompanyRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*directory.Company], error) {
	query := r.applyFilterConditions(r.db.WithContext(ctx).Model(&directory.Company{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, CompanySortFields, "name")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var companies []*directory.Company
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&companies).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(companies, total, filter.Page, filter.Limit())
	return &page, nil
}

// ExistsByCode checks whether a company with the code exists
func (r *GormCompanyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&directory.Company{}).
		Where("code = ?", strings.ToUpper(strings.TrimSpace(code))).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Count counts all companies
func (r *GormCompanyRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&directory.Company{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Delete deletes a company
func (r *GormCompanyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&directory.Company{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormCompanyRepository) applyFilterConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ? OR email ILIKE ? OR edi_partner_id ILIKE ?",
			searchPattern, searchPattern, searchPattern, searchPattern)
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
