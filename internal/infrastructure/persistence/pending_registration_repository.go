package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// GormPendingRegistrationRepository implements PendingRegistrationRepository using GORM
type GormPendingRegistrationRepository struct {
	db *gorm.DB
}

// NewGormPendingRegistrationRepository creates a new GormPendingRegistrationRepository
func NewGormPendingRegistrationRepository(db *gorm.DB) *GormPendingRegistrationRepository {
	return &GormPendingRegistrationRepository{db: db}
}

// Save creates or updates a registration request
func (r *GormPendingRegistrationRepository) Save(ctx context.Context, reg *identity.PendingRegistration) error {
	return r.db.WithContext(ctx).Save(reg).Error
}

// FindByID finds a registration request by its ID
func (r *GormPendingRegistrationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.PendingRegistration, error) {
	var reg identity.PendingRegistration
	if err := r.db.WithContext(ctx).First(&reg, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &reg, nil
}

// FindAll finds all registration requests matching the filter
func (r *GormPendingRegistrationRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*identity.PendingRegistration], error) {
	query := r.applyFilterConditions(r.db.WithContext(ctx).Model(&identity.PendingRegistration{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, RegistrationSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var regs []*identity.PendingRegistration
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&regs).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(regs, total, filter.Page, filter.Limit())
	return &page, nil
}

// CountPending counts registration requests awaiting review
func (r *GormPendingRegistrationRepository) CountPending(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.PendingRegistration{}).
		Where("status = ?", identity.RegistrationStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsPendingByEmail checks whether an unreviewed request with the email exists
func (r *GormPendingRegistrationRepository) ExistsPendingByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&identity.PendingRegistration{}).
		Where("email = ? AND status = ?", strings.ToLower(strings.TrimSpace(email)), identity.RegistrationStatusPending).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Delete deletes a registration request
func (r *GormPendingRegistrationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&identity.PendingRegistration{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormPendingRegistrationRepository) applyFilterConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("company_name ILIKE ? OR email ILIKE ? OR contact_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		}
	}

	return query
}
