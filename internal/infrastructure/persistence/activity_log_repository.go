package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// GormActivityLogRepository implements ActivityLogRepository using GORM
type GormActivityLogRepository struct {
	db *gorm.DB
}

// NewGormActivityLogRepository creates a new GormActivityLogRepository
func NewGormActivityLogRepository(db *gorm.DB) *GormActivityLogRepository {
	return &GormActivityLogRepository{db: db}
}

// Save appends a log entry
func (r *GormActivityLogRepository) Save(ctx context.Context, log *activity.ActivityLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// FindByID finds a log entry by its ID
func (r *GormActivityLogRepository) FindByID(ctx context.Context, id uuid.UUID) (*activity.ActivityLog, error) {
	var entry activity.ActivityLog
	if err := r.db.WithContext(ctx).First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &entry, nil
}

// FindAll finds all log entries matching the filter
func (r *GormActivityLogRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	return r.findPage(ctx, r.db.WithContext(ctx).Model(&activity.ActivityLog{}), filter)
}

// FindByCompanyID finds log entries in a company's context
func (r *GormActivityLogRepository) FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	query := r.db.WithContext(ctx).Model(&activity.ActivityLog{}).Where("company_id = ?", companyID)
	return r.findPage(ctx, query, filter)
}

// FindByUserID finds log entries recorded for a user
func (r *GormActivityLogRepository) FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	query := r.db.WithContext(ctx).Model(&activity.ActivityLog{}).Where("user_id = ?", userID)
	return r.findPage(ctx, query, filter)
}

// DeleteOlderThan removes entries created before the cutoff. Returns the
// number of rows deleted.
func (r *GormActivityLogRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&activity.ActivityLog{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *GormActivityLogRepository) findPage(ctx context.Context, query *gorm.DB, filter shared.Filter) (*shared.Paginated[*activity.ActivityLog], error) {
	query = r.applyFilterConditions(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ActivityLogSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var entries []*activity.ActivityLog
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&entries).Error; err != nil {
		return nil, err
	}

	page := shared.NewPaginated(entries, total, filter.Page, filter.Limit())
	return &page, nil
}

func (r *GormActivityLogRepository) applyFilterConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("user_email ILIKE ? OR detail ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "action":
			query = query.Where("action = ?", value)
		case "user_id":
			query = query.Where("user_id = ?", value)
		case "company_id":
			query = query.Where("company_id = ?", value)
		case "target_type":
			query = query.Where("target_type = ?", value)
		case "target_id":
			query = query.Where("target_id = ?", value)
		case "from":
			query = query.Where("created_at >= ?", value)
		case "to":
			query = query.Where("created_at < ?", value)
		}
	}

	return query
}
