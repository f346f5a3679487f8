package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/bulk"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// GormImportBatchRepository implements ImportBatchRepository using GORM.
// Row errors live in a jsonb column; the repository keeps the in-memory
// slice and the column in sync on every load and save.
type GormImportBatchRepository struct {
	db *gorm.DB
}

// NewGormImportBatchRepository creates a new GormImportBatchRepository
func NewGormImportBatchRepository(db *gorm.DB) *GormImportBatchRepository {
	return &GormImportBatchRepository{db: db}
}

// Save creates or updates an import batch
func (r *GormImportBatchRepository) Save(ctx context.Context, batch *bulk.ImportBatch) error {
	if err := batch.MarshalRowErrors(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Save(batch).Error
}

// FindByID finds an import batch by its ID
func (r *GormImportBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*bulk.ImportBatch, error) {
	var batch bulk.ImportBatch
	if err := r.db.WithContext(ctx).First(&batch, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if err := batch.UnmarshalRowErrors(); err != nil {
		return nil, err
	}
	return &batch, nil
}

// FindAll finds all import batches matching the filter
func (r *GormImportBatchRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*bulk.ImportBatch], error) {
	query := r.applyFilterConditions(r.db.WithContext(ctx).Model(&bulk.ImportBatch{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	orderBy := ValidateSortField(filter.OrderBy, ImportBatchSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)

	var batches []*bulk.ImportBatch
	if err := query.
		Order(orderBy + " " + orderDir).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&batches).Error; err != nil {
		return nil, err
	}

	for _, batch := range batches {
		if err := batch.UnmarshalRowErrors(); err != nil {
			return nil, err
		}
	}

	page := shared.NewPaginated(batches, total, filter.Page, filter.Limit())
	return &page, nil
}

// FindStale finds non-terminal batches, used for recovery after restart
func (r *GormImportBatchRepository) FindStale(ctx context.Context) ([]*bulk.ImportBatch, error) {
	var batches []*bulk.ImportBatch
	if err := r.db.WithContext(ctx).
		Where("status IN ?", []bulk.BatchStatus{bulk.BatchStatusPending, bulk.BatchStatusProcessing}).
		Order("created_at ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}

	for _, batch := range batches {
		if err := batch.UnmarshalRowErrors(); err != nil {
			return nil, err
		}
	}
	return batches, nil
}

// Delete deletes an import batch
func (r *GormImportBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&bulk.ImportBatch{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormImportBatchRepository) applyFilterConditions(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("file_name ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "imported_by":
			query = query.Where("imported_by = ?", value)
		}
	}

	return query
}
