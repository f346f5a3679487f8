package persistence

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// GormSettingRepository implements SettingRepository using GORM
type GormSettingRepository struct {
	db *gorm.DB
}

// NewGormSettingRepository creates a new GormSettingRepository
func NewGormSettingRepository(db *gorm.DB) *GormSettingRepository {
	return &GormSettingRepository{db: db}
}

// Save creates or updates a setting by its key
func (r *GormSettingRepository) Save(ctx context.Context, setting *settings.Setting) error {
	return r.db.WithContext(ctx).Save(setting).Error
}

// FindByKey finds a setting by its key
func (r *GormSettingRepository) FindByKey(ctx context.Context, key string) (*settings.Setting, error) {
	var setting settings.Setting
	if err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &setting, nil
}

// FindAll returns all settings
func (r *GormSettingRepository) FindAll(ctx context.Context) ([]*settings.Setting, error) {
	var all []*settings.Setting
	if err := r.db.WithContext(ctx).
		Order("key ASC").
		Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// Delete deletes a setting by its key
func (r *GormSettingRepository) Delete(ctx context.Context, key string) error {
	result := r.db.WithContext(ctx).Delete(&settings.Setting{}, "key = ?", key)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormEmailTemplateRepository implements EmailTemplateRepository using GORM
type GormEmailTemplateRepository struct {
	db *gorm.DB
}

// NewGormEmailTemplateRepository creates a new GormEmailTemplateRepository
func NewGormEmailTemplateRepository(db *gorm.DB) *GormEmailTemplateRepository {
	return &GormEmailTemplateRepository{db: db}
}

// Save creates or updates a template by its key
func (r *GormEmailTemplateRepository) Save(ctx context.Context, template *settings.EmailTemplate) error {
	return r.db.WithContext(ctx).Save(template).Error
}

// FindByKey finds a template by its key
func (r *GormEmailTemplateRepository) FindByKey(ctx context.Context, key settings.TemplateKey) (*settings.EmailTemplate, error) {
	var template settings.EmailTemplate
	if err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&template).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &template, nil
}

// FindAll returns all templates
func (r *GormEmailTemplateRepository) FindAll(ctx context.Context) ([]*settings.EmailTemplate, error) {
	var all []*settings.EmailTemplate
	if err := r.db.WithContext(ctx).
		Order("key ASC").
		Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}
