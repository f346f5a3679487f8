package settings

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// policyCacheTTL bounds how stale the cached policies can get. The login
// monitor reads the security policy on every failed login, so the typed
// views are served from memory instead of hitting the database each time.
const policyCacheTTL = time.Minute

var knownKeys = map[string]bool{
	settings.KeyMaxFailedAttempts:       true,
	settings.KeyLockDurationMinutes:     true,
	settings.KeyAlertThreshold:          true,
	settings.KeyAlertWindowMinutes:      true,
	settings.KeyAlertRecipients:         true,
	settings.KeyInvoiceRetentionDays:    true,
	settings.KeyCreditNoteRetentionDays: true,
	settings.KeyActivityRetentionDays:   true,
	settings.KeyStaffNotifyAddress:      true,
}

// Service manages the admin-editable portal settings and serves the typed
// policy views derived from them.
type Service struct {
	settingRepo settings.SettingRepository
	recorder    *activityapp.Recorder
	logger      *zap.Logger

	mu        sync.RWMutex
	security  settings.SecurityPolicy
	retention settings.RetentionPolicy
	staffAddr string
	cachedAt  time.Time
}

// NewService creates a new settings service
func NewService(settingRepo settings.SettingRepository, recorder *activityapp.Recorder, logger *zap.Logger) *Service {
	return &Service{
		settingRepo: settingRepo,
		recorder:    recorder,
		logger:      logger,
	}
}

// GetAll returns every stored setting, sorted by key.
func (s *Service) GetAll(ctx context.Context) ([]SettingDTO, error) {
	stored, err := s.settingRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load settings", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load settings")
	}

	dtos := make([]SettingDTO, 0, len(stored))
	for _, setting := range stored {
		dtos = append(dtos, settingToDTO(setting))
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Key < dtos[j].Key })
	return dtos, nil
}

// Update upserts the given values. Unknown keys are rejected before
// anything is written.
func (s *Service) Update(ctx context.Context, input UpdateSettingsInput, actor activityapp.Actor) error {
	if len(input.Values) == 0 {
		return shared.NewDomainError("INVALID_INPUT", "No settings to update")
	}
	for key := range input.Values {
		if !knownKeys[key] {
			return shared.NewDomainError("UNKNOWN_SETTING", fmt.Sprintf("Unknown setting key: %s", key))
		}
	}

	changed := make([]string, 0, len(input.Values))
	for key, value := range input.Values {
		setting, err := s.settingRepo.FindByKey(ctx, key)
		switch {
		case err == nil:
			if setting.Value == value {
				continue
			}
			setting.UpdateValue(value)
		case err == shared.ErrNotFound:
			setting, err = settings.NewSetting(key, value)
			if err != nil {
				return err
			}
		default:
			s.logger.Error("Failed to load setting", zap.String("key", key), zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to update settings")
		}

		if err := s.settingRepo.Save(ctx, setting); err != nil {
			s.logger.Error("Failed to save setting", zap.String("key", key), zap.Error(err))
			return shared.NewDomainError("INTERNAL_ERROR", "Failed to update settings")
		}
		changed = append(changed, key)
	}

	s.invalidateCache()

	if len(changed) > 0 {
		sort.Strings(changed)
		entry, err := activity.NewActivityLog(activity.ActionSettingsChanged,
			fmt.Sprintf("Changed settings: %s", strings.Join(changed, ", ")))
		if err == nil {
			s.recorder.Record(ctx, actor.Apply(entry))
		}
		s.logger.Info("Settings updated",
			zap.Strings("keys", changed),
			zap.String("changed_by", actor.Email))
	}

	return nil
}

// SecurityPolicy returns the current security policy. Served from a short
// cache; unparseable values fall back to the defaults.
func (s *Service) SecurityPolicy(ctx context.Context) settings.SecurityPolicy {
	s.refreshIfStale(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.security
}

// RetentionPolicy returns the current retention policy.
func (s *Service) RetentionPolicy(ctx context.Context) settings.RetentionPolicy {
	s.refreshIfStale(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.retention
}

// StaffNotifyAddress returns where registration notices go. Empty when not
// configured.
func (s *Service) StaffNotifyAddress(ctx context.Context) string {
	s.refreshIfStale(ctx)
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staffAddr
}

// SecurityPolicyDTO returns the security policy in transfer form
func (s *Service) SecurityPolicyDTO(ctx context.Context) SecurityPolicyDTO {
	return securityPolicyToDTO(s.SecurityPolicy(ctx))
}

// RetentionPolicyDTO returns the retention policy in transfer form
func (s *Service) RetentionPolicyDTO(ctx context.Context) RetentionPolicyDTO {
	return retentionPolicyToDTO(s.RetentionPolicy(ctx))
}

func (s *Service) invalidateCache() {
	s.mu.Lock()
	s.cachedAt = time.Time{}
	s.mu.Unlock()
}

func (s *Service) refreshIfStale(ctx context.Context) {
	s.mu.RLock()
	fresh := time.Since(s.cachedAt) < policyCacheTTL
	s.mu.RUnlock()
	if fresh {
		return
	}

	stored, err := s.settingRepo.FindAll(ctx)
	if err != nil {
		// Keep serving the last known policies rather than failing logins.
		s.logger.Error("Failed to refresh settings cache", zap.Error(err))
		s.mu.Lock()
		if s.cachedAt.IsZero() {
			s.security = settings.DefaultSecurityPolicy()
			s.retention = settings.DefaultRetentionPolicy()
			s.cachedAt = time.Now()
		}
		s.mu.Unlock()
		return
	}

	values := make(map[string]string, len(stored))
	for _, setting := range stored {
		values[setting.Key] = setting.Value
	}

	s.mu.Lock()
	s.security = settings.SecurityPolicyFromSettings(values)
	s.retention = settings.RetentionPolicyFromSettings(values)
	s.staffAddr = strings.TrimSpace(values[settings.KeyStaffNotifyAddress])
	s.cachedAt = time.Now()
	s.mu.Unlock()
}
