// Package settings holds the admin-editable portal configuration persisted in
// the database: key/value settings with typed views, and the notification
// mail templates.
package settings

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Known setting keys
const (
	KeyMaxFailedAttempts   = "security.max_failed_attempts"
	KeyLockDurationMinutes = "security.lock_duration_minutes"
	KeyAlertThreshold      = "security.alert_threshold"
	KeyAlertWindowMinutes  = "security.alert_window_minutes"
	KeyAlertRecipients     = "security.alert_recipients" // Comma-separated addresses
	KeyInvoiceRetentionDays    = "retention.invoice_days"     // 0 keeps forever
	KeyCreditNoteRetentionDays = "retention.credit_note_days" // 0 keeps forever
	KeyActivityRetentionDays   = "retention.activity_log_days"
	KeyStaffNotifyAddress      = "notify.staff_address" // Registration notices go here
)

// Setting is a single key/value pair. Values are stored as strings and parsed
// through the typed policy views.
type Setting struct {
	shared.BaseEntity
	Key   string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Value string `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Setting) TableName() string {
	return "settings"
}

// NewSetting creates a new setting
func NewSetting(key, value string) (*Setting, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key cannot be empty")
	}
	if len(key) > 100 {
		return nil, shared.NewDomainError("INVALID_KEY", "Setting key cannot exceed 100 characters")
	}

	return &Setting{
		BaseEntity: shared.NewBaseEntity(),
		Key:        key,
		Value:      value,
	}, nil
}

// UpdateValue replaces the stored value
func (s *Setting) UpdateValue(value string) {
	s.Value = value
	s.UpdatedAt = time.Now()
}

// SecurityPolicy is the typed view of the lockout and alerting settings
type SecurityPolicy struct {
	MaxFailedAttempts int
	LockDuration      time.Duration
	AlertThreshold    int           // Failures across accounts before an alert fires
	AlertWindow       time.Duration // Sliding window for the threshold
	AlertRecipients   []string
}

// DefaultSecurityPolicy returns the policy used until an admin changes it
func DefaultSecurityPolicy() SecurityPolicy {
	return SecurityPolicy{
		MaxFailedAttempts: 5,
		LockDuration:      30 * time.Minute,
		AlertThreshold:    20,
		AlertWindow:       10 * time.Minute,
	}
}

// RetentionPolicy is the typed view of the retention settings
type RetentionPolicy struct {
	InvoiceRetention     time.Duration // 0 keeps forever
	CreditNoteRetention  time.Duration // 0 keeps forever
	ActivityLogRetention time.Duration
}

// DefaultRetentionPolicy returns the policy used until an admin changes it
func DefaultRetentionPolicy() RetentionPolicy {
	return RetentionPolicy{
		InvoiceRetention:     0,
		CreditNoteRetention:  0,
		ActivityLogRetention: 365 * 24 * time.Hour,
	}
}

// SecurityPolicyFromSettings builds the security policy from raw settings.
// Missing or unparseable values fall back to the defaults.
func SecurityPolicyFromSettings(values map[string]string) SecurityPolicy {
	policy := DefaultSecurityPolicy()

	if v, ok := parsePositiveInt(values[KeyMaxFailedAttempts]); ok {
		policy.MaxFailedAttempts = v
	}
	if v, ok := parsePositiveInt(values[KeyLockDurationMinutes]); ok {
		policy.LockDuration = time.Duration(v) * time.Minute
	}
	if v, ok := parsePositiveInt(values[KeyAlertThreshold]); ok {
		policy.AlertThreshold = v
	}
	if v, ok := parsePositiveInt(values[KeyAlertWindowMinutes]); ok {
		policy.AlertWindow = time.Duration(v) * time.Minute
	}
	if raw := strings.TrimSpace(values[KeyAlertRecipients]); raw != "" {
		var recipients []string
		for _, addr := range strings.Split(raw, ",") {
			addr = strings.TrimSpace(addr)
			if addr != "" {
				recipients = append(recipients, addr)
			}
		}
		policy.AlertRecipients = recipients
	}

	return policy
}

// RetentionPolicyFromSettings builds the retention policy from raw settings
func RetentionPolicyFromSettings(values map[string]string) RetentionPolicy {
	policy := DefaultRetentionPolicy()

	if v, ok := parseNonNegativeInt(values[KeyInvoiceRetentionDays]); ok {
		policy.InvoiceRetention = time.Duration(v) * 24 * time.Hour
	}
	if v, ok := parseNonNegativeInt(values[KeyCreditNoteRetentionDays]); ok {
		policy.CreditNoteRetention = time.Duration(v) * 24 * time.Hour
	}
	if v, ok := parsePositiveInt(values[KeyActivityRetentionDays]); ok {
		policy.ActivityLogRetention = time.Duration(v) * 24 * time.Hour
	}

	return policy
}

func parsePositiveInt(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseNonNegativeInt(raw string) (int, bool) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// SettingRepository defines the persistence contract for settings
type SettingRepository interface {
	Save(ctx context.Context, setting *Setting) error
	FindByKey(ctx context.Context, key string) (*Setting, error)
	FindAll(ctx context.Context) ([]*Setting, error)
	Delete(ctx context.Context, key string) error
}

// EmailTemplateRepository defines the persistence contract for mail templates
type EmailTemplateRepository interface {
	Save(ctx context.Context, template *EmailTemplate) error
	FindByKey(ctx context.Context, key TemplateKey) (*EmailTemplate, error)
	FindAll(ctx context.Context) ([]*EmailTemplate, error)
}
