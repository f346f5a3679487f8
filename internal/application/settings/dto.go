package settings

import (
	"time"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
)

// SettingDTO is a single key/value pair for transfer
type SettingDTO struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// UpdateSettingsInput carries the values to change. Keys not present stay
// untouched.
type UpdateSettingsInput struct {
	Values map[string]string `json:"values" binding:"required"`
}

// SecurityPolicyDTO is the typed security settings view for transfer
type SecurityPolicyDTO struct {
	MaxFailedAttempts   int      `json:"max_failed_attempts"`
	LockDurationMinutes int      `json:"lock_duration_minutes"`
	AlertThreshold      int      `json:"alert_threshold"`
	AlertWindowMinutes  int      `json:"alert_window_minutes"`
	AlertRecipients     []string `json:"alert_recipients"`
}

// RetentionPolicyDTO is the typed retention settings view for transfer
type RetentionPolicyDTO struct {
	InvoiceRetentionDays    int `json:"invoice_retention_days"`
	CreditNoteRetentionDays int `json:"credit_note_retention_days"`
	ActivityRetentionDays   int `json:"activity_retention_days"`
}

// TemplateDTO represents a mail template for transfer
type TemplateDTO struct {
	Key         string    `json:"key"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Subject     string    `json:"subject"`
	Body        string    `json:"body"`
	Enabled     bool      `json:"enabled"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UpdateTemplateInput carries an edited mail template
type UpdateTemplateInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Subject     string `json:"subject" binding:"required"`
	Body        string `json:"body" binding:"required"`
	Enabled     bool   `json:"enabled"`
}

// PreviewTemplateInput carries unsaved template content to render
type PreviewTemplateInput struct {
	Subject string `json:"subject" binding:"required"`
	Body    string `json:"body" binding:"required"`
}

// PreviewResult is a rendered template with sample data
type PreviewResult struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

func settingToDTO(s *settings.Setting) SettingDTO {
	return SettingDTO{
		Key:       s.Key,
		Value:     s.Value,
		UpdatedAt: s.UpdatedAt,
	}
}

func templateToDTO(t *settings.EmailTemplate) TemplateDTO {
	return TemplateDTO{
		Key:         string(t.Key),
		Name:        t.Name,
		Description: t.Description,
		Subject:     t.Subject,
		Body:        t.Body,
		Enabled:     t.Enabled,
		UpdatedAt:   t.UpdatedAt,
	}
}

func securityPolicyToDTO(p settings.SecurityPolicy) SecurityPolicyDTO {
	return SecurityPolicyDTO{
		MaxFailedAttempts:   p.MaxFailedAttempts,
		LockDurationMinutes: int(p.LockDuration.Minutes()),
		AlertThreshold:      p.AlertThreshold,
		AlertWindowMinutes:  int(p.AlertWindow.Minutes()),
		AlertRecipients:     p.AlertRecipients,
	}
}

func retentionPolicyToDTO(p settings.RetentionPolicy) RetentionPolicyDTO {
	return RetentionPolicyDTO{
		InvoiceRetentionDays:    int(p.InvoiceRetention.Hours() / 24),
		CreditNoteRetentionDays: int(p.CreditNoteRetention.Hours() / 24),
		ActivityRetentionDays:   int(p.ActivityLogRetention.Hours() / 24),
	}
}
