package settings

import (
	"strings"
	"time"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// TemplateKey identifies a portal mail. Each key has exactly one active
// template; unknown keys are rejected so a typo cannot silently detach a
// notification from its template.
type TemplateKey string

const (
	TemplateKeyWelcome            TemplateKey = "welcome"             // New user account created
	TemplateKeyPasswordReset      TemplateKey = "password_reset"      // Password reset by staff
	TemplateKeyImportSummary      TemplateKey = "import_summary"      // Batch import completed
	TemplateKeyLockoutAlert       TemplateKey = "lockout_alert"       // Account locked after failed logins
	TemplateKeyBruteForceAlert    TemplateKey = "brute_force_alert"   // Repeated failures across accounts
	TemplateKeyRegistrationNotice TemplateKey = "registration_notice" // New registration awaiting review
	TemplateKeyRegistrationResult TemplateKey = "registration_result" // Registration approved or rejected
)

// IsValid checks if the key is a known template key
func (k TemplateKey) IsValid() bool {
	switch k {
	case TemplateKeyWelcome, TemplateKeyPasswordReset, TemplateKeyImportSummary,
		TemplateKeyLockoutAlert, TemplateKeyBruteForceAlert,
		TemplateKeyRegistrationNotice, TemplateKeyRegistrationResult:
		return true
	}
	return false
}

// AllTemplateKeys returns every known template key
func AllTemplateKeys() []TemplateKey {
	return []TemplateKey{
		TemplateKeyWelcome,
		TemplateKeyPasswordReset,
		TemplateKeyImportSummary,
		TemplateKeyLockoutAlert,
		TemplateKeyBruteForceAlert,
		TemplateKeyRegistrationNotice,
		TemplateKeyRegistrationResult,
	}
}

// EmailTemplate represents an editable notification mail. Subject and body are
// HTML templates rendered with the notification's data.
type EmailTemplate struct {
	shared.BaseAggregateRoot
	Key         TemplateKey `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name        string      `gorm:"type:varchar(200);not null"`
	Description string      `gorm:"type:text"`
	Subject     string      `gorm:"type:varchar(500);not null"`
	Body        string      `gorm:"type:text;not null"`
	Enabled     bool        `gorm:"not null;default:true"` // Disabled templates suppress the mail entirely
}

// TableName returns the table name for GORM
func (EmailTemplate) TableName() string {
	return "email_templates"
}

// NewEmailTemplate creates a new email template
func NewEmailTemplate(key TemplateKey, name, subject, body string) (*EmailTemplate, error) {
	if !key.IsValid() {
		return nil, shared.NewDomainError("INVALID_TEMPLATE_KEY", "Unknown template key")
	}
	if err := validateTemplateName(name); err != nil {
		return nil, err
	}
	if err := validateTemplateSubject(subject); err != nil {
		return nil, err
	}
	if err := validateTemplateBody(body); err != nil {
		return nil, err
	}

	template := &EmailTemplate{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Key:               key,
		Name:              strings.TrimSpace(name),
		Subject:           subject,
		Body:              body,
		Enabled:           true,
	}

	return template, nil
}

// Update updates the template's name and description
func (t *EmailTemplate) Update(name, description string) error {
	if err := validateTemplateName(name); err != nil {
		return err
	}

	t.Name = strings.TrimSpace(name)
	t.Description = strings.TrimSpace(description)
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// UpdateContent updates subject and body
func (t *EmailTemplate) UpdateContent(subject, body string) error {
	if err := validateTemplateSubject(subject); err != nil {
		return err
	}
	if err := validateTemplateBody(body); err != nil {
		return err
	}

	t.Subject = subject
	t.Body = body
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Enable enables sending for this template
func (t *EmailTemplate) Enable() {
	t.Enabled = true
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

// Disable suppresses sending for this template
func (t *EmailTemplate) Disable() {
	t.Enabled = false
	t.UpdatedAt = time.Now()
	t.IncrementVersion()
}

func validateTemplateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Template name cannot exceed 200 characters")
	}

	return nil
}

func validateTemplateSubject(subject string) error {
	if strings.TrimSpace(subject) == "" {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot be empty")
	}
	if len(subject) > 500 {
		return shared.NewDomainError("INVALID_SUBJECT", "Subject cannot exceed 500 characters")
	}

	return nil
}

func validateTemplateBody(body string) error {
	if strings.TrimSpace(body) == "" {
		return shared.NewDomainError("INVALID_BODY", "Body cannot be empty")
	}

	return nil
}
