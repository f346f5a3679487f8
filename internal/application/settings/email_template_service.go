package settings

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/mail"
)

// EmailTemplateService manages the notification mail templates.
type EmailTemplateService struct {
	templateRepo settings.EmailTemplateRepository
	engine       *mail.TemplateEngine
	recorder     *activityapp.Recorder
	logger       *zap.Logger
}

// NewEmailTemplateService creates a new email template service
func NewEmailTemplateService(
	templateRepo settings.EmailTemplateRepository,
	engine *mail.TemplateEngine,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *EmailTemplateService {
	return &EmailTemplateService{
		templateRepo: templateRepo,
		engine:       engine,
		recorder:     recorder,
		logger:       logger,
	}
}

// SeedDefaults creates any template that does not exist yet. Existing rows
// are never touched, so admin edits survive restarts and upgrades.
func (s *EmailTemplateService) SeedDefaults(ctx context.Context) error {
	for _, seed := range mail.GetDefaultTemplates() {
		_, err := s.templateRepo.FindByKey(ctx, seed.Key)
		if err == nil {
			continue
		}
		if err != shared.ErrNotFound {
			return fmt.Errorf("checking template %s: %w", seed.Key, err)
		}

		template, err := settings.NewEmailTemplate(seed.Key, seed.Name, seed.Subject, seed.Body)
		if err != nil {
			return fmt.Errorf("building template %s: %w", seed.Key, err)
		}
		template.Description = seed.Description

		if err := s.templateRepo.Save(ctx, template); err != nil {
			return fmt.Errorf("saving template %s: %w", seed.Key, err)
		}
		s.logger.Info("Seeded mail template", zap.String("key", string(seed.Key)))
	}
	return nil
}

// List returns all templates
func (s *EmailTemplateService) List(ctx context.Context) ([]TemplateDTO, error) {
	templates, err := s.templateRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to load mail templates", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load mail templates")
	}

	dtos := make([]TemplateDTO, 0, len(templates))
	for _, template := range templates {
		dtos = append(dtos, templateToDTO(template))
	}
	return dtos, nil
}

// Get returns one template by key
func (s *EmailTemplateService) Get(ctx context.Context, key string) (*TemplateDTO, error) {
	template, err := s.findByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	dto := templateToDTO(template)
	return &dto, nil
}

// Update replaces a template's content. The new content must render against
// sample data before anything is saved, so a broken template can never
// silently swallow notifications later.
func (s *EmailTemplateService) Update(ctx context.Context, key string, input UpdateTemplateInput, actor activityapp.Actor) (*TemplateDTO, error) {
	template, err := s.findByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	if _, err := s.engine.Render(key, input.Subject, input.Body, sampleData(template.Key)); err != nil {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", fmt.Sprintf("Template does not render: %v", err))
	}

	if err := template.Update(input.Name, input.Description); err != nil {
		return nil, err
	}
	if err := template.UpdateContent(input.Subject, input.Body); err != nil {
		return nil, err
	}
	if input.Enabled {
		template.Enable()
	} else {
		template.Disable()
	}

	if err := s.templateRepo.Save(ctx, template); err != nil {
		s.logger.Error("Failed to save mail template",
			zap.String("key", key),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to save mail template")
	}

	entry, err := activity.NewActivityLog(activity.ActionTemplateChanged,
		fmt.Sprintf("Updated mail template %s", key))
	if err == nil {
		s.recorder.Record(ctx, actor.Apply(entry.WithTarget("email_template", template.ID)))
	}

	dto := templateToDTO(template)
	return &dto, nil
}

// Reset discards admin edits and restores the shipped default for the key.
func (s *EmailTemplateService) Reset(ctx context.Context, key string, actor activityapp.Actor) (*TemplateDTO, error) {
	template, err := s.findByKey(ctx, key)
	if err != nil {
		return nil, err
	}

	var seed *mail.DefaultTemplate
	for _, candidate := range mail.GetDefaultTemplates() {
		if candidate.Key == template.Key {
			seed = &candidate
			break
		}
	}
	if seed == nil {
		return nil, shared.NewDomainError("TEMPLATE_NOT_FOUND", "No default exists for this template")
	}

	if err := template.Update(seed.Name, seed.Description); err != nil {
		return nil, err
	}
	if err := template.UpdateContent(seed.Subject, seed.Body); err != nil {
		return nil, err
	}
	template.Enable()

	if err := s.templateRepo.Save(ctx, template); err != nil {
		s.logger.Error("Failed to reset mail template",
			zap.String("key", key),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to reset mail template")
	}

	entry, err := activity.NewActivityLog(activity.ActionTemplateChanged,
		fmt.Sprintf("Reset mail template %s to default", key))
	if err == nil {
		s.recorder.Record(ctx, actor.Apply(entry.WithTarget("email_template", template.ID)))
	}

	dto := templateToDTO(template)
	return &dto, nil
}

// Preview renders unsaved content with sample data.
func (s *EmailTemplateService) Preview(ctx context.Context, key string, input PreviewTemplateInput) (*PreviewResult, error) {
	templateKey := settings.TemplateKey(key)
	if !templateKey.IsValid() {
		return nil, shared.NewDomainError("INVALID_TEMPLATE_KEY", "Unknown template key")
	}

	rendered, err := s.engine.Render(key, input.Subject, input.Body, sampleData(templateKey))
	if err != nil {
		return nil, shared.NewDomainError("INVALID_TEMPLATE", fmt.Sprintf("Template does not render: %v", err))
	}

	return &PreviewResult{Subject: rendered.Subject, Body: rendered.Body}, nil
}

func (s *EmailTemplateService) findByKey(ctx context.Context, key string) (*settings.EmailTemplate, error) {
	templateKey := settings.TemplateKey(key)
	if !templateKey.IsValid() {
		return nil, shared.NewDomainError("INVALID_TEMPLATE_KEY", "Unknown template key")
	}

	template, err := s.templateRepo.FindByKey(ctx, templateKey)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("TEMPLATE_NOT_FOUND", "Mail template not found")
		}
		s.logger.Error("Failed to load mail template", zap.String("key", key), zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load mail template")
	}
	return template, nil
}

// sampleData returns plausible values for every variable a template key
// uses, for render validation and previews.
func sampleData(key settings.TemplateKey) map[string]interface{} {
	now := time.Now()
	switch key {
	case settings.TemplateKeyWelcome, settings.TemplateKeyPasswordReset:
		return map[string]interface{}{
			"DisplayName":       "Erika Mustermann",
			"Email":             "erika.mustermann@example.de",
			"TemporaryPassword": "Xk3!pQ9wL2mz",
			"PortalURL":         "https://portal.example.de",
		}
	case settings.TemplateKeyImportSummary:
		return map[string]interface{}{
			"CompanyName":     "Musterbau GmbH",
			"InvoiceCount":    12,
			"CreditNoteCount": 2,
			"DocumentCount":   14,
			"ImportedAt":      now,
			"PortalURL":       "https://portal.example.de",
		}
	case settings.TemplateKeyLockoutAlert:
		return map[string]interface{}{
			"Email":          "erika.mustermann@example.de",
			"FailedAttempts": 5,
			"SourceIP":       "203.0.113.17",
			"LockedAt":       now,
			"PortalURL":      "https://portal.example.de",
		}
	case settings.TemplateKeyBruteForceAlert:
		return map[string]interface{}{
			"Key":        "ip:203.0.113.17",
			"Failures":   23,
			"WindowFrom": now.Add(-10 * time.Minute),
			"PortalURL":  "https://portal.example.de",
		}
	case settings.TemplateKeyRegistrationNotice:
		return map[string]interface{}{
			"CompanyName": "Musterbau GmbH",
			"ContactName": "Erika Mustermann",
			"Email":       "erika.mustermann@example.de",
			"Phone":       "+49 30 1234567",
			"Message":     "Wir beziehen seit Januar Werkzeuge über Sie.",
			"PortalURL":   "https://portal.example.de",
		}
	case settings.TemplateKeyRegistrationResult:
		return map[string]interface{}{
			"ContactName":  "Erika Mustermann",
			"Email":        "erika.mustermann@example.de",
			"Approved":     true,
			"RejectReason": "",
			"PortalURL":    "https://portal.example.de",
		}
	default:
		return map[string]interface{}{"PortalURL": "https://portal.example.de"}
	}
}
