// Package notify renders and sends the portal's notification mails. Content
// comes from the admin-editable templates; a disabled template suppresses
// the mail without failing the operation that triggered it.
package notify

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/mail"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/security"
)

// ErrNoRecipients is returned when a notification has nobody to go to.
// Callers usually log it and move on.
var ErrNoRecipients = errors.New("notification has no recipients")

// Notifier sends template-based mails.
type Notifier struct {
	templates settings.EmailTemplateRepository
	engine    *mail.TemplateEngine
	sender    mail.Sender
	portalURL string
	logger    *zap.Logger
}

// NewNotifier creates a new notifier. portalURL is the public address used
// in mail links.
func NewNotifier(
	templates settings.EmailTemplateRepository,
	engine *mail.TemplateEngine,
	sender mail.Sender,
	portalURL string,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		templates: templates,
		engine:    engine,
		sender:    sender,
		portalURL: portalURL,
		logger:    logger,
	}
}

// SendWelcome mails the credentials for a freshly created account.
func (n *Notifier) SendWelcome(ctx context.Context, user *identity.User, temporaryPassword string) error {
	return n.send(ctx, settings.TemplateKeyWelcome, []string{user.Email}, map[string]interface{}{
		"DisplayName":       user.DisplayName,
		"Email":             user.Email,
		"TemporaryPassword": temporaryPassword,
	})
}

// SendPasswordReset mails the new temporary password after a staff reset.
func (n *Notifier) SendPasswordReset(ctx context.Context, user *identity.User, temporaryPassword string) error {
	return n.send(ctx, settings.TemplateKeyPasswordReset, []string{user.Email}, map[string]interface{}{
		"DisplayName":       user.DisplayName,
		"Email":             user.Email,
		"TemporaryPassword": temporaryPassword,
	})
}

// SendImportSummary tells a company that new documents arrived.
func (n *Notifier) SendImportSummary(ctx context.Context, to []string, companyName string, invoiceCount, creditNoteCount int, importedAt time.Time) error {
	return n.send(ctx, settings.TemplateKeyImportSummary, to, map[string]interface{}{
		"CompanyName":     companyName,
		"InvoiceCount":    invoiceCount,
		"CreditNoteCount": creditNoteCount,
		"DocumentCount":   invoiceCount + creditNoteCount,
		"ImportedAt":      importedAt,
	})
}

// SendLockoutAlert tells the configured recipients that an account was
// locked after too many failed logins.
func (n *Notifier) SendLockoutAlert(ctx context.Context, recipients []string, email string, failedAttempts int, sourceIP string, lockedAt time.Time) error {
	return n.send(ctx, settings.TemplateKeyLockoutAlert, recipients, map[string]interface{}{
		"Email":          email,
		"FailedAttempts": failedAttempts,
		"SourceIP":       sourceIP,
		"LockedAt":       lockedAt,
	})
}

// SendBruteForceAlert reports a burst of failed logins across accounts.
func (n *Notifier) SendBruteForceAlert(ctx context.Context, recipients []string, alert security.Alert) error {
	return n.send(ctx, settings.TemplateKeyBruteForceAlert, recipients, map[string]interface{}{
		"Key":        alert.Key,
		"Failures":   alert.Failures,
		"WindowFrom": alert.WindowFrom,
	})
}

// SendRegistrationNotice tells the staff address that a registration is
// waiting for review.
func (n *Notifier) SendRegistrationNotice(ctx context.Context, staffAddress string, reg *identity.PendingRegistration) error {
	return n.send(ctx, settings.TemplateKeyRegistrationNotice, []string{staffAddress}, map[string]interface{}{
		"CompanyName": reg.CompanyName,
		"ContactName": reg.ContactName,
		"Email":       reg.Email,
		"Phone":       reg.Phone,
		"Message":     reg.Message,
	})
}

// SendRegistrationResult tells the applicant how their request was decided.
func (n *Notifier) SendRegistrationResult(ctx context.Context, reg *identity.PendingRegistration, approved bool) error {
	return n.send(ctx, settings.TemplateKeyRegistrationResult, []string{reg.Email}, map[string]interface{}{
		"ContactName":  reg.ContactName,
		"Email":        reg.Email,
		"Approved":     approved,
		"RejectReason": reg.RejectReason,
	})
}

func (n *Notifier) send(ctx context.Context, key settings.TemplateKey, to []string, data map[string]interface{}) error {
	recipients := make([]string, 0, len(to))
	for _, addr := range to {
		if addr != "" {
			recipients = append(recipients, addr)
		}
	}
	if len(recipients) == 0 {
		return ErrNoRecipients
	}

	template, err := n.templates.FindByKey(ctx, key)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			n.logger.Warn("Mail template missing, mail not sent",
				zap.String("template", string(key)))
			return nil
		}
		return err
	}
	if !template.Enabled {
		n.logger.Debug("Mail template disabled, mail not sent",
			zap.String("template", string(key)))
		return nil
	}

	data["PortalURL"] = n.portalURL

	rendered, err := n.engine.Render(string(key), template.Subject, template.Body, data)
	if err != nil {
		return err
	}

	if err := n.sender.Send(ctx, mail.Message{
		To:      recipients,
		Subject: rendered.Subject,
		Body:    rendered.Body,
	}); err != nil {
		return err
	}

	n.logger.Info("Notification sent",
		zap.String("template", string(key)),
		zap.Int("recipients", len(recipients)))
	return nil
}
