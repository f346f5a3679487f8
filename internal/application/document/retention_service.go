package document

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/storage"
)

// RetentionPolicyProvider returns the current retention policy
type RetentionPolicyProvider func(ctx context.Context) settings.RetentionPolicy

// RetentionService is the nightly sweep behind the scheduler: it expires
// documents whose retention deadline passed, purges their files and trims
// the activity log.
type RetentionService struct {
	invoiceRepo  document.InvoiceRepository
	noteRepo     document.CreditNoteRepository
	activityRepo activity.ActivityLogRepository
	store        storage.DocumentStorage
	policy       RetentionPolicyProvider
	logger       *zap.Logger
}

// NewRetentionService creates a new retention service
func NewRetentionService(
	invoiceRepo document.InvoiceRepository,
	noteRepo document.CreditNoteRepository,
	activityRepo activity.ActivityLogRepository,
	store storage.DocumentStorage,
	policy RetentionPolicyProvider,
	logger *zap.Logger,
) *RetentionService {
	return &RetentionService{
		invoiceRepo:  invoiceRepo,
		noteRepo:     noteRepo,
		activityRepo: activityRepo,
		store:        store,
		policy:       policy,
		logger:       logger,
	}
}

// SweepExpiredDocuments expires up to batchSize documents past retention.
// The stored file is deleted before the document is marked, so a failed
// purge leaves the document for the next run instead of stranding the file.
func (s *RetentionService) SweepExpiredDocuments(ctx context.Context, batchSize int) (int, error) {
	now := time.Now()
	expired := 0

	invoices, err := s.invoiceRepo.FindPastRetention(ctx, now, batchSize)
	if err != nil {
		return 0, fmt.Errorf("finding invoices past retention: %w", err)
	}
	for _, invoice := range invoices {
		if err := s.store.Delete(ctx, invoice.File.StorageKey); err != nil {
			s.logger.Error("Failed to purge invoice file, will retry next sweep",
				zap.String("storage_key", invoice.File.StorageKey),
				zap.Error(err))
			continue
		}
		if err := invoice.Expire(); err != nil {
			s.logger.Warn("Invoice not expirable",
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.Error(err))
			continue
		}
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			s.logger.Error("Failed to save expired invoice", zap.Error(err))
			continue
		}
		s.recordExpiry(ctx, "invoice", invoice.InvoiceNumber, invoice.CompanyID, invoice.ID)
		expired++
	}

	remaining := batchSize - expired
	if remaining <= 0 {
		return expired, nil
	}

	notes, err := s.noteRepo.FindPastRetention(ctx, now, remaining)
	if err != nil {
		return expired, fmt.Errorf("finding credit notes past retention: %w", err)
	}
	for _, note := range notes {
		if err := s.store.Delete(ctx, note.File.StorageKey); err != nil {
			s.logger.Error("Failed to purge credit note file, will retry next sweep",
				zap.String("storage_key", note.File.StorageKey),
				zap.Error(err))
			continue
		}
		if err := note.Expire(); err != nil {
			s.logger.Warn("Credit note not expirable",
				zap.String("credit_note_number", note.CreditNoteNumber),
				zap.Error(err))
			continue
		}
		if err := s.noteRepo.Save(ctx, note); err != nil {
			s.logger.Error("Failed to save expired credit note", zap.Error(err))
			continue
		}
		s.recordExpiry(ctx, "credit_note", note.CreditNoteNumber, note.CompanyID, note.ID)
		expired++
	}

	if expired > 0 {
		s.logger.Info("Retention sweep expired documents", zap.Int("count", expired))
	}
	return expired, nil
}

// CleanupActivityLogs trims activity entries past the configured retention
func (s *RetentionService) CleanupActivityLogs(ctx context.Context) (int64, error) {
	retention := s.policy(ctx).ActivityLogRetention
	if retention <= 0 {
		return 0, nil
	}

	cutoff := time.Now().Add(-retention)
	deleted, err := s.activityRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("deleting old activity entries: %w", err)
	}

	if deleted > 0 {
		s.logger.Info("Activity log trimmed",
			zap.Int64("deleted", deleted),
			zap.Time("cutoff", cutoff))
	}
	return deleted, nil
}

func (s *RetentionService) recordExpiry(ctx context.Context, kind, number string, companyID, docID uuid.UUID) {
	entry, err := activity.NewActivityLog(activity.ActionDocumentExpired,
		fmt.Sprintf("Expired %s %s after retention", kind, number))
	if err != nil {
		return
	}
	entry.WithCompany(companyID)
	entry.WithTarget(kind, docID)
	if err := s.activityRepo.Save(ctx, entry); err != nil {
		s.logger.Error("Failed to record document expiry", zap.Error(err))
	}
}
