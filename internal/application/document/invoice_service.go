package document

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/storage"
)

// InvoiceService serves invoices to company users and staff. Every company
// scoped lookup goes through FindByIDForCompany, so a company user can
// never address another company's documents.
type InvoiceService struct {
	invoiceRepo   document.InvoiceRepository
	store         storage.DocumentStorage
	presignExpiry time.Duration
	recorder      *activityapp.Recorder
	logger        *zap.Logger
}

// NewInvoiceService creates a new invoice service
func NewInvoiceService(
	invoiceRepo document.InvoiceRepository,
	store storage.DocumentStorage,
	presignExpiry time.Duration,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *InvoiceService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		store:         store,
		presignExpiry: presignExpiry,
		recorder:      recorder,
		logger:        logger,
	}
}

// List returns invoices across all companies. Staff only.
func (s *InvoiceService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[InvoiceDTO], error) {
	page, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list invoices", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list invoices")
	}
	return mapInvoicePage(page), nil
}

// ListForCompany returns one company's invoices
func (s *InvoiceService) ListForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[InvoiceDTO], error) {
	page, err := s.invoiceRepo.FindByCompanyID(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("Failed to list company invoices",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list invoices")
	}
	return mapInvoicePage(page), nil
}

// Get returns one invoice. A company scope marks the first view: opening a
// document the first time is when it stops counting as new.
func (s *InvoiceService) Get(ctx context.Context, id uuid.UUID, companyScope *uuid.UUID, actor activityapp.Actor) (*InvoiceDTO, error) {
	invoice, err := s.findInvoice(ctx, id, companyScope)
	if err != nil {
		return nil, err
	}

	if companyScope != nil && invoice.IsNew() {
		invoice.RecordView()
		if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
			s.logger.Error("Failed to record invoice view", zap.Error(err))
		}
		if entry, err := activity.NewActivityLog(activity.ActionDocumentViewed,
			fmt.Sprintf("Viewed invoice %s", invoice.InvoiceNumber)); err == nil {
			entry.WithTarget("invoice", invoice.ID)
			s.recorder.Record(ctx, actor.Apply(entry))
		}
	}

	dto := invoiceToDTO(invoice)
	return &dto, nil
}

// Download hands out the invoice file, as a presigned URL when the storage
// driver supports it, otherwise streamed.
func (s *InvoiceService) Download(ctx context.Context, id uuid.UUID, companyScope *uuid.UUID, actor activityapp.Actor) (*DownloadResult, error) {
	invoice, err := s.findInvoice(ctx, id, companyScope)
	if err != nil {
		return nil, err
	}
	if invoice.Status == document.StatusExpired {
		return nil, shared.NewDomainError("DOCUMENT_EXPIRED", "Document is past retention and no longer available")
	}
	if companyScope != nil && !invoice.IsAvailable() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_AVAILABLE", "Document is not available")
	}

	result, err := s.fetch(ctx, invoice.File)
	if err != nil {
		s.logger.Error("Failed to fetch invoice file",
			zap.String("storage_key", invoice.File.StorageKey),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to download document")
	}

	invoice.RecordDownload()
	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to record invoice download", zap.Error(err))
	}

	if entry, err := activity.NewActivityLog(activity.ActionDocumentDownloaded,
		fmt.Sprintf("Downloaded invoice %s", invoice.InvoiceNumber)); err == nil {
		entry.WithTarget("invoice", invoice.ID)
		if actor.CompanyID == nil {
			entry.WithCompany(invoice.CompanyID)
		}
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	return result, nil
}

// Archive hides an invoice from company users. Staff only.
func (s *InvoiceService) Archive(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Archived", func(inv *document.Invoice) error {
		return inv.Archive()
	})
}

// Restore makes an archived invoice visible again. Staff only.
func (s *InvoiceService) Restore(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Restored", func(inv *document.Invoice) error {
		return inv.Restore()
	})
}

// Delete removes an invoice and its stored file. Staff only.
func (s *InvoiceService) Delete(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	invoice, err := s.findInvoice(ctx, id, nil)
	if err != nil {
		return err
	}

	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete invoice", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete document")
	}

	// The record is authoritative; a stranded file is only wasted space.
	if err := s.store.Delete(ctx, invoice.File.StorageKey); err != nil {
		s.logger.Warn("Failed to remove stored invoice file",
			zap.String("storage_key", invoice.File.StorageKey),
			zap.Error(err))
	}

	if entry, err := activity.NewActivityLog(activity.ActionDocumentDeleted,
		fmt.Sprintf("Deleted invoice %s", invoice.InvoiceNumber)); err == nil {
		entry.WithTarget("invoice", invoice.ID)
		entry.WithCompany(invoice.CompanyID)
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	s.logger.Info("Deleted invoice",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("deleted_by", actor.Email))
	return nil
}

func (s *InvoiceService) transition(ctx context.Context, id uuid.UUID, actor activityapp.Actor, detail string, fn func(*document.Invoice) error) error {
	invoice, err := s.findInvoice(ctx, id, nil)
	if err != nil {
		return err
	}

	if err := fn(invoice); err != nil {
		return err
	}

	if err := s.invoiceRepo.Save(ctx, invoice); err != nil {
		s.logger.Error("Failed to save invoice status change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update document")
	}

	s.logger.Info(fmt.Sprintf("%s invoice", detail),
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("changed_by", actor.Email))
	return nil
}

func (s *InvoiceService) findInvoice(ctx context.Context, id uuid.UUID, companyScope *uuid.UUID) (*document.Invoice, error) {
	var (
		invoice *document.Invoice
		err     error
	)
	if companyScope != nil {
		invoice, err = s.invoiceRepo.FindByIDForCompany(ctx, *companyScope, id)
	} else {
		invoice, err = s.invoiceRepo.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
		}
		s.logger.Error("Failed to load invoice", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load document")
	}
	return invoice, nil
}

func (s *InvoiceService) fetch(ctx context.Context, file document.StoredFile) (*DownloadResult, error) {
	url, expires, err := s.store.PresignDownloadURL(ctx, file.StorageKey, file.FileName, s.presignExpiry)
	if err == nil {
		return &DownloadResult{
			URL:         url,
			URLExpires:  &expires,
			FileName:    file.FileName,
			ContentType: file.ContentType,
		}, nil
	}
	if !errors.Is(err, storage.ErrPresignUnsupported) {
		return nil, err
	}

	content, err := s.store.Download(ctx, file.StorageKey)
	if err != nil {
		return nil, err
	}
	return &DownloadResult{
		Content:     content,
		FileName:    file.FileName,
		ContentType: file.ContentType,
	}, nil
}

func mapInvoicePage(page *shared.Paginated[*document.Invoice]) *shared.Paginated[InvoiceDTO] {
	dtos := make([]InvoiceDTO, 0, len(page.Items))
	for _, invoice := range page.Items {
		dtos = append(dtos, invoiceToDTO(invoice))
	}
	mapped := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &mapped
}
