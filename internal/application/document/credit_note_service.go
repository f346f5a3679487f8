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

// CreditNoteService serves credit notes, with the same company scoping
// rules as the invoice service.
type CreditNoteService struct {
	noteRepo      document.CreditNoteRepository
	store         storage.DocumentStorage
	presignExpiry time.Duration
	recorder      *activityapp.Recorder
	logger        *zap.Logger
}

// NewCreditNoteService creates a new credit note service
func NewCreditNoteService(
	noteRepo document.CreditNoteRepository,
	store storage.DocumentStorage,
	presignExpiry time.Duration,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *CreditNoteService {
	if presignExpiry <= 0 {
		presignExpiry = 15 * time.Minute
	}
	return &CreditNoteService{
		noteRepo:      noteRepo,
		store:         store,
		presignExpiry: presignExpiry,
		recorder:      recorder,
		logger:        logger,
	}
}

// List returns credit notes across all companies. Staff only.
func (s *CreditNoteService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[CreditNoteDTO], error) {
	page, err := s.noteRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list credit notes", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list credit notes")
	}
	return mapCreditNotePage(page), nil
}

// ListForCompany returns one company's credit notes
func (s *CreditNoteService) ListForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[CreditNoteDTO], error) {
	page, err := s.noteRepo.FindByCompanyID(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("Failed to list company credit notes",
			zap.String("company_id", companyID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list credit notes")
	}
	return mapCreditNotePage(page), nil
}

// Get returns one credit note and marks the first view for company users
func (s *CreditNoteService) Get(ctx context.Context, id uuid.UUID, companyScope *uuid.UUID, actor activityapp.Actor) (*CreditNoteDTO, error) {
	note, err := s.findNote(ctx, id, companyScope)
	if err != nil {
		return nil, err
	}

	if companyScope != nil && note.IsNew() {
		note.RecordView()
		if err := s.noteRepo.Save(ctx, note); err != nil {
			s.logger.Error("Failed to record credit note view", zap.Error(err))
		}
		if entry, err := activity.NewActivityLog(activity.ActionDocumentViewed,
			fmt.Sprintf("Viewed credit note %s", note.CreditNoteNumber)); err == nil {
			entry.WithTarget("credit_note", note.ID)
			s.recorder.Record(ctx, actor.Apply(entry))
		}
	}

	dto := creditNoteToDTO(note)
	return &dto, nil
}

// Download hands out the credit note file
func (s *CreditNoteService) Download(ctx context.Context, id uuid.UUID, companyScope *uuid.UUID, actor activityapp.Actor) (*DownloadResult, error) {
	note, err := s.findNote(ctx, id, companyScope)
	if err != nil {
		return nil, err
	}
	if note.Status == document.StatusExpired {
		return nil, shared.NewDomainError("DOCUMENT_EXPIRED", "Document is past retention and no longer available")
	}
	if companyScope != nil && !note.IsAvailable() {
		return nil, shared.NewDomainError("DOCUMENT_NOT_AVAILABLE", "Document is not available")
	}

	result, err := s.fetch(ctx, note.File)
	if err != nil {
		s.logger.Error("Failed to fetch credit note file",
			zap.String("storage_key", note.File.StorageKey),
			zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to download document")
	}

	note.RecordDownload()
	if err := s.noteRepo.Save(ctx, note); err != nil {
		s.logger.Error("Failed to record credit note download", zap.Error(err))
	}

	if entry, err := activity.NewActivityLog(activity.ActionDocumentDownloaded,
		fmt.Sprintf("Downloaded credit note %s", note.CreditNoteNumber)); err == nil {
		entry.WithTarget("credit_note", note.ID)
		if actor.CompanyID == nil {
			entry.WithCompany(note.CompanyID)
		}
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	return result, nil
}

// Archive hides a credit note from company users. Staff only.
func (s *CreditNoteService) Archive(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Archived", func(n *document.CreditNote) error {
		return n.Archive()
	})
}

// Restore makes an archived credit note visible again. Staff only.
func (s *CreditNoteService) Restore(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Restored", func(n *document.CreditNote) error {
		return n.Restore()
	})
}

// Delete removes a credit note and its stored file. Staff only.
func (s *CreditNoteService) Delete(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	note, err := s.findNote(ctx, id, nil)
	if err != nil {
		return err
	}

	if err := s.noteRepo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete credit note", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete document")
	}

	if err := s.store.Delete(ctx, note.File.StorageKey); err != nil {
		s.logger.Warn("Failed to remove stored credit note file",
			zap.String("storage_key", note.File.StorageKey),
			zap.Error(err))
	}

	if entry, err := activity.NewActivityLog(activity.ActionDocumentDeleted,
		fmt.Sprintf("Deleted credit note %s", note.CreditNoteNumber)); err == nil {
		entry.WithTarget("credit_note", note.ID)
		entry.WithCompany(note.CompanyID)
		s.recorder.Record(ctx, actor.Apply(entry))
	}

	s.logger.Info("Deleted credit note",
		zap.String("credit_note_number", note.CreditNoteNumber),
		zap.String("deleted_by", actor.Email))
	return nil
}

func (s *CreditNoteService) transition(ctx context.Context, id uuid.UUID, actor activityapp.Actor, detail string, fn func(*document.CreditNote) error) error {
	note, err := s.findNote(ctx, id, nil)
	if err != nil {
		return err
	}

	if err := fn(note); err != nil {
		return err
	}

	if err := s.noteRepo.Save(ctx, note); err != nil {
		s.logger.Error("Failed to save credit note status change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update document")
	}

	s.logger.Info(fmt.Sprintf("%s credit note", detail),
		zap.String("credit_note_number", note.CreditNoteNumber),
		zap.String("changed_by", actor.Email))
	return nil
}

func (s *CreditNoteService) findNote(ctx context.Context, id uuid.UUID, companyScope *uuid.UUID) (*document.CreditNote, error) {
	var (
		note *document.CreditNote
		err  error
	)
	if companyScope != nil {
		note, err = s.noteRepo.FindByIDForCompany(ctx, *companyScope, id)
	} else {
		note, err = s.noteRepo.FindByID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("DOCUMENT_NOT_FOUND", "Document not found")
		}
		s.logger.Error("Failed to load credit note", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load document")
	}
	return note, nil
}

func (s *CreditNoteService) fetch(ctx context.Context, file document.StoredFile) (*DownloadResult, error) {
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

func mapCreditNotePage(page *shared.Paginated[*document.CreditNote]) *shared.Paginated[CreditNoteDTO] {
	dtos := make([]CreditNoteDTO, 0, len(page.Items))
	for _, note := range page.Items {
		dtos = append(dtos, creditNoteToDTO(note))
	}
	mapped := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &mapped
}
