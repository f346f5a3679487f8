package document

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// OverviewService answers the company dashboard counters.
type OverviewService struct {
	invoiceRepo document.InvoiceRepository
	noteRepo    document.CreditNoteRepository
	logger      *zap.Logger
}

// NewOverviewService creates a new overview service
func NewOverviewService(
	invoiceRepo document.InvoiceRepository,
	noteRepo document.CreditNoteRepository,
	logger *zap.Logger,
) *OverviewService {
	return &OverviewService{
		invoiceRepo: invoiceRepo,
		noteRepo:    noteRepo,
		logger:      logger,
	}
}

// Unread counts the documents a company has not opened yet
func (s *OverviewService) Unread(ctx context.Context, companyID uuid.UUID) (*UnreadCounts, error) {
	invoices, err := s.invoiceRepo.CountUnreadByCompanyID(ctx, companyID)
	if err != nil {
		s.logger.Error("Failed to count unread invoices", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count unread documents")
	}

	notes, err := s.noteRepo.CountUnreadByCompanyID(ctx, companyID)
	if err != nil {
		s.logger.Error("Failed to count unread credit notes", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to count unread documents")
	}

	return &UnreadCounts{Invoices: invoices, CreditNotes: notes}, nil
}
