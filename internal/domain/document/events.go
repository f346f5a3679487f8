package document

import (
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Event type constants
const (
	EventTypeInvoiceImported    = "document.invoice.imported"
	EventTypeInvoiceExpired     = "document.invoice.expired"
	EventTypeCreditNoteImported = "document.credit_note.imported"
	EventTypeCreditNoteExpired  = "document.credit_note.expired"
)

// InvoiceImportedEvent is published when an invoice is imported
type InvoiceImportedEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
}

// NewInvoiceImportedEvent creates a new invoice imported event
func NewInvoiceImportedEvent(invoice *Invoice) *InvoiceImportedEvent {
	return &InvoiceImportedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceImported, "Invoice", invoice.ID, invoice.CompanyID),
		InvoiceNumber:   invoice.InvoiceNumber,
	}
}

// InvoiceExpiredEvent is published when retention expires an invoice
type InvoiceExpiredEvent struct {
	shared.BaseDomainEvent
	InvoiceNumber string `json:"invoice_number"`
	StorageKey    string `json:"storage_key"`
}

// NewInvoiceExpiredEvent creates a new invoice expired event
func NewInvoiceExpiredEvent(invoice *Invoice) *InvoiceExpiredEvent {
	return &InvoiceExpiredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInvoiceExpired, "Invoice", invoice.ID, invoice.CompanyID),
		InvoiceNumber:   invoice.InvoiceNumber,
		StorageKey:      invoice.File.StorageKey,
	}
}

// CreditNoteImportedEvent is published when a credit note is imported
type CreditNoteImportedEvent struct {
	shared.BaseDomainEvent
	CreditNoteNumber string `json:"credit_note_number"`
}

// NewCreditNoteImportedEvent creates a new credit note imported event
func NewCreditNoteImportedEvent(note *CreditNote) *CreditNoteImportedEvent {
	return &CreditNoteImportedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditNoteImported, "CreditNote", note.ID, note.CompanyID),
		CreditNoteNumber: note.CreditNoteNumber,
	}
}

// CreditNoteExpiredEvent is published when retention expires a credit note
type CreditNoteExpiredEvent struct {
	shared.BaseDomainEvent
	CreditNoteNumber string `json:"credit_note_number"`
	StorageKey       string `json:"storage_key"`
}

// NewCreditNoteExpiredEvent creates a new credit note expired event
func NewCreditNoteExpiredEvent(note *CreditNote) *CreditNoteExpiredEvent {
	return &CreditNoteExpiredEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeCreditNoteExpired, "CreditNote", note.ID, note.CompanyID),
		CreditNoteNumber: note.CreditNoteNumber,
		StorageKey:       note.File.StorageKey,
	}
}
