package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
)

// InvoiceDTO represents an invoice for transfer
type InvoiceDTO struct {
	ID                 uuid.UUID       `json:"id"`
	CompanyID          uuid.UUID       `json:"company_id"`
	SupplierID         uuid.UUID       `json:"supplier_id"`
	InvoiceNumber      string          `json:"invoice_number"`
	Status             string          `json:"status"`
	IssueDate          time.Time       `json:"issue_date"`
	DueDate            *time.Time      `json:"due_date,omitempty"`
	Currency           string          `json:"currency"`
	NetAmount          decimal.Decimal `json:"net_amount"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	GrossAmount        decimal.Decimal `json:"gross_amount"`
	OrderNumber        string          `json:"order_number,omitempty"`
	DeliveryNoteNumber string          `json:"delivery_note_number,omitempty"`
	FileName           string          `json:"file_name"`
	FileSize           int64           `json:"file_size"`
	ExpiresAt          *time.Time      `json:"expires_at,omitempty"`
	Unread             bool            `json:"unread"`
	DownloadCount      int             `json:"download_count"`
	CreatedAt          time.Time       `json:"created_at"`
}

// CreditNoteDTO represents a credit note for transfer
type CreditNoteDTO struct {
	ID               uuid.UUID       `json:"id"`
	CompanyID        uuid.UUID       `json:"company_id"`
	SupplierID       uuid.UUID       `json:"supplier_id"`
	CreditNoteNumber string          `json:"credit_note_number"`
	Status           string          `json:"status"`
	IssueDate        time.Time       `json:"issue_date"`
	Currency         string          `json:"currency"`
	NetAmount        decimal.Decimal `json:"net_amount"`
	TaxAmount        decimal.Decimal `json:"tax_amount"`
	GrossAmount      decimal.Decimal `json:"gross_amount"`
	InvoiceNumber    string          `json:"invoice_number,omitempty"`
	FileName         string          `json:"file_name"`
	FileSize         int64           `json:"file_size"`
	ExpiresAt        *time.Time      `json:"expires_at,omitempty"`
	Unread           bool            `json:"unread"`
	DownloadCount    int             `json:"download_count"`
	CreatedAt        time.Time       `json:"created_at"`
}

// DownloadResult is either a presigned URL or the streamed file content,
// depending on what the storage driver supports.
type DownloadResult struct {
	URL         string     `json:"url,omitempty"`
	URLExpires  *time.Time `json:"url_expires,omitempty"`
	Content     []byte     `json:"-"`
	FileName    string     `json:"file_name"`
	ContentType string     `json:"content_type"`
}

// Streamed reports whether the caller has to serve the bytes itself
func (r *DownloadResult) Streamed() bool {
	return r.URL == ""
}

// UnreadCounts summarizes what a company has not opened yet
type UnreadCounts struct {
	Invoices    int64 `json:"invoices"`
	CreditNotes int64 `json:"credit_notes"`
}

func invoiceToDTO(inv *document.Invoice) InvoiceDTO {
	return InvoiceDTO{
		ID:                 inv.ID,
		CompanyID:          inv.CompanyID,
		SupplierID:         inv.SupplierID,
		InvoiceNumber:      inv.InvoiceNumber,
		Status:             string(inv.Status),
		IssueDate:          inv.IssueDate,
		DueDate:            inv.DueDate,
		Currency:           inv.Currency,
		NetAmount:          inv.NetAmount,
		TaxAmount:          inv.TaxAmount,
		GrossAmount:        inv.GrossAmount,
		OrderNumber:        inv.OrderNumber,
		DeliveryNoteNumber: inv.DeliveryNoteNumber,
		FileName:           inv.File.FileName,
		FileSize:           inv.File.FileSize,
		ExpiresAt:          inv.ExpiresAt,
		Unread:             inv.IsNew(),
		DownloadCount:      inv.DownloadCount,
		CreatedAt:          inv.CreatedAt,
	}
}

func creditNoteToDTO(note *document.CreditNote) CreditNoteDTO {
	return CreditNoteDTO{
		ID:               note.ID,
		CompanyID:        note.CompanyID,
		SupplierID:       note.SupplierID,
		CreditNoteNumber: note.CreditNoteNumber,
		Status:           string(note.Status),
		IssueDate:        note.IssueDate,
		Currency:         note.Currency,
		NetAmount:        note.NetAmount,
		TaxAmount:        note.TaxAmount,
		GrossAmount:      note.GrossAmount,
		InvoiceNumber:    note.InvoiceNumber,
		FileName:         note.File.FileName,
		FileSize:         note.File.FileSize,
		ExpiresAt:        note.ExpiresAt,
		Unread:           note.IsNew(),
		DownloadCount:    note.DownloadCount,
		CreatedAt:        note.CreatedAt,
	}
}
