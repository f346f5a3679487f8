package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// CreditNote represents an imported credit note. It may reference the invoice
// it corrects by number; the reference is informational, matching is by
// company and supplier like invoices.
type CreditNote struct {
	shared.CompanyAggregateRoot
	CreditNoteNumber string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_credit_note_company_supplier_number,priority:3"`
	SupplierID       uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_credit_note_company_supplier_number,priority:2"`
	Status           Status          `gorm:"type:varchar(20);not null;default:'available';index"`
	IssueDate        time.Time       `gorm:"not null;index"`
	Currency         string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	NetAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrossAmount      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	InvoiceNumber    string          `gorm:"type:varchar(100);index"` // Corrected invoice, if stated
	File             StoredFile      `gorm:"embedded"`
	ImportBatchID    *uuid.UUID      `gorm:"type:uuid;index"`
	ExpiresAt        *time.Time      `gorm:"index"`
	FirstViewedAt    *time.Time
	DownloadCount    int `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CreditNote) TableName() string {
	return "credit_notes"
}

// NewCreditNote creates a new credit note from imported header data
func NewCreditNote(companyID, supplierID uuid.UUID, creditNoteNumber string, issueDate time.Time, file StoredFile) (*CreditNote, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY_ID", "Company ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_ID", "Supplier ID cannot be empty")
	}
	if err := validateDocumentNumber(creditNoteNumber); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date cannot be empty")
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}

	note := &CreditNote{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		CreditNoteNumber:     creditNoteNumber,
		SupplierID:           supplierID,
		Status:               StatusAvailable,
		IssueDate:            issueDate,
		Currency:             "EUR",
		NetAmount:            decimal.Zero,
		TaxAmount:            decimal.Zero,
		GrossAmount:          decimal.Zero,
		File:                 file,
	}

	note.AddDomainEvent(NewCreditNoteImportedEvent(note))

	return note, nil
}

// SetAmounts sets the credit note amounts. Gross must equal net plus tax.
// Amounts are stored positive; the document type carries the sign.
func (c *CreditNote) SetAmounts(currency string, net, tax, gross decimal.Decimal) error {
	if err := validateCurrency(currency); err != nil {
		return err
	}
	if gross.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Gross amount cannot be negative")
	}
	if !net.Add(tax).Equal(gross) {
		return shared.NewDomainError("INVALID_AMOUNT", "Gross amount must equal net plus tax")
	}

	c.Currency = currency
	c.NetAmount = net
	c.TaxAmount = tax
	c.GrossAmount = gross
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetInvoiceReference records the invoice number this note corrects
func (c *CreditNote) SetInvoiceReference(invoiceNumber string) error {
	if len(invoiceNumber) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Invoice number cannot exceed 100 characters")
	}

	c.InvoiceNumber = invoiceNumber
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// ApplyRetention sets the retention deadline relative to the issue date
func (c *CreditNote) ApplyRetention(retention time.Duration) {
	c.ExpiresAt = retentionExpiry(c.IssueDate, retention)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// AttachToBatch records the import batch that brought this note in
func (c *CreditNote) AttachToBatch(batchID uuid.UUID) {
	c.ImportBatchID = &batchID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// RecordView marks the first open by a company user
func (c *CreditNote) RecordView() {
	if c.FirstViewedAt == nil {
		now := time.Now()
		c.FirstViewedAt = &now
		c.UpdatedAt = now
		c.IncrementVersion()
	}
}

// RecordDownload counts a file download
func (c *CreditNote) RecordDownload() {
	c.DownloadCount++
	c.RecordView()
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Archive hides the credit note from company users
func (c *CreditNote) Archive() error {
	if c.Status != StatusAvailable {
		return shared.NewDomainError("INVALID_STATE", "Only available credit notes can be archived")
	}

	c.Status = StatusArchived
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Restore makes an archived credit note available again
func (c *CreditNote) Restore() error {
	if c.Status != StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Only archived credit notes can be restored")
	}

	c.Status = StatusAvailable
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// Expire marks the credit note past retention
func (c *CreditNote) Expire() error {
	if c.Status == StatusExpired {
		return shared.NewDomainError("INVALID_STATE", "Credit note is already expired")
	}

	c.Status = StatusExpired
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCreditNoteExpiredEvent(c))

	return nil
}

// IsAvailable returns true if company users can see and download the note
func (c *CreditNote) IsAvailable() bool {
	return c.Status == StatusAvailable
}

// IsNew returns true if no company user has opened the note yet
func (c *CreditNote) IsNew() bool {
	return c.FirstViewedAt == nil
}

// IsPastRetention returns true if the retention deadline has passed
func (c *CreditNote) IsPastRetention(now time.Time) bool {
	return c.ExpiresAt != nil && now.After(*c.ExpiresAt)
}
