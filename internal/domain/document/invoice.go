package document

import (
	"time"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Invoice represents an imported invoice. The invoice number is unique per
// company and supplier; re-importing the same number replaces nothing and is
// rejected at the application layer.
type Invoice struct {
	shared.CompanyAggregateRoot
	InvoiceNumber      string          `gorm:"type:varchar(100);not null;uniqueIndex:idx_invoice_company_supplier_number,priority:3"`
	SupplierID         uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoice_company_supplier_number,priority:2"`
	Status             Status          `gorm:"type:varchar(20);not null;default:'available';index"`
	IssueDate          time.Time       `gorm:"not null;index"`
	DueDate            *time.Time      `gorm:"index"`
	Currency           string          `gorm:"type:varchar(3);not null;default:'EUR'"`
	NetAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TaxAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrossAmount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OrderNumber        string          `gorm:"type:varchar(100);index"` // Buyer's purchase order reference
	DeliveryNoteNumber string          `gorm:"type:varchar(100)"`
	File               StoredFile      `gorm:"embedded"`
	ImportBatchID      *uuid.UUID      `gorm:"type:uuid;index"`
	ExpiresAt          *time.Time      `gorm:"index"` // Retention deadline, nil keeps forever
	FirstViewedAt      *time.Time      // First open by a company user
	DownloadCount      int             `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Invoice) TableName() string {
	return "invoices"
}

// NewInvoice creates a new invoice from imported header data
func NewInvoice(companyID, supplierID uuid.UUID, invoiceNumber string, issueDate time.Time, file StoredFile) (*Invoice, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY_ID", "Company ID cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SUPPLIER_ID", "Supplier ID cannot be empty")
	}
	if err := validateDocumentNumber(invoiceNumber); err != nil {
		return nil, err
	}
	if issueDate.IsZero() {
		return nil, shared.NewDomainError("INVALID_ISSUE_DATE", "Issue date cannot be empty")
	}
	if err := file.Validate(); err != nil {
		return nil, err
	}

	invoice := &Invoice{
		CompanyAggregateRoot: shared.NewCompanyAggregateRoot(companyID),
		InvoiceNumber:        invoiceNumber,
		SupplierID:           supplierID,
		Status:               StatusAvailable,
		IssueDate:            issueDate,
		Currency:             "EUR",
		NetAmount:            decimal.Zero,
		TaxAmount:            decimal.Zero,
		GrossAmount:          decimal.Zero,
		File:                 file,
	}

	invoice.AddDomainEvent(NewInvoiceImportedEvent(invoice))

	return invoice, nil
}

// SetAmounts sets the invoice amounts. Gross must equal net plus tax.
func (i *Invoice) SetAmounts(currency string, net, tax, gross decimal.Decimal) error {
	if err := validateCurrency(currency); err != nil {
		return err
	}
	if gross.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Gross amount cannot be negative")
	}
	if !net.Add(tax).Equal(gross) {
		return shared.NewDomainError("INVALID_AMOUNT", "Gross amount must equal net plus tax")
	}

	i.Currency = currency
	i.NetAmount = net
	i.TaxAmount = tax
	i.GrossAmount = gross
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// SetDueDate sets the payment due date
func (i *Invoice) SetDueDate(dueDate time.Time) error {
	if dueDate.Before(i.IssueDate) {
		return shared.NewDomainError("INVALID_DUE_DATE", "Due date cannot be before issue date")
	}

	i.DueDate = &dueDate
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// SetReferences sets the order references printed on the invoice
func (i *Invoice) SetReferences(orderNumber, deliveryNoteNumber string) error {
	if len(orderNumber) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Order number cannot exceed 100 characters")
	}
	if len(deliveryNoteNumber) > 100 {
		return shared.NewDomainError("INVALID_REFERENCE", "Delivery note number cannot exceed 100 characters")
	}

	i.OrderNumber = orderNumber
	i.DeliveryNoteNumber = deliveryNoteNumber
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// ApplyRetention sets the retention deadline relative to the issue date
func (i *Invoice) ApplyRetention(retention time.Duration) {
	i.ExpiresAt = retentionExpiry(i.IssueDate, retention)
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// AttachToBatch records the import batch that brought this invoice in
func (i *Invoice) AttachToBatch(batchID uuid.UUID) {
	i.ImportBatchID = &batchID
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// RecordView marks the first open by a company user
func (i *Invoice) RecordView() {
	if i.FirstViewedAt == nil {
		now := time.Now()
		i.FirstViewedAt = &now
		i.UpdatedAt = now
		i.IncrementVersion()
	}
}

// RecordDownload counts a file download
func (i *Invoice) RecordDownload() {
	i.DownloadCount++
	i.RecordView()
	i.UpdatedAt = time.Now()
	i.IncrementVersion()
}

// Archive hides the invoice from company users
func (i *Invoice) Archive() error {
	if i.Status != StatusAvailable {
		return shared.NewDomainError("INVALID_STATE", "Only available invoices can be archived")
	}

	i.Status = StatusArchived
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Restore makes an archived invoice available again
func (i *Invoice) Restore() error {
	if i.Status != StatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Only archived invoices can be restored")
	}

	i.Status = StatusAvailable
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	return nil
}

// Expire marks the invoice past retention. The stored file is purged by the
// retention sweep, the header row stays for audit.
func (i *Invoice) Expire() error {
	if i.Status == StatusExpired {
		return shared.NewDomainError("INVALID_STATE", "Invoice is already expired")
	}

	i.Status = StatusExpired
	i.UpdatedAt = time.Now()
	i.IncrementVersion()

	i.AddDomainEvent(NewInvoiceExpiredEvent(i))

	return nil
}

// IsAvailable returns true if company users can see and download the invoice
func (i *Invoice) IsAvailable() bool {
	return i.Status == StatusAvailable
}

// IsNew returns true if no company user has opened the invoice yet
func (i *Invoice) IsNew() bool {
	return i.FirstViewedAt == nil
}

// IsPastRetention returns true if the retention deadline has passed
func (i *Invoice) IsPastRetention(now time.Time) bool {
	return i.ExpiresAt != nil && now.After(*i.ExpiresAt)
}

// IsOverdue returns true if the due date has passed
func (i *Invoice) IsOverdue(now time.Time) bool {
	return i.DueDate != nil && now.After(*i.DueDate)
}
