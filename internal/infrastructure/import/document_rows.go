package csvimport

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/document"
)

// Column names in the document CSV. Header matching is case-insensitive.
const (
	ColType           = "type"
	ColCompanyCode    = "company_code"
	ColSupplierEDIID  = "supplier_edi_id"
	ColDocumentNumber = "document_number"
	ColIssueDate      = "issue_date"
	ColDueDate        = "due_date"
	ColCurrency       = "currency"
	ColNetAmount      = "net_amount"
	ColTaxAmount      = "tax_amount"
	ColGrossAmount    = "gross_amount"
	ColOrderNumber    = "order_number"
	ColDeliveryNote   = "delivery_note_number"
	ColInvoiceNumber  = "invoice_number" // Credit note reference
	ColFileName       = "file_name"      // PDF uploaded alongside the CSV
)

// RequiredColumns are the headers every document CSV must carry.
func RequiredColumns() []string {
	return []string{
		ColType,
		ColCompanyCode,
		ColSupplierEDIID,
		ColDocumentNumber,
		ColIssueDate,
		ColNetAmount,
		ColTaxAmount,
		ColGrossAmount,
		ColFileName,
	}
}

// DocumentRow is one fully parsed and structurally valid CSV row.
// Company and supplier references are still unresolved strings; the import
// service resolves them against the directory.
type DocumentRow struct {
	Line               int
	Kind               document.Kind
	CompanyCode        string
	SupplierEDIID      string
	DocumentNumber     string
	IssueDate          time.Time
	DueDate            *time.Time
	Currency           string
	NetAmount          decimal.Decimal
	TaxAmount          decimal.Decimal
	GrossAmount        decimal.Decimal
	OrderNumber        string
	DeliveryNoteNumber string
	InvoiceNumber      string
	FileName           string
}

// DocumentRowMapper turns raw CSV rows into DocumentRows, collecting
// structural errors per row.
type DocumentRowMapper struct {
	errors *ErrorCollection
	seen   map[string]int // type|company|number -> first line
}

// NewDocumentRowMapper creates a mapper with an error limit.
func NewDocumentRowMapper(maxErrors int) *DocumentRowMapper {
	return &DocumentRowMapper{
		errors: NewErrorCollection(maxErrors),
		seen:   make(map[string]int),
	}
}

// Errors returns the collected row errors.
func (m *DocumentRowMapper) Errors() *ErrorCollection {
	return m.errors
}

// MapRow parses one row. It returns nil when the row has errors; the
// errors land in the collection.
func (m *DocumentRowMapper) MapRow(row *Row) *DocumentRow {
	before := m.errors.TotalCount()

	out := &DocumentRow{Line: row.LineNumber}

	out.Kind = m.parseKind(row)
	out.CompanyCode = m.requireString(row, ColCompanyCode)
	out.SupplierEDIID = m.requireString(row, ColSupplierEDIID)
	out.DocumentNumber = m.requireString(row, ColDocumentNumber)
	out.IssueDate = m.parseRequiredDate(row, ColIssueDate)
	out.DueDate = m.parseOptionalDate(row, ColDueDate)
	out.Currency = strings.ToUpper(row.GetOrDefault(ColCurrency, "EUR"))
	out.NetAmount = m.parseAmount(row, ColNetAmount)
	out.TaxAmount = m.parseAmount(row, ColTaxAmount)
	out.GrossAmount = m.parseAmount(row, ColGrossAmount)
	out.OrderNumber = row.Get(ColOrderNumber)
	out.DeliveryNoteNumber = row.Get(ColDeliveryNote)
	out.InvoiceNumber = row.Get(ColInvoiceNumber)
	out.FileName = m.requireString(row, ColFileName)

	if m.errors.TotalCount() > before {
		return nil
	}

	// Cross-field checks only when the fields themselves parsed
	if !out.NetAmount.Add(out.TaxAmount).Equal(out.GrossAmount) {
		m.errors.Add(NewRowErrorWithValue(row.LineNumber, ColGrossAmount, ErrCodeImportAmountMismatch,
			"net plus tax does not equal gross", out.GrossAmount.String()))
		return nil
	}

	if out.DueDate != nil && out.DueDate.Before(out.IssueDate) {
		m.errors.AddInvalidValue(row.LineNumber, ColDueDate,
			"due date is before issue date", row.Get(ColDueDate))
		return nil
	}

	dupKey := string(out.Kind) + "|" + out.CompanyCode + "|" + out.DocumentNumber
	if firstLine, exists := m.seen[dupKey]; exists {
		m.errors.Add(NewRowErrorWithValue(row.LineNumber, ColDocumentNumber, ErrCodeImportDuplicateInFile,
			fmt.Sprintf("duplicate document number (first seen in row %d)", firstLine), out.DocumentNumber))
		return nil
	}
	m.seen[dupKey] = row.LineNumber

	return out
}

func (m *DocumentRowMapper) parseKind(row *Row) document.Kind {
	raw := strings.ToLower(row.Get(ColType))
	switch raw {
	case "invoice", "rechnung":
		return document.KindInvoice
	case "credit_note", "creditnote", "gutschrift":
		return document.KindCreditNote
	case "":
		m.errors.AddRequired(row.LineNumber, ColType)
	default:
		m.errors.AddInvalidValue(row.LineNumber, ColType,
			"expected 'invoice' or 'credit_note'", raw)
	}
	return ""
}

func (m *DocumentRowMapper) requireString(row *Row, column string) string {
	v := row.Get(column)
	if v == "" {
		m.errors.AddRequired(row.LineNumber, column)
	}
	return v
}

func (m *DocumentRowMapper) parseRequiredDate(row *Row, column string) time.Time {
	raw := row.Get(column)
	if raw == "" {
		m.errors.AddRequired(row.LineNumber, column)
		return time.Time{}
	}

	t, err := ParseDate(raw)
	if err != nil {
		m.errors.AddInvalidValue(row.LineNumber, column,
			"expected a date like 31.12.2026 or 2026-12-31", raw)
		return time.Time{}
	}
	return t
}

func (m *DocumentRowMapper) parseOptionalDate(row *Row, column string) *time.Time {
	raw := row.Get(column)
	if raw == "" {
		return nil
	}

	t, err := ParseDate(raw)
	if err != nil {
		m.errors.AddInvalidValue(row.LineNumber, column,
			"expected a date like 31.12.2026 or 2026-12-31", raw)
		return nil
	}
	return &t
}

func (m *DocumentRowMapper) parseAmount(row *Row, column string) decimal.Decimal {
	raw := row.Get(column)
	if raw == "" {
		m.errors.AddRequired(row.LineNumber, column)
		return decimal.Zero
	}

	d, err := ParseAmount(raw)
	if err != nil {
		m.errors.AddInvalidValue(row.LineNumber, column,
			"expected an amount like 1234.56 or 1.234,56", raw)
		return decimal.Zero
	}
	return d
}

var dateFormats = []string{"02.01.2006", "2006-01-02", "02.01.06"}

// ParseDate accepts German and ISO date formats.
func ParseDate(s string) (time.Time, error) {
	for _, f := range dateFormats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", s)
}

// ParseAmount accepts decimal-point amounts ("1234.56"), German
// decimal-comma amounts ("1.234,56"), and English thousands-comma
// amounts ("1,234.56"). When both separators appear, the last one is
// the decimal separator.
func ParseAmount(s string) (decimal.Decimal, error) {
	normalized := s

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	switch {
	case lastComma >= 0 && lastComma > lastDot:
		normalized = strings.ReplaceAll(normalized, ".", "")
		normalized = strings.Replace(normalized, ",", ".", 1)
	case lastComma >= 0:
		normalized = strings.ReplaceAll(normalized, ",", "")
	case strings.Count(s, ".") > 1:
		normalized = strings.ReplaceAll(normalized, ".", "")
	}

	d, err := decimal.NewFromString(normalized)
	if err != nil {
		return decimal.Zero, fmt.Errorf("unrecognized amount %q", s)
	}
	return d, nil
}
