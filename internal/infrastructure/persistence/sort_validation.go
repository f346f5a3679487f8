package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"email":         true,
	"display_name":  true,
	"role":          true,
	"status":        true,
	"last_login_at": true,
}

// CompanySortFields contains allowed sort fields for companies
var CompanySortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"code":           true,
	"name":           true,
	"short_name":     true,
	"status":         true,
	"city":           true,
	"edi_partner_id": true,
}

// SupplierSortFields contains allowed sort fields for suppliers
var SupplierSortFields = map[string]bool{
	"id":            true,
	"created_at":    true,
	"updated_at":    true,
	"code":          true,
	"name":          true,
	"short_name":    true,
	"status":        true,
	"city":          true,
	"edi_sender_id": true,
}

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"invoice_number": true,
	"supplier_id":    true,
	"status":         true,
	"issue_date":     true,
	"due_date":       true,
	"gross_amount":   true,
	"order_number":   true,
	"download_count": true,
}

// CreditNoteSortFields contains allowed sort fields for credit notes
var CreditNoteSortFields = map[string]bool{
	"id":                 true,
	"created_at":         true,
	"updated_at":         true,
	"credit_note_number": true,
	"supplier_id":        true,
	"status":             true,
	"issue_date":         true,
	"gross_amount":       true,
	"invoice_number":     true,
	"download_count":     true,
}

// ActivityLogSortFields contains allowed sort fields for activity log entries
var ActivityLogSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"action":     true,
	"user_email": true,
	"company_id": true,
}

// ImportBatchSortFields contains allowed sort fields for import batches
var ImportBatchSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"file_name":    true,
	"status":       true,
	"total_rows":   true,
	"started_at":   true,
	"completed_at": true,
}

// RegistrationSortFields contains allowed sort fields for pending registrations
var RegistrationSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"company_name": true,
	"email":        true,
	"status":       true,
	"reviewed_at":  true,
}
