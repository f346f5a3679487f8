package csvimport

import (
	"errors"
	"fmt"
	"strings"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/bulk"
)

// Import error codes
const (
	ErrCodeImportInvalidFile     = "ERR_IMPORT_INVALID_FILE"
	ErrCodeImportEmptyFile       = "ERR_IMPORT_EMPTY_FILE"
	ErrCodeImportFileTooLarge    = "ERR_IMPORT_FILE_TOO_LARGE"
	ErrCodeImportInvalidEncoding = "ERR_IMPORT_INVALID_ENCODING"
	ErrCodeImportMissingHeader   = "ERR_IMPORT_MISSING_HEADER"
	ErrCodeImportMalformedRow    = "ERR_IMPORT_MALFORMED_ROW"
	ErrCodeImportRequiredField   = "ERR_IMPORT_REQUIRED_FIELD"
	ErrCodeImportInvalidValue    = "ERR_IMPORT_INVALID_VALUE"
	ErrCodeImportDuplicateInFile = "ERR_IMPORT_DUPLICATE_IN_FILE"
	ErrCodeImportDuplicate       = "ERR_IMPORT_DUPLICATE"
	ErrCodeImportUnknownCompany  = "ERR_IMPORT_UNKNOWN_COMPANY"
	ErrCodeImportUnknownSupplier = "ERR_IMPORT_UNKNOWN_SUPPLIER"
	ErrCodeImportMissingFile     = "ERR_IMPORT_MISSING_FILE"
	ErrCodeImportAmountMismatch  = "ERR_IMPORT_AMOUNT_MISMATCH"
)

// Common import errors
var (
	ErrEmptyFile       = errors.New("CSV file is empty")
	ErrInvalidEncoding = errors.New("invalid file encoding, expected UTF-8")
	ErrMissingHeader   = errors.New("CSV file missing header row")
	ErrNoDataRows      = errors.New("CSV file contains no data rows")
	ErrFileTooLarge    = errors.New("file exceeds maximum allowed size")
)

// RowError describes a problem in a specific row.
type RowError struct {
	Row     int    `json:"row"`
	Column  string `json:"column"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Value   string `json:"value,omitempty"`
}

// Error implements the error interface
func (e RowError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("row %d, column '%s': %s", e.Row, e.Column, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// NewRowError creates a new RowError
func NewRowError(row int, column, code, message string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message}
}

// NewRowErrorWithValue creates a new RowError carrying the offending value
func NewRowErrorWithValue(row int, column, code, message, value string) RowError {
	return RowError{Row: row, Column: column, Code: code, Message: message, Value: value}
}

// ToBatchError converts to the error detail stored on the import batch.
func (e RowError) ToBatchError() bulk.RowError {
	return bulk.RowError{
		Row:     e.Row,
		Column:  e.Column,
		Code:    e.Code,
		Message: e.Message,
		Value:   e.Value,
	}
}

// ErrorCollection gathers row errors up to a limit. The total count keeps
// growing past the limit so the summary stays honest.
type ErrorCollection struct {
	errors     []RowError
	maxErrors  int
	totalCount int
}

// NewErrorCollection creates an ErrorCollection with a maximum error limit
func NewErrorCollection(maxErrors int) *ErrorCollection {
	if maxErrors <= 0 {
		maxErrors = 100
	}
	return &ErrorCollection{
		errors:    make([]RowError, 0, maxErrors),
		maxErrors: maxErrors,
	}
}

// Add adds an error to the collection
func (ec *ErrorCollection) Add(err RowError) {
	ec.totalCount++
	if len(ec.errors) < ec.maxErrors {
		ec.errors = append(ec.errors, err)
	}
}

// AddRequired adds a required field error
func (ec *ErrorCollection) AddRequired(row int, column string) {
	ec.Add(NewRowError(row, column, ErrCodeImportRequiredField,
		fmt.Sprintf("field '%s' is required", column)))
}

// AddInvalidValue adds an invalid value error
func (ec *ErrorCollection) AddInvalidValue(row int, column, message, value string) {
	ec.Add(NewRowErrorWithValue(row, column, ErrCodeImportInvalidValue, message, value))
}

// Errors returns the collected errors
func (ec *ErrorCollection) Errors() []RowError {
	return ec.errors
}

// BatchErrors returns the collected errors as batch error details.
func (ec *ErrorCollection) BatchErrors() []bulk.RowError {
	out := make([]bulk.RowError, len(ec.errors))
	for i, e := range ec.errors {
		out[i] = e.ToBatchError()
	}
	return out
}

// Count returns the number of collected errors (up to maxErrors)
func (ec *ErrorCollection) Count() int {
	return len(ec.errors)
}

// TotalCount returns the total number of errors including dropped ones
func (ec *ErrorCollection) TotalCount() int {
	return ec.totalCount
}

// HasErrors returns true if there are any errors
func (ec *ErrorCollection) HasErrors() bool {
	return ec.totalCount > 0
}

// IsTruncated returns true if some errors were dropped due to the limit
func (ec *ErrorCollection) IsTruncated() bool {
	return ec.totalCount > ec.maxErrors
}

// String returns a readable summary of all collected errors.
func (ec *ErrorCollection) String() string {
	if !ec.HasErrors() {
		return "no errors"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d error(s) found", ec.totalCount))
	if ec.IsTruncated() {
		sb.WriteString(fmt.Sprintf(" (showing first %d)", ec.maxErrors))
	}
	sb.WriteString(":\n")

	for _, err := range ec.errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}

	return sb.String()
}
