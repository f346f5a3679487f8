package dto

import (
	"net/http"
	"strings"
)

// Generic error codes used by the HTTP layer itself. Domain error codes
// come from the application services and are passed through unchanged.
const (
	ErrCodeBadRequest   = "BAD_REQUEST"
	ErrCodeValidation   = "VALIDATION_ERROR"
	ErrCodeUnauthorized = "UNAUTHORIZED"
	ErrCodeForbidden    = "FORBIDDEN"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeConflict     = "CONFLICT"
	ErrCodeRateLimited  = "RATE_LIMIT_EXCEEDED"
	ErrCodeTooLarge     = "REQUEST_TOO_LARGE"
	ErrCodeInternal     = "INTERNAL_ERROR"
)

// errorCodeHTTPStatus maps error codes to HTTP status codes. Codes not
// listed here fall back to the prefix families in GetHTTPStatus, then 500,
// so an unmapped domain error never leaks as a false success.
var errorCodeHTTPStatus = map[string]int{
	// Generic
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeNotFound:     http.StatusNotFound,
	ErrCodeConflict:     http.StatusConflict,
	ErrCodeRateLimited:  http.StatusTooManyRequests,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeInternal:     http.StatusInternalServerError,

	// Authentication
	"INVALID_CREDENTIALS": http.StatusUnauthorized,
	"INVALID_TOKEN":       http.StatusUnauthorized,
	"ACCOUNT_LOCKED":      http.StatusLocked,
	"ACCOUNT_DEACTIVATED": http.StatusForbidden,
	"ACCOUNT_PENDING":     http.StatusForbidden,
	"ACCOUNT_INACTIVE":    http.StatusForbidden,
	"INVALID_PASSWORD":    http.StatusUnprocessableEntity,
	"WEAK_PASSWORD":       http.StatusUnprocessableEntity,

	// Accounts and registrations
	"USER_NOT_FOUND":                http.StatusNotFound,
	"USER_DEACTIVATED":              http.StatusForbidden,
	"EMAIL_EXISTS":                  http.StatusConflict,
	"NOT_LOCKED":                    http.StatusConflict,
	"INVALID_COMPANY_ID":            http.StatusBadRequest,
	"INVALID_COMPANY_CODE":          http.StatusUnprocessableEntity,
	"REGISTRATION_NOT_FOUND":        http.StatusNotFound,
	"REGISTRATION_EXISTS":           http.StatusConflict,
	"ALREADY_REVIEWED":              http.StatusConflict,
	"REGISTRATION_ALREADY_REVIEWED": http.StatusConflict,
	"CONCURRENCY_CONFLICT":          http.StatusConflict,

	// Directory
	"COMPANY_NOT_FOUND":    http.StatusNotFound,
	"COMPANY_CODE_EXISTS":  http.StatusConflict,
	"COMPANY_HAS_USERS":    http.StatusUnprocessableEntity,
	"SUPPLIER_NOT_FOUND":   http.StatusNotFound,
	"SUPPLIER_CODE_EXISTS": http.StatusConflict,
	"SUPPLIER_IN_USE":      http.StatusUnprocessableEntity,

	// Documents
	"DOCUMENT_NOT_FOUND":     http.StatusNotFound,
	"DOCUMENT_NOT_AVAILABLE": http.StatusGone,
	"DOCUMENT_EXPIRED":       http.StatusGone,

	// Import
	"INVALID_CSV":     http.StatusBadRequest,
	"EMPTY_CSV":       http.StatusBadRequest,
	"MISSING_COLUMNS": http.StatusBadRequest,
	"TOO_MANY_ERRORS": http.StatusBadRequest,
	"FILE_TOO_LARGE":  http.StatusRequestEntityTooLarge,
	"BATCH_NOT_FOUND": http.StatusNotFound,

	// Settings and templates
	"UNKNOWN_SETTING":      http.StatusBadRequest,
	"INVALID_INPUT":        http.StatusBadRequest,
	"INVALID_TEMPLATE":     http.StatusBadRequest,
	"INVALID_TEMPLATE_KEY": http.StatusNotFound,
	"TEMPLATE_NOT_FOUND":   http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status for an error code. Unlisted codes
// fall into the validation (INVALID_*) and state-conflict (ALREADY_*)
// families; anything else is a server fault.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusUnprocessableEntity
	case strings.HasPrefix(code, "ALREADY_"):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
