package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSortOrder(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "valid ASC", input: "ASC", expected: "ASC"},
		{name: "lowercase asc", input: "asc", expected: "ASC"},
		{name: "valid DESC", input: "DESC", expected: "DESC"},
		{name: "empty defaults to DESC", input: "", expected: "DESC"},
		{name: "whitespace around asc", input: "  asc  ", expected: "ASC"},
		{name: "injection attempt defaults to DESC", input: "ASC; DROP TABLE users", expected: "DESC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortOrder(tt.input))
		})
	}
}

func TestValidateSortField(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		allowed  map[string]bool
		fallback string
		expected string
	}{
		{name: "allowed field", input: "email", allowed: UserSortFields, fallback: "created_at", expected: "email"},
		{name: "empty uses fallback", input: "", allowed: UserSortFields, fallback: "created_at", expected: "created_at"},
		{name: "unknown field uses fallback", input: "password_hash", allowed: UserSortFields, fallback: "created_at", expected: "created_at"},
		{name: "injection attempt uses fallback", input: "id; DELETE FROM users", allowed: UserSortFields, fallback: "id", expected: "id"},
		{name: "invoice issue date", input: "issue_date", allowed: InvoiceSortFields, fallback: "created_at", expected: "issue_date"},
		{name: "credit note number", input: "credit_note_number", allowed: CreditNoteSortFields, fallback: "created_at", expected: "credit_note_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ValidateSortField(tt.input, tt.allowed, tt.fallback))
		})
	}
}
