// Package mail renders notification emails from stored templates and
// delivers them over SMTP.
package mail

import (
	"bytes"
	"html/template"
	"maps"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// RenderError describes a template rendering failure.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeInvalidTemplate = "INVALID_TEMPLATE"
	ErrCodeRenderFailed    = "RENDER_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// TemplateEngine renders email subjects and bodies. Bodies go through
// html/template so user-derived values are escaped; subjects go through
// text/template because mail headers carry no markup.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// NewTemplateEngine creates a template engine with the formatting helpers
// email templates use.
func NewTemplateEngine() *TemplateEngine {
	e := &TemplateEngine{}

	e.funcMap = template.FuncMap{
		// Date formatting, German convention
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,

		// Money formatting
		"formatAmount": formatAmount,

		// String utilities
		"upper":   strings.ToUpper,
		"lower":   strings.ToLower,
		"title":   titleCase,
		"trim":    strings.TrimSpace,
		"join":    strings.Join,
		"default": defaultFunc,

		"now": time.Now,
	}

	return e
}

// RenderedMail is a fully rendered subject and HTML body.
type RenderedMail struct {
	Subject string
	Body    string
}

// Render renders a subject line and an HTML body with the same data.
func (e *TemplateEngine) Render(name, subject, body string, data interface{}) (*RenderedMail, error) {
	renderedSubject, err := e.renderSubject(name+".subject", subject, data)
	if err != nil {
		return nil, err
	}

	renderedBody, err := e.RenderBody(name+".body", body, data)
	if err != nil {
		return nil, err
	}

	return &RenderedMail{Subject: renderedSubject, Body: renderedBody}, nil
}

// RenderBody renders an HTML body template.
func (e *TemplateEngine) RenderBody(name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidTemplate, "template content is empty", nil)
	}

	tmpl, err := template.New(name).Funcs(e.funcMap).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidTemplate, "failed to parse template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template", err)
	}

	return buf.String(), nil
}

func (e *TemplateEngine) renderSubject(name, content string, data interface{}) (string, error) {
	if content == "" {
		return "", NewRenderError(ErrCodeInvalidTemplate, "subject template is empty", nil)
	}

	tmpl, err := texttemplate.New(name).Funcs(texttemplate.FuncMap(e.funcMap)).Parse(content)
	if err != nil {
		return "", NewRenderError(ErrCodeInvalidTemplate, "failed to parse subject template", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute subject template", err)
	}

	return strings.TrimSpace(buf.String()), nil
}

// GetFuncMap returns a copy of the template function map
func (e *TemplateEngine) GetFuncMap() template.FuncMap {
	funcMap := make(template.FuncMap, len(e.funcMap))
	maps.Copy(funcMap, e.funcMap)
	return funcMap
}

// formatDate formats a time value as 02.01.2006
func formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006")
}

// formatDateTime formats a time value as 02.01.2006 15:04
func formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("02.01.2006 15:04")
}

// formatAmount formats a decimal amount with two places and a currency code.
// Example: 1234.5, "EUR" -> "1234.50 EUR"
func formatAmount(v interface{}, currency string) string {
	return toDecimal(v).StringFixed(2) + " " + currency
}

// titleCase converts a string to title case with proper Unicode handling
func titleCase(s string) string {
	return cases.Title(language.German).String(s)
}

func defaultFunc(val, def interface{}) interface{} {
	switch typed := val.(type) {
	case nil:
		return def
	case string:
		if typed == "" {
			return def
		}
	}
	return val
}

func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		formats := []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}
		for _, f := range formats {
			if t, err := time.Parse(f, val); err == nil {
				return t
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
