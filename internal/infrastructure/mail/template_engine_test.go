package mail

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	engine := NewTemplateEngine()

	t.Run("renders subject and body with same data", func(t *testing.T) {
		result, err := engine.Render("welcome",
			"Zugang für {{ .Email }}",
			"<p>Guten Tag {{ .Email }}</p>",
			map[string]interface{}{"Email": "user@example.com"})
		require.NoError(t, err)

		assert.Equal(t, "Zugang für user@example.com", result.Subject)
		assert.Equal(t, "<p>Guten Tag user@example.com</p>", result.Body)
	})

	t.Run("escapes user data in body", func(t *testing.T) {
		result, err := engine.Render("test",
			"Test",
			"<p>{{ .Name }}</p>",
			map[string]interface{}{"Name": "<script>alert(1)</script>"})
		require.NoError(t, err)

		assert.NotContains(t, result.Body, "<script>")
		assert.Contains(t, result.Body, "&lt;script&gt;")
	})

	t.Run("fails on empty subject", func(t *testing.T) {
		_, err := engine.Render("test", "", "<p>body</p>", nil)
		require.Error(t, err)

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidTemplate, renderErr.Code)
	})

	t.Run("fails on invalid body syntax", func(t *testing.T) {
		_, err := engine.Render("test", "Subject", "{{ .Unclosed", nil)
		require.Error(t, err)

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeInvalidTemplate, renderErr.Code)
	})

	t.Run("fails when data is missing a method call", func(t *testing.T) {
		_, err := engine.RenderBody("test", "{{ .Value.Missing }}", map[string]interface{}{"Value": 1})
		require.Error(t, err)

		var renderErr *RenderError
		require.ErrorAs(t, err, &renderErr)
		assert.Equal(t, ErrCodeRenderFailed, renderErr.Code)
	})
}

func TestTemplateFunctions(t *testing.T) {
	engine := NewTemplateEngine()

	render := func(t *testing.T, content string, data interface{}) string {
		t.Helper()
		out, err := engine.RenderBody("test", content, data)
		require.NoError(t, err)
		return out
	}

	t.Run("formatDate", func(t *testing.T) {
		date := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
		assert.Equal(t, "14.03.2026", render(t, "{{ formatDate . }}", date))
	})

	t.Run("formatDate with nil pointer", func(t *testing.T) {
		assert.Equal(t, "", render(t, "{{ formatDate .T }}", map[string]*time.Time{"T": nil}))
	})

	t.Run("formatDateTime", func(t *testing.T) {
		date := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
		assert.Equal(t, "14.03.2026 10:30", render(t, "{{ formatDateTime . }}", date))
	})

	t.Run("formatAmount", func(t *testing.T) {
		amount := decimal.NewFromFloat(1234.5)
		assert.Equal(t, "1234.50 EUR", render(t, `{{ formatAmount . "EUR" }}`, amount))
	})

	t.Run("default picks fallback for empty string", func(t *testing.T) {
		data := map[string]string{"Name": "", "Email": "x@example.com"}
		assert.Equal(t, "x@example.com", render(t, `{{ default .Name .Email }}`, data))
	})

	t.Run("default keeps non-empty value", func(t *testing.T) {
		data := map[string]string{"Name": "Anna", "Email": "x@example.com"}
		assert.Equal(t, "Anna", render(t, `{{ default .Name .Email }}`, data))
	})

	t.Run("upper and lower", func(t *testing.T) {
		assert.Equal(t, "ABC", render(t, `{{ upper "abc" }}`, nil))
		assert.Equal(t, "abc", render(t, `{{ lower "ABC" }}`, nil))
	})

	t.Run("title handles umlauts", func(t *testing.T) {
		assert.Equal(t, "Frau Müller", render(t, `{{ title "frau müller" }}`, nil))
	})
}

func TestGetFuncMapReturnsCopy(t *testing.T) {
	engine := NewTemplateEngine()

	m := engine.GetFuncMap()
	m["formatDate"] = nil
	assert.NotNil(t, engine.GetFuncMap()["formatDate"])
}
