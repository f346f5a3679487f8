package mail

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
)

func TestGetDefaultTemplates(t *testing.T) {
	templates := GetDefaultTemplates()

	t.Run("covers every template key exactly once", func(t *testing.T) {
		seen := make(map[settings.TemplateKey]int)
		for _, tmpl := range templates {
			seen[tmpl.Key]++
		}

		for _, key := range settings.AllTemplateKeys() {
			assert.Equal(t, 1, seen[key], "key %s", key)
		}
		assert.Len(t, templates, len(settings.AllTemplateKeys()))
	})

	t.Run("every template has content", func(t *testing.T) {
		for _, tmpl := range templates {
			assert.NotEmpty(t, tmpl.Name, "name for %s", tmpl.Key)
			assert.NotEmpty(t, tmpl.Subject, "subject for %s", tmpl.Key)
			assert.NotEmpty(t, tmpl.Body, "body for %s", tmpl.Key)
		}
	})

	t.Run("every template parses", func(t *testing.T) {
		engine := NewTemplateEngine()
		data := map[string]interface{}{
			"Email": "user@example.com", "DisplayName": "Test", "TemporaryPassword": "x",
			"PortalURL": "https://portal.example.com", "CompanyName": "ACME GmbH",
			"ContactName": "Max", "Phone": "", "Message": "", "Approved": true,
			"RejectReason": "", "DocumentCount": 3, "InvoiceCount": 2, "CreditNoteCount": 1,
			"ImportedAt": "2026-03-14", "FailedAttempts": 5, "SourceIP": "10.0.0.1",
			"LockedAt": "2026-03-14 10:30:00", "Key": "ip:10.0.0.1", "Failures": 20,
			"WindowFrom": "2026-03-14 10:20:00",
		}

		for _, tmpl := range templates {
			_, err := engine.Render(string(tmpl.Key), tmpl.Subject, tmpl.Body, data)
			require.NoError(t, err, "template %s", tmpl.Key)
		}
	})

	t.Run("templates become valid aggregates", func(t *testing.T) {
		for _, tmpl := range templates {
			aggregate, err := settings.NewEmailTemplate(tmpl.Key, tmpl.Name, tmpl.Subject, tmpl.Body)
			require.NoError(t, err, "template %s", tmpl.Key)
			assert.True(t, aggregate.Enabled)
		}
	})
}
