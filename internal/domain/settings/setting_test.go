package settings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSetting(t *testing.T) {
	t.Run("creates setting", func(t *testing.T) {
		setting, err := NewSetting(KeyMaxFailedAttempts, "5")

		require.NoError(t, err)
		assert.Equal(t, KeyMaxFailedAttempts, setting.Key)
		assert.Equal(t, "5", setting.Value)
	})

	t.Run("fails with empty key", func(t *testing.T) {
		_, err := NewSetting("  ", "5")

		assert.Error(t, err)
	})
}

func TestSecurityPolicyFromSettings(t *testing.T) {
	t.Run("empty settings yield defaults", func(t *testing.T) {
		policy := SecurityPolicyFromSettings(map[string]string{})

		assert.Equal(t, DefaultSecurityPolicy(), policy)
	})

	t.Run("parses configured values", func(t *testing.T) {
		policy := SecurityPolicyFromSettings(map[string]string{
			KeyMaxFailedAttempts:   "3",
			KeyLockDurationMinutes: "60",
			KeyAlertThreshold:      "10",
			KeyAlertWindowMinutes:  "5",
			KeyAlertRecipients:     "ops@portal.test, security@portal.test",
		})

		assert.Equal(t, 3, policy.MaxFailedAttempts)
		assert.Equal(t, time.Hour, policy.LockDuration)
		assert.Equal(t, 10, policy.AlertThreshold)
		assert.Equal(t, 5*time.Minute, policy.AlertWindow)
		assert.Equal(t, []string{"ops@portal.test", "security@portal.test"}, policy.AlertRecipients)
	})

	t.Run("ignores garbage values", func(t *testing.T) {
		policy := SecurityPolicyFromSettings(map[string]string{
			KeyMaxFailedAttempts: "banana",
			KeyAlertThreshold:    "-2",
		})

		assert.Equal(t, DefaultSecurityPolicy().MaxFailedAttempts, policy.MaxFailedAttempts)
		assert.Equal(t, DefaultSecurityPolicy().AlertThreshold, policy.AlertThreshold)
	})
}

func TestRetentionPolicyFromSettings(t *testing.T) {
	t.Run("zero disables document retention", func(t *testing.T) {
		policy := RetentionPolicyFromSettings(map[string]string{
			KeyInvoiceRetentionDays: "0",
		})

		assert.Equal(t, time.Duration(0), policy.InvoiceRetention)
	})

	t.Run("parses day counts", func(t *testing.T) {
		policy := RetentionPolicyFromSettings(map[string]string{
			KeyInvoiceRetentionDays:    "3650",
			KeyCreditNoteRetentionDays: "3650",
			KeyActivityRetentionDays:   "90",
		})

		assert.Equal(t, 3650*24*time.Hour, policy.InvoiceRetention)
		assert.Equal(t, 90*24*time.Hour, policy.ActivityLogRetention)
	})
}

func TestEmailTemplate(t *testing.T) {
	t.Run("creates template with known key", func(t *testing.T) {
		template, err := NewEmailTemplate(TemplateKeyWelcome, "Welcome mail",
			"Welcome to the portal", "<p>Hello {{.DisplayName}}</p>")

		require.NoError(t, err)
		assert.True(t, template.Enabled)
	})

	t.Run("rejects unknown key", func(t *testing.T) {
		_, err := NewEmailTemplate(TemplateKey("bogus"), "n", "s", "b")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "Unknown template key")
	})

	t.Run("rejects empty subject", func(t *testing.T) {
		_, err := NewEmailTemplate(TemplateKeyWelcome, "n", "  ", "b")

		assert.Error(t, err)
	})

	t.Run("update content validates", func(t *testing.T) {
		template, err := NewEmailTemplate(TemplateKeyWelcome, "Welcome mail", "s", "b")
		require.NoError(t, err)

		assert.Error(t, template.UpdateContent("", "b"))
		require.NoError(t, template.UpdateContent("New subject", "New body"))
		assert.Equal(t, "New subject", template.Subject)
	})

	t.Run("disable suppresses sending", func(t *testing.T) {
		template, err := NewEmailTemplate(TemplateKeyLockoutAlert, "Lockout alert", "s", "b")
		require.NoError(t, err)

		template.Disable()
		assert.False(t, template.Enabled)
		template.Enable()
		assert.True(t, template.Enabled)
	})
}

func TestAllTemplateKeysAreValid(t *testing.T) {
	for _, key := range AllTemplateKeys() {
		assert.True(t, key.IsValid(), string(key))
	}
}
