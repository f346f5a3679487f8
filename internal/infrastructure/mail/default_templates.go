package mail

import (
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
)

// DefaultTemplate is the seed content for a portal mail. Templates are
// created from these on first start; admins edit them afterwards through
// the settings area, so the seeds are never re-applied over existing rows.
type DefaultTemplate struct {
	Key         settings.TemplateKey
	Name        string
	Description string
	Subject     string
	Body        string
}

// GetDefaultTemplates returns the seed content for every template key.
func GetDefaultTemplates() []DefaultTemplate {
	return []DefaultTemplate{
		{
			Key:         settings.TemplateKeyWelcome,
			Name:        "Willkommensmail",
			Description: "Wird beim Anlegen eines neuen Benutzerkontos verschickt",
			Subject:     "Ihr Zugang zum Rechnungsportal",
			Body: `<p>Guten Tag {{ default .DisplayName .Email }},</p>
<p>für Sie wurde ein Zugang zum Rechnungsportal eingerichtet.</p>
<p>Benutzername: <strong>{{ .Email }}</strong><br>
Vorläufiges Passwort: <strong>{{ .TemporaryPassword }}</strong></p>
<p>Bitte melden Sie sich unter <a href="{{ .PortalURL }}">{{ .PortalURL }}</a> an
und ändern Sie Ihr Passwort bei der ersten Anmeldung.</p>
<p>Mit freundlichen Grüßen<br>Ihr Rechnungsportal</p>`,
		},
		{
			Key:         settings.TemplateKeyPasswordReset,
			Name:        "Passwort zurückgesetzt",
			Description: "Wird verschickt, wenn ein Mitarbeiter das Passwort eines Benutzers zurücksetzt",
			Subject:     "Ihr Passwort wurde zurückgesetzt",
			Body: `<p>Guten Tag {{ default .DisplayName .Email }},</p>
<p>Ihr Passwort für das Rechnungsportal wurde zurückgesetzt.</p>
<p>Neues vorläufiges Passwort: <strong>{{ .TemporaryPassword }}</strong></p>
<p>Bitte ändern Sie das Passwort bei der nächsten Anmeldung unter
<a href="{{ .PortalURL }}">{{ .PortalURL }}</a>.</p>
<p>Falls Sie diese Änderung nicht veranlasst haben, wenden Sie sich bitte umgehend an uns.</p>`,
		},
		{
			Key:         settings.TemplateKeyImportSummary,
			Name:        "Neue Dokumente verfügbar",
			Description: "Wird nach einem Import an die betroffenen Firmen verschickt",
			Subject:     "Neue Dokumente im Rechnungsportal ({{ .DocumentCount }})",
			Body: `<p>Guten Tag,</p>
<p>für {{ .CompanyName }} wurden am {{ formatDate .ImportedAt }} neue Dokumente bereitgestellt:</p>
<ul>
{{ if gt .InvoiceCount 0 }}<li>{{ .InvoiceCount }} Rechnung(en)</li>{{ end }}
{{ if gt .CreditNoteCount 0 }}<li>{{ .CreditNoteCount }} Gutschrift(en)</li>{{ end }}
</ul>
<p>Sie können die Dokumente unter <a href="{{ .PortalURL }}">{{ .PortalURL }}</a> einsehen und herunterladen.</p>`,
		},
		{
			Key:         settings.TemplateKeyLockoutAlert,
			Name:        "Konto gesperrt",
			Description: "Interner Hinweis, wenn ein Konto nach Fehlversuchen gesperrt wurde",
			Subject:     "Konto gesperrt: {{ .Email }}",
			Body: `<p>Das Konto <strong>{{ .Email }}</strong> wurde nach
{{ .FailedAttempts }} fehlgeschlagenen Anmeldeversuchen gesperrt.</p>
<p>Letzte Quell-IP: {{ default .SourceIP "unbekannt" }}<br>
Zeitpunkt: {{ formatDateTime .LockedAt }}</p>
<p>Die Sperre läuft automatisch ab oder kann in der Benutzerverwaltung aufgehoben werden.</p>`,
		},
		{
			Key:         settings.TemplateKeyBruteForceAlert,
			Name:        "Auffällige Anmeldeversuche",
			Description: "Interner Hinweis bei gehäuften Fehlversuchen über mehrere Konten",
			Subject:     "Warnung: gehäufte fehlgeschlagene Anmeldeversuche",
			Body: `<p>Im Rechnungsportal wurden gehäufte fehlgeschlagene Anmeldeversuche festgestellt.</p>
<p>Betroffen: <strong>{{ .Key }}</strong><br>
Fehlversuche: {{ .Failures }}<br>
Seit: {{ formatDateTime .WindowFrom }}</p>
<p>Bitte prüfen Sie das Aktivitätsprotokoll.</p>`,
		},
		{
			Key:         settings.TemplateKeyRegistrationNotice,
			Name:        "Neue Registrierungsanfrage",
			Description: "Interner Hinweis, wenn eine Firma einen Zugang beantragt",
			Subject:     "Neue Registrierungsanfrage: {{ .CompanyName }}",
			Body: `<p>Eine neue Registrierungsanfrage wartet auf Bearbeitung.</p>
<p>Firma: <strong>{{ .CompanyName }}</strong><br>
Ansprechpartner: {{ .ContactName }}<br>
E-Mail: {{ .Email }}<br>
Telefon: {{ default .Phone "nicht angegeben" }}</p>
{{ if .Message }}<p>Nachricht:<br>{{ .Message }}</p>{{ end }}
<p>Die Anfrage kann in der Benutzerverwaltung geprüft werden.</p>`,
		},
		{
			Key:         settings.TemplateKeyRegistrationResult,
			Name:        "Ergebnis der Registrierung",
			Description: "Wird an den Antragsteller verschickt, sobald die Anfrage geprüft wurde",
			Subject:     "Ihre Registrierung im Rechnungsportal",
			Body: `<p>Guten Tag {{ default .ContactName .Email }},</p>
{{ if .Approved }}
<p>Ihre Registrierungsanfrage wurde freigegeben. Sie erhalten in Kürze eine
separate E-Mail mit Ihren Zugangsdaten.</p>
{{ else }}
<p>Ihre Registrierungsanfrage konnte leider nicht freigegeben werden.</p>
{{ if .RejectReason }}<p>Begründung: {{ .RejectReason }}</p>{{ end }}
{{ end }}
<p>Mit freundlichen Grüßen<br>Ihr Rechnungsportal</p>`,
		},
	}
}
