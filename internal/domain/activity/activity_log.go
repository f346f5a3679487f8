// Package activity holds the append-only portal activity log. Entries are
// written by the application services and never modified; retention trims old
// entries in bulk.
package activity

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Action identifies what happened
type Action string

const (
	ActionLogin              Action = "login"
	ActionLoginFailed        Action = "login_failed"
	ActionLogout             Action = "logout"
	ActionAccountLocked      Action = "account_locked"
	ActionPasswordChanged    Action = "password_changed"
	ActionDocumentViewed     Action = "document_viewed"
	ActionDocumentDownloaded Action = "document_downloaded"
	ActionDocumentImported   Action = "document_imported"
	ActionDocumentExpired    Action = "document_expired"
	ActionDocumentDeleted    Action = "document_deleted"
	ActionUserCreated        Action = "user_created"
	ActionUserUpdated        Action = "user_updated"
	ActionUserDeleted        Action = "user_deleted"
	ActionCompanyCreated     Action = "company_created"
	ActionCompanyUpdated     Action = "company_updated"
	ActionSupplierCreated    Action = "supplier_created"
	ActionSupplierUpdated    Action = "supplier_updated"
	ActionRegistration       Action = "registration_submitted"
	ActionSettingsChanged    Action = "settings_changed"
	ActionTemplateChanged    Action = "template_changed"
	ActionImportStarted      Action = "import_started"
	ActionImportCompleted    Action = "import_completed"
)

// ActivityLog is a single immutable log entry
type ActivityLog struct {
	shared.BaseEntity
	Action     Action     `gorm:"type:varchar(50);not null;index"`
	UserID     *uuid.UUID `gorm:"type:uuid;index"` // Nil for anonymous actions
	UserEmail  string     `gorm:"type:varchar(200);index"`
	CompanyID  *uuid.UUID `gorm:"type:uuid;index"` // Company context, if any
	TargetType string     `gorm:"type:varchar(50);index"`
	TargetID   *uuid.UUID `gorm:"type:uuid;index"`
	Detail     string     `gorm:"type:text"`
	SourceIP   string     `gorm:"type:varchar(45)"`
	UserAgent  string     `gorm:"type:varchar(500)"`
}

// TableName returns the table name for GORM
func (ActivityLog) TableName() string {
	return "activity_logs"
}

// NewActivityLog creates a new log entry
func NewActivityLog(action Action, detail string) (*ActivityLog, error) {
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action cannot be empty")
	}
	if len(detail) > 4000 {
		detail = detail[:4000]
	}

	return &ActivityLog{
		BaseEntity: shared.NewBaseEntity(),
		Action:     action,
		Detail:     detail,
	}, nil
}

// WithActor sets the acting user
func (l *ActivityLog) WithActor(userID uuid.UUID, email string) *ActivityLog {
	l.UserID = &userID
	l.UserEmail = email
	return l
}

// WithCompany sets the company context
func (l *ActivityLog) WithCompany(companyID uuid.UUID) *ActivityLog {
	l.CompanyID = &companyID
	return l
}

// WithTarget sets the affected record
func (l *ActivityLog) WithTarget(targetType string, targetID uuid.UUID) *ActivityLog {
	l.TargetType = targetType
	l.TargetID = &targetID
	return l
}

// WithRequest sets the request origin
func (l *ActivityLog) WithRequest(sourceIP, userAgent string) *ActivityLog {
	if len(userAgent) > 500 {
		userAgent = userAgent[:500]
	}
	l.SourceIP = sourceIP
	l.UserAgent = userAgent
	return l
}

// ActivityLogRepository defines the persistence contract for log entries.
// Entries are append-only; there is no update.
type ActivityLogRepository interface {
	Save(ctx context.Context, log *ActivityLog) error
	FindByID(ctx context.Context, id uuid.UUID) (*ActivityLog, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*ActivityLog], error)
	FindByCompanyID(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ActivityLog], error)
	FindByUserID(ctx context.Context, userID uuid.UUID, filter shared.Filter) (*shared.Paginated[*ActivityLog], error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
