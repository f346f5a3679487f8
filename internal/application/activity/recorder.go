package activity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
)

// Actor identifies who performed an operation. Services attach it to the
// activity entries they write.
type Actor struct {
	UserID    uuid.UUID
	Email     string
	CompanyID *uuid.UUID
	SourceIP  string
	UserAgent string
}

// Apply stamps actor, company and request information onto an entry.
func (a Actor) Apply(entry *activity.ActivityLog) *activity.ActivityLog {
	if entry == nil {
		return nil
	}
	if a.UserID != uuid.Nil {
		entry.WithActor(a.UserID, a.Email)
	} else if a.Email != "" {
		entry.UserEmail = a.Email
	}
	if a.CompanyID != nil {
		entry.WithCompany(*a.CompanyID)
	}
	entry.WithRequest(a.SourceIP, a.UserAgent)
	return entry
}

// Recorder writes activity entries. Recording must never break the
// operation being recorded, so repository failures are logged and swallowed.
type Recorder struct {
	repo   activity.ActivityLogRepository
	logger *zap.Logger
}

// NewRecorder creates a new activity recorder
func NewRecorder(repo activity.ActivityLogRepository, logger *zap.Logger) *Recorder {
	return &Recorder{
		repo:   repo,
		logger: logger,
	}
}

// Record persists one entry
func (r *Recorder) Record(ctx context.Context, entry *activity.ActivityLog) {
	if entry == nil {
		return
	}
	if err := r.repo.Save(ctx, entry); err != nil {
		r.logger.Error("Failed to write activity log",
			zap.String("action", string(entry.Action)),
			zap.Error(err))
	}
}
