package identity

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// RegistrationStatus represents the status of a registration request
type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "pending"
	RegistrationStatusApproved RegistrationStatus = "approved"
	RegistrationStatusRejected RegistrationStatus = "rejected"
)

// PendingRegistration is a self-service access request awaiting staff review.
// Approval creates the company account and user; until then nothing else
// exists for the requester.
type PendingRegistration struct {
	shared.BaseAggregateRoot
	CompanyName  string             `gorm:"type:varchar(200);not null"`
	ContactName  string             `gorm:"type:varchar(100);not null"`
	Email        string             `gorm:"type:varchar(200);not null;index"`
	Phone        string             `gorm:"type:varchar(50)"`
	Message      string             `gorm:"type:text"`
	Status       RegistrationStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	ReviewedBy   *uuid.UUID         `gorm:"type:uuid"`
	ReviewedAt   *time.Time
	RejectReason string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (PendingRegistration) TableName() string {
	return "pending_registrations"
}

// NewPendingRegistration creates a new registration request
func NewPendingRegistration(companyName, contactName, email, phone, message string) (*PendingRegistration, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	companyName = strings.TrimSpace(companyName)
	if companyName == "" {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot be empty")
	}
	if len(companyName) > 200 {
		return nil, shared.NewDomainError("INVALID_COMPANY_NAME", "Company name cannot exceed 200 characters")
	}
	contactName = strings.TrimSpace(contactName)
	if contactName == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot be empty")
	}
	if len(message) > 2000 {
		return nil, shared.NewDomainError("INVALID_MESSAGE", "Message cannot exceed 2000 characters")
	}

	reg := &PendingRegistration{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		CompanyName:       companyName,
		ContactName:       contactName,
		Email:             strings.ToLower(strings.TrimSpace(email)),
		Phone:             strings.TrimSpace(phone),
		Message:           strings.TrimSpace(message),
		Status:            RegistrationStatusPending,
	}

	reg.AddDomainEvent(NewRegistrationSubmittedEvent(reg))

	return reg, nil
}

// Approve marks the request approved by the given reviewer
func (r *PendingRegistration) Approve(reviewerID uuid.UUID) error {
	if r.Status != RegistrationStatusPending {
		return shared.NewDomainError("REGISTRATION_ALREADY_REVIEWED", "Registration has already been reviewed")
	}

	now := time.Now()
	r.Status = RegistrationStatusApproved
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRegistrationReviewedEvent(r))

	return nil
}

// Reject marks the request rejected with a reason
func (r *PendingRegistration) Reject(reviewerID uuid.UUID, reason string) error {
	if r.Status != RegistrationStatusPending {
		return shared.NewDomainError("REGISTRATION_ALREADY_REVIEWED", "Registration has already been reviewed")
	}
	if len(reason) > 2000 {
		return shared.NewDomainError("INVALID_REASON", "Reason cannot exceed 2000 characters")
	}

	now := time.Now()
	r.Status = RegistrationStatusRejected
	r.ReviewedBy = &reviewerID
	r.ReviewedAt = &now
	r.RejectReason = strings.TrimSpace(reason)
	r.UpdatedAt = now
	r.IncrementVersion()

	r.AddDomainEvent(NewRegistrationReviewedEvent(r))

	return nil
}

// IsPending returns true if the request has not been reviewed yet
func (r *PendingRegistration) IsPending() bool {
	return r.Status == RegistrationStatusPending
}

// Event type constants
const (
	EventTypeRegistrationSubmitted = "identity.registration.submitted"
	EventTypeRegistrationReviewed  = "identity.registration.reviewed"
)

// RegistrationSubmittedEvent is published when a registration request arrives
type RegistrationSubmittedEvent struct {
	shared.BaseDomainEvent
	CompanyName string `json:"company_name"`
	Email       string `json:"email"`
}

// NewRegistrationSubmittedEvent creates a new submitted event
func NewRegistrationSubmittedEvent(reg *PendingRegistration) *RegistrationSubmittedEvent {
	return &RegistrationSubmittedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationSubmitted, "PendingRegistration", reg.ID, uuid.Nil),
		CompanyName:     reg.CompanyName,
		Email:           reg.Email,
	}
}

// RegistrationReviewedEvent is published when a request is approved or rejected
type RegistrationReviewedEvent struct {
	shared.BaseDomainEvent
	Email  string             `json:"email"`
	Status RegistrationStatus `json:"status"`
}

// NewRegistrationReviewedEvent creates a new reviewed event
func NewRegistrationReviewedEvent(reg *PendingRegistration) *RegistrationReviewedEvent {
	return &RegistrationReviewedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRegistrationReviewed, "PendingRegistration", reg.ID, uuid.Nil),
		Email:           reg.Email,
		Status:          reg.Status,
	}
}

// PendingRegistrationRepository defines the persistence contract for
// registration requests
type PendingRegistrationRepository interface {
	Save(ctx context.Context, reg *PendingRegistration) error
	FindByID(ctx context.Context, id uuid.UUID) (*PendingRegistration, error)
	FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[*PendingRegistration], error)
	CountPending(ctx context.Context) (int64, error)
	ExistsPendingByEmail(ctx context.Context, email string) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
