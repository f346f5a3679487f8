package identity

import (
	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Event type constants
const (
	EventTypeUserCreated         = "identity.user.created"
	EventTypeUserStatusChanged   = "identity.user.status_changed"
	EventTypeUserPasswordChanged = "identity.user.password_changed"
	EventTypeUserLoginSucceeded  = "identity.user.login_succeeded"
	EventTypeUserLoginFailed     = "identity.user.login_failed"
	EventTypeUserLockedOut       = "identity.user.locked_out"
)

func eventCompanyID(u *User) uuid.UUID {
	if u.CompanyID != nil {
		return *u.CompanyID
	}
	return uuid.Nil
}

// UserCreatedEvent is published when a user is created
type UserCreatedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// NewUserCreatedEvent creates a new user created event
func NewUserCreatedEvent(user *User) *UserCreatedEvent {
	return &UserCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserCreated, "User", user.ID, eventCompanyID(user)),
		Email:           user.Email,
		Role:            user.Role,
	}
}

// UserStatusChangedEvent is published when a user's status changes
type UserStatusChangedEvent struct {
	shared.BaseDomainEvent
	OldStatus UserStatus `json:"old_status"`
	NewStatus UserStatus `json:"new_status"`
}

// NewUserStatusChangedEvent creates a new status changed event
func NewUserStatusChangedEvent(user *User, oldStatus, newStatus UserStatus) *UserStatusChangedEvent {
	return &UserStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserStatusChanged, "User", user.ID, eventCompanyID(user)),
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}

// UserPasswordChangedEvent is published when a user's password changes
type UserPasswordChangedEvent struct {
	shared.BaseDomainEvent
	Email string `json:"email"`
}

// NewUserPasswordChangedEvent creates a new password changed event
func NewUserPasswordChangedEvent(user *User) *UserPasswordChangedEvent {
	return &UserPasswordChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserPasswordChanged, "User", user.ID, eventCompanyID(user)),
		Email:           user.Email,
	}
}

// UserLockedOutEvent is published when failed attempts lock an account
type UserLockedOutEvent struct {
	shared.BaseDomainEvent
	Email          string `json:"email"`
	FailedAttempts int    `json:"failed_attempts"`
	SourceIP       string `json:"source_ip"`
}

// NewUserLockedOutEvent creates a new locked out event
func NewUserLockedOutEvent(user *User, sourceIP string) *UserLockedOutEvent {
	return &UserLockedOutEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeUserLockedOut, "User", user.ID, eventCompanyID(user)),
		Email:           user.Email,
		FailedAttempts:  user.FailedAttempts,
		SourceIP:        sourceIP,
	}
}
