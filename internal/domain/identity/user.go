package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents a portal role. Roles are a closed enum: portal staff and
// administrators are not bound to a company, company users are bound to
// exactly one.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStaff   Role = "staff"
	RoleCompany Role = "company"
)

// IsValid checks if the role is a known value
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCompany:
		return true
	}
	return false
}

// IsPortal returns true for roles with cross-company access
func (r Role) IsPortal() bool {
	return r == RoleAdmin || r == RoleStaff
}

// UserStatus represents the status of a user
type UserStatus string

const (
	UserStatusPending     UserStatus = "pending"     // Awaiting activation
	UserStatusActive      UserStatus = "active"      // Normal active status
	UserStatusLocked      UserStatus = "locked"      // Locked due to failed attempts/security
	UserStatusDeactivated UserStatus = "deactivated" // Manually deactivated
)

// Password cost for bcrypt
const bcryptCost = 12

// User is the aggregate root for portal accounts. Login is by email.
type User struct {
	shared.BaseAggregateRoot
	Email              string     `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash       string     `gorm:"type:varchar(255);not null"`
	DisplayName        string     `gorm:"type:varchar(200)"`
	Phone              string     `gorm:"type:varchar(50)"`
	Role               Role       `gorm:"type:varchar(20);not null;index"`
	CompanyID          *uuid.UUID `gorm:"type:uuid;index"` // Required for company users, nil for staff/admin
	Status             UserStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	LastLoginAt        *time.Time
	LastLoginIP        string `gorm:"type:varchar(45)"`
	FailedAttempts     int    `gorm:"not null;default:0"`
	LockedUntil        *time.Time
	PasswordChangedAt  *time.Time
	MustChangePassword bool   `gorm:"not null;default:false"`
	Notes              string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (User) TableName() string {
	return "users"
}

// NewUser creates a new user with required fields
func NewUser(email, password string, role Role) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be one of admin, staff, company")
	}

	passwordHash, err := hashPassword(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	now := time.Now()
	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:      passwordHash,
		Role:              role,
		Status:            UserStatusPending,
		PasswordChangedAt: &now,
	}

	user.AddDomainEvent(NewUserCreatedEvent(user))

	return user, nil
}

// NewCompanyUser creates an active user bound to a company
func NewCompanyUser(companyID uuid.UUID, email, password string) (*User, error) {
	if companyID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_COMPANY_ID", "Company users require a company")
	}
	user, err := NewUser(email, password, RoleCompany)
	if err != nil {
		return nil, err
	}
	user.CompanyID = &companyID
	user.Status = UserStatusActive
	return user, nil
}

// NewPortalUser creates an active staff or admin user
func NewPortalUser(email, password string, role Role) (*User, error) {
	if !role.IsPortal() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Portal users must be staff or admin")
	}
	user, err := NewUser(email, password, role)
	if err != nil {
		return nil, err
	}
	user.Status = UserStatusActive
	return user, nil
}

// SetDisplayName sets the user's display name
func (u *User) SetDisplayName(displayName string) error {
	if displayName != "" && len(displayName) > 200 {
		return shared.NewDomainError("INVALID_DISPLAY_NAME", "Display name cannot exceed 200 characters")
	}

	u.DisplayName = strings.TrimSpace(displayName)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}

	u.Phone = strings.TrimSpace(phone)
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// SetNotes sets the user's notes
func (u *User) SetNotes(notes string) {
	u.Notes = notes
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// ChangeRole changes the user's role. Switching between portal and company
// roles requires the company binding to be fixed up by the caller first.
func (u *User) ChangeRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be one of admin, staff, company")
	}
	if role == RoleCompany && u.CompanyID == nil {
		return shared.NewDomainError("INVALID_ROLE", "Company role requires a company binding")
	}
	if role.IsPortal() && u.CompanyID != nil {
		return shared.NewDomainError("INVALID_ROLE", "Portal roles cannot be bound to a company")
	}

	u.Role = role
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	return nil
}

// ChangePassword changes the user's password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}

	return u.SetPassword(newPassword)
}

// SetPassword sets a new password (admin reset, no old password check)
func (u *User) SetPassword(newPassword string) error {
	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := hashPassword(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	u.PasswordHash = passwordHash
	now := time.Now()
	u.PasswordChangedAt = &now
	u.MustChangePassword = false
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserPasswordChangedEvent(u))

	return nil
}

// ForcePasswordChange marks that user must change password on next login
func (u *User) ForcePasswordChange() {
	u.MustChangePassword = true
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// VerifyPassword verifies if the provided password matches
func (u *User) VerifyPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// Activate activates the user
func (u *User) Activate() error {
	if u.Status == UserStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "User is already active")
	}

	oldStatus := u.Status
	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus, UserStatusActive))

	return nil
}

// Deactivate deactivates the user
func (u *User) Deactivate() error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("ALREADY_DEACTIVATED", "User is already deactivated")
	}

	oldStatus := u.Status
	u.Status = UserStatusDeactivated
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus, UserStatusDeactivated))

	return nil
}

// Lock locks the user account
func (u *User) Lock(duration time.Duration) error {
	if u.Status == UserStatusDeactivated {
		return shared.NewDomainError("USER_DEACTIVATED", "Cannot lock a deactivated user")
	}

	oldStatus := u.Status
	u.Status = UserStatusLocked
	if duration > 0 {
		lockedUntil := time.Now().Add(duration)
		u.LockedUntil = &lockedUntil
	}
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, oldStatus, UserStatusLocked))

	return nil
}

// Unlock unlocks the user account
func (u *User) Unlock() error {
	if u.Status != UserStatusLocked {
		return shared.NewDomainError("NOT_LOCKED", "User is not locked")
	}

	u.Status = UserStatusActive
	u.FailedAttempts = 0
	u.LockedUntil = nil
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	u.AddDomainEvent(NewUserStatusChangedEvent(u, UserStatusLocked, UserStatusActive))

	return nil
}

// RecordLoginSuccess records a successful login
func (u *User) RecordLoginSuccess(ip string) {
	now := time.Now()
	u.LastLoginAt = &now
	u.LastLoginIP = ip
	u.FailedAttempts = 0
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

// RecordLoginFailure records a failed login attempt.
// Returns true if the account was locked as a result.
func (u *User) RecordLoginFailure(maxAttempts int, lockDuration time.Duration) bool {
	u.FailedAttempts++
	u.UpdatedAt = time.Now()
	u.IncrementVersion()

	if u.FailedAttempts >= maxAttempts {
		_ = u.Lock(lockDuration)
		return true
	}

	return false
}

// IsActive returns true if user is active
func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}

// IsLocked returns true if user is locked and the lock has not expired
func (u *User) IsLocked() bool {
	if u.Status != UserStatusLocked {
		return false
	}

	if u.LockedUntil != nil && time.Now().After(*u.LockedUntil) {
		return false
	}

	return true
}

// IsDeactivated returns true if user is deactivated
func (u *User) IsDeactivated() bool {
	return u.Status == UserStatusDeactivated
}

// IsPending returns true if user is pending activation
func (u *User) IsPending() bool {
	return u.Status == UserStatusPending
}

// CanLogin returns true if user can login
func (u *User) CanLogin() bool {
	if u.Status == UserStatusDeactivated {
		return false
	}
	if u.Status == UserStatusPending {
		return false
	}
	if u.IsLocked() {
		return false
	}
	return true
}

// GetDisplayNameOrEmail returns display name if set, otherwise email
func (u *User) GetDisplayNameOrEmail() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Validation functions

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot be empty")
	}
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}

// ValidatePassword enforces the portal password rules
func ValidatePassword(password string) error {
	if password == "" {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot be empty")
	}
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}

	hasLetter := regexp.MustCompile(`[a-zA-Z]`).MatchString(password)
	hasNumber := regexp.MustCompile(`[0-9]`).MatchString(password)
	if !hasLetter || !hasNumber {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must contain at least one letter and one number")
	}

	return nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
