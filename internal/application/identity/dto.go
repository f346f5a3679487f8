package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
)

// LoginInput contains login request data
type LoginInput struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required"`
	SourceIP  string `json:"-"`
	UserAgent string `json:"-"`
}

// LoginResult contains successful login response data
type LoginResult struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
	TokenType             string    `json:"token_type"`
	User                  UserInfo  `json:"user"`
}

// UserInfo contains the account data returned alongside tokens
type UserInfo struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	DisplayName        string     `json:"display_name"`
	Role               string     `json:"role"`
	CompanyID          *uuid.UUID `json:"company_id,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
}

// RefreshInput contains a refresh token request
type RefreshInput struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// ChangePasswordInput contains a password change request
type ChangePasswordInput struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// CreateUserInput contains the data to create an account
type CreateUserInput struct {
	Email       string     `json:"email" binding:"required,email"`
	DisplayName string     `json:"display_name"`
	Phone       string     `json:"phone"`
	Role        string     `json:"role" binding:"required,oneof=admin staff company"`
	CompanyID   *uuid.UUID `json:"company_id"`
	Notes       string     `json:"notes"`
}

// UpdateUserInput contains the editable account fields
type UpdateUserInput struct {
	DisplayName string `json:"display_name"`
	Phone       string `json:"phone"`
	Notes       string `json:"notes"`
}

// UserDTO represents an account for transfer
type UserDTO struct {
	ID                 uuid.UUID  `json:"id"`
	Email              string     `json:"email"`
	DisplayName        string     `json:"display_name"`
	Phone              string     `json:"phone"`
	Role               string     `json:"role"`
	CompanyID          *uuid.UUID `json:"company_id,omitempty"`
	Status             string     `json:"status"`
	LastLoginAt        *time.Time `json:"last_login_at,omitempty"`
	MustChangePassword bool       `json:"must_change_password"`
	Notes              string     `json:"notes,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// RegistrationInput contains a self-service registration request
type RegistrationInput struct {
	CompanyName string `json:"company_name" binding:"required"`
	ContactName string `json:"contact_name" binding:"required"`
	Email       string `json:"email" binding:"required,email"`
	Phone       string `json:"phone"`
	Message     string `json:"message"`
	SourceIP    string `json:"-"`
	UserAgent   string `json:"-"`
}

// ApproveRegistrationInput decides how an approved registration becomes a
// company account. Either an existing company is referenced or a new one is
// created from code and name.
type ApproveRegistrationInput struct {
	CompanyID   *uuid.UUID `json:"company_id"`
	CompanyCode string     `json:"company_code"`
	CompanyName string     `json:"company_name"`
}

// RejectRegistrationInput contains the rejection reason
type RejectRegistrationInput struct {
	Reason string `json:"reason"`
}

// RegistrationDTO represents a pending registration for transfer
type RegistrationDTO struct {
	ID           uuid.UUID  `json:"id"`
	CompanyName  string     `json:"company_name"`
	ContactName  string     `json:"contact_name"`
	Email        string     `json:"email"`
	Phone        string     `json:"phone,omitempty"`
	Message      string     `json:"message,omitempty"`
	Status       string     `json:"status"`
	ReviewedBy   *uuid.UUID `json:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time `json:"reviewed_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

func userToInfo(user *identity.User) UserInfo {
	return UserInfo{
		ID:                 user.ID,
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		Role:               string(user.Role),
		CompanyID:          user.CompanyID,
		MustChangePassword: user.MustChangePassword,
	}
}

func userToDTO(user *identity.User) UserDTO {
	return UserDTO{
		ID:                 user.ID,
		Email:              user.Email,
		DisplayName:        user.DisplayName,
		Phone:              user.Phone,
		Role:               string(user.Role),
		CompanyID:          user.CompanyID,
		Status:             string(user.Status),
		LastLoginAt:        user.LastLoginAt,
		MustChangePassword: user.MustChangePassword,
		Notes:              user.Notes,
		CreatedAt:          user.CreatedAt,
		UpdatedAt:          user.UpdatedAt,
	}
}

func registrationToDTO(reg *identity.PendingRegistration) RegistrationDTO {
	return RegistrationDTO{
		ID:           reg.ID,
		CompanyName:  reg.CompanyName,
		ContactName:  reg.ContactName,
		Email:        reg.Email,
		Phone:        reg.Phone,
		Message:      reg.Message,
		Status:       string(reg.Status),
		ReviewedBy:   reg.ReviewedBy,
		ReviewedAt:   reg.ReviewedAt,
		RejectReason: reg.RejectReason,
		CreatedAt:    reg.CreatedAt,
	}
}
