package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/notify"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// UserService handles account management by portal staff. New accounts get
// a generated temporary password that is mailed out and must be changed at
// the first login.
type UserService struct {
	userRepo    identity.UserRepository
	companyRepo directory.CompanyRepository
	recorder    *activityapp.Recorder
	notifier    *notify.Notifier
	logger      *zap.Logger
}

// NewUserService creates a new user management service
func NewUserService(
	userRepo identity.UserRepository,
	companyRepo directory.CompanyRepository,
	recorder *activityapp.Recorder,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *UserService {
	return &UserService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
		recorder:    recorder,
		notifier:    notifier,
		logger:      logger,
	}
}

// Create creates a new account and mails the credentials
func (s *UserService) Create(ctx context.Context, input CreateUserInput, actor activityapp.Actor) (*UserDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email uniqueness", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "An account with this email already exists")
	}

	temporaryPassword, err := generateTemporaryPassword()
	if err != nil {
		s.logger.Error("Failed to generate temporary password", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	role := identity.Role(input.Role)
	var user *identity.User
	if role == identity.RoleCompany {
		if input.CompanyID == nil {
			return nil, shared.NewDomainError("INVALID_COMPANY_ID", "Company users require a company")
		}
		if _, err := s.companyRepo.FindByID(ctx, *input.CompanyID); err != nil {
			if err == shared.ErrNotFound {
				return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
			}
			s.logger.Error("Failed to load company", zap.Error(err))
			return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
		}
		user, err = identity.NewCompanyUser(*input.CompanyID, email, temporaryPassword)
	} else {
		user, err = identity.NewPortalUser(email, temporaryPassword, role)
	}
	if err != nil {
		return nil, err
	}

	if err := s.applyProfile(user, input.DisplayName, input.Phone, input.Notes); err != nil {
		return nil, err
	}
	user.ForcePasswordChange()

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save new user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create user")
	}

	if err := s.notifier.SendWelcome(ctx, user, temporaryPassword); err != nil {
		s.logger.Error("Failed to send welcome mail",
			zap.String("email", user.Email),
			zap.Error(err))
	}

	s.recordUserAction(ctx, activity.ActionUserCreated,
		fmt.Sprintf("Created %s account %s", user.Role, user.Email), user, actor)

	s.logger.Info("User created",
		zap.String("email", user.Email),
		zap.String("role", string(user.Role)))

	dto := userToDTO(user)
	return &dto, nil
}

// Get returns one account
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := userToDTO(user)
	return &dto, nil
}

// List returns accounts across all companies. Staff only.
func (s *UserService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[UserDTO], error) {
	page, err := s.userRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}
	return mapUserPage(page), nil
}

// ListForCompany returns the accounts bound to one company
func (s *UserService) ListForCompany(ctx context.Context, companyID uuid.UUID, filter shared.Filter) (*shared.Paginated[UserDTO], error) {
	page, err := s.userRepo.FindByCompanyID(ctx, companyID, filter)
	if err != nil {
		s.logger.Error("Failed to list company users", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list users")
	}
	return mapUserPage(page), nil
}

// Update changes the editable profile fields
func (s *UserService) Update(ctx context.Context, id uuid.UUID, input UpdateUserInput, actor activityapp.Actor) (*UserDTO, error) {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyProfile(user, input.DisplayName, input.Phone, input.Notes); err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.recordUserAction(ctx, activity.ActionUserUpdated,
		fmt.Sprintf("Updated account %s", user.Email), user, actor)

	dto := userToDTO(user)
	return &dto, nil
}

// ResetPassword sets a fresh temporary password and mails it
func (s *UserService) ResetPassword(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	temporaryPassword, err := generateTemporaryPassword()
	if err != nil {
		s.logger.Error("Failed to generate temporary password", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	if err := user.SetPassword(temporaryPassword); err != nil {
		return err
	}
	user.ForcePasswordChange()

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save password reset", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to reset password")
	}

	if err := s.notifier.SendPasswordReset(ctx, user, temporaryPassword); err != nil {
		s.logger.Error("Failed to send password reset mail",
			zap.String("email", user.Email),
			zap.Error(err))
	}

	s.recordUserAction(ctx, activity.ActionPasswordChanged,
		fmt.Sprintf("Reset password for %s", user.Email), user, actor)

	s.logger.Info("Password reset", zap.String("email", user.Email))
	return nil
}

// Unlock clears a lockout before it expires on its own
func (s *UserService) Unlock(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Unlocked account", func(u *identity.User) error {
		return u.Unlock()
	})
}

// Activate re-enables a pending or deactivated account
func (s *UserService) Activate(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Activated account", func(u *identity.User) error {
		return u.Activate()
	})
}

// Deactivate disables an account without deleting it
func (s *UserService) Deactivate(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Deactivated account", func(u *identity.User) error {
		return u.Deactivate()
	})
}

// Delete removes an account
func (s *UserService) Delete(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.userRepo.Delete(ctx, id); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to delete user", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete user")
	}

	s.recordUserAction(ctx, activity.ActionUserDeleted,
		fmt.Sprintf("Deleted account %s", user.Email), user, actor)

	s.logger.Info("User deleted", zap.String("email", user.Email))
	return nil
}

func (s *UserService) transition(ctx context.Context, id uuid.UUID, actor activityapp.Actor, detail string, fn func(*identity.User) error) error {
	user, err := s.findUser(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(user); err != nil {
		return err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save user status change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update user")
	}

	s.recordUserAction(ctx, activity.ActionUserUpdated,
		fmt.Sprintf("%s %s", detail, user.Email), user, actor)
	return nil
}

func (s *UserService) findUser(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("USER_NOT_FOUND", "User not found")
		}
		s.logger.Error("Failed to load user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load user")
	}
	return user, nil
}

func (s *UserService) applyProfile(user *identity.User, displayName, phone, notes string) error {
	if err := user.SetDisplayName(displayName); err != nil {
		return err
	}
	if err := user.SetPhone(phone); err != nil {
		return err
	}
	user.SetNotes(notes)
	return nil
}

func (s *UserService) recordUserAction(ctx context.Context, action activity.Action, detail string, target *identity.User, actor activityapp.Actor) {
	entry, err := activity.NewActivityLog(action, detail)
	if err != nil {
		return
	}
	entry.WithTarget("user", target.ID)
	if target.CompanyID != nil && actor.CompanyID == nil {
		entry.WithCompany(*target.CompanyID)
	}
	s.recorder.Record(ctx, actor.Apply(entry))
}

func mapUserPage(page *shared.Paginated[*identity.User]) *shared.Paginated[UserDTO] {
	dtos := make([]UserDTO, 0, len(page.Items))
	for _, user := range page.Items {
		dtos = append(dtos, userToDTO(user))
	}
	mapped := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &mapped
}
