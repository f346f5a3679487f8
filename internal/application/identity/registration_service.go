package identity

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/notify"
	settingsapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// RegistrationService handles the self-service access requests: companies
// apply through a public form, staff review the request and turn it into a
// company plus a company account on approval.
type RegistrationService struct {
	regRepo     identity.PendingRegistrationRepository
	userRepo    identity.UserRepository
	companyRepo directory.CompanyRepository
	settings    *settingsapp.Service
	recorder    *activityapp.Recorder
	notifier    *notify.Notifier
	logger      *zap.Logger
}

// NewRegistrationService creates a new registration service
func NewRegistrationService(
	regRepo identity.PendingRegistrationRepository,
	userRepo identity.UserRepository,
	companyRepo directory.CompanyRepository,
	settings *settingsapp.Service,
	recorder *activityapp.Recorder,
	notifier *notify.Notifier,
	logger *zap.Logger,
) *RegistrationService {
	return &RegistrationService{
		regRepo:     regRepo,
		userRepo:    userRepo,
		companyRepo: companyRepo,
		settings:    settings,
		recorder:    recorder,
		notifier:    notifier,
		logger:      logger,
	}
}

// Submit files a new access request and notifies the staff address
func (s *RegistrationService) Submit(ctx context.Context, input RegistrationInput) (*RegistrationDTO, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	pending, err := s.regRepo.ExistsPendingByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check pending registrations", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to submit registration")
	}
	if pending {
		return nil, shared.NewDomainError("REGISTRATION_EXISTS", "A registration for this email is already being reviewed")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, email)
	if err != nil {
		s.logger.Error("Failed to check email uniqueness", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to submit registration")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "An account with this email already exists")
	}

	reg, err := identity.NewPendingRegistration(input.CompanyName, input.ContactName, email, input.Phone, input.Message)
	if err != nil {
		return nil, err
	}

	if err := s.regRepo.Save(ctx, reg); err != nil {
		s.logger.Error("Failed to save registration", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to submit registration")
	}

	staffAddress := s.settings.StaffNotifyAddress(ctx)
	if staffAddress == "" {
		s.logger.Warn("No staff notify address configured, registration notice not sent",
			zap.String("email", email))
	} else if err := s.notifier.SendRegistrationNotice(ctx, staffAddress, reg); err != nil {
		s.logger.Error("Failed to send registration notice", zap.Error(err))
	}

	entry, err := activity.NewActivityLog(activity.ActionRegistration,
		fmt.Sprintf("Registration submitted for %s", reg.CompanyName))
	if err == nil {
		actor := activityapp.Actor{Email: email, SourceIP: input.SourceIP, UserAgent: input.UserAgent}
		s.recorder.Record(ctx, actor.Apply(entry.WithTarget("registration", reg.ID)))
	}

	s.logger.Info("Registration submitted",
		zap.String("company", reg.CompanyName),
		zap.String("email", email))

	dto := registrationToDTO(reg)
	return &dto, nil
}

// Get returns one registration
func (s *RegistrationService) Get(ctx context.Context, id uuid.UUID) (*RegistrationDTO, error) {
	reg, err := s.findRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := registrationToDTO(reg)
	return &dto, nil
}

// List returns registrations for review
func (s *RegistrationService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[RegistrationDTO], error) {
	page, err := s.regRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list registrations", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list registrations")
	}

	dtos := make([]RegistrationDTO, 0, len(page.Items))
	for _, reg := range page.Items {
		dtos = append(dtos, registrationToDTO(reg))
	}
	mapped := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &mapped, nil
}

// CountPending returns how many requests are waiting for review
func (s *RegistrationService) CountPending(ctx context.Context) (int64, error) {
	count, err := s.regRepo.CountPending(ctx)
	if err != nil {
		s.logger.Error("Failed to count pending registrations", zap.Error(err))
		return 0, shared.NewDomainError("INTERNAL_ERROR", "Failed to count registrations")
	}
	return count, nil
}

// Approve turns a pending registration into a company and an account. The
// applicant gets a result mail plus the credentials mail.
func (s *RegistrationService) Approve(ctx context.Context, id uuid.UUID, input ApproveRegistrationInput, actor activityapp.Actor) (*RegistrationDTO, error) {
	reg, err := s.findRegistration(ctx, id)
	if err != nil {
		return nil, err
	}
	if !reg.IsPending() {
		return nil, shared.NewDomainError("ALREADY_REVIEWED", "Registration has already been reviewed")
	}

	exists, err := s.userRepo.ExistsByEmail(ctx, reg.Email)
	if err != nil {
		s.logger.Error("Failed to check email uniqueness", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve registration")
	}
	if exists {
		return nil, shared.NewDomainError("EMAIL_EXISTS", "An account with this email already exists")
	}

	company, created, err := s.resolveCompany(ctx, reg, input)
	if err != nil {
		return nil, err
	}

	temporaryPassword, err := generateTemporaryPassword()
	if err != nil {
		s.logger.Error("Failed to generate temporary password", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve registration")
	}

	user, err := identity.NewCompanyUser(company.ID, reg.Email, temporaryPassword)
	if err != nil {
		return nil, err
	}
	if err := user.SetDisplayName(reg.ContactName); err != nil {
		return nil, err
	}
	user.ForcePasswordChange()

	if err := s.userRepo.Save(ctx, user); err != nil {
		s.logger.Error("Failed to save approved user", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve registration")
	}

	if err := reg.Approve(actor.UserID); err != nil {
		return nil, err
	}
	if err := s.regRepo.Save(ctx, reg); err != nil {
		s.logger.Error("Failed to save registration decision", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve registration")
	}

	if err := s.notifier.SendRegistrationResult(ctx, reg, true); err != nil {
		s.logger.Error("Failed to send registration result", zap.Error(err))
	}
	if err := s.notifier.SendWelcome(ctx, user, temporaryPassword); err != nil {
		s.logger.Error("Failed to send welcome mail", zap.Error(err))
	}

	if created {
		if entry, err := activity.NewActivityLog(activity.ActionCompanyCreated,
			fmt.Sprintf("Created company %s from registration", company.Code)); err == nil {
			s.recorder.Record(ctx, actor.Apply(entry.WithTarget("company", company.ID)))
		}
	}
	if entry, err := activity.NewActivityLog(activity.ActionUserCreated,
		fmt.Sprintf("Approved registration for %s", reg.Email)); err == nil {
		s.recorder.Record(ctx, actor.Apply(entry.WithTarget("registration", reg.ID)))
	}

	s.logger.Info("Registration approved",
		zap.String("email", reg.Email),
		zap.String("company_code", company.Code))

	dto := registrationToDTO(reg)
	return &dto, nil
}

// Reject declines a pending registration and mails the applicant
func (s *RegistrationService) Reject(ctx context.Context, id uuid.UUID, input RejectRegistrationInput, actor activityapp.Actor) (*RegistrationDTO, error) {
	reg, err := s.findRegistration(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := reg.Reject(actor.UserID, input.Reason); err != nil {
		return nil, err
	}
	if err := s.regRepo.Save(ctx, reg); err != nil {
		s.logger.Error("Failed to save registration decision", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to reject registration")
	}

	if err := s.notifier.SendRegistrationResult(ctx, reg, false); err != nil {
		s.logger.Error("Failed to send registration result", zap.Error(err))
	}

	if entry, err := activity.NewActivityLog(activity.ActionRegistration,
		fmt.Sprintf("Rejected registration for %s", reg.Email)); err == nil {
		s.recorder.Record(ctx, actor.Apply(entry.WithTarget("registration", reg.ID)))
	}

	s.logger.Info("Registration rejected", zap.String("email", reg.Email))

	dto := registrationToDTO(reg)
	return &dto, nil
}

// resolveCompany attaches the registration to an existing company or
// creates one from the review input.
func (s *RegistrationService) resolveCompany(ctx context.Context, reg *identity.PendingRegistration, input ApproveRegistrationInput) (*directory.Company, bool, error) {
	if input.CompanyID != nil {
		company, err := s.companyRepo.FindByID(ctx, *input.CompanyID)
		if err != nil {
			if err == shared.ErrNotFound {
				return nil, false, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
			}
			s.logger.Error("Failed to load company", zap.Error(err))
			return nil, false, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve registration")
		}
		return company, false, nil
	}

	code := strings.ToUpper(strings.TrimSpace(input.CompanyCode))
	if code == "" {
		return nil, false, shared.NewDomainError("INVALID_COMPANY_CODE", "A company or a new company code is required")
	}

	exists, err := s.companyRepo.ExistsByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to check company code", zap.Error(err))
		return nil, false, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve registration")
	}
	if exists {
		return nil, false, shared.NewDomainError("COMPANY_CODE_EXISTS", "A company with this code already exists")
	}

	name := strings.TrimSpace(input.CompanyName)
	if name == "" {
		name = reg.CompanyName
	}

	company, err := directory.NewCompany(code, name)
	if err != nil {
		return nil, false, err
	}
	if err := company.SetContact(reg.ContactName, reg.Phone, reg.Email); err != nil {
		return nil, false, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to save company", zap.Error(err))
		return nil, false, shared.NewDomainError("INTERNAL_ERROR", "Failed to approve registration")
	}

	return company, true, nil
}

func (s *RegistrationService) findRegistration(ctx context.Context, id uuid.UUID) (*identity.PendingRegistration, error) {
	reg, err := s.regRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("REGISTRATION_NOT_FOUND", "Registration not found")
		}
		s.logger.Error("Failed to load registration", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load registration")
	}
	return reg, nil
}
