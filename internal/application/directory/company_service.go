package directory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/identity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// CompanyService manages the customer companies. Staff only; company users
// never see other companies.
type CompanyService struct {
	companyRepo directory.CompanyRepository
	userRepo    identity.UserRepository
	recorder    *activityapp.Recorder
	logger      *zap.Logger
}

// NewCompanyService creates a new company service
func NewCompanyService(
	companyRepo directory.CompanyRepository,
	userRepo identity.UserRepository,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *CompanyService {
	return &CompanyService{
		companyRepo: companyRepo,
		userRepo:    userRepo,
		recorder:    recorder,
		logger:      logger,
	}
}

// Create creates a new company
func (s *CompanyService) Create(ctx context.Context, input CreateCompanyInput, actor activityapp.Actor) (*CompanyDTO, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	exists, err := s.companyRepo.ExistsByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to check company code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create company")
	}
	if exists {
		return nil, shared.NewDomainError("COMPANY_CODE_EXISTS", "A company with this code already exists")
	}

	company, err := directory.NewCompany(code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.applyFields(company, companyFields{
		Name:              input.Name,
		ShortName:         input.ShortName,
		ContactName:       input.ContactName,
		Phone:             input.Phone,
		Email:             input.Email,
		NotificationEmail: input.NotificationEmail,
		Address:           input.Address,
		City:              input.City,
		PostalCode:        input.PostalCode,
		Country:           input.Country,
		TaxID:             input.TaxID,
		EDIPartnerID:      input.EDIPartnerID,
		Notes:             input.Notes,
	}); err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to save company", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create company")
	}

	s.record(ctx, activity.ActionCompanyCreated,
		fmt.Sprintf("Created company %s", company.Code), company, actor)

	s.logger.Info("Company created", zap.String("code", company.Code))

	dto := companyToDTO(company)
	return &dto, nil
}

// Get returns one company
func (s *CompanyService) Get(ctx context.Context, id uuid.UUID) (*CompanyDTO, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := companyToDTO(company)
	return &dto, nil
}

// List returns companies for the staff directory
func (s *CompanyService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[CompanyDTO], error) {
	page, err := s.companyRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list companies", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list companies")
	}

	dtos := make([]CompanyDTO, 0, len(page.Items))
	for _, company := range page.Items {
		dtos = append(dtos, companyToDTO(company))
	}
	mapped := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &mapped, nil
}

// Update changes the editable company fields
func (s *CompanyService) Update(ctx context.Context, id uuid.UUID, input UpdateCompanyInput, actor activityapp.Actor) (*CompanyDTO, error) {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyFields(company, companyFields(input)); err != nil {
		return nil, err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to save company", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update company")
	}

	s.record(ctx, activity.ActionCompanyUpdated,
		fmt.Sprintf("Updated company %s", company.Code), company, actor)

	dto := companyToDTO(company)
	return &dto, nil
}

// Activate re-enables a company
func (s *CompanyService) Activate(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Activated company", func(c *directory.Company) error {
		return c.Activate()
	})
}

// Deactivate disables a company without blocking its history
func (s *CompanyService) Deactivate(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Deactivated company", func(c *directory.Company) error {
		return c.Deactivate()
	})
}

// Block blocks a company; its users cannot log in anymore
func (s *CompanyService) Block(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Blocked company", func(c *directory.Company) error {
		return c.Block()
	})
}

// Delete removes a company. Companies with accounts cannot be deleted.
func (s *CompanyService) Delete(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return err
	}

	userCount, err := s.userRepo.CountByCompanyID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to count company users", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete company")
	}
	if userCount > 0 {
		return shared.NewDomainError("COMPANY_HAS_USERS", "Company still has accounts; deactivate it instead")
	}

	if err := s.companyRepo.Delete(ctx, id); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		s.logger.Error("Failed to delete company", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete company")
	}

	s.record(ctx, activity.ActionCompanyUpdated,
		fmt.Sprintf("Deleted company %s", company.Code), company, actor)

	s.logger.Info("Company deleted", zap.String("code", company.Code))
	return nil
}

type companyFields struct {
	Name              string
	ShortName         string
	ContactName       string
	Phone             string
	Email             string
	NotificationEmail string
	Address           string
	City              string
	PostalCode        string
	Country           string
	TaxID             string
	EDIPartnerID      string
	Notes             string
}

func (s *CompanyService) applyFields(company *directory.Company, fields companyFields) error {
	if err := company.Update(fields.Name, fields.ShortName); err != nil {
		return err
	}
	if err := company.SetContact(fields.ContactName, fields.Phone, fields.Email); err != nil {
		return err
	}
	if err := company.SetNotificationEmail(fields.NotificationEmail); err != nil {
		return err
	}
	company.SetAddress(fields.Address, fields.City, fields.PostalCode, fields.Country)
	if err := company.SetTaxID(fields.TaxID); err != nil {
		return err
	}
	if err := company.SetEDIPartnerID(fields.EDIPartnerID); err != nil {
		return err
	}
	company.SetNotes(fields.Notes)
	return nil
}

func (s *CompanyService) transition(ctx context.Context, id uuid.UUID, actor activityapp.Actor, detail string, fn func(*directory.Company) error) error {
	company, err := s.findCompany(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(company); err != nil {
		return err
	}

	if err := s.companyRepo.Save(ctx, company); err != nil {
		s.logger.Error("Failed to save company status change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update company")
	}

	s.record(ctx, activity.ActionCompanyUpdated,
		fmt.Sprintf("%s %s", detail, company.Code), company, actor)
	return nil
}

func (s *CompanyService) findCompany(ctx context.Context, id uuid.UUID) (*directory.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("COMPANY_NOT_FOUND", "Company not found")
		}
		s.logger.Error("Failed to load company", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load company")
	}
	return company, nil
}

func (s *CompanyService) record(ctx context.Context, action activity.Action, detail string, company *directory.Company, actor activityapp.Actor) {
	entry, err := activity.NewActivityLog(action, detail)
	if err != nil {
		return
	}
	entry.WithTarget("company", company.ID)
	if actor.CompanyID == nil {
		entry.WithCompany(company.ID)
	}
	s.recorder.Record(ctx, actor.Apply(entry))
}
