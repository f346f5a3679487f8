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
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// SupplierService manages the portal-wide supplier directory.
type SupplierService struct {
	supplierRepo directory.SupplierRepository
	recorder     *activityapp.Recorder
	logger       *zap.Logger
}

// NewSupplierService creates a new supplier service
func NewSupplierService(
	supplierRepo directory.SupplierRepository,
	recorder *activityapp.Recorder,
	logger *zap.Logger,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		recorder:     recorder,
		logger:       logger,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, input CreateSupplierInput, actor activityapp.Actor) (*SupplierDTO, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))

	exists, err := s.supplierRepo.ExistsByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to check supplier code", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create supplier")
	}
	if exists {
		return nil, shared.NewDomainError("SUPPLIER_CODE_EXISTS", "A supplier with this code already exists")
	}

	supplier, err := directory.NewSupplier(code, input.Name)
	if err != nil {
		return nil, err
	}
	if err := s.applyFields(supplier, supplierFields{
		Name:        input.Name,
		ShortName:   input.ShortName,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		City:        input.City,
		PostalCode:  input.PostalCode,
		Country:     input.Country,
		TaxID:       input.TaxID,
		EDISenderID: input.EDISenderID,
		Notes:       input.Notes,
	}); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		s.logger.Error("Failed to save supplier", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to create supplier")
	}

	s.record(ctx, activity.ActionSupplierCreated,
		fmt.Sprintf("Created supplier %s", supplier.Code), supplier, actor)

	s.logger.Info("Supplier created", zap.String("code", supplier.Code))

	dto := supplierToDTO(supplier)
	return &dto, nil
}

// Get returns one supplier
func (s *SupplierService) Get(ctx context.Context, id uuid.UUID) (*SupplierDTO, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := supplierToDTO(supplier)
	return &dto, nil
}

// List returns suppliers
func (s *SupplierService) List(ctx context.Context, filter shared.Filter) (*shared.Paginated[SupplierDTO], error) {
	page, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list suppliers", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to list suppliers")
	}

	dtos := make([]SupplierDTO, 0, len(page.Items))
	for _, supplier := range page.Items {
		dtos = append(dtos, supplierToDTO(supplier))
	}
	mapped := shared.NewPaginated(dtos, page.Total, page.Page, page.PageSize)
	return &mapped, nil
}

// Update changes the editable supplier fields
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, input UpdateSupplierInput, actor activityapp.Actor) (*SupplierDTO, error) {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.applyFields(supplier, supplierFields(input)); err != nil {
		return nil, err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		s.logger.Error("Failed to save supplier", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to update supplier")
	}

	s.record(ctx, activity.ActionSupplierUpdated,
		fmt.Sprintf("Updated supplier %s", supplier.Code), supplier, actor)

	dto := supplierToDTO(supplier)
	return &dto, nil
}

// Activate re-enables a supplier
func (s *SupplierService) Activate(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Activated supplier", func(sp *directory.Supplier) error {
		return sp.Activate()
	})
}

// Deactivate disables a supplier for future imports
func (s *SupplierService) Deactivate(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	return s.transition(ctx, id, actor, "Deactivated supplier", func(sp *directory.Supplier) error {
		return sp.Deactivate()
	})
}

// Delete removes a supplier
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return err
	}

	if err := s.supplierRepo.Delete(ctx, id); err != nil {
		if err == shared.ErrNotFound {
			return shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
		}
		s.logger.Error("Failed to delete supplier", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to delete supplier")
	}

	s.record(ctx, activity.ActionSupplierUpdated,
		fmt.Sprintf("Deleted supplier %s", supplier.Code), supplier, actor)

	s.logger.Info("Supplier deleted", zap.String("code", supplier.Code))
	return nil
}

type supplierFields struct {
	Name        string
	ShortName   string
	ContactName string
	Phone       string
	Email       string
	Address     string
	City        string
	PostalCode  string
	Country     string
	TaxID       string
	EDISenderID string
	Notes       string
}

func (s *SupplierService) applyFields(supplier *directory.Supplier, fields supplierFields) error {
	if err := supplier.Update(fields.Name, fields.ShortName); err != nil {
		return err
	}
	if err := supplier.SetContact(fields.ContactName, fields.Phone, fields.Email); err != nil {
		return err
	}
	supplier.SetAddress(fields.Address, fields.City, fields.PostalCode, fields.Country)
	if err := supplier.SetTaxID(fields.TaxID); err != nil {
		return err
	}
	if err := supplier.SetEDISenderID(fields.EDISenderID); err != nil {
		return err
	}
	supplier.SetNotes(fields.Notes)
	return nil
}

func (s *SupplierService) transition(ctx context.Context, id uuid.UUID, actor activityapp.Actor, detail string, fn func(*directory.Supplier) error) error {
	supplier, err := s.findSupplier(ctx, id)
	if err != nil {
		return err
	}

	if err := fn(supplier); err != nil {
		return err
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		s.logger.Error("Failed to save supplier status change", zap.Error(err))
		return shared.NewDomainError("INTERNAL_ERROR", "Failed to update supplier")
	}

	s.record(ctx, activity.ActionSupplierUpdated,
		fmt.Sprintf("%s %s", detail, supplier.Code), supplier, actor)
	return nil
}

func (s *SupplierService) findSupplier(ctx context.Context, id uuid.UUID) (*directory.Supplier, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		if err == shared.ErrNotFound {
			return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", "Supplier not found")
		}
		s.logger.Error("Failed to load supplier", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to load supplier")
	}
	return supplier, nil
}

func (s *SupplierService) record(ctx context.Context, action activity.Action, detail string, supplier *directory.Supplier, actor activityapp.Actor) {
	entry, err := activity.NewActivityLog(action, detail)
	if err != nil {
		return
	}
	entry.WithTarget("supplier", supplier.ID)
	s.recorder.Record(ctx, actor.Apply(entry))
}
