package directory

import (
	"time"

	"github.com/google/uuid"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/directory"
)

// CreateCompanyInput contains the data to create a company
type CreateCompanyInput struct {
	Code              string `json:"code" binding:"required"`
	Name              string `json:"name" binding:"required"`
	ShortName         string `json:"short_name"`
	ContactName       string `json:"contact_name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	NotificationEmail string `json:"notification_email"`
	Address           string `json:"address"`
	City              string `json:"city"`
	PostalCode        string `json:"postal_code"`
	Country           string `json:"country"`
	TaxID             string `json:"tax_id"`
	EDIPartnerID      string `json:"edi_partner_id"`
	Notes             string `json:"notes"`
}

// UpdateCompanyInput contains the editable company fields. The code is
// fixed once assigned.
type UpdateCompanyInput struct {
	Name              string `json:"name" binding:"required"`
	ShortName         string `json:"short_name"`
	ContactName       string `json:"contact_name"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	NotificationEmail string `json:"notification_email"`
	Address           string `json:"address"`
	City              string `json:"city"`
	PostalCode        string `json:"postal_code"`
	Country           string `json:"country"`
	TaxID             string `json:"tax_id"`
	EDIPartnerID      string `json:"edi_partner_id"`
	Notes             string `json:"notes"`
}

// CompanyDTO represents a company for transfer
type CompanyDTO struct {
	ID                uuid.UUID `json:"id"`
	Code              string    `json:"code"`
	Name              string    `json:"name"`
	ShortName         string    `json:"short_name,omitempty"`
	Status            string    `json:"status"`
	ContactName       string    `json:"contact_name,omitempty"`
	Phone             string    `json:"phone,omitempty"`
	Email             string    `json:"email,omitempty"`
	NotificationEmail string    `json:"notification_email,omitempty"`
	Address           string    `json:"address,omitempty"`
	City              string    `json:"city,omitempty"`
	PostalCode        string    `json:"postal_code,omitempty"`
	Country           string    `json:"country,omitempty"`
	TaxID             string    `json:"tax_id,omitempty"`
	EDIPartnerID      string    `json:"edi_partner_id,omitempty"`
	Notes             string    `json:"notes,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// CreateSupplierInput contains the data to create a supplier
type CreateSupplierInput struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	ShortName   string `json:"short_name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	TaxID       string `json:"tax_id"`
	EDISenderID string `json:"edi_sender_id"`
	Notes       string `json:"notes"`
}

// UpdateSupplierInput contains the editable supplier fields
type UpdateSupplierInput struct {
	Name        string `json:"name" binding:"required"`
	ShortName   string `json:"short_name"`
	ContactName string `json:"contact_name"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	PostalCode  string `json:"postal_code"`
	Country     string `json:"country"`
	TaxID       string `json:"tax_id"`
	EDISenderID string `json:"edi_sender_id"`
	Notes       string `json:"notes"`
}

// SupplierDTO represents a supplier for transfer
type SupplierDTO struct {
	ID          uuid.UUID `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	ShortName   string    `json:"short_name,omitempty"`
	Status      string    `json:"status"`
	ContactName string    `json:"contact_name,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	City        string    `json:"city,omitempty"`
	PostalCode  string    `json:"postal_code,omitempty"`
	Country     string    `json:"country,omitempty"`
	TaxID       string    `json:"tax_id,omitempty"`
	EDISenderID string    `json:"edi_sender_id,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func companyToDTO(c *directory.Company) CompanyDTO {
	return CompanyDTO{
		ID:                c.ID,
		Code:              c.Code,
		Name:              c.Name,
		ShortName:         c.ShortName,
		Status:            string(c.Status),
		ContactName:       c.ContactName,
		Phone:             c.Phone,
		Email:             c.Email,
		NotificationEmail: c.NotificationEmail,
		Address:           c.Address,
		City:              c.City,
		PostalCode:        c.PostalCode,
		Country:           c.Country,
		TaxID:             c.TaxID,
		EDIPartnerID:      c.EDIPartnerID,
		Notes:             c.Notes,
		CreatedAt:         c.CreatedAt,
		UpdatedAt:         c.UpdatedAt,
	}
}

func supplierToDTO(s *directory.Supplier) SupplierDTO {
	return SupplierDTO{
		ID:          s.ID,
		Code:        s.Code,
		Name:        s.Name,
		ShortName:   s.ShortName,
		Status:      string(s.Status),
		ContactName: s.ContactName,
		Phone:       s.Phone,
		Email:       s.Email,
		Address:     s.Address,
		City:        s.City,
		PostalCode:  s.PostalCode,
		Country:     s.Country,
		TaxID:       s.TaxID,
		EDISenderID: s.EDISenderID,
		Notes:       s.Notes,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
