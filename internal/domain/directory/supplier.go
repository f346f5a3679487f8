package directory

import (
	"strings"
	"time"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// SupplierStatus represents the status of a supplier
type SupplierStatus string

const (
	SupplierStatusActive   SupplierStatus = "active"
	SupplierStatusInactive SupplierStatus = "inactive"
)

// Supplier represents an issuing party in the portal-wide directory. Imported
// invoices and credit notes reference a supplier; suppliers are maintained by
// staff and visible to every company whose documents name them.
type Supplier struct {
	shared.BaseAggregateRoot
	Code         string         `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name         string         `gorm:"type:varchar(200);not null"`
	ShortName    string         `gorm:"type:varchar(100)"`
	Status       SupplierStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName  string         `gorm:"type:varchar(100)"`
	Phone        string         `gorm:"type:varchar(50)"`
	Email        string         `gorm:"type:varchar(200);index"`
	Address      string         `gorm:"type:text"`
	City         string         `gorm:"type:varchar(100)"`
	PostalCode   string         `gorm:"type:varchar(20)"`
	Country      string         `gorm:"type:varchar(100);default:'Deutschland'"`
	TaxID        string         `gorm:"type:varchar(50)"`
	EDISenderID  string         `gorm:"type:varchar(100);index"` // Sender identifier on imported documents
	Notes        string         `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(code, name string) (*Supplier, error) {
	if err := validateCompanyCode(code); err != nil {
		return nil, err
	}
	if err := validateCompanyName(name); err != nil {
		return nil, err
	}

	supplier := &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            SupplierStatusActive,
		Country:           "Deutschland",
	}

	supplier.AddDomainEvent(NewSupplierCreatedEvent(supplier))

	return supplier, nil
}

// Update updates the supplier's basic information
func (s *Supplier) Update(name, shortName string) error {
	if err := validateCompanyName(name); err != nil {
		return err
	}
	if shortName != "" && len(shortName) > 100 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Short name cannot exceed 100 characters")
	}

	s.Name = name
	s.ShortName = shortName
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	s.AddDomainEvent(NewSupplierUpdatedEvent(s))

	return nil
}

// SetContact sets the supplier's contact information
func (s *Supplier) SetContact(contactName, phone, email string) error {
	if contactName != "" && len(contactName) > 100 {
		return shared.NewDomainError("INVALID_CONTACT_NAME", "Contact name cannot exceed 100 characters")
	}
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	if email != "" {
		if err := validateCompanyEmail(email); err != nil {
			return err
		}
	}

	s.ContactName = contactName
	s.Phone = phone
	s.Email = strings.ToLower(strings.TrimSpace(email))
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetAddress sets the supplier's address information
func (s *Supplier) SetAddress(address, city, postalCode, country string) {
	s.Address = address
	s.City = city
	s.PostalCode = postalCode
	if country != "" {
		s.Country = country
	}
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// SetTaxID sets the supplier's VAT identification number
func (s *Supplier) SetTaxID(taxID string) error {
	if taxID != "" && len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}

	s.TaxID = taxID
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetEDISenderID sets the sender identifier used to match imported documents
func (s *Supplier) SetEDISenderID(senderID string) error {
	if senderID != "" && len(senderID) > 100 {
		return shared.NewDomainError("INVALID_SENDER_ID", "Sender ID cannot exceed 100 characters")
	}

	s.EDISenderID = strings.TrimSpace(senderID)
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// SetNotes sets the supplier's notes
func (s *Supplier) SetNotes(notes string) {
	s.Notes = notes
	s.UpdatedAt = time.Now()
	s.IncrementVersion()
}

// Activate activates the supplier
func (s *Supplier) Activate() error {
	if s.Status == SupplierStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Supplier is already active")
	}

	s.Status = SupplierStatusActive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// Deactivate deactivates the supplier
func (s *Supplier) Deactivate() error {
	if s.Status == SupplierStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Supplier is already inactive")
	}

	s.Status = SupplierStatusInactive
	s.UpdatedAt = time.Now()
	s.IncrementVersion()

	return nil
}

// IsActive returns true if the supplier is active
func (s *Supplier) IsActive() bool {
	return s.Status == SupplierStatusActive
}

// GetDisplayName returns short name if set, otherwise full name
func (s *Supplier) GetDisplayName() string {
	if s.ShortName != "" {
		return s.ShortName
	}
	return s.Name
}
