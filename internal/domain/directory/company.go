package directory

import (
	"regexp"
	"strings"
	"time"

	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// CompanyStatus represents the status of a company account
type CompanyStatus string

const (
	CompanyStatusActive   CompanyStatus = "active"
	CompanyStatusInactive CompanyStatus = "inactive"
	CompanyStatusBlocked  CompanyStatus = "blocked" // Blocked by staff, users cannot login
)

// Company represents a customer company on the portal. The company is the
// tenant boundary: its users only ever see documents addressed to it.
type Company struct {
	shared.BaseAggregateRoot
	Code              string        `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name              string        `gorm:"type:varchar(200);not null"`
	ShortName         string        `gorm:"type:varchar(100)"`
	Status            CompanyStatus `gorm:"type:varchar(20);not null;default:'active'"`
	ContactName       string        `gorm:"type:varchar(100)"`
	Phone             string        `gorm:"type:varchar(50)"`
	Email             string        `gorm:"type:varchar(200);index"` // Primary contact address
	NotificationEmail string        `gorm:"type:varchar(200)"`       // Import notifications go here; falls back to Email
	Address           string        `gorm:"type:text"`
	City              string        `gorm:"type:varchar(100)"`
	PostalCode        string        `gorm:"type:varchar(20)"`
	Country           string        `gorm:"type:varchar(100);default:'Deutschland'"`
	TaxID             string        `gorm:"type:varchar(50)"` // VAT identification number
	EDIPartnerID      string        `gorm:"type:varchar(100);index"` // Receiver identifier on imported documents
	Notes             string        `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Company) TableName() string {
	return "companies"
}

// NewCompany creates a new company with required fields
func NewCompany(code, name string) (*Company, error) {
	if err := validateCompanyCode(code); err != nil {
		return nil, err
	}
	if err := validateCompanyName(name); err != nil {
		return nil, err
	}

	company := &Company{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Status:            CompanyStatusActive,
		Country:           "Deutschland",
	}

	company.AddDomainEvent(NewCompanyCreatedEvent(company))

	return company, nil
}

// Update updates the company's basic information
func (c *Company) Update(name, shortName string) error {
	if err := validateCompanyName(name); err != nil {
		return err
	}
	if shortName != "" && len(shortName) > 100 {
		return shared.NewDomainError("INVALID_SHORT_NAME", "Short name cannot exceed 100 characters")
	}

	c.Name = name
	c.ShortName = shortName
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyUpdatedEvent(c))

	return nil
}

// SetContact sets the company's contact information
func (c *Company) SetContact(contactName, phone, email string) error {
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

	c.ContactName = contactName
	c.Phone = phone
	c.Email = strings.ToLower(strings.TrimSpace(email))
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetNotificationEmail sets the address import notifications are sent to
func (c *Company) SetNotificationEmail(email string) error {
	if email != "" {
		if err := validateCompanyEmail(email); err != nil {
			return err
		}
	}

	c.NotificationEmail = strings.ToLower(strings.TrimSpace(email))
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// GetNotificationEmail returns the notification address, falling back to the
// primary contact address
func (c *Company) GetNotificationEmail() string {
	if c.NotificationEmail != "" {
		return c.NotificationEmail
	}
	return c.Email
}

// SetAddress sets the company's address information
func (c *Company) SetAddress(address, city, postalCode, country string) {
	c.Address = address
	c.City = city
	c.PostalCode = postalCode
	if country != "" {
		c.Country = country
	}
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// SetTaxID sets the company's VAT identification number
func (c *Company) SetTaxID(taxID string) error {
	if taxID != "" && len(taxID) > 50 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 50 characters")
	}

	c.TaxID = taxID
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetEDIPartnerID sets the receiver identifier used to match imported documents
func (c *Company) SetEDIPartnerID(partnerID string) error {
	if partnerID != "" && len(partnerID) > 100 {
		return shared.NewDomainError("INVALID_PARTNER_ID", "Partner ID cannot exceed 100 characters")
	}

	c.EDIPartnerID = strings.TrimSpace(partnerID)
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	return nil
}

// SetNotes sets the company's notes
func (c *Company) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
	c.IncrementVersion()
}

// Activate activates the company
func (c *Company) Activate() error {
	if c.Status == CompanyStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Company is already active")
	}

	c.Status = CompanyStatusActive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyStatusChangedEvent(c))

	return nil
}

// Deactivate deactivates the company
func (c *Company) Deactivate() error {
	if c.Status == CompanyStatusInactive {
		return shared.NewDomainError("ALREADY_INACTIVE", "Company is already inactive")
	}

	c.Status = CompanyStatusInactive
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyStatusChangedEvent(c))

	return nil
}

// Block blocks the company, locking its users out of the portal
func (c *Company) Block() error {
	if c.Status == CompanyStatusBlocked {
		return shared.NewDomainError("ALREADY_BLOCKED", "Company is already blocked")
	}

	c.Status = CompanyStatusBlocked
	c.UpdatedAt = time.Now()
	c.IncrementVersion()

	c.AddDomainEvent(NewCompanyStatusChangedEvent(c))

	return nil
}

// IsActive returns true if the company is active
func (c *Company) IsActive() bool {
	return c.Status == CompanyStatusActive
}

// IsBlocked returns true if the company is blocked
func (c *Company) IsBlocked() bool {
	return c.Status == CompanyStatusBlocked
}

// GetDisplayName returns short name if set, otherwise full name
func (c *Company) GetDisplayName() string {
	if c.ShortName != "" {
		return c.ShortName
	}
	return c.Name
}

// Validation functions

var companyCodeRegex = regexp.MustCompile(`^[A-Za-z0-9\-_]+$`)
var companyEmailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

func validateCompanyCode(code string) error {
	if code == "" {
		return shared.NewDomainError("INVALID_CODE", "Company code cannot be empty")
	}
	if len(code) > 50 {
		return shared.NewDomainError("INVALID_CODE", "Company code cannot exceed 50 characters")
	}
	if !companyCodeRegex.MatchString(code) {
		return shared.NewDomainError("INVALID_CODE", "Company code can only contain letters, numbers, hyphens and underscores")
	}

	return nil
}

func validateCompanyName(name string) error {
	if strings.TrimSpace(name) == "" {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Company name cannot exceed 200 characters")
	}

	return nil
}

func validateCompanyEmail(email string) error {
	email = strings.TrimSpace(email)
	if len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}
	if !companyEmailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
	}

	return nil
}
