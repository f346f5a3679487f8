package directory

import (
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Event type constants
const (
	EventTypeCompanyCreated       = "directory.company.created"
	EventTypeCompanyUpdated       = "directory.company.updated"
	EventTypeCompanyStatusChanged = "directory.company.status_changed"
)

// CompanyCreatedEvent is published when a company is created
type CompanyCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCompanyCreatedEvent creates a new company created event
func NewCompanyCreatedEvent(company *Company) *CompanyCreatedEvent {
	return &CompanyCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyCreated, "Company", company.ID, company.ID),
		Code:            company.Code,
		Name:            company.Name,
	}
}

// CompanyUpdatedEvent is published when a company is updated
type CompanyUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewCompanyUpdatedEvent creates a new company updated event
func NewCompanyUpdatedEvent(company *Company) *CompanyUpdatedEvent {
	return &CompanyUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyUpdated, "Company", company.ID, company.ID),
		Code:            company.Code,
		Name:            company.Name,
	}
}

// CompanyStatusChangedEvent is published when a company's status changes
type CompanyStatusChangedEvent struct {
	shared.BaseDomainEvent
	Status CompanyStatus `json:"status"`
}

// NewCompanyStatusChangedEvent creates a new status changed event
func NewCompanyStatusChangedEvent(company *Company) *CompanyStatusChangedEvent {
	return &CompanyStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCompanyStatusChanged, "Company", company.ID, company.ID),
		Status:          company.Status,
	}
}
