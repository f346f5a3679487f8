package directory

import (
	"github.com/google/uuid"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
)

// Event type constants
const (
	EventTypeSupplierCreated = "directory.supplier.created"
	EventTypeSupplierUpdated = "directory.supplier.updated"
)

// SupplierCreatedEvent is published when a supplier is created
type SupplierCreatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewSupplierCreatedEvent creates a new supplier created event
func NewSupplierCreatedEvent(supplier *Supplier) *SupplierCreatedEvent {
	return &SupplierCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierCreated, "Supplier", supplier.ID, uuid.Nil),
		Code:            supplier.Code,
		Name:            supplier.Name,
	}
}

// SupplierUpdatedEvent is published when a supplier is updated
type SupplierUpdatedEvent struct {
	shared.BaseDomainEvent
	Code string `json:"code"`
	Name string `json:"name"`
}

// NewSupplierUpdatedEvent creates a new supplier updated event
func NewSupplierUpdatedEvent(supplier *Supplier) *SupplierUpdatedEvent {
	return &SupplierUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierUpdated, "Supplier", supplier.ID, uuid.Nil),
		Code:            supplier.Code,
		Name:            supplier.Name,
	}
}
