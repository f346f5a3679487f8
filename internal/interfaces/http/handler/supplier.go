package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	directoryapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/directory"
)

// SupplierHandler handles supplier administration by staff
type SupplierHandler struct {
	BaseHandler
	supplierService *directoryapp.SupplierService
}

// NewSupplierHandler creates a new supplier handler
func NewSupplierHandler(supplierService *directoryapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{supplierService: supplierService}
}

// Create creates a supplier
func (h *SupplierHandler) Create(c *gin.Context) {
	var input directoryapp.CreateSupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	supplier, err := h.supplierService.Create(c.Request.Context(), input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// List returns suppliers, paginated
func (h *SupplierHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.supplierService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Get returns a single supplier
func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	supplier, err := h.supplierService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Update changes a supplier's master data
func (h *SupplierHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var input directoryapp.UpdateSupplierInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	supplier, err := h.supplierService.Update(c.Request.Context(), id, input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// Activate reinstates an inactive supplier
func (h *SupplierHandler) Activate(c *gin.Context) {
	h.transition(c, h.supplierService.Activate)
}

// Deactivate disables a supplier
func (h *SupplierHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.supplierService.Deactivate)
}

// Delete removes a supplier without documents
func (h *SupplierHandler) Delete(c *gin.Context) {
	h.transition(c, h.supplierService.Delete)
}

func (h *SupplierHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	if err := fn(c.Request.Context(), id, currentActor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
