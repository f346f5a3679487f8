package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	directoryapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/directory"
)

// CompanyHandler handles customer company administration by staff
type CompanyHandler struct {
	BaseHandler
	companyService *directoryapp.CompanyService
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *directoryapp.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

// Create creates a company
func (h *CompanyHandler) Create(c *gin.Context) {
	var input directoryapp.CreateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	company, err := h.companyService.Create(c.Request.Context(), input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, company)
}

// List returns companies, paginated
func (h *CompanyHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.companyService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Get returns a single company
func (h *CompanyHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	company, err := h.companyService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Update changes a company's master data
func (h *CompanyHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var input directoryapp.UpdateCompanyInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	company, err := h.companyService.Update(c.Request.Context(), id, input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, company)
}

// Activate reinstates an inactive or blocked company
func (h *CompanyHandler) Activate(c *gin.Context) {
	h.transition(c, h.companyService.Activate)
}

// Deactivate disables a company without deleting it
func (h *CompanyHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.companyService.Deactivate)
}

// Block bars a company and all its users from the portal
func (h *CompanyHandler) Block(c *gin.Context) {
	h.transition(c, h.companyService.Block)
}

// Delete removes a company without accounts
func (h *CompanyHandler) Delete(c *gin.Context) {
	h.transition(c, h.companyService.Delete)
}

func (h *CompanyHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error) {
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
