package handler

import (
	"github.com/gin-gonic/gin"

	identityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/identity"
)

// RegistrationHandler handles self-service registration requests and
// their review by staff
type RegistrationHandler struct {
	BaseHandler
	registrationService *identityapp.RegistrationService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService *identityapp.RegistrationService) *RegistrationHandler {
	return &RegistrationHandler{registrationService: registrationService}
}

// Submit files a registration request. Unauthenticated.
func (h *RegistrationHandler) Submit(c *gin.Context) {
	var input identityapp.RegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	input.SourceIP = c.ClientIP()
	input.UserAgent = c.Request.UserAgent()

	reg, err := h.registrationService.Submit(c.Request.Context(), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reg)
}

// List returns registration requests, paginated
func (h *RegistrationHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.registrationService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// PendingCount returns how many requests await review
func (h *RegistrationHandler) PendingCount(c *gin.Context) {
	count, err := h.registrationService.CountPending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"count": count})
}

// Get returns a single registration request
func (h *RegistrationHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	reg, err := h.registrationService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reg)
}

// Approve turns a registration into a company account
func (h *RegistrationHandler) Approve(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var input identityapp.ApproveRegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	reg, err := h.registrationService.Approve(c.Request.Context(), id, input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reg)
}

// Reject declines a registration and notifies the requester
func (h *RegistrationHandler) Reject(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var input identityapp.RejectRegistrationInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	reg, err := h.registrationService.Reject(c.Request.Context(), id, input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reg)
}
