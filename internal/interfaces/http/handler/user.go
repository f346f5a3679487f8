package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	identityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/identity"
)

// UserHandler handles account administration by staff
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// Create creates an account; the initial password is mailed to the user
func (h *UserHandler) Create(c *gin.Context) {
	var input identityapp.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Create(c.Request.Context(), input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// List returns accounts, paginated
func (h *UserHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.userService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Get returns a single account
func (h *UserHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	user, err := h.userService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// Update changes an account's profile fields
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var input identityapp.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ResetPassword issues a new temporary password and mails it to the user
func (h *UserHandler) ResetPassword(c *gin.Context) {
	h.transition(c, h.userService.ResetPassword)
}

// Unlock clears a lockout before it expires on its own
func (h *UserHandler) Unlock(c *gin.Context) {
	h.transition(c, h.userService.Unlock)
}

// Activate enables a deactivated or pending account
func (h *UserHandler) Activate(c *gin.Context) {
	h.transition(c, h.userService.Activate)
}

// Deactivate disables an account without deleting it
func (h *UserHandler) Deactivate(c *gin.Context) {
	h.transition(c, h.userService.Deactivate)
}

// Delete removes an account
func (h *UserHandler) Delete(c *gin.Context) {
	h.transition(c, h.userService.Delete)
}

func (h *UserHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error) {
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
