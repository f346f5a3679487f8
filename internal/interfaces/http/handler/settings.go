package handler

import (
	"github.com/gin-gonic/gin"

	settingsapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/settings"
)

// SettingsHandler handles portal configuration by admins
type SettingsHandler struct {
	BaseHandler
	settingsService *settingsapp.Service
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settingsService *settingsapp.Service) *SettingsHandler {
	return &SettingsHandler{settingsService: settingsService}
}

// List returns all settings as key/value pairs
func (h *SettingsHandler) List(c *gin.Context) {
	values, err := h.settingsService.GetAll(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, values)
}

// Update changes the submitted keys; unknown keys are rejected
func (h *SettingsHandler) Update(c *gin.Context) {
	var input settingsapp.UpdateSettingsInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.settingsService.Update(c.Request.Context(), input, currentActor(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SecurityPolicy returns the effective lockout and alerting settings
func (h *SettingsHandler) SecurityPolicy(c *gin.Context) {
	h.Success(c, h.settingsService.SecurityPolicyDTO(c.Request.Context()))
}

// RetentionPolicy returns the effective document retention settings
func (h *SettingsHandler) RetentionPolicy(c *gin.Context) {
	h.Success(c, h.settingsService.RetentionPolicyDTO(c.Request.Context()))
}
