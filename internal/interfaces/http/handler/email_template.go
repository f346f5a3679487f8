package handler

import (
	"github.com/gin-gonic/gin"

	settingsapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/settings"
)

// EmailTemplateHandler handles notification mail template administration
type EmailTemplateHandler struct {
	BaseHandler
	templateService *settingsapp.EmailTemplateService
}

// NewEmailTemplateHandler creates a new template handler
func NewEmailTemplateHandler(templateService *settingsapp.EmailTemplateService) *EmailTemplateHandler {
	return &EmailTemplateHandler{templateService: templateService}
}

// List returns all mail templates
func (h *EmailTemplateHandler) List(c *gin.Context) {
	templates, err := h.templateService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, templates)
}

// Get returns a single mail template by its key
func (h *EmailTemplateHandler) Get(c *gin.Context) {
	template, err := h.templateService.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Update stores an edited template after a render check
func (h *EmailTemplateHandler) Update(c *gin.Context) {
	var input settingsapp.UpdateTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	template, err := h.templateService.Update(c.Request.Context(), c.Param("key"), input, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Reset restores the shipped default content for a template
func (h *EmailTemplateHandler) Reset(c *gin.Context) {
	template, err := h.templateService.Reset(c.Request.Context(), c.Param("key"), currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, template)
}

// Preview renders unsaved template content with sample data
func (h *EmailTemplateHandler) Preview(c *gin.Context) {
	var input settingsapp.PreviewTemplateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	result, err := h.templateService.Preview(c.Request.Context(), c.Param("key"), input)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
