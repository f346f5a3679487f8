package handler

import (
	"github.com/gin-gonic/gin"

	documentapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/document"
)

// OverviewHandler serves the company dashboard counters
type OverviewHandler struct {
	BaseHandler
	overviewService *documentapp.OverviewService
}

// NewOverviewHandler creates a new overview handler
func NewOverviewHandler(overviewService *documentapp.OverviewService) *OverviewHandler {
	return &OverviewHandler{overviewService: overviewService}
}

// Unread returns how many documents the company has not opened yet.
// Only meaningful for company tokens.
func (h *OverviewHandler) Unread(c *gin.Context) {
	scope, err := companyScope(c)
	if err != nil || scope == nil {
		h.Forbidden(c, "Only company accounts have an unread overview")
		return
	}

	counts, err := h.overviewService.Unread(c.Request.Context(), *scope)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, counts)
}
