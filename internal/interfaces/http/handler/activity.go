package handler

import (
	"github.com/gin-gonic/gin"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
)

// ActivityHandler serves the audit trail. Staff see everything; company
// users only their own company's entries.
type ActivityHandler struct {
	BaseHandler
	activityService *activityapp.Service
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(activityService *activityapp.Service) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List returns activity entries, newest first
func (h *ActivityHandler) List(c *gin.Context) {
	filter, err := activityListFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid filter parameters")
		return
	}

	scope, err := companyScope(c)
	if err != nil {
		h.BadRequest(c, "Invalid company scope")
		return
	}

	if scope != nil {
		// Company tokens are already bound to their own company.
		delete(filter.Filters, "company_id")
		page, err := h.activityService.ListForCompany(c.Request.Context(), *scope, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		Paginated(c, page)
		return
	}

	page, err := h.activityService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// ListForUser returns one account's activity. Staff only.
func (h *ActivityHandler) ListForUser(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.activityService.ListForUser(c.Request.Context(), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}
