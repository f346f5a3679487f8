package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	documentapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/document"
)

// CreditNoteHandler serves credit notes with the same scoping rules as
// invoices
type CreditNoteHandler struct {
	BaseHandler
	creditNoteService *documentapp.CreditNoteService
}

// NewCreditNoteHandler creates a new credit note handler
func NewCreditNoteHandler(creditNoteService *documentapp.CreditNoteService) *CreditNoteHandler {
	return &CreditNoteHandler{creditNoteService: creditNoteService}
}

// List returns credit notes, paginated
func (h *CreditNoteHandler) List(c *gin.Context) {
	filter, err := documentListFilter(c)
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
		page, err := h.creditNoteService.ListForCompany(c.Request.Context(), *scope, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		Paginated(c, page)
		return
	}

	page, err := h.creditNoteService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Get returns a single credit note
func (h *CreditNoteHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	scope, err := companyScope(c)
	if err != nil {
		h.BadRequest(c, "Invalid company scope")
		return
	}

	note, err := h.creditNoteService.Get(c.Request.Context(), id, scope, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, note)
}

// Download serves the credit note PDF
func (h *CreditNoteHandler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	scope, err := companyScope(c)
	if err != nil {
		h.BadRequest(c, "Invalid company scope")
		return
	}

	result, err := h.creditNoteService.Download(c.Request.Context(), id, scope, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	serveDownload(c, result)
}

// Archive hides a credit note from companies
func (h *CreditNoteHandler) Archive(c *gin.Context) {
	h.transition(c, h.creditNoteService.Archive)
}

// Restore makes an archived credit note visible again
func (h *CreditNoteHandler) Restore(c *gin.Context) {
	h.transition(c, h.creditNoteService.Restore)
}

// Delete removes a credit note and its stored file
func (h *CreditNoteHandler) Delete(c *gin.Context) {
	h.transition(c, h.creditNoteService.Delete)
}

func (h *CreditNoteHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error) {
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
