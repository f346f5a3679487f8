package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	documentapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/document"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/dto"
)

// InvoiceHandler serves invoices. Company tokens only see their own
// company's documents; staff see everything.
type InvoiceHandler struct {
	BaseHandler
	invoiceService *documentapp.InvoiceService
}

// NewInvoiceHandler creates a new invoice handler
func NewInvoiceHandler(invoiceService *documentapp.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceService: invoiceService}
}

// List returns invoices, paginated. Company tokens are scoped to their
// own company.
func (h *InvoiceHandler) List(c *gin.Context) {
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
		page, err := h.invoiceService.ListForCompany(c.Request.Context(), *scope, filter)
		if err != nil {
			h.HandleError(c, err)
			return
		}
		Paginated(c, page)
		return
	}

	page, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

// Get returns a single invoice. First access by a company user marks the
// document as read.
func (h *InvoiceHandler) Get(c *gin.Context) {
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

	invoice, err := h.invoiceService.Get(c.Request.Context(), id, scope, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, invoice)
}

// Download serves the invoice PDF, either as a presigned URL or as the
// file content when the storage driver cannot presign
func (h *InvoiceHandler) Download(c *gin.Context) {
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

	result, err := h.invoiceService.Download(c.Request.Context(), id, scope, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	serveDownload(c, result)
}

// Archive hides an invoice from companies without deleting it
func (h *InvoiceHandler) Archive(c *gin.Context) {
	h.transition(c, h.invoiceService.Archive)
}

// Restore makes an archived invoice visible again
func (h *InvoiceHandler) Restore(c *gin.Context) {
	h.transition(c, h.invoiceService.Restore)
}

// Delete removes an invoice and its stored file
func (h *InvoiceHandler) Delete(c *gin.Context) {
	h.transition(c, h.invoiceService.Delete)
}

func (h *InvoiceHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID, actor activityapp.Actor) error) {
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

// serveDownload writes a download result: streamed content directly,
// presigned URLs as JSON for the client to follow
func serveDownload(c *gin.Context, result *documentapp.DownloadResult) {
	if result.Streamed() {
		c.Header("Content-Disposition", `attachment; filename="`+result.FileName+`"`)
		c.Data(http.StatusOK, result.ContentType, result.Content)
		return
	}
	c.JSON(http.StatusOK, dto.NewSuccessResponse(result))
}
