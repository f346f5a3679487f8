package handler

import (
	"io"
	"mime/multipart"

	"github.com/gin-gonic/gin"

	importapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/import"
)

// ImportHandler handles CSV document imports by staff. An upload is one
// CSV manifest plus the PDF files it references.
type ImportHandler struct {
	BaseHandler
	importService *importapp.DocumentImportService
}

// NewImportHandler creates a new import handler
func NewImportHandler(importService *importapp.DocumentImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

// Start accepts a multipart upload with a "manifest" CSV part and any
// number of "files" parts, and starts an asynchronous import batch
func (h *ImportHandler) Start(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		h.BadRequest(c, "Invalid multipart form")
		return
	}

	manifests := form.File["manifest"]
	if len(manifests) != 1 {
		h.BadRequest(c, "Exactly one manifest CSV is required")
		return
	}

	csvData, err := readPart(manifests[0])
	if err != nil {
		h.BadRequest(c, "Could not read manifest")
		return
	}

	files := make(map[string][]byte, len(form.File["files"]))
	for _, part := range form.File["files"] {
		data, err := readPart(part)
		if err != nil {
			h.BadRequest(c, "Could not read file "+part.Filename)
			return
		}
		files[part.Filename] = data
	}

	batch, err := h.importService.StartImport(c.Request.Context(), importapp.StartImportInput{
		FileName: manifests[0].Filename,
		CSVData:  csvData,
		Files:    files,
	}, currentActor(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, batch)
}

// Get returns an import batch with its row errors
func (h *ImportHandler) Get(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		h.BadRequest(c, "Invalid ID")
		return
	}

	batch, err := h.importService.GetBatch(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batch)
}

// List returns import batches, newest first
func (h *ImportHandler) List(c *gin.Context) {
	filter, err := listFilter(c)
	if err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.importService.ListBatches(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(c, page)
}

func readPart(part *multipart.FileHeader) ([]byte, error) {
	file, err := part.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}
