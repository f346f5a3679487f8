// Package handler contains the HTTP handlers of the portal API.
package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/dto"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

func getRequestID(c *gin.Context) string {
	return c.GetString(middleware.RequestIDContextKey)
}

// currentUserID extracts the authenticated user's ID from the JWT claims
func currentUserID(c *gin.Context) (uuid.UUID, error) {
	userIDStr := middleware.GetJWTUserID(c)
	if userIDStr == "" {
		return uuid.Nil, errors.New("user ID not found in context")
	}
	return uuid.Parse(userIDStr)
}

// companyScope returns the company binding of the current token. Nil for
// staff and admin, who see all companies.
func companyScope(c *gin.Context) (*uuid.UUID, error) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		return nil, errors.New("claims not found in context")
	}
	return claims.GetCompanyUUID()
}

// currentActor builds the activity log actor for the current request.
// Anonymous requests yield an actor with only the source address filled.
func currentActor(c *gin.Context) activityapp.Actor {
	actor := activityapp.Actor{
		SourceIP:  c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	claims := middleware.GetClaims(c)
	if claims == nil {
		return actor
	}
	if id, err := uuid.Parse(claims.UserID); err == nil {
		actor.UserID = id
	}
	actor.Email = claims.Email
	if companyID, err := claims.GetCompanyUUID(); err == nil {
		actor.CompanyID = companyID
	}
	return actor
}

// parseID binds and parses the :id path parameter
func parseID(c *gin.Context) (uuid.UUID, bool) {
	var req dto.IDRequest
	if err := c.ShouldBindUri(&req); err != nil {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

// listFilter binds pagination query parameters into a repository filter
func listFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}
	return toFilter(req), nil
}

// documentListFilter binds pagination plus the invoice and credit note
// query filters. Date bounds name inclusive calendar days.
func documentListFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.DocumentListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}

	filter := toFilter(req.ListRequest)
	if req.Status != "" {
		filter.Filters["status"] = req.Status
	}
	if req.CompanyID != "" {
		filter.Filters["company_id"] = req.CompanyID
	}
	if req.SupplierID != "" {
		filter.Filters["supplier_id"] = req.SupplierID
	}
	if from, ok := parseDay(req.IssuedFrom); ok {
		filter.Filters["issued_from"] = from
	}
	if to, ok := parseDay(req.IssuedTo); ok {
		filter.Filters["issued_to"] = to.AddDate(0, 0, 1)
	}
	if req.Unread {
		filter.Filters["unread"] = true
	}
	if req.ImportBatchID != "" {
		filter.Filters["import_batch_id"] = req.ImportBatchID
	}
	return filter, nil
}

// activityListFilter binds pagination plus the audit trail query filters
func activityListFilter(c *gin.Context) (shared.Filter, error) {
	req := dto.ActivityListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		return shared.Filter{}, err
	}

	filter := toFilter(req.ListRequest)
	if req.Action != "" {
		filter.Filters["action"] = req.Action
	}
	if req.UserID != "" {
		filter.Filters["user_id"] = req.UserID
	}
	if req.CompanyID != "" {
		filter.Filters["company_id"] = req.CompanyID
	}
	if from, ok := parseDay(req.From); ok {
		filter.Filters["from"] = from
	}
	if to, ok := parseDay(req.To); ok {
		filter.Filters["to"] = to.AddDate(0, 0, 1)
	}
	return filter, nil
}

func toFilter(req dto.ListRequest) shared.Filter {
	return shared.Filter{
		Page:     req.Page,
		PageSize: req.PageSize,
		OrderBy:  req.OrderBy,
		OrderDir: req.OrderDir,
		Search:   req.Search,
		Filters:  make(map[string]interface{}),
	}
}

// parseDay reads a yyyy-mm-dd query value
func parseDay(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	day, err := time.Parse("2006-01-02", value)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// Success sends a 200 response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// Paginated sends a 200 response with pagination meta
func Paginated[T any](c *gin.Context, page *shared.Paginated[T]) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(page.Items, page.Total, page.Page, page.PageSize))
}

// Created sends a 201 response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeBadRequest, message, getRequestID(c)))
}

// NotFound sends a 404 response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	c.JSON(http.StatusNotFound,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, message, getRequestID(c)))
}

// Forbidden sends a 403 response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	c.JSON(http.StatusForbidden,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeForbidden, message, getRequestID(c)))
}

// InternalError sends a 500 response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, message, getRequestID(c)))
}

// HandleError translates application errors into HTTP responses. Domain
// errors keep their code and map onto a status; everything else becomes
// an opaque 500 so internals never leak to clients.
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := getRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		status := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(status, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	if errors.Is(err, shared.ErrNotFound) {
		c.JSON(http.StatusNotFound,
			dto.NewErrorResponseWithRequestID(dto.ErrCodeNotFound, "Resource not found", requestID))
		return
	}

	c.JSON(http.StatusInternalServerError,
		dto.NewErrorResponseWithRequestID(dto.ErrCodeInternal, "An unexpected error occurred", requestID))
}
