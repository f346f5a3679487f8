package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRouter_MountsUnderVersionPrefix(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	group := NewGroup("/invoices").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, "list") }).
		GET("/:id", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })

	NewRouter(engine, WithAPIVersion("v1")).Register(group).Setup()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/invoices", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "list", rec.Body.String())

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/invoices/42", nil))
	assert.Equal(t, "42", rec.Body.String())

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/invoices", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_SharedMiddlewareRuns(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var order []string
	group := NewGroup("/settings").
		Use(func(c *gin.Context) { order = append(order, "group"); c.Next() }).
		GET("", func(c *gin.Context) { order = append(order, "handler"); c.Status(http.StatusOK) })

	NewRouter(engine).
		Use(func(c *gin.Context) { order = append(order, "api"); c.Next() }).
		Register(group).
		Setup()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"api", "group", "handler"}, order)
}

func TestGroup_MiddlewareOnlyAppliesToOwnRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	guarded := NewGroup("/admin").
		Use(func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }).
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	open := NewGroup("/public").
		GET("", func(c *gin.Context) { c.Status(http.StatusOK) })

	NewRouter(engine).Register(guarded).Register(open).Setup()

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/admin", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/public", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
