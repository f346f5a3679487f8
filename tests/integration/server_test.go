package integration

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	directoryapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/directory"
	documentapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/document"
	identityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/identity"
	importapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/import"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/notify"
	settingsapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/shared"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/auth"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
	csvimport "github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/import"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/mail"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/persistence"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/security"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/storage"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/handler"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/middleware"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/router"
)

// PortalServer wires the full HTTP stack over a containerized database,
// mirroring the composition in cmd/server.
type PortalServer struct {
	DB     *TestDB
	Engine *gin.Engine
	Store  *storage.LocalDocumentStorage

	UserRepo       *persistence.GormUserRepository
	CompanyRepo    *persistence.GormCompanyRepository
	SupplierRepo   *persistence.GormSupplierRepository
	InvoiceRepo    *persistence.GormInvoiceRepository
	CreditNoteRepo *persistence.GormCreditNoteRepository
	BatchRepo      *persistence.GormImportBatchRepository
}

func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-access-secret-at-least-32-chars!!",
		RefreshSecret:          "test-refresh-secret-at-least-32-chars!",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "invoice-portal-test",
		MaxRefreshCount:        3,
	}
}

func newPortalServer(t *testing.T) *PortalServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tdb := NewTestDB(t)
	log := zap.NewNop()
	require.NoError(t, persistence.NewDomainEventLogger(log).Register(tdb.DB))

	userRepo := persistence.NewGormUserRepository(tdb.DB)
	companyRepo := persistence.NewGormCompanyRepository(tdb.DB)
	supplierRepo := persistence.NewGormSupplierRepository(tdb.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(tdb.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(tdb.DB)
	activityRepo := persistence.NewGormActivityLogRepository(tdb.DB)
	batchRepo := persistence.NewGormImportBatchRepository(tdb.DB)
	registrationRepo := persistence.NewGormPendingRegistrationRepository(tdb.DB)
	settingRepo := persistence.NewGormSettingRepository(tdb.DB)
	templateRepo := persistence.NewGormEmailTemplateRepository(tdb.DB)

	jwtService := auth.NewJWTService(testJWTConfig())
	blacklist := auth.NewInMemoryTokenBlacklist()

	store, err := storage.NewLocalDocumentStorage(t.TempDir())
	require.NoError(t, err)

	sender := mail.NewSender(config.SMTPConfig{Enabled: false})
	engine := mail.NewTemplateEngine()

	recorder := activityapp.NewRecorder(activityRepo, log)
	settingsService := settingsapp.NewService(settingRepo, recorder, log)
	securityPolicy := func() settings.SecurityPolicy {
		return settingsService.SecurityPolicy(t.Context())
	}
	retentionPolicy := settingsService.RetentionPolicy

	notifier := notify.NewNotifier(templateRepo, engine, sender, "https://portal.test", log)

	monitor := security.NewLoginMonitor(securityPolicy, time.Minute)
	t.Cleanup(func() { _ = monitor.Close() })

	tracker := csvimport.NewBatchTracker(time.Minute)
	t.Cleanup(tracker.Close)

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, monitor, securityPolicy, recorder, notifier, log)
	userService := identityapp.NewUserService(userRepo, companyRepo, recorder, notifier, log)
	registrationService := identityapp.NewRegistrationService(registrationRepo, userRepo, companyRepo, settingsService, recorder, notifier, log)
	companyService := directoryapp.NewCompanyService(companyRepo, userRepo, recorder, log)
	supplierService := directoryapp.NewSupplierService(supplierRepo, recorder, log)
	invoiceService := documentapp.NewInvoiceService(invoiceRepo, store, 15*time.Minute, recorder, log)
	creditNoteService := documentapp.NewCreditNoteService(creditNoteRepo, store, 15*time.Minute, recorder, log)
	overviewService := documentapp.NewOverviewService(invoiceRepo, creditNoteRepo, log)
	importService := importapp.NewDocumentImportService(
		batchRepo, invoiceRepo, creditNoteRepo, companyRepo, supplierRepo,
		store, tracker, retentionPolicy, recorder, notifier,
		config.ImportConfig{Workers: 2, MaxFileSize: 10 << 20, MaxRowErrors: 50}, log,
	)
	templateService := settingsapp.NewEmailTemplateService(templateRepo, engine, recorder, log)

	require.NoError(t, templateService.SeedDefaults(t.Context()))

	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	registrationHandler := handler.NewRegistrationHandler(registrationService)
	companyHandler := handler.NewCompanyHandler(companyService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	overviewHandler := handler.NewOverviewHandler(overviewService)
	importHandler := handler.NewImportHandler(importService)

	ginEngine := gin.New()
	ginEngine.Use(middleware.RequestID())

	r := router.NewRouter(ginEngine, router.WithAPIVersion("v1"))
	r.Use(middleware.JWTAuth(middleware.JWTConfig{
		JWTService: jwtService,
		Blacklist:  blacklist,
		SkipPaths: []string{
			"/api/v1/auth/login",
			"/api/v1/auth/refresh",
			"/api/v1/auth/register",
		},
		Logger: log,
	}))

	authRoutes := router.NewGroup("/auth")
	authRoutes.POST("/login", authHandler.Login)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/register", registrationHandler.Submit)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.GET("/me", authHandler.Me)

	userRoutes := router.NewGroup("/users").Use(middleware.RequireStaff())
	userRoutes.POST("", userHandler.Create)
	userRoutes.GET("", userHandler.List)

	registrationRoutes := router.NewGroup("/registrations").Use(middleware.RequireStaff())
	registrationRoutes.GET("", registrationHandler.List)
	registrationRoutes.GET("/pending-count", registrationHandler.PendingCount)
	registrationRoutes.POST("/:id/approve", registrationHandler.Approve)

	companyRoutes := router.NewGroup("/companies").Use(middleware.RequireStaff())
	companyRoutes.POST("", companyHandler.Create)
	companyRoutes.GET("", companyHandler.List)

	supplierRoutes := router.NewGroup("/suppliers").Use(middleware.RequireStaff())
	supplierRoutes.POST("", supplierHandler.Create)

	invoiceRoutes := router.NewGroup("/invoices")
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/:id", invoiceHandler.Get)
	invoiceRoutes.GET("/:id/download", invoiceHandler.Download)
	invoiceRoutes.DELETE("/:id", middleware.RequireStaff(), invoiceHandler.Delete)

	creditNoteRoutes := router.NewGroup("/credit-notes")
	creditNoteRoutes.GET("", creditNoteHandler.List)
	creditNoteRoutes.GET("/:id", creditNoteHandler.Get)

	documentRoutes := router.NewGroup("/documents")
	documentRoutes.GET("/unread", overviewHandler.Unread)

	importRoutes := router.NewGroup("/imports").Use(middleware.RequireStaff())
	importRoutes.POST("", importHandler.Start)
	importRoutes.GET("/:id", importHandler.Get)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(registrationRoutes).
		Register(companyRoutes).
		Register(supplierRoutes).
		Register(invoiceRoutes).
		Register(creditNoteRoutes).
		Register(documentRoutes).
		Register(importRoutes)
	r.Setup()

	return &PortalServer{
		DB:             tdb,
		Engine:         ginEngine,
		Store:          store,
		UserRepo:       userRepo,
		CompanyRepo:    companyRepo,
		SupplierRepo:   supplierRepo,
		InvoiceRepo:    invoiceRepo,
		CreditNoteRepo: creditNoteRepo,
		BatchRepo:      batchRepo,
	}
}

// request performs an HTTP request against the test server. A non-empty
// token is sent as a bearer credential.
func (s *PortalServer) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.Engine.ServeHTTP(w, req)
	return w
}

func sharedTestFilter() shared.Filter {
	return shared.DefaultFilter()
}

// login authenticates and returns the access and refresh tokens.
func (s *PortalServer) login(t *testing.T, email, password string) (string, string) {
	t.Helper()

	w := s.request(t, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, "login failed: %s", w.Body.String())

	var resp struct {
		Data struct {
			AccessToken  string `json:"access_token"`
			RefreshToken string `json:"refresh_token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.AccessToken)
	return resp.Data.AccessToken, resp.Data.RefreshToken
}
