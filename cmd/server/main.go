package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	activityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/activity"
	directoryapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/directory"
	documentapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/document"
	identityapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/identity"
	importapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/import"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/notify"
	settingsapp "github.com/nybbleRob/makita-invoice-portal-sub008/internal/application/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/domain/settings"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/auth"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/config"
	csvimport "github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/import"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/logger"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/mail"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/persistence"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/scheduler"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/security"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/storage"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/infrastructure/telemetry"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/handler"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/middleware"
	"github.com/nybbleRob/makita-invoice-portal-sub008/internal/interfaces/http/router"
)

// version is injected at build time via -ldflags.
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting invoice portal",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telemetry comes up first so the DB and HTTP layers can attach to it.
	var tracerProvider *telemetry.TracerProvider
	var meterProvider *telemetry.MeterProvider
	if cfg.Telemetry.Enabled {
		tracerProvider, err = telemetry.NewTracerProvider(ctx, telemetry.Config{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			SamplingRatio:     cfg.Telemetry.SamplingRatio,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize tracer provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()

		meterProvider, err = telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
			Enabled:           cfg.Telemetry.Enabled,
			CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
			ServiceName:       cfg.Telemetry.ServiceName,
			Insecure:          cfg.Telemetry.Insecure,
		}, log)
		if err != nil {
			log.Fatal("Failed to initialize meter provider", zap.Error(err))
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := meterProvider.Shutdown(shutdownCtx); err != nil {
				log.Error("Error shutting down meter provider", zap.Error(err))
			}
		}()
	}

	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, logger.MapGormLogLevel(cfg.Log.Level))
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		dbTracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
			Enabled:         true,
			SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
		}, log)
		if err := dbTracing.RegisterOtelGorm(db.DB); err != nil {
			log.Warn("Failed to register database tracing", zap.Error(err))
		}
	}

	if err := persistence.NewDomainEventLogger(log).Register(db.DB); err != nil {
		log.Warn("Failed to register domain event logging", zap.Error(err))
	}

	// Repositories
	userRepo := persistence.NewGormUserRepository(db.DB)
	companyRepo := persistence.NewGormCompanyRepository(db.DB)
	supplierRepo := persistence.NewGormSupplierRepository(db.DB)
	invoiceRepo := persistence.NewGormInvoiceRepository(db.DB)
	creditNoteRepo := persistence.NewGormCreditNoteRepository(db.DB)
	activityRepo := persistence.NewGormActivityLogRepository(db.DB)
	importBatchRepo := persistence.NewGormImportBatchRepository(db.DB)
	registrationRepo := persistence.NewGormPendingRegistrationRepository(db.DB)
	settingRepo := persistence.NewGormSettingRepository(db.DB)
	templateRepo := persistence.NewGormEmailTemplateRepository(db.DB)

	// Token infrastructure
	jwtService := auth.NewJWTService(cfg.JWT)
	var blacklist auth.TokenBlacklist
	if cfg.Redis.Enabled {
		blacklist, err = auth.NewRedisTokenBlacklist(cfg.Redis)
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		log.Info("Token blacklist backed by Redis",
			zap.String("host", cfg.Redis.Host),
			zap.Int("port", cfg.Redis.Port),
		)
	} else {
		blacklist = auth.NewInMemoryTokenBlacklist()
		log.Warn("Redis disabled, token revocation is in-memory and not shared across instances")
	}

	// Document store
	store, err := storage.NewDocumentStorage(cfg.Storage)
	if err != nil {
		log.Fatal("Failed to initialize document storage", zap.Error(err))
	}
	log.Info("Document storage ready", zap.String("driver", cfg.Storage.Driver))

	// Mail
	mailSender := mail.NewSender(cfg.SMTP)
	templateEngine := mail.NewTemplateEngine()

	// Application services. Settings comes first: its cached policies feed
	// the login monitor, registration defaults and the retention sweep.
	recorder := activityapp.NewRecorder(activityRepo, log)
	settingsService := settingsapp.NewService(settingRepo, recorder, log)
	securityPolicy := func() settings.SecurityPolicy {
		return settingsService.SecurityPolicy(context.Background())
	}
	retentionPolicy := settingsService.RetentionPolicy

	notifier := notify.NewNotifier(templateRepo, templateEngine, mailSender, cfg.App.BaseURL, log)

	loginMonitor := security.NewLoginMonitor(securityPolicy, cfg.Scheduler.MonitorSweepInterval)
	defer func() {
		_ = loginMonitor.Close()
	}()

	batchTracker := csvimport.NewBatchTracker(cfg.Scheduler.BatchTrackerExpiry)
	defer batchTracker.Close()

	authService := identityapp.NewAuthService(userRepo, jwtService, blacklist, loginMonitor, securityPolicy, recorder, notifier, log)
	userService := identityapp.NewUserService(userRepo, companyRepo, recorder, notifier, log)
	registrationService := identityapp.NewRegistrationService(registrationRepo, userRepo, companyRepo, settingsService, recorder, notifier, log)
	companyService := directoryapp.NewCompanyService(companyRepo, userRepo, recorder, log)
	supplierService := directoryapp.NewSupplierService(supplierRepo, recorder, log)
	invoiceService := documentapp.NewInvoiceService(invoiceRepo, store, cfg.Storage.PresignExpiry, recorder, log)
	creditNoteService := documentapp.NewCreditNoteService(creditNoteRepo, store, cfg.Storage.PresignExpiry, recorder, log)
	overviewService := documentapp.NewOverviewService(invoiceRepo, creditNoteRepo, log)
	retentionService := documentapp.NewRetentionService(invoiceRepo, creditNoteRepo, activityRepo, store, retentionPolicy, log)
	importService := importapp.NewDocumentImportService(
		importBatchRepo, invoiceRepo, creditNoteRepo, companyRepo, supplierRepo,
		store, batchTracker, retentionPolicy, recorder, notifier, cfg.Import, log,
	)
	templateService := settingsapp.NewEmailTemplateService(templateRepo, templateEngine, recorder, log)
	activityService := activityapp.NewService(activityRepo, log)

	// Boot tasks: templates must exist before the first mail goes out, and
	// batches interrupted by a crash are failed rather than left running.
	if err := templateService.SeedDefaults(ctx); err != nil {
		log.Fatal("Failed to seed email templates", zap.Error(err))
	}
	if err := importService.RecoverStale(ctx); err != nil {
		log.Error("Failed to recover stale import batches", zap.Error(err))
	}

	// Retention scheduler
	if cfg.Scheduler.Enabled {
		retentionScheduler, err := scheduler.NewRetentionScheduler(cfg.Scheduler, retentionService, log)
		if err != nil {
			log.Fatal("Failed to create retention scheduler", zap.Error(err))
		}
		if err := retentionScheduler.Start(ctx); err != nil {
			log.Fatal("Failed to start retention scheduler", zap.Error(err))
		}
		defer func() {
			stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := retentionScheduler.Stop(stopCtx); err != nil {
				log.Error("Error stopping retention scheduler", zap.Error(err))
			}
		}()
		log.Info("Retention scheduler started",
			zap.String("schedule", cfg.Scheduler.RetentionCronSchedule),
			zap.Int("batch_size", cfg.Scheduler.RetentionBatchSize),
		)
	}

	// HTTP handlers
	authHandler := handler.NewAuthHandler(authService, userService)
	userHandler := handler.NewUserHandler(userService)
	registrationHandler := handler.NewRegistrationHandler(registrationService)
	companyHandler := handler.NewCompanyHandler(companyService)
	supplierHandler := handler.NewSupplierHandler(supplierService)
	invoiceHandler := handler.NewInvoiceHandler(invoiceService)
	creditNoteHandler := handler.NewCreditNoteHandler(creditNoteService)
	overviewHandler := handler.NewOverviewHandler(overviewService)
	importHandler := handler.NewImportHandler(importService)
	settingsHandler := handler.NewSettingsHandler(settingsService)
	templateHandler := handler.NewEmailTemplateHandler(templateService)
	activityHandler := handler.NewActivityHandler(activityService)
	systemHandler := handler.NewSystemHandler(db.DB, version)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     cfg.HTTP.CORSAllowOrigins,
		AllowMethods:     cfg.HTTP.CORSAllowMethods,
		AllowHeaders:     cfg.HTTP.CORSAllowHeaders,
		ExposeHeaders:    []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	engine.Use(middleware.BodyLimit(cfg.HTTP.MaxBodySize))
	if cfg.Telemetry.Enabled {
		engine.Use(middleware.Tracing(cfg.Telemetry.ServiceName))
	}

	if cfg.HTTP.RateLimitEnabled {
		rateLimiter := middleware.NewRateLimiter(cfg.HTTP.RateLimitRequests, cfg.HTTP.RateLimitWindow)
		defer rateLimiter.Close()
		engine.Use(middleware.RateLimit(rateLimiter))
		log.Info("Rate limiting enabled",
			zap.Int("requests", cfg.HTTP.RateLimitRequests),
			zap.Duration("window", cfg.HTTP.RateLimitWindow),
		)
	}

	// Health endpoints live outside the versioned API and skip authentication.
	engine.GET("/healthz", systemHandler.Health)
	engine.GET("/health", systemHandler.Health)
	engine.GET("/ready", systemHandler.Ready)

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
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

	// Brute-force slowdown on the credential endpoints, separate from the
	// global limiter and much tighter.
	var loginGuard []gin.HandlerFunc
	if cfg.HTTP.AuthRateLimitEnabled {
		authLimiter := middleware.NewRateLimiter(cfg.HTTP.AuthRateLimitRequests, cfg.HTTP.AuthRateLimitWindow)
		defer authLimiter.Close()
		loginGuard = append(loginGuard, middleware.RateLimit(authLimiter))
	}

	authRoutes := router.NewGroup("/auth")
	authRoutes.POST("/login", append(loginGuard, authHandler.Login)...)
	authRoutes.POST("/refresh", authHandler.Refresh)
	authRoutes.POST("/register", append(loginGuard, registrationHandler.Submit)...)
	authRoutes.POST("/logout", authHandler.Logout)
	authRoutes.POST("/change-password", authHandler.ChangePassword)
	authRoutes.GET("/me", authHandler.Me)

	userRoutes := router.NewGroup("/users").Use(middleware.RequireStaff())
	userRoutes.POST("", userHandler.Create)
	userRoutes.GET("", userHandler.List)
	userRoutes.GET("/:id", userHandler.Get)
	userRoutes.PUT("/:id", userHandler.Update)
	userRoutes.POST("/:id/reset-password", userHandler.ResetPassword)
	userRoutes.POST("/:id/unlock", userHandler.Unlock)
	userRoutes.POST("/:id/activate", userHandler.Activate)
	userRoutes.POST("/:id/deactivate", userHandler.Deactivate)
	userRoutes.DELETE("/:id", userHandler.Delete)

	registrationRoutes := router.NewGroup("/registrations").Use(middleware.RequireStaff())
	registrationRoutes.GET("", registrationHandler.List)
	registrationRoutes.GET("/pending-count", registrationHandler.PendingCount)
	registrationRoutes.GET("/:id", registrationHandler.Get)
	registrationRoutes.POST("/:id/approve", registrationHandler.Approve)
	registrationRoutes.POST("/:id/reject", registrationHandler.Reject)

	companyRoutes := router.NewGroup("/companies").Use(middleware.RequireStaff())
	companyRoutes.POST("", companyHandler.Create)
	companyRoutes.GET("", companyHandler.List)
	companyRoutes.GET("/:id", companyHandler.Get)
	companyRoutes.PUT("/:id", companyHandler.Update)
	companyRoutes.POST("/:id/activate", companyHandler.Activate)
	companyRoutes.POST("/:id/deactivate", companyHandler.Deactivate)
	companyRoutes.POST("/:id/block", companyHandler.Block)
	companyRoutes.DELETE("/:id", companyHandler.Delete)

	supplierRoutes := router.NewGroup("/suppliers").Use(middleware.RequireStaff())
	supplierRoutes.POST("", supplierHandler.Create)
	supplierRoutes.GET("", supplierHandler.List)
	supplierRoutes.GET("/:id", supplierHandler.Get)
	supplierRoutes.PUT("/:id", supplierHandler.Update)
	supplierRoutes.POST("/:id/activate", supplierHandler.Activate)
	supplierRoutes.POST("/:id/deactivate", supplierHandler.Deactivate)
	supplierRoutes.DELETE("/:id", supplierHandler.Delete)

	// Documents: listing and download are open to any authenticated account
	// (company scoping happens in the service), lifecycle changes are staff.
	invoiceRoutes := router.NewGroup("/invoices")
	invoiceRoutes.GET("", invoiceHandler.List)
	invoiceRoutes.GET("/:id", invoiceHandler.Get)
	invoiceRoutes.GET("/:id/download", invoiceHandler.Download)
	invoiceRoutes.POST("/:id/archive", middleware.RequireStaff(), invoiceHandler.Archive)
	invoiceRoutes.POST("/:id/restore", middleware.RequireStaff(), invoiceHandler.Restore)
	invoiceRoutes.DELETE("/:id", middleware.RequireStaff(), invoiceHandler.Delete)

	creditNoteRoutes := router.NewGroup("/credit-notes")
	creditNoteRoutes.GET("", creditNoteHandler.List)
	creditNoteRoutes.GET("/:id", creditNoteHandler.Get)
	creditNoteRoutes.GET("/:id/download", creditNoteHandler.Download)
	creditNoteRoutes.POST("/:id/archive", middleware.RequireStaff(), creditNoteHandler.Archive)
	creditNoteRoutes.POST("/:id/restore", middleware.RequireStaff(), creditNoteHandler.Restore)
	creditNoteRoutes.DELETE("/:id", middleware.RequireStaff(), creditNoteHandler.Delete)

	documentRoutes := router.NewGroup("/documents")
	documentRoutes.GET("/unread", overviewHandler.Unread)

	importRoutes := router.NewGroup("/imports").Use(middleware.RequireStaff())
	importRoutes.POST("", middleware.BodyLimit(cfg.Import.MaxFileSize), importHandler.Start)
	importRoutes.GET("", importHandler.List)
	importRoutes.GET("/:id", importHandler.Get)

	settingsRoutes := router.NewGroup("/settings").Use(middleware.RequireAdmin())
	settingsRoutes.GET("", settingsHandler.List)
	settingsRoutes.PUT("", settingsHandler.Update)
	settingsRoutes.GET("/security-policy", settingsHandler.SecurityPolicy)
	settingsRoutes.GET("/retention-policy", settingsHandler.RetentionPolicy)

	templateRoutes := router.NewGroup("/email-templates").Use(middleware.RequireAdmin())
	templateRoutes.GET("", templateHandler.List)
	templateRoutes.GET("/:key", templateHandler.Get)
	templateRoutes.PUT("/:key", templateHandler.Update)
	templateRoutes.DELETE("/:key", templateHandler.Reset)
	templateRoutes.POST("/:key/preview", templateHandler.Preview)

	activityRoutes := router.NewGroup("/activity")
	activityRoutes.GET("", activityHandler.List)
	activityRoutes.GET("/users/:id", middleware.RequireStaff(), activityHandler.ListForUser)

	r.Register(authRoutes).
		Register(userRoutes).
		Register(registrationRoutes).
		Register(companyRoutes).
		Register(supplierRoutes).
		Register(invoiceRoutes).
		Register(creditNoteRoutes).
		Register(documentRoutes).
		Register(importRoutes).
		Register(settingsRoutes).
		Register(templateRoutes).
		Register(activityRoutes)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown failed", zap.Error(err))
	}
	log.Info("Server stopped")
}
