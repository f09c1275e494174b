package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aussiebroadwan/bookit/internal/auth/audit"
	httpapi "github.com/aussiebroadwan/bookit/internal/auth/http"
	"github.com/aussiebroadwan/bookit/internal/auth/mfa"
	"github.com/aussiebroadwan/bookit/internal/auth/service"
	"github.com/aussiebroadwan/bookit/internal/auth/store"
	"github.com/aussiebroadwan/bookit/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bookit/pkg/cryptox"
	"github.com/aussiebroadwan/bookit/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X ...app.BuildVersion=".
var BuildVersion = "v0.1.0"

// Application encapsulates the auth service application with all its dependencies
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db    store.Store
	keys  *SessionKeys
	audit *audit.Logger
	mfa   *mfa.Engine

	// Services
	authService         *service.AuthService
	accountService      *service.AccountService
	mfaService          *service.MFAService
	auditService        *service.AuditService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "auth-service",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitSessionKeys(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize session keys: %w", err)
	}
	app.keys = keys

	box, err := InitMFABox(app.cfg, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize MFA encryption: %w", err)
	}
	app.mfa = mfa.NewEngine(app.cfg.MFAIssuer, box)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.bootstrapAdmin()

	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	// Start server in a goroutine
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.housekeepingService.Stop()
			_ = app.db.Close()
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	// Give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.audit = audit.NewLogger(app.db.AuditEvents())

	var mailer service.Mailer = service.LogMailer{}
	if app.cfg.Env == "prod" {
		app.logger.Warn("no mail transport configured, verification codes are written to the log")
	}

	app.authService = &service.AuthService{
		Store: app.db,
		MFA:   app.mfa,
		Sessions: &service.SessionIssuer{
			Signer: app.keys.Signer,
			Issuer: app.cfg.Issuer,
		},
		Audit: app.audit,
	}
	app.accountService = &service.AccountService{Store: app.db, Mailer: mailer, Audit: app.audit}
	app.mfaService = &service.MFAService{Store: app.db, Engine: app.mfa, Audit: app.audit}
	app.auditService = &service.AuditService{Store: app.db, Audit: app.audit}
	app.bootstrapService = &service.BootstrapService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.auditService,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.AuditRetentionDays,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.KeySet,
		app.keys.Verifier,
		BuildVersion,
		app.cfg.CORSOrigins,
		app.db,
		app.logger,
	)

	router.Audit = app.audit
	router.AuthService = app.authService
	router.AccountService = app.accountService
	router.MFAService = app.mfaService
	router.AuditService = app.auditService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}

// bootstrapAdmin creates the configured admin account on an empty database.
func (app *Application) bootstrapAdmin() {
	if app.cfg.AdminEmail == "" || app.cfg.AdminPassword == "" {
		return
	}

	ctx := slogx.WithContext(context.Background(), app.logger)
	_, err := app.bootstrapService.Bootstrap(ctx, app.cfg.AdminEmail, app.cfg.AdminPassword)
	switch {
	case err == nil, errors.Is(err, service.ErrBootstrapAlready):
	default:
		app.logger.Error("failed to bootstrap admin account", "error", err)
	}
}
