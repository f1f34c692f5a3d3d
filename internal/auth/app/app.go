package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpapi "github.com/eventhive/auth/internal/auth/http"
	"github.com/eventhive/auth/internal/auth/mail"
	"github.com/eventhive/auth/internal/auth/service"
	"github.com/eventhive/auth/internal/auth/store"
	"github.com/eventhive/auth/internal/auth/store/drivers/sqlite"
	"github.com/eventhive/auth/pkg/cryptox"
	"github.com/eventhive/auth/pkg/jwtx"
	"github.com/eventhive/auth/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags. Later problem
	BuildVersion = "v0.1.0"
)

// Application encapsulates the auth service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	signer *jwtx.Signer
	mailer mail.Sender

	// Services
	userService    *service.UserService
	otpService     *service.OTPService
	sessionService *service.SessionService
	authService    *service.AuthService
	housekeeping   *service.Housekeeping

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "eventhive-auth",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	secret, err := cryptox.LoadOrGenerateSecret(cfg.SessionSecretFile)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to load session secret: %w", err)
	}
	app.signer = jwtx.NewSigner(secret, cfg.Issuer, cfg.SessionTTL)

	app.initMailer()
	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start(context.Background())

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
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

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

// initDatabase initializes the database and applies migrations.
func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

// initMailer picks SMTP when a relay is configured, otherwise the log-only
// sender so dev setups can read codes from the service log.
func (app *Application) initMailer() {
	if app.cfg.SMTPAddr != "" {
		app.mailer = &mail.SMTPSender{
			Addr:     app.cfg.SMTPAddr,
			From:     app.cfg.SMTPFrom,
			Username: app.cfg.SMTPUsername,
			Password: app.cfg.SMTPPassword,
		}
		return
	}

	app.logger.Warn("SMTP_ADDR not set, OTP codes will be logged instead of emailed")
	app.mailer = &mail.LogSender{Logger: app.logger}
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.userService = &service.UserService{Store: app.db}
	app.otpService = &service.OTPService{
		Store:  app.db,
		Mailer: app.mailer,
	}
	app.sessionService = &service.SessionService{Signer: app.signer}
	app.authService = &service.AuthService{
		Store:    app.db,
		Users:    app.userService,
		OTP:      app.otpService,
		Sessions: app.sessionService,
		Logger:   app.logger,
	}

	app.housekeeping = &service.Housekeeping{
		Store:    app.db,
		Logger:   app.logger,
		Interval: app.cfg.HousekeepingInterval,
	}
}

// initHTTP wires the router and HTTP server.
func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.signer, BuildVersion, app.db, app.logger)
	app.router.AuthService = app.authService
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
