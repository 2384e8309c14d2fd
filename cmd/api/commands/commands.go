package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/spf13/cobra"

	"github.com/biofert/core/internal/adapters/imagehost"
	"github.com/biofert/core/internal/adapters/mailer"
	"github.com/biofert/core/internal/adapters/repository"
	"github.com/biofert/core/internal/infrastructure/config"
	"github.com/biofert/core/internal/infrastructure/database"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/infrastructure/metrics"
	"github.com/biofert/core/internal/infrastructure/server"
	"github.com/biofert/core/internal/ports"
)

// Set at build time with -ldflags.
var (
	Version   = "1.0.0"
	GitCommit = "development"
	BuildDate = "unknown"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the Biofert API server",
		Long:  "Start the Biofert API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer()
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Biofert version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("Biofert Core v%s\n", Version)
			fmt.Printf("Build Date: %s\n", BuildDate)
			fmt.Printf("Git Commit: %s\n", GitCommit)
		},
	}
}

func runServer() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Close()

	if cfg.Sentry.DSN != "" {
		if err := initSentry(cfg); err != nil {
			appLogger.Warnw("Failed to initialize error tracking", "error", err)
		} else {
			defer sentry.Flush(2 * time.Second)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A bad content file must not keep the API down; Load logs the failure.
	store := repository.NewContentStore(cfg.Content.File, appLogger)
	_ = store.Load()

	deps := server.Dependencies{
		Content: store,
		Metrics: metrics.New(),
	}

	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			appLogger.Fatalw("Failed to connect to database", "error", err)
		}
		defer db.Close()
		deps.DB = db
		deps.Events = repository.NewSQLEventRepository(db)
	default:
		deps.Events = repository.NewFileEventRepository(store)
	}

	deps.Images, deps.UploadsDir, err = newImageHost(cfg)
	if err != nil {
		appLogger.Fatalw("Failed to initialize image host", "error", err)
	}

	deps.Mailer, err = newMailer(cfg, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize mailer", "error", err)
	}

	if cfg.Security.AdminKey == "" {
		appLogger.Warn("No admin key configured, every admin request will be rejected")
	}

	srv, err := server.New(ctx, cfg, deps, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting Biofert API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"storage", cfg.Storage.Driver,
		"uploads", cfg.Uploads.Driver,
		"mail", cfg.Mail.Driver,
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(cfg.Server.GetAddress())
	}()

	select {
	case err := <-errCh:
		if err != nil {
			appLogger.Fatalw("Server failed to start", "error", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
	}
}

func initSentry(cfg *config.Config) error {
	env := cfg.Sentry.Environment
	if env == "" {
		env = cfg.App.Environment
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      env,
		Release:          "biofert-core@" + Version,
		SampleRate:       cfg.Sentry.SampleRate,
		AttachStacktrace: true,
	})
}

// newImageHost returns the configured host and, for local storage, the
// directory to serve at /uploads
func newImageHost(cfg *config.Config) (ports.ImageHost, string, error) {
	if cfg.Uploads.Driver == config.UploadsCloudinary {
		host, err := imagehost.NewCloudinaryHost(cfg.Cloudinary)
		return host, "", err
	}

	host, err := imagehost.NewLocalHost(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		return nil, "", err
	}
	return host, host.Dir(), nil
}

func newMailer(cfg *config.Config, appLogger *logger.Logger) (ports.Mailer, error) {
	if cfg.Mail.Driver == config.MailSMTP {
		return mailer.NewSMTPMailer(cfg.Mail)
	}
	return mailer.NewLogMailer(appLogger), nil
}
