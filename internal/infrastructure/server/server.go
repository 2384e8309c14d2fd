package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/biofert/core/docs"
	httpHandlers "github.com/biofert/core/internal/adapters/http"
	"github.com/biofert/core/internal/application/services"
	"github.com/biofert/core/internal/infrastructure/config"
	"github.com/biofert/core/internal/infrastructure/database"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/infrastructure/metrics"
	"github.com/biofert/core/internal/ports"
)

// Dependencies are the collaborators the server wires into its handlers
type Dependencies struct {
	Content ports.ContentRepository
	Events  ports.EventRepository
	Images  ports.ImageHost
	Mailer  ports.Mailer
	Metrics *metrics.Metrics
	// DB is set only when events live in postgres.
	DB *database.DB
	// UploadsDir is served at /uploads when images are stored locally.
	UploadsDir string
}

// Server represents the HTTP server
type Server struct {
	echo    *echo.Echo
	config  *config.Config
	logger  *logger.Logger
	content *services.ContentService
	metrics *metrics.Metrics
	db      *database.DB
}

// New creates a new server instance
func New(ctx context.Context, cfg *config.Config, deps Dependencies, appLogger *logger.Logger) (*Server, error) {
	if deps.Metrics == nil {
		deps.Metrics = metrics.New()
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = customErrorHandler(appLogger)

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	e.Server.IdleTimeout = cfg.Server.IdleTimeout

	// Initialize services
	eventService, err := services.NewEventService(ctx, deps.Events, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize event service: %w", err)
	}
	contentService := services.NewContentService(deps.Content)
	uploadService := services.NewUploadService(deps.Images, services.UploadOptions{
		MaxSize:        cfg.Uploads.MaxSize,
		ImageFolder:    cfg.Uploads.ImageFolder,
		DocumentFolder: cfg.Uploads.DocumentFolder,
	}, appLogger)
	contactService, err := services.NewContactService(deps.Mailer, services.ContactOptions{
		CompanyName:      deps.Content.Company().Name,
		Recipient:        cfg.Mail.To,
		RequirePhone:     cfg.Contact.RequirePhone,
		PhonePattern:     cfg.Contact.PhonePattern,
		SendConfirmation: cfg.Contact.SendConfirmation,
	}, appLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize contact service: %w", err)
	}

	// Initialize handlers
	contentHandler := httpHandlers.NewContentHandler(contentService, appLogger)
	eventHandler := httpHandlers.NewEventHandler(eventService, deps.Metrics, appLogger)
	uploadHandler := httpHandlers.NewUploadHandler(uploadService, deps.Metrics, appLogger)
	contactHandler := httpHandlers.NewContactHandler(contactService, deps.Metrics, appLogger)

	server := &Server{
		echo:    e,
		config:  cfg,
		logger:  appLogger,
		content: contentService,
		metrics: deps.Metrics,
		db:      deps.DB,
	}

	server.setupMiddleware()

	if cfg.Metrics.Enabled {
		server.setupMetrics()
	}

	server.setupRoutes(routes{
		content: contentHandler,
		events:  eventHandler,
		uploads: uploadHandler,
		contact: contactHandler,
	}, deps.UploadsDir)

	return server, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.echo
}

// setupMiddleware configures middleware
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())

	if s.config.Sentry.DSN != "" {
		s.echo.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:       true,
		LogStatus:    true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRemoteIP:  true,
		LogUserAgent: true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, values middleware.RequestLoggerValues) error {
			fields := []interface{}{
				"method", values.Method,
				"uri", values.URI,
				"status", values.Status,
				"latency_ms", float64(values.Latency.Nanoseconds()) / 1000000,
				"remote_ip", values.RemoteIP,
				"user_agent", values.UserAgent,
				"request_id", values.RequestID,
			}

			if values.Error != nil {
				fields = append(fields, "error", values.Error.Error())
				s.logger.Errorw("HTTP request failed", fields...)
			} else {
				s.logger.Infow("HTTP request", fields...)
			}

			return nil
		},
	}))

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: s.config.Security.AllowedOrigins(),
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderXCSRFToken,
			s.config.Security.AdminHeader,
		},
		AllowMethods:     []string{http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPost, http.MethodDelete},
		AllowCredentials: true,
	}))

	if s.config.Security.RateLimitRequests > 0 {
		s.echo.Use(s.rateLimiter())
	}

	s.echo.Use(middleware.SecureWithConfig(middleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
	}))

	s.echo.Use(middleware.BodyLimitWithConfig(middleware.BodyLimitConfig{
		Limit: s.config.Server.BodyLimit,
		// Uploads carry their own, larger limit.
		Skipper: func(c echo.Context) bool {
			return c.Path() == uploadPath
		},
	}))
}

const uploadPath = "/api/v1/upload"

type routes struct {
	content *httpHandlers.ContentHandler
	events  *httpHandlers.EventHandler
	uploads *httpHandlers.UploadHandler
	contact *httpHandlers.ContactHandler
}

// setupRoutes configures all routes
func (s *Server) setupRoutes(r routes, uploadsDir string) {
	// Health check routes
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/ready", s.readinessCheck)

	// Swagger documentation
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	if uploadsDir != "" {
		s.echo.Static("/uploads", uploadsDir)
	}

	api := s.echo.Group("/api")
	admin := s.adminAuth()

	// Content routes (public)
	api.GET("/company", r.content.GetCompany)
	api.GET("/products", r.content.GetProducts)
	api.GET("/clientele", r.content.GetClientele)
	api.GET("/timeline", r.content.GetTimeline)
	api.GET("/process-steps", r.content.GetProcessSteps)
	api.GET("/benefits-page", r.content.GetBenefitsPage)
	api.GET("/certifications-page", r.content.GetCertificationsPage)

	// Event routes (admin for mutations)
	api.GET("/events", r.events.ListEvents)
	api.POST("/events", r.events.CreateEvent, admin)
	api.PUT("/events/reorder", r.events.ReorderEvents, admin)
	api.PUT("/events/:id", r.events.UpdateEvent, admin)
	api.DELETE("/events/:id", r.events.DeleteEvent, admin)

	// Upload route (admin)
	s.echo.POST(uploadPath, r.uploads.Upload, admin, middleware.BodyLimit(uploadBodyLimit(s.config.Uploads.MaxSize)))

	// Contact and CSRF bootstrap
	var csrf []echo.MiddlewareFunc
	if s.config.Security.CSRFEnabled {
		csrf = append(csrf, s.csrf())
	}
	api.GET("/csrf-token", s.csrfToken, csrf...)
	api.POST("/contact", r.contact.Submit, csrf...)
}

// setupMetrics configures Prometheus metrics
func (s *Server) setupMetrics() {
	s.echo.Use(s.metrics.Middleware())
	s.echo.GET("/metrics", echo.WrapHandler(s.metrics.Handler()))
}

// Health check handlers

// healthCheck answers liveness; it sits outside the /api base path
func (s *Server) healthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, ports.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// readinessResponse reports what keeps the API from serving
type readinessResponse struct {
	Status   string              `json:"status"`
	Reason   string              `json:"reason,omitempty"`
	Time     string              `json:"time,omitempty"`
	Database *database.PoolStats `json:"database,omitempty"`
}

func (s *Server) readinessCheck(c echo.Context) error {
	if !s.content.Ready() {
		return c.JSON(http.StatusServiceUnavailable, readinessResponse{
			Status: "not_ready",
			Reason: "content_not_loaded",
		})
	}

	resp := readinessResponse{Status: "ready"}
	if s.db != nil {
		if err := s.db.HealthCheck(c.Request().Context()); err != nil {
			s.logger.WithError(err).Warn("Readiness check failed")
			return c.JSON(http.StatusServiceUnavailable, readinessResponse{
				Status: "not_ready",
				Reason: "database_not_ready",
			})
		}
		stats := s.db.Stats()
		resp.Database = &stats
	}

	resp.Time = time.Now().UTC().Format(time.RFC3339)
	return c.JSON(http.StatusOK, resp)
}

// csrfToken godoc
// @Summary Issue a CSRF token
// @Description The token must be echoed in the X-CSRF-Token header on POST /contact
// @Tags contact
// @Produce json
// @Success 200 {object} ports.CSRFTokenResponse
// @Router /csrf-token [get]
func (s *Server) csrfToken(c echo.Context) error {
	token, _ := c.Get(middleware.DefaultCSRFConfig.ContextKey).(string)
	return c.JSON(http.StatusOK, ports.CSRFTokenResponse{CSRFToken: token})
}

// Start starts the HTTP server
func (s *Server) Start(address string) error {
	s.logger.Infow("Starting server", "address", address)
	if err := s.echo.Start(address); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server")
	return s.echo.Shutdown(ctx)
}

// customErrorHandler renders every error as a JSON body with a message field
func customErrorHandler(logger *logger.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		var (
			code = http.StatusInternalServerError
			msg  interface{}
		)

		var he *echo.HTTPError
		if errors.As(err, &he) {
			code = he.Code
			switch m := he.Message.(type) {
			case string:
				msg = ports.ErrorResponse{Message: m}
			case error:
				msg = ports.ErrorResponse{Message: m.Error()}
			default:
				msg = m
			}
			if he.Internal != nil {
				err = fmt.Errorf("%v, %w", err, he.Internal)
			}
		} else {
			msg = ports.ErrorResponse{Message: http.StatusText(code)}
		}

		if code >= http.StatusInternalServerError {
			logger.Errorw("Internal server error", "error", err, "path", c.Request().URL.Path)
		}

		if !c.Response().Committed {
			if c.Request().Method == http.MethodHead {
				err = c.NoContent(code)
			} else {
				err = c.JSON(code, msg)
			}
			if err != nil {
				logger.Errorw("Error sending response", "error", err)
			}
		}
	}
}
