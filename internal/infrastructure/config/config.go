package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Server     ServerConfig     `mapstructure:"server"`
	Logger     LoggerConfig     `mapstructure:"logger"`
	Security   SecurityConfig   `mapstructure:"security"`
	Content    ContentConfig    `mapstructure:"content"`
	Storage    StorageConfig    `mapstructure:"storage"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Uploads    UploadsConfig    `mapstructure:"uploads"`
	Cloudinary CloudinaryConfig `mapstructure:"cloudinary"`
	Mail       MailConfig       `mapstructure:"mail"`
	Contact    ContactConfig    `mapstructure:"contact"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
}

// AppConfig holds application-specific configuration
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
	Debug       bool   `mapstructure:"debug"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	BodyLimit       string        `mapstructure:"body_limit"`
}

// LoggerConfig holds logging configuration
type LoggerConfig struct {
	Level    string `mapstructure:"level"`
	Format   string `mapstructure:"format"`
	Output   string `mapstructure:"output"`
	Filename string `mapstructure:"filename"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	CORSAllowedOrigins string        `mapstructure:"cors_allowed_origins"`
	RateLimitRequests  int           `mapstructure:"rate_limit_requests"`
	RateLimitWindow    time.Duration `mapstructure:"rate_limit_window"`
	// AdminKey is either the shared secret itself or its bcrypt hash.
	AdminKey    string `mapstructure:"admin_key"`
	AdminHeader string `mapstructure:"admin_header"`
	CSRFEnabled bool   `mapstructure:"csrf_enabled"`
}

// ContentConfig holds the location of the content document
type ContentConfig struct {
	File string `mapstructure:"file"`
}

// StorageConfig selects the event store backend
type StorageConfig struct {
	Driver string `mapstructure:"driver"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// UploadsConfig holds image ingest configuration
type UploadsConfig struct {
	Driver         string `mapstructure:"driver"`
	MaxSize        int64  `mapstructure:"max_size"`
	Dir            string `mapstructure:"dir"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	ImageFolder    string `mapstructure:"image_folder"`
	DocumentFolder string `mapstructure:"document_folder"`
}

// CloudinaryConfig holds image CDN credentials
type CloudinaryConfig struct {
	CloudName string `mapstructure:"cloud_name"`
	APIKey    string `mapstructure:"api_key"`
	APISecret string `mapstructure:"api_secret"`
}

// MailConfig holds outbound mail configuration
type MailConfig struct {
	Driver   string        `mapstructure:"driver"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	From     string        `mapstructure:"from"`
	To       string        `mapstructure:"to"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ContactConfig holds contact form rules
type ContactConfig struct {
	RequirePhone     bool   `mapstructure:"require_phone"`
	PhonePattern     string `mapstructure:"phone_pattern"`
	SendConfirmation bool   `mapstructure:"send_confirmation"`
}

// SentryConfig holds error tracking configuration
type SentryConfig struct {
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// Driver names
const (
	StorageFile     = "file"
	StoragePostgres = "postgres"

	UploadsLocal      = "local"
	UploadsCloudinary = "cloudinary"

	MailLog  = "log"
	MailSMTP = "smtp"
)

// Load loads configuration from various sources
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors)
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)
	bindEnvVars(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "Biofert Site API")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.debug", false)

	// Server defaults
	v.SetDefault("server.port", 5000)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "60s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "10s")
	v.SetDefault("server.body_limit", "1M")

	// Logger defaults
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "json")
	v.SetDefault("logger.output", "stdout")
	v.SetDefault("logger.filename", "")

	// Security defaults
	v.SetDefault("security.cors_allowed_origins", "http://localhost:3000,http://localhost:5173")
	v.SetDefault("security.rate_limit_requests", 100)
	v.SetDefault("security.rate_limit_window", "1m")
	v.SetDefault("security.admin_key", "")
	v.SetDefault("security.admin_header", "X-Admin-Key")
	v.SetDefault("security.csrf_enabled", true)

	// Content and storage defaults
	v.SetDefault("content.file", "data/content.json")
	v.SetDefault("storage.driver", StorageFile)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "biofert")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "5m")
	v.SetDefault("database.conn_max_idle_time", "30s")

	// Upload defaults
	v.SetDefault("uploads.driver", UploadsLocal)
	v.SetDefault("uploads.max_size", 10<<20)
	v.SetDefault("uploads.dir", "uploads")
	v.SetDefault("uploads.public_base_url", "http://localhost:5000/uploads")
	v.SetDefault("uploads.image_folder", "events")
	v.SetDefault("uploads.document_folder", "documents")

	// Mail defaults
	v.SetDefault("mail.driver", MailLog)
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.timeout", "15s")

	// Contact defaults
	v.SetDefault("contact.require_phone", false)
	v.SetDefault("contact.phone_pattern", `^(\+254|0)[17]\d{8}$`)
	v.SetDefault("contact.send_confirmation", false)

	// Sentry defaults
	v.SetDefault("sentry.sample_rate", 1.0)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
}

func bindEnvVars(v *viper.Viper) {
	// App
	v.BindEnv("app.name", "APP_NAME")
	v.BindEnv("app.version", "APP_VERSION")
	v.BindEnv("app.environment", "APP_ENVIRONMENT", "NODE_ENV")
	v.BindEnv("app.debug", "APP_DEBUG")

	// Server
	v.BindEnv("server.port", "PORT", "SERVER_PORT")
	v.BindEnv("server.host", "SERVER_HOST")
	v.BindEnv("server.read_timeout", "SERVER_READ_TIMEOUT")
	v.BindEnv("server.write_timeout", "SERVER_WRITE_TIMEOUT")
	v.BindEnv("server.idle_timeout", "SERVER_IDLE_TIMEOUT")
	v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")
	v.BindEnv("server.body_limit", "SERVER_BODY_LIMIT")

	// Logger
	v.BindEnv("logger.level", "LOG_LEVEL")
	v.BindEnv("logger.format", "LOG_FORMAT")
	v.BindEnv("logger.output", "LOG_OUTPUT")
	v.BindEnv("logger.filename", "LOG_FILENAME")

	// Security
	v.BindEnv("security.cors_allowed_origins", "ALLOWED_ORIGINS", "CORS_ALLOWED_ORIGINS")
	v.BindEnv("security.rate_limit_requests", "RATE_LIMIT_REQUESTS")
	v.BindEnv("security.rate_limit_window", "RATE_LIMIT_WINDOW")
	v.BindEnv("security.admin_key", "ADMIN_KEY")
	v.BindEnv("security.admin_header", "ADMIN_HEADER")
	v.BindEnv("security.csrf_enabled", "CSRF_ENABLED")

	// Content and storage
	v.BindEnv("content.file", "CONTENT_FILE")
	v.BindEnv("storage.driver", "STORAGE_DRIVER")

	// Database
	v.BindEnv("database.host", "DB_HOST")
	v.BindEnv("database.port", "DB_PORT")
	v.BindEnv("database.name", "DB_NAME")
	v.BindEnv("database.user", "DB_USER")
	v.BindEnv("database.password", "DB_PASSWORD")
	v.BindEnv("database.ssl_mode", "DB_SSL_MODE")
	v.BindEnv("database.max_open_conns", "DB_MAX_OPEN_CONNS")
	v.BindEnv("database.max_idle_conns", "DB_MAX_IDLE_CONNS")
	v.BindEnv("database.conn_max_lifetime", "DB_CONN_MAX_LIFETIME")
	v.BindEnv("database.conn_max_idle_time", "DB_CONN_MAX_IDLE_TIME")

	// Uploads
	v.BindEnv("uploads.driver", "UPLOADS_DRIVER")
	v.BindEnv("uploads.max_size", "UPLOADS_MAX_SIZE")
	v.BindEnv("uploads.dir", "UPLOADS_DIR")
	v.BindEnv("uploads.public_base_url", "UPLOADS_PUBLIC_BASE_URL")
	v.BindEnv("uploads.image_folder", "UPLOADS_IMAGE_FOLDER")
	v.BindEnv("uploads.document_folder", "UPLOADS_DOCUMENT_FOLDER")

	// Cloudinary
	v.BindEnv("cloudinary.cloud_name", "CLOUDINARY_CLOUD_NAME")
	v.BindEnv("cloudinary.api_key", "CLOUDINARY_API_KEY")
	v.BindEnv("cloudinary.api_secret", "CLOUDINARY_API_SECRET")

	// Mail
	v.BindEnv("mail.driver", "MAIL_DRIVER")
	v.BindEnv("mail.host", "SMTP_HOST")
	v.BindEnv("mail.port", "SMTP_PORT")
	v.BindEnv("mail.username", "SMTP_USER")
	v.BindEnv("mail.password", "SMTP_PASS")
	v.BindEnv("mail.from", "MAIL_FROM")
	v.BindEnv("mail.to", "COMPANY_EMAIL")
	v.BindEnv("mail.timeout", "SMTP_TIMEOUT")

	// Contact
	v.BindEnv("contact.require_phone", "CONTACT_REQUIRE_PHONE")
	v.BindEnv("contact.phone_pattern", "CONTACT_PHONE_PATTERN")
	v.BindEnv("contact.send_confirmation", "CONTACT_SEND_CONFIRMATION")

	// Sentry
	v.BindEnv("sentry.dsn", "SENTRY_DSN")
	v.BindEnv("sentry.environment", "SENTRY_ENVIRONMENT")
	v.BindEnv("sentry.sample_rate", "SENTRY_SAMPLE_RATE")

	// Metrics
	v.BindEnv("metrics.enabled", "ENABLE_METRICS")
}

func validateConfig(cfg *Config) error {
	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server port must be between 1 and 65535")
	}

	if cfg.Content.File == "" {
		return fmt.Errorf("content file is required")
	}

	if cfg.Security.AdminHeader == "" {
		return fmt.Errorf("admin header name is required")
	}

	if cfg.App.IsProduction() && cfg.Security.AdminKey == "" {
		return fmt.Errorf("admin key must be set in production")
	}

	switch cfg.Storage.Driver {
	case StorageFile:
	case StoragePostgres:
		if cfg.Database.Host == "" || cfg.Database.Name == "" {
			return fmt.Errorf("database host and name are required for the postgres storage driver")
		}
	default:
		return fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}

	if cfg.Uploads.MaxSize <= 0 {
		return fmt.Errorf("uploads max size must be positive")
	}

	switch cfg.Uploads.Driver {
	case UploadsLocal:
		if cfg.Uploads.Dir == "" {
			return fmt.Errorf("uploads dir is required for the local upload driver")
		}
	case UploadsCloudinary:
		if cfg.Cloudinary.CloudName == "" || cfg.Cloudinary.APIKey == "" || cfg.Cloudinary.APISecret == "" {
			return fmt.Errorf("cloudinary credentials are required for the cloudinary upload driver")
		}
	default:
		return fmt.Errorf("unknown uploads driver %q", cfg.Uploads.Driver)
	}

	switch cfg.Mail.Driver {
	case MailLog:
	case MailSMTP:
		if cfg.Mail.Host == "" || cfg.Mail.From == "" || cfg.Mail.To == "" {
			return fmt.Errorf("smtp host, from and to addresses are required for the smtp mail driver")
		}
	default:
		return fmt.Errorf("unknown mail driver %q", cfg.Mail.Driver)
	}

	if _, err := regexp.Compile(cfg.Contact.PhonePattern); err != nil {
		return fmt.Errorf("invalid contact phone pattern: %w", err)
	}

	return nil
}

// GetDSN returns the database connection string
func (cfg *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
}

// GetAddress returns the listen address
func (cfg *ServerConfig) GetAddress() string {
	return fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
}

// AllowedOrigins splits the configured CORS origins
func (cfg *SecurityConfig) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(cfg.CORSAllowedOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// IsDevelopment returns true if the environment is development
func (cfg *AppConfig) IsDevelopment() bool {
	return cfg.Environment == "development"
}

// IsProduction returns true if the environment is production
func (cfg *AppConfig) IsProduction() bool {
	return cfg.Environment == "production"
}
