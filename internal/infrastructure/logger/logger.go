package logger

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/biofert/core/internal/infrastructure/config"
)

// Logger is the structured logger shared by every component of the API
type Logger struct {
	*zap.SugaredLogger
}

// New builds a logger from configuration. The json format is meant for
// production log shipping; anything else gives the console encoder.
func New(cfg config.LoggerConfig) (*Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Format != "json" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.EncoderConfig.TimeKey = "ts"
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.OutputPaths, zc.ErrorOutputPaths = sinks(cfg)

	zl, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	return &Logger{SugaredLogger: zl.Sugar()}, nil
}

func sinks(cfg config.LoggerConfig) (out, errOut []string) {
	if cfg.Output == "file" && cfg.Filename != "" {
		return []string{cfg.Filename}, []string{cfg.Filename}
	}
	return []string{"stdout"}, []string{"stderr"}
}

// NewNop returns a logger that discards everything
func NewNop() *Logger {
	return &Logger{SugaredLogger: zap.NewNop().Sugar()}
}

func (l *Logger) with(fields ...interface{}) *Logger {
	return &Logger{SugaredLogger: l.SugaredLogger.With(fields...)}
}

// WithError adds an error field
func (l *Logger) WithError(err error) *Logger {
	return l.with("error", err.Error())
}

// WithComponent tags every entry with the emitting component
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// LogAdminAction records a change made with the admin key
func (l *Logger) LogAdminAction(action, ip string, metadata map[string]interface{}) {
	l.Infow("Admin action", audit("admin_action", action, ip, metadata)...)
}

// LogSecurityEvent records a rejected request: bad admin key, bad CSRF token,
// rate limit hit
func (l *Logger) LogSecurityEvent(event, ip string, details map[string]interface{}) {
	l.Warnw("Security event", audit("security_event", event, ip, details)...)
}

func audit(key, name, ip string, extra map[string]interface{}) []interface{} {
	fields := make([]interface{}, 0, 4+2*len(extra))
	fields = append(fields, key, name, "ip", ip)
	for k, v := range extra {
		fields = append(fields, k, v)
	}
	return fields
}

// Close flushes buffered entries
func (l *Logger) Close() error {
	return l.SugaredLogger.Sync()
}
