package logger

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/biofert/core/internal/infrastructure/config"
)

func observed(level zapcore.Level) (*Logger, *observer.ObservedLogs) {
	core, logs := observer.New(level)
	return &Logger{SugaredLogger: zap.New(core).Sugar()}, logs
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(config.LoggerConfig{Level: "loud", Format: "json"})
	assert.Error(t, err)
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "api.log")

	l, err := New(config.LoggerConfig{Level: "info", Format: "json", Output: "file", Filename: path})
	require.NoError(t, err)

	l.Infow("hello", "k", "v")
	_ = l.Close()

	assert.FileExists(t, path)
}

func TestLogAdminAction(t *testing.T) {
	l, logs := observed(zapcore.InfoLevel)

	l.WithComponent("events").LogAdminAction("event.delete", "10.0.0.1", map[string]interface{}{"event_id": int64(7)})

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "Admin action", entry.Message)
	assert.Equal(t, map[string]interface{}{
		"component":    "events",
		"admin_action": "event.delete",
		"ip":           "10.0.0.1",
		"event_id":     int64(7),
	}, entry.ContextMap())
}

func TestLogSecurityEventIsWarning(t *testing.T) {
	l, logs := observed(zapcore.WarnLevel)

	l.LogSecurityEvent("admin_auth_failed", "10.0.0.2", nil)
	l.Infow("dropped")

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.WarnLevel, entry.Level)
	assert.Equal(t, "admin_auth_failed", entry.ContextMap()["security_event"])
}

func TestWithError(t *testing.T) {
	l, logs := observed(zapcore.DebugLevel)

	l.WithError(errors.New("disk full")).Error("write failed")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "disk full", logs.All()[0].ContextMap()["error"])
}
