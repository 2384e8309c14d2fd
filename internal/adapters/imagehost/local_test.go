package imagehost

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biofert/core/internal/ports"
)

func TestLocalHostUpload(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	host, err := NewLocalHost(dir, "http://localhost:5000/uploads/")
	require.NoError(t, err)
	assert.DirExists(t, dir)

	url, err := host.Upload(context.Background(), ports.Asset{
		Folder: "events",
		Name:   "field-day.jpg",
		Data:   []byte("jpeg bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/events/field-day.jpg", url)

	data, err := os.ReadFile(filepath.Join(dir, "events", "field-day.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(data))
}

func TestLocalHostStaysInsideDir(t *testing.T) {
	dir := t.TempDir()
	host, err := NewLocalHost(dir, "http://cdn")
	require.NoError(t, err)

	url, err := host.Upload(context.Background(), ports.Asset{
		Folder: "../../etc",
		Name:   "../passwd",
		Data:   []byte("x"),
	})
	require.NoError(t, err)
	assert.Equal(t, "http://cdn/etc/passwd", url)
	assert.FileExists(t, filepath.Join(dir, "etc", "passwd"))
}

func TestLocalHostHonoursCancelledContext(t *testing.T) {
	host, err := NewLocalHost(t.TempDir(), "http://cdn")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = host.Upload(ctx, ports.Asset{Name: "a.jpg"})
	assert.ErrorIs(t, err, context.Canceled)
}
