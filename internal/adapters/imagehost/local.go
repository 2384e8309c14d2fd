package imagehost

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/biofert/core/internal/ports"
)

// LocalHost stores assets on disk below dir and serves them from baseURL
type LocalHost struct {
	dir     string
	baseURL string
}

// NewLocalHost creates a disk-backed image host
func NewLocalHost(dir, baseURL string) (*LocalHost, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &LocalHost{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Dir returns the storage root
func (h *LocalHost) Dir() string {
	return h.dir
}

func (h *LocalHost) Upload(ctx context.Context, asset ports.Asset) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name := filepath.Base(asset.Name)
	folder := filepath.Clean("/" + asset.Folder)[1:]
	target := filepath.Join(h.dir, folder, name)

	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return "", fmt.Errorf("create asset folder: %w", err)
	}
	if err := os.WriteFile(target, asset.Data, 0o644); err != nil {
		return "", fmt.Errorf("write asset: %w", err)
	}

	rel := name
	if folder != "" {
		rel = filepath.ToSlash(filepath.Join(folder, name))
	}
	return h.baseURL + "/" + rel, nil
}
