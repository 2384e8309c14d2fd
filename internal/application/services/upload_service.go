package services

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	_ "golang.org/x/image/webp"
	"golang.org/x/sync/errgroup"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/ports"
)

// Variant sizes and qualities
const (
	MainMaxWidth     = 1200
	MainMaxHeight    = 1200
	MainQuality      = 80
	ThumbnailSize    = 200
	ThumbnailQuality = 70

	// MaxPixels bounds width*height before decoding; a small file can
	// declare dimensions that would take gigabytes to decode.
	MaxPixels = 50_000_000

	FormatJPEG = "jpeg"
	FormatPDF  = "pdf"
)

var allowedExtensions = map[string]string{
	".jpeg": "image",
	".jpg":  "image",
	".png":  "image",
	".webp": "image",
	".gif":  "image",
	".pdf":  "document",
}

var allowedMIMETypes = map[string]string{
	"image/jpeg":      "image",
	"image/jpg":       "image",
	"image/png":       "image",
	"image/webp":      "image",
	"image/gif":       "image",
	"application/pdf": "document",
}

// UploadOptions configures the ingest pipeline
type UploadOptions struct {
	MaxSize        int64
	ImageFolder    string
	DocumentFolder string
}

// UploadService validates, transcodes and publishes uploaded files
type UploadService struct {
	host   ports.ImageHost
	opts   UploadOptions
	logger *logger.Logger
}

// NewUploadService creates a new upload service
func NewUploadService(host ports.ImageHost, opts UploadOptions, logger *logger.Logger) *UploadService {
	return &UploadService{
		host:   host,
		opts:   opts,
		logger: logger.WithComponent("upload_service"),
	}
}

// MaxSize returns the upload size ceiling in bytes
func (s *UploadService) MaxSize() int64 {
	return s.opts.MaxSize
}

// Ingest validates file and pushes it, or its derived variants, to the
// image host. Every check runs before any decoding or upload.
func (s *UploadService) Ingest(ctx context.Context, file ports.UploadFile) (*ports.UploadResult, error) {
	kind, err := s.classify(file)
	if err != nil {
		return nil, err
	}

	if kind == "document" {
		return s.ingestDocument(ctx, file)
	}
	return s.ingestImage(ctx, file)
}

// classify checks size, extension, declared type and sniffed content and
// returns "image" or "document".
func (s *UploadService) classify(file ports.UploadFile) (string, error) {
	size := file.Size
	if int64(len(file.Data)) > size {
		size = int64(len(file.Data))
	}
	if s.opts.MaxSize > 0 && size > s.opts.MaxSize {
		return "", fmt.Errorf("%w: %d bytes, limit %d", entities.ErrPayloadTooLarge, size, s.opts.MaxSize)
	}
	if len(file.Data) == 0 {
		return "", entities.NewValidationError("No file uploaded", map[string]string{"file": "file is required"})
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	extKind, ok := allowedExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: extension %q", entities.ErrUnsupportedMedia, ext)
	}

	declared := strings.ToLower(strings.TrimSpace(strings.SplitN(file.ContentType, ";", 2)[0]))
	declaredKind, ok := allowedMIMETypes[declared]
	if !ok {
		return "", fmt.Errorf("%w: content type %q", entities.ErrUnsupportedMedia, declared)
	}

	sniffed := mimetype.Detect(file.Data).String()
	sniffedKind, ok := allowedMIMETypes[strings.SplitN(sniffed, ";", 2)[0]]
	if !ok {
		return "", fmt.Errorf("%w: detected content %q", entities.ErrUnsupportedMedia, sniffed)
	}

	if extKind != declaredKind || declaredKind != sniffedKind {
		return "", fmt.Errorf("%w: %s does not match its content", entities.ErrUnsupportedMedia, file.Filename)
	}

	return sniffedKind, nil
}

func (s *UploadService) ingestDocument(ctx context.Context, file ports.UploadFile) (*ports.UploadResult, error) {
	url, err := s.host.Upload(ctx, ports.Asset{
		Folder:      s.opts.DocumentFolder,
		Name:        assetName(file.Filename, "", ".pdf"),
		ContentType: "application/pdf",
		Raw:         true,
		Data:        file.Data,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload document: %w", err)
	}

	s.logger.Infow("Document uploaded", "filename", file.Filename, "size", len(file.Data), "url", url)

	return &ports.UploadResult{URL: url, Format: FormatPDF}, nil
}

func (s *UploadService) ingestImage(ctx context.Context, file ports.UploadFile) (*ports.UploadResult, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(file.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image header: %v", entities.ErrUnsupportedMedia, err)
	}
	if int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		s.logger.Warnw("Image rejected", "filename", file.Filename, "width", cfg.Width, "height", cfg.Height)
		return nil, fmt.Errorf("%w: %dx%d pixels", entities.ErrPayloadTooLarge, cfg.Width, cfg.Height)
	}

	src, err := imaging.Decode(bytes.NewReader(file.Data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	mainImg := imaging.Fit(src, MainMaxWidth, MainMaxHeight, imaging.Lanczos)
	thumb := imaging.Fill(src, ThumbnailSize, ThumbnailSize, imaging.Center, imaging.Lanczos)

	mainData, err := encodeJPEG(mainImg, MainQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode main variant: %w", err)
	}
	thumbData, err := encodeJPEG(thumb, ThumbnailQuality)
	if err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	base := uuid.NewString()
	var mainURL, thumbURL string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		url, err := s.host.Upload(gctx, ports.Asset{
			Folder:      s.opts.ImageFolder,
			Name:        base + ".jpg",
			ContentType: "image/jpeg",
			Data:        mainData,
		})
		if err != nil {
			return fmt.Errorf("upload main variant: %w", err)
		}
		mainURL = url
		return nil
	})
	g.Go(func() error {
		url, err := s.host.Upload(gctx, ports.Asset{
			Folder:      s.opts.ImageFolder,
			Name:        base + "-thumb.jpg",
			ContentType: "image/jpeg",
			Data:        thumbData,
		})
		if err != nil {
			return fmt.Errorf("upload thumbnail: %w", err)
		}
		thumbURL = url
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to upload image: %w", err)
	}

	bounds := mainImg.Bounds()
	s.logger.Infow("Image uploaded",
		"filename", file.Filename,
		"size", len(file.Data),
		"width", bounds.Dx(),
		"height", bounds.Dy(),
		"url", mainURL,
	)

	return &ports.UploadResult{
		URL:          mainURL,
		ThumbnailURL: thumbURL,
		Format:       FormatJPEG,
		Width:        bounds.Dx(),
		Height:       bounds.Dy(),
	}, nil
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// assetName builds a unique, filesystem-safe object name that keeps a
// readable hint of the original filename.
func assetName(original, suffix, ext string) string {
	stem := strings.TrimSuffix(filepath.Base(original), filepath.Ext(original))
	var b strings.Builder
	for _, r := range strings.ToLower(stem) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_' || r == ' ':
			b.WriteRune('-')
		}
		if b.Len() >= 40 {
			break
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		name = "file"
	}
	return name + "-" + uuid.NewString()[:8] + suffix + ext
}
