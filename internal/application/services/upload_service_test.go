package services

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/ports"
)

var pdfData = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n<< /Root 1 0 R >>\n%%EOF\n")

func pngData(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newUploadService(host ports.ImageHost, maxSize int64) *UploadService {
	return NewUploadService(host, UploadOptions{
		MaxSize:        maxSize,
		ImageFolder:    "events",
		DocumentFolder: "documents",
	}, logger.NewNop())
}

func TestIngestImage(t *testing.T) {
	host := &fakeImageHost{}
	svc := newUploadService(host, 10<<20)

	result, err := svc.Ingest(context.Background(), ports.UploadFile{
		Filename:    "field-day.png",
		ContentType: "image/png",
		Data:        pngData(t, 1600, 800),
	})
	require.NoError(t, err)

	assert.Equal(t, FormatJPEG, result.Format)
	assert.Equal(t, 1200, result.Width)
	assert.Equal(t, 600, result.Height)
	assert.True(t, strings.HasPrefix(result.URL, "https://cdn.test/events/"))
	assert.True(t, strings.HasSuffix(result.ThumbnailURL, "-thumb.jpg"))

	assets := host.uploaded()
	require.Len(t, assets, 2)

	sizes := map[string]image.Config{}
	for _, a := range assets {
		assert.Equal(t, "events", a.Folder)
		assert.Equal(t, "image/jpeg", a.ContentType)
		assert.False(t, a.Raw)
		cfg, err := jpeg.DecodeConfig(bytes.NewReader(a.Data))
		require.NoError(t, err)
		sizes[a.Name] = cfg
	}

	var mainCfg, thumbCfg image.Config
	for name, cfg := range sizes {
		if strings.HasSuffix(name, "-thumb.jpg") {
			thumbCfg = cfg
		} else {
			mainCfg = cfg
		}
	}
	assert.Equal(t, 1200, mainCfg.Width)
	assert.Equal(t, 600, mainCfg.Height)
	assert.Equal(t, ThumbnailSize, thumbCfg.Width)
	assert.Equal(t, ThumbnailSize, thumbCfg.Height)
}

func TestIngestSmallImageIsNotUpscaled(t *testing.T) {
	host := &fakeImageHost{}
	svc := newUploadService(host, 10<<20)

	result, err := svc.Ingest(context.Background(), ports.UploadFile{
		Filename:    "small.png",
		ContentType: "image/png",
		Data:        pngData(t, 300, 200),
	})
	require.NoError(t, err)
	assert.Equal(t, 300, result.Width)
	assert.Equal(t, 200, result.Height)
}

func TestIngestDocument(t *testing.T) {
	host := &fakeImageHost{}
	svc := newUploadService(host, 10<<20)

	result, err := svc.Ingest(context.Background(), ports.UploadFile{
		Filename:    "KEBS Certificate.pdf",
		ContentType: "application/pdf",
		Data:        pdfData,
	})
	require.NoError(t, err)

	assert.Equal(t, FormatPDF, result.Format)
	assert.Empty(t, result.ThumbnailURL)

	assets := host.uploaded()
	require.Len(t, assets, 1)
	assert.Equal(t, "documents", assets[0].Folder)
	assert.True(t, assets[0].Raw)
	assert.True(t, strings.HasPrefix(assets[0].Name, "kebs-certificate-"))
	assert.True(t, strings.HasSuffix(assets[0].Name, ".pdf"))
	assert.Equal(t, pdfData, assets[0].Data)
}

func TestIngestRejectsBeforeUpload(t *testing.T) {
	png := pngData(t, 10, 10)

	tests := []struct {
		name    string
		file    ports.UploadFile
		maxSize int64
		wantErr error
	}{
		{
			name:    "too large",
			file:    ports.UploadFile{Filename: "a.png", ContentType: "image/png", Data: png},
			maxSize: int64(len(png) - 1),
			wantErr: entities.ErrPayloadTooLarge,
		},
		{
			name:    "declared size too large",
			file:    ports.UploadFile{Filename: "a.png", ContentType: "image/png", Size: 1 << 30, Data: png},
			maxSize: 10 << 20,
			wantErr: entities.ErrPayloadTooLarge,
		},
		{
			name:    "extension not allowed",
			file:    ports.UploadFile{Filename: "a.exe", ContentType: "image/png", Data: png},
			maxSize: 10 << 20,
			wantErr: entities.ErrUnsupportedMedia,
		},
		{
			name:    "content type not allowed",
			file:    ports.UploadFile{Filename: "a.png", ContentType: "text/html", Data: png},
			maxSize: 10 << 20,
			wantErr: entities.ErrUnsupportedMedia,
		},
		{
			name:    "content is not an image",
			file:    ports.UploadFile{Filename: "a.png", ContentType: "image/png", Data: []byte("<html><script>alert(1)</script></html>")},
			maxSize: 10 << 20,
			wantErr: entities.ErrUnsupportedMedia,
		},
		{
			name:    "pdf disguised as image",
			file:    ports.UploadFile{Filename: "a.png", ContentType: "image/png", Data: pdfData},
			maxSize: 10 << 20,
			wantErr: entities.ErrUnsupportedMedia,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			host := &fakeImageHost{}
			svc := newUploadService(host, tt.maxSize)

			_, err := svc.Ingest(context.Background(), tt.file)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, host.uploaded())
		})
	}
}

func TestIngestEmptyFile(t *testing.T) {
	host := &fakeImageHost{}
	svc := newUploadService(host, 10<<20)

	_, err := svc.Ingest(context.Background(), ports.UploadFile{Filename: "a.png", ContentType: "image/png"})

	var verr *entities.ValidationError
	assert.True(t, errors.As(err, &verr))
	assert.Empty(t, host.uploaded())
}

func TestIngestHostFailure(t *testing.T) {
	host := &fakeImageHost{err: errors.New("cdn unavailable")}
	svc := newUploadService(host, 10<<20)

	_, err := svc.Ingest(context.Background(), ports.UploadFile{
		Filename:    "a.png",
		ContentType: "image/png",
		Data:        pngData(t, 20, 20),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cdn unavailable")
	assert.False(t, errors.Is(err, entities.ErrUnsupportedMedia))
}

func TestAssetName(t *testing.T) {
	name := assetName("../../Field Day (2025).PNG", "", ".png")
	assert.True(t, strings.HasPrefix(name, "field-day-2025-"), name)
	assert.True(t, strings.HasSuffix(name, ".png"))
	assert.NotContains(t, name, "/")

	assert.True(t, strings.HasPrefix(assetName("....pdf", "", ".pdf"), "file-"))
}

// pngHeader returns a PNG that declares w×h pixels but carries no image data
func pngHeader(w, h uint32) []byte {
	var buf bytes.Buffer
	buf.WriteString("\x89PNG\r\n\x1a\n")

	chunk := func(kind string, data []byte) {
		_ = binary.Write(&buf, binary.BigEndian, uint32(len(data)))
		body := append([]byte(kind), data...)
		buf.Write(body)
		_ = binary.Write(&buf, binary.BigEndian, crc32.ChecksumIEEE(body))
	}

	ihdr := make([]byte, 13)
	binary.BigEndian.PutUint32(ihdr[0:4], w)
	binary.BigEndian.PutUint32(ihdr[4:8], h)
	ihdr[8] = 8 // bit depth
	ihdr[9] = 6 // RGBA
	chunk("IHDR", ihdr)
	chunk("IEND", nil)

	return buf.Bytes()
}

func TestIngestRejectsOversizedDimensions(t *testing.T) {
	host := &fakeImageHost{}
	svc := newUploadService(host, 10<<20)

	_, err := svc.Ingest(context.Background(), ports.UploadFile{
		Filename:    "bomb.png",
		ContentType: "image/png",
		Data:        pngHeader(40000, 40000),
	})
	assert.ErrorIs(t, err, entities.ErrPayloadTooLarge)
	assert.Empty(t, host.uploaded())
}

func TestIngestRejectsUnreadableImageHeader(t *testing.T) {
	host := &fakeImageHost{}
	svc := newUploadService(host, 10<<20)

	data := pngHeader(10, 10)
	data[20] ^= 0xff // height high byte, no longer matches the checksum

	_, err := svc.Ingest(context.Background(), ports.UploadFile{
		Filename:    "broken.png",
		ContentType: "image/png",
		Data:        data,
	})
	assert.ErrorIs(t, err, entities.ErrUnsupportedMedia)
	assert.Empty(t, host.uploaded())
}

func TestUploadServiceMaxSize(t *testing.T) {
	assert.Equal(t, int64(4<<20), newUploadService(&fakeImageHost{}, 4<<20).MaxSize())
}
