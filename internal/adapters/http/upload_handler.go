package http

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/infrastructure/metrics"
	"github.com/biofert/core/internal/ports"
)

// Form fields accepted for the uploaded file, in lookup order
var uploadFields = []string{"file", "image"}

// UploadHandler handles file uploads
type UploadHandler struct {
	uploadService ports.UploadService
	metrics       *metrics.Metrics
	logger        *logger.Logger
}

// NewUploadHandler creates a new upload handler
func NewUploadHandler(uploadService ports.UploadService, metrics *metrics.Metrics, logger *logger.Logger) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		metrics:       metrics,
		logger:        logger,
	}
}

// Upload godoc
// @Summary Upload an image or PDF
// @Description Images are stored as a resized main variant plus a square thumbnail
// @Tags uploads
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image or PDF"
// @Success 200 {object} ports.UploadResult
// @Failure 400 {object} ports.ErrorResponse
// @Failure 413 {object} ports.ErrorResponse
// @Security AdminKey
// @Router /v1/upload [post]
func (h *UploadHandler) Upload(c echo.Context) error {
	header, err := formFile(c)
	if err != nil {
		h.metrics.Upload("unknown", metrics.ResultRejected)
		return echo.NewHTTPError(http.StatusBadRequest, "No file uploaded")
	}

	kind := "image"
	if header.Header.Get(echo.HeaderContentType) == "application/pdf" {
		kind = "document"
	}

	maxSize := h.uploadService.MaxSize()
	if maxSize > 0 && header.Size > maxSize {
		h.metrics.Upload(kind, metrics.ResultRejected)
		h.logger.Warnw("Upload rejected", "filename", header.Filename, "size", header.Size, "limit", maxSize)
		return toHTTPError(fmt.Errorf("%w: %d bytes", entities.ErrPayloadTooLarge, header.Size), "")
	}

	data, err := readFormFile(header, maxSize)
	if err != nil {
		h.metrics.Upload(kind, metrics.ResultError)
		return toHTTPError(err, "Failed to read uploaded file")
	}

	result, err := h.uploadService.Ingest(c.Request().Context(), ports.UploadFile{
		Filename:    header.Filename,
		ContentType: header.Header.Get(echo.HeaderContentType),
		Size:        header.Size,
		Data:        data,
	})
	h.metrics.Upload(kind, resultOf(err))
	if err != nil {
		h.logger.Warnw("Upload failed", "error", err, "filename", header.Filename)
		return toHTTPError(err, "Failed to process upload")
	}

	h.logger.LogAdminAction("upload", c.RealIP(), map[string]interface{}{
		"filename": header.Filename,
		"format":   result.Format,
		"url":      result.URL,
	})

	return c.JSON(http.StatusOK, result)
}

func formFile(c echo.Context) (*multipart.FileHeader, error) {
	var lastErr error
	for _, field := range uploadFields {
		header, err := c.FormFile(field)
		if err == nil {
			return header, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// readFormFile reads at most limit+1 bytes so a lying size header cannot
// force an unbounded read.
func readFormFile(header *multipart.FileHeader, limit int64) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = f
	if limit > 0 {
		r = io.LimitReader(f, limit+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if limit > 0 && int64(len(data)) > limit {
		return nil, fmt.Errorf("%w: more than %d bytes", entities.ErrPayloadTooLarge, limit)
	}
	return data, nil
}
