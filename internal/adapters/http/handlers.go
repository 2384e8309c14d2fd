package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biofert/core/internal/application/services"
	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/infrastructure/metrics"
	"github.com/biofert/core/internal/ports"
)

// ContentHandler serves the read-only site content sections
type ContentHandler struct {
	contentService *services.ContentService
	logger         *logger.Logger
}

// NewContentHandler creates a new content handler
func NewContentHandler(contentService *services.ContentService, logger *logger.Logger) *ContentHandler {
	return &ContentHandler{
		contentService: contentService,
		logger:         logger,
	}
}

// GetCompany godoc
// @Summary Company profile
// @Tags content
// @Produce json
// @Success 200 {object} entities.Company
// @Router /company [get]
func (h *ContentHandler) GetCompany(c echo.Context) error {
	return c.JSON(http.StatusOK, h.contentService.Company())
}

// GetProducts godoc
// @Summary Product catalogue
// @Tags content
// @Produce json
// @Success 200 {array} entities.Product
// @Router /products [get]
func (h *ContentHandler) GetProducts(c echo.Context) error {
	return c.JSON(http.StatusOK, h.contentService.Products())
}

// GetClientele godoc
// @Summary Client testimonials
// @Tags content
// @Produce json
// @Success 200 {array} entities.Testimonial
// @Router /clientele [get]
func (h *ContentHandler) GetClientele(c echo.Context) error {
	return c.JSON(http.StatusOK, h.contentService.Clientele())
}

// GetTimeline godoc
// @Summary Company history
// @Tags content
// @Produce json
// @Success 200 {array} entities.TimelineEntry
// @Router /timeline [get]
func (h *ContentHandler) GetTimeline(c echo.Context) error {
	return c.JSON(http.StatusOK, h.contentService.Timeline())
}

// GetProcessSteps godoc
// @Summary Production process
// @Tags content
// @Produce json
// @Success 200 {array} entities.ProcessStep
// @Router /process-steps [get]
func (h *ContentHandler) GetProcessSteps(c echo.Context) error {
	return c.JSON(http.StatusOK, h.contentService.ProcessSteps())
}

// GetBenefitsPage godoc
// @Summary Benefits page copy
// @Tags content
// @Produce json
// @Success 200 {object} entities.BenefitsPage
// @Router /benefits-page [get]
func (h *ContentHandler) GetBenefitsPage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.contentService.BenefitsPage())
}

// GetCertificationsPage godoc
// @Summary Certifications page copy
// @Tags content
// @Produce json
// @Success 200 {object} entities.CertificationsPage
// @Router /certifications-page [get]
func (h *ContentHandler) GetCertificationsPage(c echo.Context) error {
	return c.JSON(http.StatusOK, h.contentService.CertificationsPage())
}

// toHTTPError maps domain errors to HTTP errors. Anything unrecognized
// becomes a 500 whose detail stays server-side.
func toHTTPError(err error, fallback string) *echo.HTTPError {
	var verr *entities.ValidationError
	switch {
	case errors.As(err, &verr):
		return echo.NewHTTPError(http.StatusBadRequest, ports.ErrorResponse{
			Message: verr.Message,
			Errors:  verr.Fields,
		})
	case errors.Is(err, entities.ErrEventNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "Event not found")
	case errors.Is(err, entities.ErrDuplicateEvent):
		return echo.NewHTTPError(http.StatusConflict, "Event already exists")
	case errors.Is(err, entities.ErrInvalidReorder):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entities.ErrUnsupportedMedia):
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid file type. Allowed types: jpeg, jpg, png, webp, gif, pdf")
	case errors.Is(err, entities.ErrPayloadTooLarge):
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, entities.ErrContentUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Site content is unavailable, fix the content file and restart").SetInternal(err)
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, fallback).SetInternal(err)
	}
}

func resultOf(err error) string {
	if err == nil {
		return metrics.ResultSuccess
	}
	if toHTTPError(err, "").Code < http.StatusInternalServerError {
		return metrics.ResultRejected
	}
	return metrics.ResultError
}
