package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/infrastructure/metrics"
	"github.com/biofert/core/internal/ports"
)

// ContactHandler handles contact form submissions
type ContactHandler struct {
	contactService ports.ContactService
	metrics        *metrics.Metrics
	logger         *logger.Logger
}

// NewContactHandler creates a new contact handler
func NewContactHandler(contactService ports.ContactService, metrics *metrics.Metrics, logger *logger.Logger) *ContactHandler {
	return &ContactHandler{
		contactService: contactService,
		metrics:        metrics,
		logger:         logger,
	}
}

// Submit godoc
// @Summary Send a contact inquiry
// @Tags contact
// @Accept json
// @Produce json
// @Param request body ports.ContactRequest true "Inquiry"
// @Success 200 {object} ports.MessageResponse
// @Failure 400 {object} ports.ErrorResponse
// @Failure 500 {object} ports.ErrorResponse
// @Router /contact [post]
func (h *ContactHandler) Submit(c echo.Context) error {
	var req ports.ContactRequest
	if err := c.Bind(&req); err != nil {
		h.metrics.ContactSubmission(metrics.ResultRejected)
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	err := h.contactService.Submit(c.Request().Context(), req)
	h.metrics.ContactSubmission(resultOf(err))
	if err != nil {
		var verr *entities.ValidationError
		if errors.As(err, &verr) {
			return toHTTPError(err, "")
		}
		h.logger.WithError(err).Errorw("Contact submission failed", "ip", c.RealIP())
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to send message. Please try again later.").SetInternal(err)
	}

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Message sent successfully"})
}
