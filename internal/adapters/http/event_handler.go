package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/infrastructure/metrics"
	"github.com/biofert/core/internal/ports"
)

// EventHandler handles event-related requests
type EventHandler struct {
	eventService ports.EventService
	metrics      *metrics.Metrics
	logger       *logger.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService ports.EventService, metrics *metrics.Metrics, logger *logger.Logger) *EventHandler {
	return &EventHandler{
		eventService: eventService,
		metrics:      metrics,
		logger:       logger,
	}
}

// ListEvents godoc
// @Summary List events
// @Description Events in display order, newest first unless reordered
// @Tags events
// @Produce json
// @Success 200 {array} entities.Event
// @Router /events [get]
func (h *EventHandler) ListEvents(c echo.Context) error {
	events, err := h.eventService.ListEvents(c.Request().Context())
	if err != nil {
		return toHTTPError(err, "Failed to retrieve events")
	}

	return c.JSON(http.StatusOK, events)
}

// CreateEvent godoc
// @Summary Create an event
// @Tags events
// @Accept json
// @Produce json
// @Param request body ports.CreateEventRequest true "Event data"
// @Success 201 {object} entities.Event
// @Failure 400 {object} ports.ErrorResponse
// @Failure 403 {object} ports.ErrorResponse
// @Security AdminKey
// @Router /events [post]
func (h *EventHandler) CreateEvent(c echo.Context) error {
	var req ports.CreateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	event, err := h.eventService.CreateEvent(c.Request().Context(), req)
	h.metrics.EventMutation("create", resultOf(err))
	if err != nil {
		h.logger.Warnw("Create event failed", "error", err)
		return toHTTPError(err, "Failed to save event")
	}

	h.logger.LogAdminAction("event.create", c.RealIP(), map[string]interface{}{"event_id": event.ID})

	return c.JSON(http.StatusCreated, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Fields omitted from the body keep their stored value
// @Tags events
// @Accept json
// @Produce json
// @Param id path int true "Event ID"
// @Param request body ports.UpdateEventRequest true "Fields to change"
// @Success 200 {object} entities.Event
// @Failure 404 {object} ports.ErrorResponse
// @Security AdminKey
// @Router /events/{id} [put]
func (h *EventHandler) UpdateEvent(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}

	var req ports.UpdateEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	event, err := h.eventService.UpdateEvent(c.Request().Context(), id, req)
	h.metrics.EventMutation("update", resultOf(err))
	if err != nil {
		h.logger.Warnw("Update event failed", "error", err, "event_id", id)
		return toHTTPError(err, "Failed to update event")
	}

	h.logger.LogAdminAction("event.update", c.RealIP(), map[string]interface{}{"event_id": id})

	return c.JSON(http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Succeeds whether or not the event still exists
// @Tags events
// @Produce json
// @Param id path int true "Event ID"
// @Success 200 {object} ports.MessageResponse
// @Security AdminKey
// @Router /events/{id} [delete]
func (h *EventHandler) DeleteEvent(c echo.Context) error {
	id, err := eventID(c)
	if err != nil {
		return err
	}

	err = h.eventService.DeleteEvent(c.Request().Context(), id)
	h.metrics.EventMutation("delete", resultOf(err))
	if err != nil {
		h.logger.Warnw("Delete event failed", "error", err, "event_id", id)
		return toHTTPError(err, "Failed to delete event")
	}

	h.logger.LogAdminAction("event.delete", c.RealIP(), map[string]interface{}{"event_id": id})

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Event deleted successfully"})
}

type reorderRequest struct {
	Events json.RawMessage `json:"events"`
}

// ReorderEvents godoc
// @Summary Reorder events
// @Description The submitted ids must be exactly the stored ids
// @Tags events
// @Accept json
// @Produce json
// @Param request body ports.ReorderEventsRequest true "Events in the new order"
// @Success 200 {object} ports.MessageResponse
// @Failure 400 {object} ports.ErrorResponse
// @Security AdminKey
// @Router /events/reorder [put]
func (h *EventHandler) ReorderEvents(c echo.Context) error {
	var req reorderRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request format")
	}

	raw := bytes.TrimSpace(req.Events)
	if len(raw) == 0 || raw[0] != '[' {
		h.metrics.EventMutation("reorder", metrics.ResultRejected)
		return echo.NewHTTPError(http.StatusBadRequest, "events must be an array")
	}

	var events []entities.Event
	if err := json.Unmarshal(raw, &events); err != nil {
		h.metrics.EventMutation("reorder", metrics.ResultRejected)
		return echo.NewHTTPError(http.StatusBadRequest, "events must be an array of events")
	}

	ordered, err := h.eventService.ReorderEvents(c.Request().Context(), events)
	h.metrics.EventMutation("reorder", resultOf(err))
	if err != nil {
		h.logger.Warnw("Reorder events failed", "error", err)
		return toHTTPError(err, "Failed to reorder events")
	}

	h.logger.LogAdminAction("event.reorder", c.RealIP(), map[string]interface{}{"count": len(ordered)})

	return c.JSON(http.StatusOK, ports.MessageResponse{Message: "Events reordered successfully"})
}

func eventID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid event ID")
	}
	return id, nil
}
