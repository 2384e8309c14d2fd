package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/logger"
	"github.com/biofert/core/internal/ports"
)

// EventService handles event-related operations
type EventService struct {
	eventRepo ports.EventRepository
	ids       *IDGenerator
	validator *Validator
	logger    *logger.Logger
}

// NewEventService creates a new event service. The id generator is
// seeded with the largest stored id so new ids never collide.
func NewEventService(ctx context.Context, eventRepo ports.EventRepository, logger *logger.Logger) (*EventService, error) {
	events, err := eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return &EventService{
		eventRepo: eventRepo,
		ids:       NewIDGenerator(entities.MaxEventID(events)),
		validator: NewValidator(),
		logger:    logger.WithComponent("event_service"),
	}, nil
}

// ListEvents returns events in display order
func (s *EventService) ListEvents(ctx context.Context) ([]entities.Event, error) {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}

	return events, nil
}

// CreateEvent validates the request and inserts the event first in the
// display order
func (s *EventService) CreateEvent(ctx context.Context, req ports.CreateEventRequest) (*entities.Event, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Date = strings.TrimSpace(req.Date)
	req.Location = strings.TrimSpace(req.Location)
	req.Image = strings.TrimSpace(req.Image)
	req.Description = strings.TrimSpace(req.Description)

	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	event := entities.Event{
		ID:          s.ids.Next(),
		Title:       req.Title,
		Date:        req.Date,
		Location:    req.Location,
		Image:       req.Image,
		Description: req.Description,
	}

	err := s.eventRepo.Create(ctx, event)
	if errors.Is(err, entities.ErrDuplicateEvent) {
		// Another writer (a second instance, a seed run) stored ids above
		// ours; catch up and retry once.
		if err = s.resyncIDs(ctx); err == nil {
			event.ID = s.ids.Next()
			err = s.eventRepo.Create(ctx, event)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}

	s.logger.Infow("Event created", "event_id", event.ID, "title", event.Title)

	return &event, nil
}

func (s *EventService) resyncIDs(ctx context.Context) error {
	events, err := s.eventRepo.List(ctx)
	if err != nil {
		return err
	}
	s.ids.Observe(entities.MaxEventID(events))
	s.logger.Warnw("Event id collision, generator resynced", "max_id", entities.MaxEventID(events))
	return nil
}

// UpdateEvent merges the present request fields onto the stored event
func (s *EventService) UpdateEvent(ctx context.Context, id int64, req ports.UpdateEventRequest) (*entities.Event, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, err
	}

	patch := req.Patch()
	if blank := blankFields(patch); len(blank) > 0 {
		return nil, entities.NewValidationError("Fields cannot be empty: "+strings.Join(blank, ", "), blankFieldErrors(blank))
	}

	event, err := s.eventRepo.Update(ctx, id, patch)
	if err != nil {
		return nil, fmt.Errorf("failed to update event: %w", err)
	}

	s.logger.Infow("Event updated", "event_id", id)

	return event, nil
}

// DeleteEvent removes the event. Deleting an id that is already gone
// succeeds.
func (s *EventService) DeleteEvent(ctx context.Context, id int64) error {
	existed, err := s.eventRepo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}

	if existed {
		s.logger.Infow("Event deleted", "event_id", id)
	} else {
		s.logger.Debugw("Delete of absent event ignored", "event_id", id)
	}

	return nil
}

// ReorderEvents applies the order of the submitted events. The submitted
// ids must be exactly the stored ids.
func (s *EventService) ReorderEvents(ctx context.Context, events []entities.Event) ([]entities.Event, error) {
	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}

	ordered, err := s.eventRepo.Reorder(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to reorder events: %w", err)
	}

	s.logger.Infow("Events reordered", "count", len(ordered))

	return ordered, nil
}

func blankFields(p entities.EventPatch) []string {
	var blank []string
	check := func(name string, v *string) {
		if v != nil && strings.TrimSpace(*v) == "" {
			blank = append(blank, name)
		}
	}
	check("title", p.Title)
	check("date", p.Date)
	check("location", p.Location)
	check("image", p.Image)
	check("description", p.Description)
	return blank
}

func blankFieldErrors(names []string) map[string]string {
	out := make(map[string]string, len(names))
	for _, n := range names {
		out[n] = n + " cannot be empty"
	}
	return out
}
