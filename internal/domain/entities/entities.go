package entities

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors
var (
	ErrEventNotFound    = errors.New("event not found")
	ErrDuplicateEvent   = errors.New("event id already exists")
	ErrInvalidReorder   = errors.New("reorder payload does not match stored events")
	ErrUnsupportedMedia = errors.New("unsupported file type")
	ErrPayloadTooLarge  = errors.New("file exceeds size limit")

	// ErrContentUnavailable means the content file exists but could not be
	// loaded; writing events back would drop every other section.
	ErrContentUnavailable = errors.New("site content is not loaded")
)

// ValidationError carries field-level messages for rejected input.
type ValidationError struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"errors,omitempty"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("%s (%s)", e.Message, strings.Join(names, ", "))
}

// NewValidationError builds a ValidationError from a field→message map.
func NewValidationError(message string, fields map[string]string) *ValidationError {
	return &ValidationError{Message: message, Fields: fields}
}

// Event represents a field or marketing activity shown on the site
type Event struct {
	ID          int64  `json:"id" db:"id"`
	Title       string `json:"title" db:"title" validate:"required,max=200"`
	Date        string `json:"date" db:"date" validate:"required,max=100"`
	Location    string `json:"location" db:"location" validate:"required,max=200"`
	Image       string `json:"image" db:"image" validate:"required,max=2048"`
	Description string `json:"description" db:"description" validate:"required"`
}

// EventPatch holds the fields of a partial event update. Nil means "keep".
type EventPatch struct {
	Title       *string
	Date        *string
	Location    *string
	Image       *string
	Description *string
}

// Apply merges the present patch fields onto event.
func (p EventPatch) Apply(event Event) Event {
	if p.Title != nil {
		event.Title = *p.Title
	}
	if p.Date != nil {
		event.Date = *p.Date
	}
	if p.Location != nil {
		event.Location = *p.Location
	}
	if p.Image != nil {
		event.Image = *p.Image
	}
	if p.Description != nil {
		event.Description = *p.Description
	}
	return event
}

// IsEmpty reports whether the patch changes nothing.
func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Date == nil && p.Location == nil && p.Image == nil && p.Description == nil
}

// ReorderByIDs returns current rearranged into the order given by ids.
// ids must be a permutation of the ids in current: same length, no
// duplicates and no unknown ids.
func ReorderByIDs(current []Event, ids []int64) ([]Event, error) {
	if len(ids) != len(current) {
		return nil, fmt.Errorf("%w: got %d ids, have %d events", ErrInvalidReorder, len(ids), len(current))
	}

	byID := make(map[int64]Event, len(current))
	for _, e := range current {
		byID[e.ID] = e
	}

	seen := make(map[int64]struct{}, len(ids))
	out := make([]Event, 0, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: duplicate id %d", ErrInvalidReorder, id)
		}
		seen[id] = struct{}{}

		e, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown id %d", ErrInvalidReorder, id)
		}
		out = append(out, e)
	}

	return out, nil
}

// MaxEventID returns the largest id in events, or 0.
func MaxEventID(events []Event) int64 {
	var max int64
	for _, e := range events {
		if e.ID > max {
			max = e.ID
		}
	}
	return max
}

// CloneEvents returns a copy of events that is never nil.
func CloneEvents(events []Event) []Event {
	out := make([]Event, len(events))
	copy(out, events)
	return out
}
