package ports

import (
	"context"

	"github.com/biofert/core/internal/domain/entities"
)

// EventService interface for event management operations
type EventService interface {
	ListEvents(ctx context.Context) ([]entities.Event, error)
	CreateEvent(ctx context.Context, req CreateEventRequest) (*entities.Event, error)
	UpdateEvent(ctx context.Context, id int64, req UpdateEventRequest) (*entities.Event, error)
	DeleteEvent(ctx context.Context, id int64) error
	ReorderEvents(ctx context.Context, events []entities.Event) ([]entities.Event, error)
}

// UploadService interface for the image ingest pipeline
type UploadService interface {
	Ingest(ctx context.Context, file UploadFile) (*UploadResult, error)
	// MaxSize is the accepted file size ceiling in bytes.
	MaxSize() int64
}

// ContactService interface for contact form submissions
type ContactService interface {
	Submit(ctx context.Context, req ContactRequest) error
}

// Request/Response Types

// Event related types
type CreateEventRequest struct {
	Title       string `json:"title" validate:"required,max=200"`
	Date        string `json:"date" validate:"required,max=100"`
	Location    string `json:"location" validate:"required,max=200"`
	Image       string `json:"image" validate:"required,max=2048"`
	Description string `json:"description" validate:"required,max=5000"`
}

type UpdateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,max=200"`
	Date        *string `json:"date" validate:"omitempty,max=100"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Image       *string `json:"image" validate:"omitempty,max=2048"`
	Description *string `json:"description" validate:"omitempty,max=5000"`
}

// Patch converts the request to a domain patch
func (r UpdateEventRequest) Patch() entities.EventPatch {
	return entities.EventPatch{
		Title:       r.Title,
		Date:        r.Date,
		Location:    r.Location,
		Image:       r.Image,
		Description: r.Description,
	}
}

// Upload related types
type UploadFile struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

type UploadResult struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
	Format       string `json:"format"`
	Width        int    `json:"width,omitempty"`
	Height       int    `json:"height,omitempty"`
}

// Asset is a single object pushed to an ImageHost
type Asset struct {
	Folder      string
	Name        string
	ContentType string
	// Raw assets (documents) are stored without image processing by the host.
	Raw  bool
	Data []byte
}

// Contact related types
type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email,max=254"`
	Phone   string `json:"phone" validate:"omitempty,max=30"`
	Subject string `json:"subject" validate:"omitempty,max=200"`
	Message string `json:"message" validate:"required,max=5000"`
}

type MailMessage struct {
	To      []string
	ReplyTo string
	Subject string
	Body    string
}

// Response types
type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Message string            `json:"message"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

type CSRFTokenResponse struct {
	CSRFToken string `json:"csrfToken"`
}

type ReorderEventsRequest struct {
	Events []entities.Event `json:"events"`
}
