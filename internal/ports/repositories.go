package ports

import (
	"context"

	"github.com/biofert/core/internal/domain/entities"
)

// ContentRepository defines read access to the site content document
type ContentRepository interface {
	Company() entities.Company
	Products() []entities.Product
	Clientele() []entities.Testimonial
	Timeline() []entities.TimelineEntry
	ProcessSteps() []entities.ProcessStep
	BenefitsPage() entities.BenefitsPage
	CertificationsPage() entities.CertificationsPage
	Loaded() bool
}

// EventRepository defines the interface for event data operations.
// Every mutation is atomic with respect to the others.
type EventRepository interface {
	List(ctx context.Context) ([]entities.Event, error)
	// Create inserts event at the front of the display order.
	Create(ctx context.Context, event entities.Event) error
	Update(ctx context.Context, id int64, patch entities.EventPatch) (*entities.Event, error)
	// Delete removes the event and reports whether it existed.
	Delete(ctx context.Context, id int64) (bool, error)
	// Reorder applies the order of ids, which must be a permutation of
	// the stored ids.
	Reorder(ctx context.Context, ids []int64) ([]entities.Event, error)
	ReplaceAll(ctx context.Context, events []entities.Event) error
}

// ImageHost stores uploaded assets and returns their public URL
type ImageHost interface {
	Upload(ctx context.Context, asset Asset) (string, error)
}

// Mailer dispatches outbound email
type Mailer interface {
	Send(ctx context.Context, msg MailMessage) error
}
