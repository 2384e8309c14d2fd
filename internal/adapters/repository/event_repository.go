package repository

import (
	"context"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/ports"
)

// FileEventRepository implements the EventRepository interface on top of
// the content document
type FileEventRepository struct {
	store *ContentStore
}

// NewFileEventRepository creates a new file-backed event repository
func NewFileEventRepository(store *ContentStore) ports.EventRepository {
	return &FileEventRepository{store: store}
}

func (r *FileEventRepository) List(ctx context.Context) ([]entities.Event, error) {
	return r.store.Events(), nil
}

func (r *FileEventRepository) Create(ctx context.Context, event entities.Event) error {
	return r.store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		for _, e := range events {
			if e.ID == event.ID {
				return nil, entities.ErrDuplicateEvent
			}
		}
		return append([]entities.Event{event}, events...), nil
	})
}

func (r *FileEventRepository) Update(ctx context.Context, id int64, patch entities.EventPatch) (*entities.Event, error) {
	var updated entities.Event
	err := r.store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		for i, e := range events {
			if e.ID == id {
				events[i] = patch.Apply(e)
				updated = events[i]
				if patch.IsEmpty() {
					return nil, errNoChange
				}
				return events, nil
			}
		}
		return nil, entities.ErrEventNotFound
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func (r *FileEventRepository) Delete(ctx context.Context, id int64) (bool, error) {
	existed := false
	err := r.store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		kept := events[:0]
		for _, e := range events {
			if e.ID == id {
				existed = true
				continue
			}
			kept = append(kept, e)
		}
		if !existed {
			return nil, errNoChange
		}
		return kept, nil
	})
	if err != nil {
		return false, err
	}

	return existed, nil
}

func (r *FileEventRepository) Reorder(ctx context.Context, ids []int64) ([]entities.Event, error) {
	var ordered []entities.Event
	err := r.store.MutateEvents(func(events []entities.Event) ([]entities.Event, error) {
		next, err := entities.ReorderByIDs(events, ids)
		if err != nil {
			return nil, err
		}
		ordered = next
		return next, nil
	})
	if err != nil {
		return nil, err
	}

	return entities.CloneEvents(ordered), nil
}

func (r *FileEventRepository) ReplaceAll(ctx context.Context, events []entities.Event) error {
	return r.store.MutateEvents(func([]entities.Event) ([]entities.Event, error) {
		return entities.CloneEvents(events), nil
	})
}
