package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/biofert/core/internal/domain/entities"
	"github.com/biofert/core/internal/infrastructure/database"
	"github.com/biofert/core/internal/ports"
)

// SQLEventRepository implements the EventRepository interface on a SQL
// database. Display order is kept in the position column. Mutations hold
// the events advisory lock, so a create never races another create for the
// front position and a reorder never drops a concurrent insert.
type SQLEventRepository struct {
	db *database.DB
}

// NewSQLEventRepository creates a new SQL event repository
func NewSQLEventRepository(db *database.DB) ports.EventRepository {
	return &SQLEventRepository{db: db}
}

const eventColumns = `id, title, date, location, image, description`

func (r *SQLEventRepository) List(ctx context.Context) ([]entities.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY position ASC, id DESC`

	events := []entities.Event{}
	if err := r.db.DB.SelectContext(ctx, &events, query); err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}

	return events, nil
}

func (r *SQLEventRepository) Create(ctx context.Context, event entities.Event) error {
	return r.db.InLockedTx(ctx, database.LockEvents, func(tx *sqlx.Tx) error {
		var count int
		if err := tx.GetContext(ctx, &count, tx.Rebind(`SELECT COUNT(*) FROM events WHERE id = ?`), event.ID); err != nil {
			return fmt.Errorf("check event id: %w", err)
		}
		if count > 0 {
			return entities.ErrDuplicateEvent
		}

		var minPosition int64
		if err := tx.GetContext(ctx, &minPosition, `SELECT COALESCE(MIN(position), 0) FROM events`); err != nil {
			return fmt.Errorf("read first position: %w", err)
		}

		query := tx.Rebind(`
			INSERT INTO events (id, position, title, date, location, image, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		_, err := tx.ExecContext(ctx, query,
			event.ID, minPosition-1, event.Title, event.Date,
			event.Location, event.Image, event.Description,
		)
		if err != nil {
			return fmt.Errorf("create event: %w", err)
		}

		return nil
	})
}

// Update writes only the columns present in patch, so concurrent patches of
// different fields of the same event both survive.
func (r *SQLEventRepository) Update(ctx context.Context, id int64, patch entities.EventPatch) (*entities.Event, error) {
	var updated entities.Event
	err := r.db.InLockedTx(ctx, database.LockEvents, func(tx *sqlx.Tx) error {
		if !patch.IsEmpty() {
			sets, args := patchAssignments(patch)
			query := tx.Rebind(`UPDATE events SET ` + strings.Join(sets, ", ") + `, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
			res, err := tx.ExecContext(ctx, query, append(args, id)...)
			if err != nil {
				return fmt.Errorf("update event: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("update event: %w", err)
			}
			if affected == 0 {
				return entities.ErrEventNotFound
			}
		}

		query := tx.Rebind(`SELECT ` + eventColumns + ` FROM events WHERE id = ?`)
		if err := tx.GetContext(ctx, &updated, query, id); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return entities.ErrEventNotFound
			}
			return fmt.Errorf("get event by id: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &updated, nil
}

func patchAssignments(patch entities.EventPatch) ([]string, []interface{}) {
	var (
		sets []string
		args []interface{}
	)
	for _, col := range []struct {
		name  string
		value *string
	}{
		{"title", patch.Title},
		{"date", patch.Date},
		{"location", patch.Location},
		{"image", patch.Image},
		{"description", patch.Description},
	} {
		if col.value != nil {
			sets = append(sets, col.name+" = ?")
			args = append(args, *col.value)
		}
	}
	return sets, args
}

func (r *SQLEventRepository) Delete(ctx context.Context, id int64) (bool, error) {
	existed := false
	err := r.db.InLockedTx(ctx, database.LockEvents, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM events WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete event: %w", err)
		}
		existed = affected > 0
		return nil
	})
	if err != nil {
		return false, err
	}

	return existed, nil
}

func (r *SQLEventRepository) Reorder(ctx context.Context, ids []int64) ([]entities.Event, error) {
	var ordered []entities.Event
	err := r.db.InLockedTx(ctx, database.LockEvents, func(tx *sqlx.Tx) error {
		current := []entities.Event{}
		query := `SELECT ` + eventColumns + ` FROM events ORDER BY position ASC, id DESC`
		if err := tx.SelectContext(ctx, &current, query); err != nil {
			return fmt.Errorf("list events: %w", err)
		}

		next, err := entities.ReorderByIDs(current, ids)
		if err != nil {
			return err
		}

		update := tx.Rebind(`UPDATE events SET position = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`)
		for i, e := range next {
			if _, err := tx.ExecContext(ctx, update, i, e.ID); err != nil {
				return fmt.Errorf("update event position: %w", err)
			}
		}

		ordered = next
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ordered, nil
}

func (r *SQLEventRepository) ReplaceAll(ctx context.Context, events []entities.Event) error {
	return r.db.InLockedTx(ctx, database.LockEvents, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM events`); err != nil {
			return fmt.Errorf("clear events: %w", err)
		}

		insert := tx.Rebind(`
			INSERT INTO events (id, position, title, date, location, image, description)
			VALUES (?, ?, ?, ?, ?, ?, ?)`)
		for i, e := range events {
			_, err := tx.ExecContext(ctx, insert,
				e.ID, i, e.Title, e.Date, e.Location, e.Image, e.Description,
			)
			if err != nil {
				return fmt.Errorf("insert event %d: %w", e.ID, err)
			}
		}

		return nil
	})
}
