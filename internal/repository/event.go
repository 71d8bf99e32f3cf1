package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
)

// ErrEventNotFound is returned when no event row exists for the given id.
var ErrEventNotFound = errors.New("event not found")

const eventColumns = `id, title, content, image_url, status, priority, created_at`

// EventRepository handles announcement event persistence.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository instance.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row pgx.Row) (*model.Event, error) {
	var event model.Event
	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Content,
		&event.ImageURL,
		&event.Status,
		&event.Priority,
		&event.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// Create inserts a new event with status active.
func (r *EventRepository) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	const query = `
		INSERT INTO events (title, content, image_url, priority, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING ` + eventColumns

	created, err := scanEvent(r.pool.QueryRow(ctx, query,
		event.Title,
		event.Content,
		event.ImageURL,
		event.Priority,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create event: %w", err)
	}
	return created, nil
}

// GetByID retrieves an event by id. Returns ErrEventNotFound if absent.
func (r *EventRepository) GetByID(ctx context.Context, id int64) (*model.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	event, err := scanEvent(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	return event, nil
}

func (r *EventRepository) list(ctx context.Context, query string, args ...any) ([]*model.Event, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list events: %w", err)
	}
	defer rows.Close()

	var events []*model.Event
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating events: %w", err)
	}
	return events, nil
}

// ListActive returns active events ordered by (priority desc, created_at desc).
func (r *EventRepository) ListActive(ctx context.Context) ([]*model.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events
		WHERE status = $1 ORDER BY priority DESC, created_at DESC`
	return r.list(ctx, query, model.StatusActive)
}

// ListAll returns every event regardless of status, same ordering.
func (r *EventRepository) ListAll(ctx context.Context) ([]*model.Event, error) {
	const query = `SELECT ` + eventColumns + ` FROM events
		ORDER BY priority DESC, created_at DESC`
	return r.list(ctx, query)
}

// ToggleStatus flips an event between active and inactive, returning the new
// status.
func (r *EventRepository) ToggleStatus(ctx context.Context, id int64) (string, error) {
	const query = `
		UPDATE events
		SET status = CASE WHEN status = $2 THEN $3 ELSE $2 END
		WHERE id = $1
		RETURNING status
	`

	var status string
	err := r.pool.QueryRow(ctx, query, id, model.StatusActive, model.StatusInactive).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrEventNotFound
		}
		return "", fmt.Errorf("failed to toggle event status: %w", err)
	}
	return status, nil
}

// Delete removes an event.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete event: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}
