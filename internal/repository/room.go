// Package repository provides data access layer implementations.
package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/pkg/db"
)

// Common errors for repository operations.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrUnknownField = errors.New("unknown room field")
)

const roomColumns = `id, room_name, room_url, blinds, min_buyin, game_time,
	description, contact_telegram, status, current_players, max_players,
	created_at, updated_at`

// RoomRepository handles poker room persistence.
type RoomRepository struct {
	pool *pgxpool.Pool
}

// NewRoomRepository creates a new RoomRepository instance.
func NewRoomRepository(pool *pgxpool.Pool) *RoomRepository {
	return &RoomRepository{pool: pool}
}

func scanRoom(row pgx.Row) (*model.Room, error) {
	var room model.Room
	err := row.Scan(
		&room.ID,
		&room.RoomName,
		&room.RoomURL,
		&room.Blinds,
		&room.MinBuyin,
		&room.GameTime,
		&room.Description,
		&room.ContactTG,
		&room.Status,
		&room.CurrentPlayers,
		&room.MaxPlayers,
		&room.CreatedAt,
		&room.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// Create inserts a new room. Status, player counts and timestamps take their
// defaults; the returned room carries the generated id.
func (r *RoomRepository) Create(ctx context.Context, room *model.Room) (*model.Room, error) {
	const query = `
		INSERT INTO rooms (room_name, room_url, blinds, min_buyin, game_time,
			description, contact_telegram, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + roomColumns

	created, err := scanRoom(r.pool.QueryRow(ctx, query,
		room.RoomName,
		room.RoomURL,
		room.Blinds,
		room.MinBuyin,
		room.GameTime,
		room.Description,
		room.ContactTG,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create room: %w", err)
	}
	return created, nil
}

// GetByID retrieves a room by id. Returns ErrRoomNotFound if absent.
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`

	room, err := scanRoom(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to get room: %w", err)
	}
	return room, nil
}

func (r *RoomRepository) list(ctx context.Context, query string, args ...any) ([]*model.Room, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []*model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan room: %w", err)
		}
		rooms = append(rooms, room)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rooms: %w", err)
	}
	return rooms, nil
}

// ListActive returns active rooms ordered by id ascending.
func (r *RoomRepository) ListActive(ctx context.Context) ([]*model.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM rooms WHERE status = $1 ORDER BY id ASC`
	return r.list(ctx, query, model.StatusActive)
}

// ListAll returns every room regardless of status, ordered by id ascending.
// Used by the admin edit and delete menus.
func (r *RoomRepository) ListAll(ctx context.Context) ([]*model.Room, error) {
	const query = `SELECT ` + roomColumns + ` FROM rooms ORDER BY id ASC`
	return r.list(ctx, query)
}

// editableFields maps admin-editable field names to their columns. Values
// never reach the SQL text; this only guards column selection.
var editableFields = map[string]string{
	"room_name":        "room_name",
	"room_url":         "room_url",
	"blinds":           "blinds",
	"min_buyin":        "min_buyin",
	"game_time":        "game_time",
	"description":      "description",
	"contact_telegram": "contact_telegram",
	"status":           "status",
}

// UpdateField sets a single text field on a room. The admin edit flow
// commits one field at a time.
func (r *RoomRepository) UpdateField(ctx context.Context, id int64, field string, value *string) (*model.Room, error) {
	column, ok := editableFields[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	query := `UPDATE rooms SET ` + column + ` = $2, updated_at = NOW()
		WHERE id = $1 RETURNING ` + roomColumns

	room, err := scanRoom(r.pool.QueryRow(ctx, query, id, value))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRoomNotFound
		}
		return nil, fmt.Errorf("failed to update room field %s: %w", field, err)
	}
	return room, nil
}

// SetCurrentPlayers updates the live player count. The room is re-read
// inside the transaction so the 0 <= current <= max invariant holds against
// a concurrent max_players change.
func (r *RoomRepository) SetCurrentPlayers(ctx context.Context, id int64, count int) (*model.Room, error) {
	var updated *model.Room
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var maxPlayers int
		err := tx.QueryRow(ctx, `SELECT max_players FROM rooms WHERE id = $1 FOR UPDATE`, id).
			Scan(&maxPlayers)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if count < 0 || count > maxPlayers {
			return fmt.Errorf("current players %d out of range 0..%d", count, maxPlayers)
		}

		updated, err = scanRoom(tx.QueryRow(ctx,
			`UPDATE rooms SET current_players = $2, updated_at = NOW()
			 WHERE id = $1 RETURNING `+roomColumns, id, count))
		if err != nil {
			return fmt.Errorf("failed to set current players: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SetMaxPlayers updates a room's seat limit. Range checks (1..100, and not
// below the current player count) are done here so every caller agrees.
func (r *RoomRepository) SetMaxPlayers(ctx context.Context, id int64, max int) (*model.Room, error) {
	var updated *model.Room
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		var current int
		err := tx.QueryRow(ctx, `SELECT current_players FROM rooms WHERE id = $1 FOR UPDATE`, id).
			Scan(&current)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrRoomNotFound
			}
			return fmt.Errorf("failed to lock room: %w", err)
		}

		if max < 1 || max > 100 {
			return fmt.Errorf("max players %d out of range 1..100", max)
		}
		if max < current {
			return fmt.Errorf("max players %d below current player count %d", max, current)
		}

		updated, err = scanRoom(tx.QueryRow(ctx,
			`UPDATE rooms SET max_players = $2, updated_at = NOW()
			 WHERE id = $1 RETURNING `+roomColumns, id, max))
		if err != nil {
			return fmt.Errorf("failed to set max players: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes a room. Its join log rows go with it via ON DELETE CASCADE.
func (r *RoomRepository) Delete(ctx context.Context, id int64) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM rooms WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete room: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrRoomNotFound
	}
	return nil
}

// Counts returns the total and active room counts for the admin stats view.
func (r *RoomRepository) Counts(ctx context.Context) (total, active int64, err error) {
	const query = `
		SELECT COUNT(*), COUNT(*) FILTER (WHERE status = $1)
		FROM rooms
	`
	if err := r.pool.QueryRow(ctx, query, model.StatusActive).Scan(&total, &active); err != nil {
		return 0, 0, fmt.Errorf("failed to count rooms: %w", err)
	}
	return total, active, nil
}

// BumpLegacyMaxPlayers raises rooms still at the old default seat limit (9)
// to the current default (10). Returns the number of rooms updated.
func (r *RoomRepository) BumpLegacyMaxPlayers(ctx context.Context) (int64, error) {
	result, err := r.pool.Exec(ctx,
		`UPDATE rooms SET max_players = $1, updated_at = NOW() WHERE max_players = $2`,
		model.DefaultMaxPlayers, model.LegacyMaxPlayers)
	if err != nil {
		return 0, fmt.Errorf("failed to bump legacy max players: %w", err)
	}
	return result.RowsAffected(), nil
}
