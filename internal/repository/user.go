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

// ErrUserNotFound is returned when no user row exists for the given id.
var ErrUserNotFound = errors.New("user not found")

const userColumns = `user_id, username, first_name, join_count,
	total_playtime, last_played, created_at`

// UserRepository handles user data persistence. Users are keyed by their
// Telegram id and created lazily on first contact.
type UserRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.UserID,
		&user.Username,
		&user.FirstName,
		&user.JoinCount,
		&user.TotalPlaytime,
		&user.LastPlayed,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetByID retrieves a user by Telegram id.
// Returns ErrUserNotFound if the user does not exist.
func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE user_id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// Upsert creates the user row on first /start and refreshes username and
// first_name on every later one.
func (r *UserRepository) Upsert(ctx context.Context, userID int64, username, firstName *string) (*model.User, error) {
	const query = `
		INSERT INTO users (user_id, username, first_name, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username, first_name = EXCLUDED.first_name
		RETURNING ` + userColumns

	user, err := scanUser(r.pool.QueryRow(ctx, query, userID, username, firstName))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert user: %w", err)
	}
	return user, nil
}

// RecordJoin records one room join as a single logical write: the user row
// is created if missing, join_count is incremented, last_played stamped, and
// one append-only room_joins row inserted.
func (r *UserRepository) RecordJoin(ctx context.Context, roomID, userID int64, username, firstName *string) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			INSERT INTO users (user_id, username, first_name, created_at)
			VALUES ($1, $2, $3, NOW())
			ON CONFLICT (user_id) DO NOTHING
		`, userID, username, firstName)
		if err != nil {
			return fmt.Errorf("failed to ensure user: %w", err)
		}

		_, err = tx.Exec(ctx, `
			UPDATE users SET join_count = join_count + 1, last_played = NOW()
			WHERE user_id = $1
		`, userID)
		if err != nil {
			return fmt.Errorf("failed to bump join count: %w", err)
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO room_joins (user_id, room_id, joined_at)
			VALUES ($1, $2, NOW())
		`, userID, roomID)
		if err != nil {
			return fmt.Errorf("failed to append room join: %w", err)
		}
		return nil
	})
}

// Count returns the total number of registered users.
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}
