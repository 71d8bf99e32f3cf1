package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// migrations is the ordered schema DDL. Statements are idempotent so the
// whole list reruns safely on every startup.
var migrations = []struct {
	name string
	sql  string
}{
	{
		name: "rooms table",
		sql: `
			CREATE TABLE IF NOT EXISTS rooms (
				id BIGSERIAL PRIMARY KEY,
				room_name VARCHAR(100) NOT NULL,
				room_url TEXT NOT NULL,
				blinds VARCHAR(50) NOT NULL,
				min_buyin VARCHAR(50) NOT NULL,
				game_time VARCHAR(50) NOT NULL,
				description TEXT,
				contact_telegram VARCHAR(100),
				status VARCHAR(20) NOT NULL DEFAULT 'active',
				current_players INT NOT NULL DEFAULT 0,
				max_players INT NOT NULL DEFAULT 10,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CHECK (current_players >= 0 AND current_players <= max_players)
			);
		`,
	},
	{
		name: "users table",
		sql: `
			CREATE TABLE IF NOT EXISTS users (
				user_id BIGINT PRIMARY KEY,
				username VARCHAR(100),
				first_name VARCHAR(100),
				join_count INT NOT NULL DEFAULT 0,
				total_playtime INT NOT NULL DEFAULT 0,
				last_played TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
		`,
	},
	{
		name: "room_joins table",
		sql: `
			CREATE TABLE IF NOT EXISTS room_joins (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(user_id),
				room_id BIGINT NOT NULL REFERENCES rooms(id) ON DELETE CASCADE,
				joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_room_joins_user ON room_joins(user_id, joined_at DESC);
		`,
	},
	{
		name: "banners table",
		sql: `
			CREATE TABLE IF NOT EXISTS banners (
				id BIGSERIAL PRIMARY KEY,
				image_url TEXT NOT NULL,
				title VARCHAR(200),
				description TEXT,
				link_url TEXT,
				order_num INT NOT NULL DEFAULT 0,
				status VARCHAR(20) NOT NULL DEFAULT 'active',
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_banners_order ON banners(status, order_num, id);
		`,
	},
	{
		name: "coupons table",
		sql: `
			CREATE TABLE IF NOT EXISTS coupons (
				id BIGSERIAL PRIMARY KEY,
				user_id BIGINT NOT NULL REFERENCES users(user_id),
				coupon_code VARCHAR(10) NOT NULL UNIQUE,
				title VARCHAR(200) NOT NULL,
				description TEXT NOT NULL,
				discount_amount INT NOT NULL,
				expires_at TIMESTAMPTZ,
				is_used BOOLEAN NOT NULL DEFAULT FALSE,
				used_at TIMESTAMPTZ,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_coupons_user ON coupons(user_id, created_at DESC);
		`,
	},
	{
		name: "events table",
		sql: `
			CREATE TABLE IF NOT EXISTS events (
				id BIGSERIAL PRIMARY KEY,
				title VARCHAR(200) NOT NULL,
				content TEXT NOT NULL,
				image_url TEXT,
				status VARCHAR(20) NOT NULL DEFAULT 'active',
				priority INT NOT NULL DEFAULT 0,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
			);
			CREATE INDEX IF NOT EXISTS idx_events_order ON events(status, priority DESC, created_at DESC);
		`,
	},
}

// Migrate applies the schema. Called from main on startup and from the
// integration tests against their container database.
func Migrate(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range migrations {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("migration %q failed: %w", m.name, err)
		}
		log.Debug().Str("migration", m.name).Msg("Migration applied")
	}
	return nil
}
