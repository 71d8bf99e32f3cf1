// Package model defines the data models shared by the bot and the mini-app API.
package model

import "time"

// Entity status values. Inactive entries stay in the database but are
// hidden from every list endpoint.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Default player counts for newly created rooms.
const (
	DefaultMaxPlayers = 10
	// LegacyMaxPlayers is the old room default; rooms still carrying it
	// are bumped to DefaultMaxPlayers by a startup migration.
	LegacyMaxPlayers = 9
)

// Room represents a listed externally-hosted poker table.
type Room struct {
	ID             int64     `db:"id"`
	RoomName       string    `db:"room_name"`
	RoomURL        string    `db:"room_url"`
	Blinds         string    `db:"blinds"`
	MinBuyin       string    `db:"min_buyin"`
	GameTime       string    `db:"game_time"`
	Description    *string   `db:"description"`
	ContactTG      *string   `db:"contact_telegram"`
	Status         string    `db:"status"`
	CurrentPlayers int       `db:"current_players"`
	MaxPlayers     int       `db:"max_players"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

// User represents a Telegram user with play statistics.
// UserID is the external Telegram identity, never auto-generated.
type User struct {
	UserID        int64      `db:"user_id"`
	Username      *string    `db:"username"`
	FirstName     *string    `db:"first_name"`
	JoinCount     int        `db:"join_count"`
	TotalPlaytime int        `db:"total_playtime"`
	LastPlayed    *time.Time `db:"last_played"`
	CreatedAt     time.Time  `db:"created_at"`
}

// RoomJoin is one row of the append-only join log. Repeated joins by the
// same user are legal and produce one row each.
type RoomJoin struct {
	ID       int64     `db:"id"`
	UserID   int64     `db:"user_id"`
	RoomID   int64     `db:"room_id"`
	JoinedAt time.Time `db:"joined_at"`
}

// Banner is a promotional image shown in the mini-app, sorted by
// (order_num asc, id asc).
type Banner struct {
	ID          int64     `db:"id"`
	ImageURL    string    `db:"image_url"`
	Title       *string   `db:"title"`
	Description *string   `db:"description"`
	LinkURL     *string   `db:"link_url"`
	OrderNum    int       `db:"order_num"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

// Coupon is a single-use discount token tied to one user.
// A nil ExpiresAt means the coupon never expires.
type Coupon struct {
	ID             int64      `db:"id"`
	UserID         int64      `db:"user_id"`
	CouponCode     string     `db:"coupon_code"`
	Title          string     `db:"title"`
	Description    string     `db:"description"`
	DiscountAmount int        `db:"discount_amount"`
	ExpiresAt      *time.Time `db:"expires_at"`
	IsUsed         bool       `db:"is_used"`
	UsedAt         *time.Time `db:"used_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// Event is an announcement post, sorted by (priority desc, created_at desc).
type Event struct {
	ID        int64     `db:"id"`
	Title     string    `db:"title"`
	Content   string    `db:"content"`
	ImageURL  *string   `db:"image_url"`
	Status    string    `db:"status"`
	Priority  int       `db:"priority"`
	CreatedAt time.Time `db:"created_at"`
}
