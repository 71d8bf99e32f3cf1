// Package repository provides data access layer implementations.
// Tests use testcontainers-go to spin up a PostgreSQL container.
package repository

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
)

// checkDockerAvailable checks if Docker is available and running
func checkDockerAvailable() bool {
	cmd := exec.Command("docker", "info")
	err := cmd.Run()
	return err == nil
}

// setupTestDB creates a PostgreSQL container and returns a connection pool.
// Skips the test if Docker is not available.
func setupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	if !checkDockerAvailable() {
		t.Skip("Docker is not available, skipping integration test")
	}

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err)

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	pool, err := pgxpool.New(ctx, connStr)
	require.NoError(t, err)

	err = Migrate(ctx, pool)
	require.NoError(t, err)

	cleanup := func() {
		pool.Close()
		_ = pgContainer.Terminate(ctx)
	}

	return pool, cleanup
}

func strPtr(s string) *string { return &s }

func createTestRoom(t *testing.T, repo *RoomRepository, name string) *model.Room {
	t.Helper()
	room, err := repo.Create(context.Background(), &model.Room{
		RoomName: name,
		RoomURL:  "http://example.com/" + name,
		Blinds:   "1/2",
		MinBuyin: "100",
		GameTime: "9pm",
	})
	require.NoError(t, err)
	return room
}

func TestRoomRepository_CreateDefaults(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(pool)
	ctx := context.Background()

	room, err := repo.Create(ctx, &model.Room{
		RoomName:    "A",
		RoomURL:     "http://x",
		Blinds:      "1/2",
		MinBuyin:    "100",
		GameTime:    "9pm",
		Description: nil,
	})
	require.NoError(t, err)

	// New rooms start active with an empty 10-seat table.
	assert.Equal(t, model.StatusActive, room.Status)
	assert.Equal(t, 0, room.CurrentPlayers)
	assert.Equal(t, model.DefaultMaxPlayers, room.MaxPlayers)
	assert.Nil(t, room.Description)
	assert.False(t, room.CreatedAt.IsZero())
}

func TestRoomRepository_GetByID(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(pool)
	ctx := context.Background()

	created := createTestRoom(t, repo, "lookup")

	room, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "lookup", room.RoomName)

	_, err = repo.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomRepository_ListActiveExcludesInactive(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(pool)
	ctx := context.Background()

	first := createTestRoom(t, repo, "first")
	second := createTestRoom(t, repo, "second")

	_, err := repo.UpdateField(ctx, second.ID, "status", strPtr(model.StatusInactive))
	require.NoError(t, err)

	rooms, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, rooms, 1)
	assert.Equal(t, first.ID, rooms[0].ID)

	all, err := repo.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestRoomRepository_UpdateField(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(pool)
	ctx := context.Background()

	room := createTestRoom(t, repo, "edit")

	updated, err := repo.UpdateField(ctx, room.ID, "blinds", strPtr("2/5"))
	require.NoError(t, err)
	assert.Equal(t, "2/5", updated.Blinds)

	// Nullable field cleared with a nil value.
	updated, err = repo.UpdateField(ctx, room.ID, "description", nil)
	require.NoError(t, err)
	assert.Nil(t, updated.Description)

	_, err = repo.UpdateField(ctx, room.ID, "id", strPtr("1"))
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = repo.UpdateField(ctx, 99999, "blinds", strPtr("2/5"))
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestRoomRepository_PlayerCounts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(pool)
	ctx := context.Background()

	room := createTestRoom(t, repo, "seats")

	updated, err := repo.SetCurrentPlayers(ctx, room.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, 10, updated.CurrentPlayers)

	// Above capacity is rejected.
	_, err = repo.SetCurrentPlayers(ctx, room.ID, 11)
	assert.Error(t, err)

	// Capacity can never drop below the seated count.
	_, err = repo.SetMaxPlayers(ctx, room.ID, 5)
	assert.Error(t, err)

	updated, err = repo.SetMaxPlayers(ctx, room.ID, 20)
	require.NoError(t, err)
	assert.Equal(t, 20, updated.MaxPlayers)

	_, err = repo.SetMaxPlayers(ctx, room.ID, 101)
	assert.Error(t, err)
}

func TestRoomRepository_BumpLegacyMaxPlayers(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(pool)
	ctx := context.Background()

	legacy := createTestRoom(t, repo, "legacy")
	modern := createTestRoom(t, repo, "modern")

	_, err := pool.Exec(ctx, `UPDATE rooms SET max_players = 9 WHERE id = $1`, legacy.ID)
	require.NoError(t, err)

	bumped, err := repo.BumpLegacyMaxPlayers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), bumped)

	got, err := repo.GetByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMaxPlayers, got.MaxPlayers)

	got, err = repo.GetByID(ctx, modern.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DefaultMaxPlayers, got.MaxPlayers)
}

func TestRoomRepository_Counts(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewRoomRepository(pool)
	ctx := context.Background()

	createTestRoom(t, repo, "one")
	second := createTestRoom(t, repo, "two")
	_, err := repo.UpdateField(ctx, second.ID, "status", strPtr(model.StatusInactive))
	require.NoError(t, err)

	total, active, err := repo.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, int64(1), active)
}

func TestUserRepository_UpsertAndGet(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewUserRepository(pool)
	ctx := context.Background()

	user, err := repo.Upsert(ctx, 12345, strPtr("alice"), strPtr("Alice"))
	require.NoError(t, err)
	assert.Equal(t, int64(12345), user.UserID)
	assert.Equal(t, 0, user.JoinCount)

	// Re-upsert refreshes the profile fields without resetting counters.
	user, err = repo.Upsert(ctx, 12345, strPtr("alice2"), nil)
	require.NoError(t, err)
	assert.Equal(t, "alice2", *user.Username)

	_, err = repo.GetByID(ctx, 99999)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserRepository_RecordJoin(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	roomRepo := NewRoomRepository(pool)
	userRepo := NewUserRepository(pool)
	ctx := context.Background()

	room := createTestRoom(t, roomRepo, "joinable")

	// First join creates the user row as part of the same transaction.
	err := userRepo.RecordJoin(ctx, room.ID, 555, strPtr("bob"), strPtr("Bob"))
	require.NoError(t, err)

	// Repeat joins are legal and stack up.
	err = userRepo.RecordJoin(ctx, room.ID, 555, strPtr("bob"), strPtr("Bob"))
	require.NoError(t, err)

	user, err := userRepo.GetByID(ctx, 555)
	require.NoError(t, err)
	assert.Equal(t, 2, user.JoinCount)
	assert.NotNil(t, user.LastPlayed)

	var joinRows int
	err = pool.QueryRow(ctx, `SELECT COUNT(*) FROM room_joins WHERE user_id = 555`).Scan(&joinRows)
	require.NoError(t, err)
	assert.Equal(t, 2, joinRows)
}

func TestBannerRepository_Ordering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewBannerRepository(pool)
	ctx := context.Background()

	// order_num 3, 1, 1: ties break by insertion order (id).
	b1, err := repo.Create(ctx, &model.Banner{ImageURL: "http://img/1", OrderNum: 3})
	require.NoError(t, err)
	b2, err := repo.Create(ctx, &model.Banner{ImageURL: "http://img/2", OrderNum: 1})
	require.NoError(t, err)
	b3, err := repo.Create(ctx, &model.Banner{ImageURL: "http://img/3", OrderNum: 1})
	require.NoError(t, err)

	banners, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, banners, 3)
	assert.Equal(t, b2.ID, banners[0].ID)
	assert.Equal(t, b3.ID, banners[1].ID)
	assert.Equal(t, b1.ID, banners[2].ID)
}

func TestBannerRepository_ToggleAndDelete(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewBannerRepository(pool)
	ctx := context.Background()

	banner, err := repo.Create(ctx, &model.Banner{ImageURL: "http://img/x"})
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, banner.Status)

	status, err := repo.ToggleStatus(ctx, banner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, status)

	active, err := repo.ListActive(ctx)
	require.NoError(t, err)
	assert.Empty(t, active)

	status, err = repo.ToggleStatus(ctx, banner.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, status)

	require.NoError(t, repo.Delete(ctx, banner.ID))
	assert.ErrorIs(t, repo.Delete(ctx, banner.ID), ErrBannerNotFound)
	_, err = repo.ToggleStatus(ctx, 99999)
	assert.ErrorIs(t, err, ErrBannerNotFound)
}

func TestCouponRepository_IssueCreatesMissingUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool)
	ctx := context.Background()

	coupon, err := repo.Issue(ctx, &model.Coupon{
		UserID:         777,
		CouponCode:     "TESTCODE01",
		Title:          "웰컴 쿠폰",
		Description:    "첫 방문 혜택",
		DiscountAmount: 1000,
	})
	require.NoError(t, err)
	assert.Equal(t, "TESTCODE01", coupon.CouponCode)
	assert.False(t, coupon.IsUsed)
	assert.Nil(t, coupon.ExpiresAt)

	// The target user row was created alongside the coupon.
	userRepo := NewUserRepository(pool)
	user, err := userRepo.GetByID(ctx, 777)
	require.NoError(t, err)
	assert.Equal(t, int64(777), user.UserID)
}

func TestCouponRepository_MarkUsedOnce(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool)
	ctx := context.Background()

	_, err := repo.Issue(ctx, &model.Coupon{
		UserID:         1,
		CouponCode:     "ONCE000001",
		Title:          "t",
		Description:    "d",
		DiscountAmount: 500,
	})
	require.NoError(t, err)

	usedAt := time.Now()
	coupon, err := repo.MarkUsed(ctx, "ONCE000001", usedAt)
	require.NoError(t, err)
	assert.True(t, coupon.IsUsed)
	require.NotNil(t, coupon.UsedAt)

	// Second redemption reports the used state, not a missing coupon.
	_, err = repo.MarkUsed(ctx, "ONCE000001", time.Now())
	assert.ErrorIs(t, err, ErrCouponUsed)

	_, err = repo.MarkUsed(ctx, "NOSUCHCODE", time.Now())
	assert.ErrorIs(t, err, ErrCouponNotFound)
}

func TestCouponRepository_ListByUser(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewCouponRepository(pool)
	ctx := context.Background()

	for _, code := range []string{"LISTCODE01", "LISTCODE02"} {
		_, err := repo.Issue(ctx, &model.Coupon{
			UserID: 42, CouponCode: code, Title: "t", Description: "d", DiscountAmount: 100,
		})
		require.NoError(t, err)
	}
	_, err := repo.Issue(ctx, &model.Coupon{
		UserID: 43, CouponCode: "OTHERUSER1", Title: "t", Description: "d", DiscountAmount: 100,
	})
	require.NoError(t, err)

	coupons, err := repo.ListByUser(ctx, 42)
	require.NoError(t, err)
	assert.Len(t, coupons, 2)
	for _, coupon := range coupons {
		assert.Equal(t, int64(42), coupon.UserID)
	}
}

func TestEventRepository_ToggleAndOrdering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	repo := NewEventRepository(pool)
	ctx := context.Background()

	low, err := repo.Create(ctx, &model.Event{Title: "일반 공지", Content: "내용"})
	require.NoError(t, err)

	high, err := repo.Create(ctx, &model.Event{Title: "중요 공지", Content: "내용"})
	require.NoError(t, err)
	_, err = pool.Exec(ctx, `UPDATE events SET priority = 5 WHERE id = $1`, high.ID)
	require.NoError(t, err)

	events, err := repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, high.ID, events[0].ID)

	status, err := repo.ToggleStatus(ctx, low.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusInactive, status)

	events, err = repo.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, high.ID, events[0].ID)

	require.NoError(t, repo.Delete(ctx, high.ID))
	assert.ErrorIs(t, repo.Delete(ctx, high.ID), ErrEventNotFound)
}
