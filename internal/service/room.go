// Package service provides business logic implementations.
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/model"
	"github.com/royalswap114-cloud/poker-miniapp-bot/internal/repository"
)

// RoomService handles poker room operations shared by the admin flows and
// the mini-app API.
type RoomService struct {
	roomRepo *repository.RoomRepository
	userRepo *repository.UserRepository
}

// NewRoomService creates a new RoomService instance.
func NewRoomService(roomRepo *repository.RoomRepository, userRepo *repository.UserRepository) *RoomService {
	return &RoomService{roomRepo: roomRepo, userRepo: userRepo}
}

// Create persists a fully collected room draft. Status and player counts
// take their defaults (active, 0/10).
func (s *RoomService) Create(ctx context.Context, room *model.Room) (*model.Room, error) {
	created, err := s.roomRepo.Create(ctx, room)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("room_id", created.ID).
		Str("room_name", created.RoomName).
		Msg("Room created")
	return created, nil
}

// GetByID fetches a single room.
func (s *RoomService) GetByID(ctx context.Context, id int64) (*model.Room, error) {
	return s.roomRepo.GetByID(ctx, id)
}

// ListAll returns every room regardless of status, for the admin menus.
func (s *RoomService) ListAll(ctx context.Context) ([]*model.Room, error) {
	return s.roomRepo.ListAll(ctx)
}

// EditField commits a single-field update immediately, never batched with
// other fields.
func (s *RoomService) EditField(ctx context.Context, id int64, field string, value *string) (*model.Room, error) {
	room, err := s.roomRepo.UpdateField(ctx, id, field, value)
	if err != nil {
		return nil, err
	}

	log.Info().
		Int64("room_id", id).
		Str("field", field).
		Msg("Room field updated")
	return room, nil
}

// SetCurrentPlayers updates the live player count for a room.
func (s *RoomService) SetCurrentPlayers(ctx context.Context, id int64, count int) (*model.Room, error) {
	return s.roomRepo.SetCurrentPlayers(ctx, id, count)
}

// SetMaxPlayers updates the seat limit for a room.
func (s *RoomService) SetMaxPlayers(ctx context.Context, id int64, max int) (*model.Room, error) {
	return s.roomRepo.SetMaxPlayers(ctx, id, max)
}

// Delete removes a room and its join log.
func (s *RoomService) Delete(ctx context.Context, id int64) error {
	if err := s.roomRepo.Delete(ctx, id); err != nil {
		return err
	}
	log.Info().Int64("room_id", id).Msg("Room deleted")
	return nil
}

// Join records a mini-app room join: the user row is created if missing,
// join_count incremented and one join log row appended, all in one write.
// Returns ErrRoomNotFound when the room does not exist.
func (s *RoomService) Join(ctx context.Context, roomID, userID int64, username, firstName *string) error {
	if _, err := s.roomRepo.GetByID(ctx, roomID); err != nil {
		return err
	}
	if err := s.userRepo.RecordJoin(ctx, roomID, userID, username, firstName); err != nil {
		return fmt.Errorf("failed to record join: %w", err)
	}

	log.Info().
		Int64("room_id", roomID).
		Int64("user_id", userID).
		Msg("Room join recorded")
	return nil
}

// Stats is the admin overview counters.
type Stats struct {
	TotalRooms  int64
	ActiveRooms int64
	TotalUsers  int64
}

// Stats returns the counters shown by the admin stats view.
func (s *RoomService) Stats(ctx context.Context) (*Stats, error) {
	total, active, err := s.roomRepo.Counts(ctx)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{TotalRooms: total, ActiveRooms: active, TotalUsers: users}, nil
}
