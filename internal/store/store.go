// Package store persists room snapshots between commands.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"impostor/internal/domain"
)

// RoomStore keeps the canonical room state keyed by room code.
// Load returns domain.ErrRoomNotFound for unknown or expired codes.
type RoomStore interface {
	Load(ctx context.Context, code string) (*domain.Room, error)
	Save(ctx context.Context, room *domain.Room, ttl time.Duration) error
	Delete(ctx context.Context, code string) error
	Exists(ctx context.Context, code string) (bool, error)

	// Create stores room only if no live room holds its code
	Create(ctx context.Context, room *domain.Room, ttl time.Duration) (bool, error)

	// Lock holds code exclusively for every process sharing the store until
	// the returned unlock is called.
	Lock(ctx context.Context, code string) (unlock func(), err error)
}

func encode(room *domain.Room) ([]byte, error) {
	data, err := json.Marshal(room)
	if err != nil {
		return nil, fmt.Errorf("encode room %s: %w", room.Code, err)
	}
	return data, nil
}

func decode(code string, data []byte) (*domain.Room, error) {
	var room domain.Room
	if err := json.Unmarshal(data, &room); err != nil {
		return nil, fmt.Errorf("decode room %s: %w", code, err)
	}
	return &room, nil
}
