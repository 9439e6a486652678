package ws

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"impostor/internal/domain"
)

func TestErrorCode(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrRoomNotFound, ErrCodeRoomNotFound},
		{domain.ErrNotYourTurn, ErrCodeNotYourTurn},
		{domain.ErrInvalidTargetDuringTie, ErrCodeInvalidTargetDuringTie},
		{domain.ErrManualMode, ErrCodeManualMode},
		{fmt.Errorf("load: %w", domain.ErrPlayerNotFound), ErrCodePlayerNotFound},
		{errors.New("redis: connection refused"), ErrCodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorCode(tt.err))
		})
	}
}

func TestNewEventMessage(t *testing.T) {
	event := &domain.GameEvent{
		Type:      domain.EventTurnChanged,
		RoomCode:  "ABCD",
		Payload:   &domain.TurnChangedPayload{CurrentPlayerID: "p2"},
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
	}

	msg := NewEventMessage(event)

	assert.Equal(t, MessageType("turnChanged"), msg.Type)
	assert.Equal(t, "ABCD", msg.RoomCode)
	assert.Equal(t, "2026-01-01T12:00:00Z", msg.Timestamp)
	assert.Equal(t, event.Payload, msg.Payload)
}
