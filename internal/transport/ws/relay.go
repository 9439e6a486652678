package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"impostor/internal/domain"
)

// DefaultRelayChannel is the pub/sub channel room events travel on
const DefaultRelayChannel = "impostor:events"

// relayEnvelope is a GameEvent with its payload kept as raw JSON
type relayEnvelope struct {
	Type      domain.EventType `json:"type"`
	RoomCode  string           `json:"roomCode"`
	PlayerID  string           `json:"playerId,omitempty"`
	Payload   json.RawMessage  `json:"payload,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// RedisRelay shares room events between instances over Redis pub/sub so
// players of one room can be connected to different servers.
type RedisRelay struct {
	rdb     *redis.Client
	channel string
	logger  *slog.Logger
}

// NewRedisRelay creates a relay on DefaultRelayChannel
func NewRedisRelay(rdb *redis.Client, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{rdb: rdb, channel: DefaultRelayChannel, logger: logger}
}

// Publish sends one event to every subscribed instance
func (r *RedisRelay) Publish(ctx context.Context, event *domain.GameEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := r.rdb.Publish(ctx, r.channel, data).Err(); err != nil {
		return fmt.Errorf("redis publish: %w", err)
	}
	return nil
}

// Run subscribes to the channel and hands every event to deliver until ctx
// is cancelled.
func (r *RedisRelay) Run(ctx context.Context, deliver func(*domain.GameEvent)) error {
	sub := r.rdb.Subscribe(ctx, r.channel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("redis subscribe: %w", err)
	}
	r.logger.Info("relay subscribed", "channel", r.channel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var env relayEnvelope
			if err := json.Unmarshal([]byte(msg.Payload), &env); err != nil {
				r.logger.Warn("dropping malformed relay message", "error", err)
				continue
			}
			deliver(env.event())
		}
	}
}

func (e relayEnvelope) event() *domain.GameEvent {
	event := &domain.GameEvent{
		Type:      e.Type,
		RoomCode:  e.RoomCode,
		PlayerID:  e.PlayerID,
		Timestamp: e.Timestamp,
	}
	if len(e.Payload) > 0 {
		event.Payload = e.Payload
	}
	return event
}
