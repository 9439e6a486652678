package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"impostor/internal/app"
	"impostor/internal/domain"
)

// Relay fans room events out to every server instance. Events published
// through it come back to each instance via the deliver callback of Run.
type Relay interface {
	Publish(ctx context.Context, event *domain.GameEvent) error
	Run(ctx context.Context, deliver func(*domain.GameEvent)) error
}

// Stats is a point-in-time view of this instance's connections
type Stats struct {
	Rooms       int `json:"rooms"`
	Connections int `json:"connections"`
}

// Hub tracks which connections are subscribed to which room and delivers
// room events to them.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]map[*Client]struct{}
	clients map[string]*Client
	relay   Relay
	logger  *slog.Logger
}

// NewHub creates a hub that delivers events locally
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		rooms:   make(map[string]map[*Client]struct{}),
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// UseRelay routes published events through r. The caller must also run
// r.Run(ctx, hub.Deliver) so events come back to this instance.
func (h *Hub) UseRelay(r Relay) {
	h.mu.Lock()
	h.relay = r
	h.mu.Unlock()
}

// Register records an open connection
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c.id] = c
	h.mu.Unlock()
}

// Unregister forgets a connection and all its room subscriptions
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[c.id] == c {
		delete(h.clients, c.id)
	}
	for code, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
}

// Subscribe adds c to a room's audience
func (h *Hub) Subscribe(code string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	members, ok := h.rooms[code]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[code] = members
	}
	members[c] = struct{}{}
}

// Unsubscribe removes c from a room's audience
func (h *Hub) Unsubscribe(code string, c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if members, ok := h.rooms[code]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, code)
		}
	}
}

// Commit hands a committed command outcome to its audience. The connection
// the command attached a player to is bound to that seat first, so it
// receives the outcome's private events. The coordinator calls this while
// the room is still locked, which keeps each room's events in commit order.
func (h *Hub) Commit(ctx context.Context, out *app.Outcome) {
	if p := out.Player; p != nil && p.Connected && p.ConnID != "" {
		h.mu.RLock()
		c := h.clients[p.ConnID]
		h.mu.RUnlock()
		if c != nil {
			c.bind(out.Room.Code, p.Token, p.ID)
		}
	}
	h.Publish(ctx, out.Events)
}

// Publish sends events in order, through the relay when one is set
func (h *Hub) Publish(ctx context.Context, events []*domain.GameEvent) {
	h.mu.RLock()
	relay := h.relay
	h.mu.RUnlock()

	for _, event := range events {
		if relay == nil {
			h.Deliver(event)
			continue
		}
		if err := relay.Publish(ctx, event); err != nil {
			h.logger.Error("relay publish failed, delivering locally", "roomCode", event.RoomCode, "type", event.Type, "error", err)
			h.Deliver(event)
		}
	}
}

// Deliver sends an event to the local subscribers of its room. A private
// event only reaches connections bound to its player.
func (h *Hub) Deliver(event *domain.GameEvent) {
	data, err := json.Marshal(NewEventMessage(event))
	if err != nil {
		h.logger.Error("failed to encode event", "type", event.Type, "error", err)
		return
	}

	h.mu.RLock()
	targets := make([]*Client, 0, len(h.rooms[event.RoomCode]))
	for c := range h.rooms[event.RoomCode] {
		if event.IsPrivate() && c.PlayerID() != event.PlayerID {
			continue
		}
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	for _, c := range targets {
		c.sendRaw(data)
	}

	if event.Type == domain.EventRoomEnded {
		h.closeRoom(event.RoomCode)
	}
}

// closeRoom detaches every local subscriber from an ended room
func (h *Hub) closeRoom(code string) {
	h.mu.Lock()
	members := h.rooms[code]
	delete(h.rooms, code)
	h.mu.Unlock()

	for c := range members {
		c.unbind(code)
	}
	h.logger.Info("room closed", "roomCode", code, "subscribers", len(members))
}

// Stats returns the current subscription counts
func (h *Hub) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return Stats{Rooms: len(h.rooms), Connections: len(h.clients)}
}

// Close shuts every registered connection
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for _, c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
}
