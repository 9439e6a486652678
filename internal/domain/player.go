package domain

import "time"

// Player represents a seat in a room. ID and Token never change for the
// room's lifetime; ConnID changes on every reconnect.
type Player struct {
	ID             string     `json:"id"`
	Token          string     `json:"token"`
	ConnID         string     `json:"connId,omitempty"`
	Name           string     `json:"name"`
	IsHost         bool       `json:"isHost"`
	IsImpostor     bool       `json:"isImpostor"`
	Topic          *string    `json:"topic"`
	Alive          bool       `json:"alive"`
	Connected      bool       `json:"connected"`
	DisconnectedAt *time.Time `json:"disconnectedAt"`
	JoinedAt       time.Time  `json:"joinedAt"`
}

// NewPlayer creates a connected, alive player
func NewPlayer(id, token, connID, name string, now time.Time) *Player {
	return &Player{
		ID:        id,
		Token:     token,
		ConnID:    connID,
		Name:      name,
		Alive:     true,
		Connected: true,
		JoinedAt:  now,
	}
}

// Disconnect marks the player as disconnected
func (p *Player) Disconnect(now time.Time) {
	p.ConnID = ""
	p.Connected = false
	p.DisconnectedAt = &now
}

// Reconnect binds the player to a new connection
func (p *Player) Reconnect(connID string) {
	p.ConnID = connID
	p.Connected = true
	p.DisconnectedAt = nil
}

// ResetForNewGame clears per-game state
func (p *Player) ResetForNewGame() {
	p.Alive = true
	p.IsImpostor = false
	p.Topic = nil
}

// CanVote reports whether the player counts toward the voting quorum
func (p *Player) CanVote() bool {
	return p.Alive && p.Connected
}

// PlayerInfo is a safe view of player data (hides token, role and topic)
type PlayerInfo struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsHost    bool   `json:"isHost"`
	Alive     bool   `json:"alive"`
	Connected bool   `json:"connected"`
}

// ToInfo converts a Player to PlayerInfo
func (p *Player) ToInfo() PlayerInfo {
	return PlayerInfo{
		ID:        p.ID,
		Name:      p.Name,
		IsHost:    p.IsHost,
		Alive:     p.Alive,
		Connected: p.Connected,
	}
}

// SelfInfo is what a player is allowed to know about themselves
type SelfInfo struct {
	PlayerInfo
	Token      string  `json:"token"`
	IsImpostor bool    `json:"isImpostor"`
	Topic      *string `json:"topic"`
}

// ToSelf converts a Player to the owner's private view
func (p *Player) ToSelf() SelfInfo {
	return SelfInfo{
		PlayerInfo: p.ToInfo(),
		Token:      p.Token,
		IsImpostor: p.IsImpostor,
		Topic:      p.Topic,
	}
}
