package domain

import "time"

// EventType represents the type of room event
type EventType string

const (
	EventRoomJoined     EventType = "roomJoined"
	EventPlayersUpdated EventType = "playersUpdated"
	EventYourRole       EventType = "yourRole"
	EventGameStarted    EventType = "gameStarted"
	EventPhaseChanged   EventType = "phaseChanged"
	EventTurnChanged    EventType = "turnChanged"
	EventWordAdded      EventType = "wordAdded"
	EventVoteProgress   EventType = "voteProgress"
	EventTieVote        EventType = "tieVote"
	EventRoundResult    EventType = "roundResult"
	EventGameFinished   EventType = "gameFinished"
	EventRoomEnded      EventType = "roomEnded"
)

// GameEvent is one outbound message produced by a command
type GameEvent struct {
	Type      EventType   `json:"type"`
	RoomCode  string      `json:"roomCode"`
	PlayerID  string      `json:"playerId,omitempty"` // If event is player-specific
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewEvent creates a room-wide event
func NewEvent(eventType EventType, roomCode string, payload interface{}, at time.Time) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		Payload:   payload,
		Timestamp: at,
	}
}

// NewPlayerEvent creates an event for a single player
func NewPlayerEvent(eventType EventType, roomCode, playerID string, payload interface{}, at time.Time) *GameEvent {
	return &GameEvent{
		Type:      eventType,
		RoomCode:  roomCode,
		PlayerID:  playerID,
		Payload:   payload,
		Timestamp: at,
	}
}

// IsPrivate reports whether the event is addressed to one player
func (e *GameEvent) IsPrivate() bool {
	return e.PlayerID != ""
}

// Payload types for different events

// RoomJoinedPayload goes to the player who created, joined or rejoined
type RoomJoinedPayload struct {
	RoomCode string   `json:"roomCode"`
	Player   SelfInfo `json:"player"`
	Room     RoomView `json:"room"`
	IsRejoin bool     `json:"isRejoin"`
}

// PlayersUpdatedPayload is sent when membership or presence changes
type PlayersUpdatedPayload struct {
	Players []PlayerInfo `json:"players"`
}

// YourRolePayload is sent privately to each player when roles are dealt
type YourRolePayload struct {
	RoomCode   string  `json:"roomCode"`
	IsImpostor bool    `json:"isImpostor"`
	Topic      *string `json:"topic"`
}

// GameStartedPayload announces a freshly dealt game
type GameStartedPayload struct {
	RoomCode string       `json:"roomCode"`
	Phase    Phase        `json:"phase"`
	Players  []PlayerInfo `json:"players"`
}

// PhaseChangedPayload is sent on every phase transition
type PhaseChangedPayload struct {
	Phase        Phase `json:"phase"`
	CurrentRound int   `json:"currentRound"`
}

// TurnChangedPayload names the next speaker
type TurnChangedPayload struct {
	CurrentPlayerID string `json:"currentPlayerId"`
	Skipped         string `json:"skipped,omitempty"`
}

// WordAddedPayload is sent when a word is submitted
type WordAddedPayload struct {
	PlayerID string      `json:"playerId"`
	Word     string      `json:"word"`
	Words    []WordEntry `json:"words"`
}

// VoteProgressPayload is sent when a vote is cast (without revealing who)
type VoteProgressPayload struct {
	VotedCount     int `json:"votedCount"`
	EligibleVoters int `json:"eligibleVoters"`
}

// TieVotePayload restarts voting among the tied candidates
type TieVotePayload struct {
	TieCandidates []PlayerInfo   `json:"tieCandidates"`
	Counts        map[string]int `json:"counts"`
}

// RoundResultPayload is sent when a vote eliminates someone
type RoundResultPayload struct {
	EliminatedPlayer PlayerInfo     `json:"eliminatedPlayer"`
	WasImpostor      bool           `json:"wasImpostor"`
	Winner           Winner         `json:"winner,omitempty"`
	Counts           map[string]int `json:"counts"`
}

// GameFinishedPayload is sent when a winner is decided
type GameFinishedPayload struct {
	Winner     Winner  `json:"winner"`
	ImpostorID string  `json:"impostorId"`
	Topic      *string `json:"topic"`
}
