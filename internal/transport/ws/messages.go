package ws

import (
	"encoding/json"
	"errors"
	"time"

	"impostor/internal/domain"
)

// MessageType represents the type of WebSocket message
type MessageType string

// Client → Server message types
const (
	MsgCreateRoom      MessageType = "createRoom"
	MsgJoinRoom        MessageType = "joinRoom"
	MsgJoinOrRejoin    MessageType = "joinOrRejoin"
	MsgRejoinRoom      MessageType = "rejoinRoom"
	MsgStartGame       MessageType = "startGame"
	MsgStartWordsRound MessageType = "startWordsRound"
	MsgSubmitWord      MessageType = "submitWord"
	MsgSubmitVote      MessageType = "submitVote"
	MsgStartNextRound  MessageType = "startNextRound"
	MsgSkipTurn        MessageType = "skipTurn"
	MsgRestartGame     MessageType = "restartGame"
	MsgEndGame         MessageType = "endGame"
	MsgPing            MessageType = "ping"
)

// Server → Client message types. Room events use their domain.EventType
// name as the message type.
const (
	MsgConnected MessageType = "connected"
	MsgError     MessageType = "error"
	MsgPong      MessageType = "pong"
)

// ClientMessage represents a message from client to server
type ClientMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ServerMessage represents a message from server to client
type ServerMessage struct {
	Type      MessageType `json:"type"`
	RoomCode  string      `json:"roomCode,omitempty"`
	Payload   interface{} `json:"payload,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// NewServerMessage creates a new server message with current timestamp
func NewServerMessage(msgType MessageType, payload interface{}) *ServerMessage {
	return &ServerMessage{
		Type:      msgType,
		Payload:   payload,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

// NewEventMessage wraps a room event for the wire
func NewEventMessage(event *domain.GameEvent) *ServerMessage {
	return &ServerMessage{
		Type:      MessageType(event.Type),
		RoomCode:  event.RoomCode,
		Payload:   event.Payload,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
	}
}

// Client message payloads

// CreateRoomPayload is the payload for createRoom
type CreateRoomPayload struct {
	Name string      `json:"name"`
	Mode domain.Mode `json:"mode,omitempty"`
}

// JoinRoomPayload is the payload for joinRoom
type JoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
}

// JoinOrRejoinPayload is the payload for joinOrRejoin
type JoinOrRejoinPayload struct {
	RoomCode string `json:"roomCode"`
	Name     string `json:"name"`
	Token    string `json:"token,omitempty"`
}

// RejoinRoomPayload is the payload for rejoinRoom
type RejoinRoomPayload struct {
	RoomCode string `json:"roomCode"`
	Token    string `json:"token"`
}

// RoomCommandPayload addresses a command to a room. Both fields fall back
// to the room and token this connection is bound to.
type RoomCommandPayload struct {
	RoomCode string `json:"roomCode,omitempty"`
	Token    string `json:"token,omitempty"`
}

// StartGamePayload is the payload for startGame and restartGame
type StartGamePayload struct {
	RoomCommandPayload
	Category   string `json:"category,omitempty"`
	Difficulty int    `json:"difficulty,omitempty"`
}

// SubmitWordPayload is the payload for submitWord
type SubmitWordPayload struct {
	RoomCommandPayload
	Word string `json:"word"`
}

// SubmitVotePayload is the payload for submitVote
type SubmitVotePayload struct {
	RoomCommandPayload
	TargetID string `json:"targetId"`
}

// Server message payloads

// ConnectedPayload is sent once the socket is open
type ConnectedPayload struct {
	ConnectionID string `json:"connectionId"`
}

// ErrorPayload is the payload for error message
type ErrorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes
const (
	ErrCodeInvalidMessage           = "INVALID_MESSAGE"
	ErrCodeRateLimited              = "RATE_LIMITED"
	ErrCodeNotInRoom                = "NOT_IN_ROOM"
	ErrCodeRoomNotFound             = "ROOM_NOT_FOUND"
	ErrCodePlayerNotFound           = "PLAYER_NOT_FOUND"
	ErrCodeGameAlreadyStarted       = "GAME_ALREADY_STARTED"
	ErrCodeNotRevealPhase           = "NOT_REVEAL_PHASE"
	ErrCodeNotWordsPhase            = "NOT_WORDS_PHASE"
	ErrCodeNotVotingPhase           = "NOT_VOTING_PHASE"
	ErrCodeNotRevealRound           = "NOT_REVEAL_ROUND"
	ErrCodeManualMode               = "MANUAL_MODE_ONLY_ROLES"
	ErrCodeInvalidTransition        = "INVALID_TRANSITION"
	ErrCodeOnlyHostCanStart         = "ONLY_HOST_CAN_START"
	ErrCodeOnlyHostCanRestart       = "ONLY_HOST_CAN_RESTART"
	ErrCodeOnlyHostCanEndGame       = "ONLY_HOST_CAN_END_GAME"
	ErrCodeOnlyHostCanSkip          = "ONLY_HOST_CAN_SKIP"
	ErrCodeNotYourTurn              = "NOT_YOUR_TURN"
	ErrCodeAlreadyVoted             = "ALREADY_VOTED"
	ErrCodeInvalidTarget            = "INVALID_TARGET"
	ErrCodeInvalidTargetDuringTie   = "INVALID_TARGET_DURING_TIE"
	ErrCodeCannotSkipConnected      = "CANNOT_SKIP_CONNECTED_PLAYER"
	ErrCodeNotEnoughPlayers         = "NOT_ENOUGH_PLAYERS"
	ErrCodeNotEnoughAlivePlayers    = "NOT_ENOUGH_ALIVE_PLAYERS"
	ErrCodePlayerDead               = "PLAYER_DEAD"
	ErrCodePlayerDisconnected       = "PLAYER_DISCONNECTED"
	ErrCodeCouldNotGenerateRoomCode = "COULD_NOT_GENERATE_ROOM_CODE"
	ErrCodeEmptyName                = "EMPTY_NAME"
	ErrCodeEmptyWord                = "EMPTY_WORD"
	ErrCodeInvalidMode              = "INVALID_MODE"
	ErrCodeNoTopicAvailable         = "NO_TOPIC_AVAILABLE"
	ErrCodeInternalError            = "INTERNAL_ERROR"
)

var errorCodes = []struct {
	err  error
	code string
}{
	{domain.ErrRoomNotFound, ErrCodeRoomNotFound},
	{domain.ErrPlayerNotFound, ErrCodePlayerNotFound},
	{domain.ErrGameAlreadyStarted, ErrCodeGameAlreadyStarted},
	{domain.ErrNotRevealPhase, ErrCodeNotRevealPhase},
	{domain.ErrNotWordsPhase, ErrCodeNotWordsPhase},
	{domain.ErrNotVotingPhase, ErrCodeNotVotingPhase},
	{domain.ErrNotRevealRound, ErrCodeNotRevealRound},
	{domain.ErrManualMode, ErrCodeManualMode},
	{domain.ErrInvalidTransition, ErrCodeInvalidTransition},
	{domain.ErrOnlyHostCanStart, ErrCodeOnlyHostCanStart},
	{domain.ErrOnlyHostCanRestart, ErrCodeOnlyHostCanRestart},
	{domain.ErrOnlyHostCanEndGame, ErrCodeOnlyHostCanEndGame},
	{domain.ErrOnlyHostCanSkip, ErrCodeOnlyHostCanSkip},
	{domain.ErrNotYourTurn, ErrCodeNotYourTurn},
	{domain.ErrAlreadyVoted, ErrCodeAlreadyVoted},
	{domain.ErrInvalidTarget, ErrCodeInvalidTarget},
	{domain.ErrInvalidTargetDuringTie, ErrCodeInvalidTargetDuringTie},
	{domain.ErrCannotSkipConnected, ErrCodeCannotSkipConnected},
	{domain.ErrNotEnoughPlayers, ErrCodeNotEnoughPlayers},
	{domain.ErrNotEnoughAlivePlayers, ErrCodeNotEnoughAlivePlayers},
	{domain.ErrPlayerDead, ErrCodePlayerDead},
	{domain.ErrPlayerDisconnected, ErrCodePlayerDisconnected},
	{domain.ErrCouldNotGenerateRoomCode, ErrCodeCouldNotGenerateRoomCode},
	{domain.ErrEmptyName, ErrCodeEmptyName},
	{domain.ErrEmptyWord, ErrCodeEmptyWord},
	{domain.ErrInvalidMode, ErrCodeInvalidMode},
	{domain.ErrNoTopicAvailable, ErrCodeNoTopicAvailable},
}

// ErrorCode maps a command error to its stable wire code
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.err) {
			return e.code
		}
	}
	return ErrCodeInternalError
}
