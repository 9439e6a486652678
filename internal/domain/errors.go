package domain

import "errors"

// Not-found errors
var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrPlayerNotFound = errors.New("player not found")
)

// Phase-mismatch errors
var (
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotRevealPhase     = errors.New("not in reveal phase")
	ErrNotWordsPhase      = errors.New("not in words phase")
	ErrNotVotingPhase     = errors.New("not in voting phase")
	ErrNotRevealRound     = errors.New("not in reveal round phase")
	ErrManualMode         = errors.New("manual mode only deals roles")
	ErrInvalidTransition  = errors.New("invalid phase transition")
)

// Authorization errors
var (
	ErrOnlyHostCanStart   = errors.New("only the host can start")
	ErrOnlyHostCanRestart = errors.New("only the host can restart")
	ErrOnlyHostCanEndGame = errors.New("only the host can end the game")
	ErrOnlyHostCanSkip    = errors.New("only the host can skip a turn")
)

// Turn and vote ordering errors
var (
	ErrNotYourTurn            = errors.New("not your turn")
	ErrAlreadyVoted           = errors.New("already voted")
	ErrInvalidTarget          = errors.New("invalid vote target")
	ErrInvalidTargetDuringTie = errors.New("target is not among the tied candidates")
	ErrCannotSkipConnected    = errors.New("current player is connected")
)

// Capacity errors
var (
	ErrNotEnoughPlayers      = errors.New("not enough players to start")
	ErrNotEnoughAlivePlayers = errors.New("not enough alive players")
)

// Identity and input errors
var (
	ErrPlayerDead               = errors.New("player is dead")
	ErrPlayerDisconnected       = errors.New("player is disconnected")
	ErrCouldNotGenerateRoomCode = errors.New("could not generate room code")
	ErrEmptyName                = errors.New("name cannot be empty")
	ErrEmptyWord                = errors.New("word cannot be empty")
	ErrInvalidMode              = errors.New("invalid room mode")
	ErrNoTopicAvailable         = errors.New("no topic matches the filter")
)
