package domain

import (
	"strings"
	"time"
)

// WordEntry is one submitted word in the current round
type WordEntry struct {
	PlayerID string `json:"playerId"`
	Word     string `json:"word"`
}

// VoteEntry is one vote in the current voting sub-round
type VoteEntry struct {
	VoterID  string `json:"voterId"`
	TargetID string `json:"targetId"`
}

// Room is the aggregate every command loads, mutates and saves back.
type Room struct {
	Code             string      `json:"code"`
	Mode             Mode        `json:"mode"`
	Phase            Phase       `json:"phase"`
	Players          []*Player   `json:"players"`
	Topic            *string     `json:"topic"`
	TopicID          string      `json:"topicId,omitempty"`
	UsedTopicIDs     []string    `json:"usedTopicIds,omitempty"`
	ImpostorID       string      `json:"impostorId,omitempty"`
	CurrentRound     int         `json:"currentRound"`
	BaseOrder        []string    `json:"baseOrder"`
	RoundStartIndex  int         `json:"roundStartIndex"`
	CurrentTurnIndex int         `json:"currentTurnIndex"`
	Words            []WordEntry `json:"words"`
	Votes            []VoteEntry `json:"votes"`
	Winner           Winner      `json:"winner"`
	TieCandidates    []string    `json:"tieCandidates"`
	CreatedAt        time.Time   `json:"createdAt"`
}

// NormalizeCode upper-cases and trims a user supplied room code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// NewRoom creates a lobby with host as its only player
func NewRoom(code string, mode Mode, host *Player, now time.Time) *Room {
	host.IsHost = true
	return &Room{
		Code:      NormalizeCode(code),
		Mode:      mode,
		Phase:     PhaseLobby,
		Players:   []*Player{host},
		BaseOrder: []string{},
		Words:     []WordEntry{},
		Votes:     []VoteEntry{},
		CreatedAt: now,
	}
}

// AddPlayer appends a player in join order. Only valid in the lobby.
func (r *Room) AddPlayer(p *Player) error {
	if r.Phase != PhaseLobby {
		return ErrGameAlreadyStarted
	}
	r.Players = append(r.Players, p)
	return nil
}

// TransitionTo moves the room to target if the state machine allows it
func (r *Room) TransitionTo(target Phase) error {
	if !r.Phase.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	r.Phase = target
	return nil
}

// GetPlayer returns a player by ID
func (r *Room) GetPlayer(playerID string) (*Player, error) {
	for _, p := range r.Players {
		if p.ID == playerID {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

// PlayerByToken resolves a possession token to its player
func (r *Room) PlayerByToken(token string) (*Player, error) {
	if token == "" {
		return nil, ErrPlayerNotFound
	}
	for _, p := range r.Players {
		if p.Token == token {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

// PlayerByConn finds the player currently bound to a connection handle
func (r *Room) PlayerByConn(connID string) (*Player, error) {
	if connID == "" {
		return nil, ErrPlayerNotFound
	}
	for _, p := range r.Players {
		if p.ConnID == connID {
			return p, nil
		}
	}
	return nil, ErrPlayerNotFound
}

// Host returns the current host, if any
func (r *Room) Host() *Player {
	for _, p := range r.Players {
		if p.IsHost {
			return p
		}
	}
	return nil
}

// AliveIDs returns alive player ids in join order
func (r *Room) AliveIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.Alive {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// AnyConnected reports whether at least one player is connected
func (r *Room) AnyConnected() bool {
	for _, p := range r.Players {
		if p.Connected {
			return true
		}
	}
	return false
}

// GetPlayerInfoList returns a list of all players as PlayerInfo
func (r *Room) GetPlayerInfoList() []PlayerInfo {
	players := make([]PlayerInfo, 0, len(r.Players))
	for _, p := range r.Players {
		players = append(players, p.ToInfo())
	}
	return players
}

// RoomView is the room snapshot every subscriber may see
type RoomView struct {
	Code            string       `json:"code"`
	Mode            Mode         `json:"mode"`
	Phase           Phase        `json:"phase"`
	Players         []PlayerInfo `json:"players"`
	CurrentRound    int          `json:"currentRound"`
	BaseOrder       []string     `json:"baseOrder"`
	CurrentPlayerID string       `json:"currentPlayerId,omitempty"`
	Words           []WordEntry  `json:"words"`
	VotedCount      int          `json:"votedCount"`
	EligibleVoters  int          `json:"eligibleVoters"`
	TieCandidates   []string     `json:"tieCandidates"`
	Winner          Winner       `json:"winner,omitempty"`
	ImpostorID      string       `json:"impostorId,omitempty"`
	Topic           *string      `json:"topic,omitempty"`
}

// View builds the public snapshot. The impostor and topic are only
// revealed once the game is finished.
func (r *Room) View() RoomView {
	view := RoomView{
		Code:           r.Code,
		Mode:           r.Mode,
		Phase:          r.Phase,
		Players:        r.GetPlayerInfoList(),
		CurrentRound:   r.CurrentRound,
		BaseOrder:      append([]string{}, r.BaseOrder...),
		Words:          append([]WordEntry{}, r.Words...),
		VotedCount:     len(r.Votes),
		EligibleVoters: len(r.EligibleVoterIDs()),
		TieCandidates:  append([]string(nil), r.TieCandidates...),
		Winner:         r.Winner,
	}
	if r.Phase == PhaseWords {
		view.CurrentPlayerID = r.CurrentTurnPlayerID()
	}
	if r.Phase == PhaseFinished {
		view.ImpostorID = r.ImpostorID
		view.Topic = r.Topic
	}
	return view
}
