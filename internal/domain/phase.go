package domain

// Phase represents the current phase of a room
type Phase string

const (
	PhaseLobby       Phase = "lobby"       // Waiting for players to join
	PhaseReveal      Phase = "reveal"      // Players look at their role and topic
	PhaseWords       Phase = "words"       // Players submit one word each, in turn
	PhaseVoting      Phase = "voting"      // Alive and connected players vote someone out
	PhaseRevealRound Phase = "revealRound" // Elimination shown before the next word round
	PhaseFinished    Phase = "finished"    // Winner decided
)

// String returns the string representation of the phase
func (p Phase) String() string {
	return string(p)
}

// CanTransitionTo checks if a transition from current phase to target phase is valid
func (p Phase) CanTransitionTo(target Phase) bool {
	validTransitions := map[Phase][]Phase{
		PhaseLobby:       {PhaseReveal},
		PhaseReveal:      {PhaseWords, PhaseReveal},
		PhaseWords:       {PhaseVoting},
		PhaseVoting:      {PhaseRevealRound, PhaseFinished},
		PhaseRevealRound: {PhaseWords},
		PhaseFinished:    {PhaseReveal},
	}

	allowed, ok := validTransitions[p]
	if !ok {
		return false
	}

	for _, phase := range allowed {
		if phase == target {
			return true
		}
	}
	return false
}

// Mode selects how much of the game the server runs.
type Mode string

const (
	// ModeClassic runs the full game: roles, word rounds and voting.
	ModeClassic Mode = "classic"
	// ModeManual only deals roles; the group plays the rest in person.
	ModeManual Mode = "manual"
)

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeClassic || m == ModeManual
}

// Winner names the side that won a finished game
type Winner string

const (
	WinnerNone     Winner = ""
	WinnerPlayers  Winner = "players"
	WinnerImpostor Winner = "impostor"
)
