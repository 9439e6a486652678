package domain

// VoteOutcome describes what a completed voting sub-round produced
type VoteOutcome struct {
	Counts        map[string]int `json:"counts"`
	Tie           bool           `json:"tie"`
	TieCandidates []string       `json:"tieCandidates,omitempty"`
	EliminatedID  string         `json:"eliminatedId,omitempty"`
	WasImpostor   bool           `json:"wasImpostor"`
	Winner        Winner         `json:"winner,omitempty"`
}

// EligibleVoterIDs returns alive, connected players in join order
func (r *Room) EligibleVoterIDs() []string {
	ids := make([]string, 0, len(r.Players))
	for _, p := range r.Players {
		if p.CanVote() {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// HasPlayerVoted checks if a player has a vote in the current sub-round
func (r *Room) HasPlayerVoted(playerID string) bool {
	for _, v := range r.Votes {
		if v.VoterID == playerID {
			return true
		}
	}
	return false
}

// CastVote validates and records a vote. Nothing is mutated on error.
func (r *Room) CastVote(voterID, targetID string) error {
	voter, err := r.GetPlayer(voterID)
	if err != nil {
		return err
	}
	if !voter.Alive {
		return ErrPlayerDead
	}
	if !voter.Connected {
		return ErrPlayerDisconnected
	}

	target, err := r.GetPlayer(targetID)
	if err != nil || !target.Alive {
		return ErrInvalidTarget
	}
	if r.TieCandidates != nil && !contains(r.TieCandidates, targetID) {
		return ErrInvalidTargetDuringTie
	}
	if r.HasPlayerVoted(voterID) {
		return ErrAlreadyVoted
	}

	r.Votes = append(r.Votes, VoteEntry{VoterID: voterID, TargetID: targetID})
	r.PurgeIneligibleVotes()
	return nil
}

// PurgeIneligibleVotes drops votes cast by players who can no longer vote,
// keeping the quorum tied to currently reachable players.
func (r *Room) PurgeIneligibleVotes() {
	eligible := make(map[string]bool)
	for _, id := range r.EligibleVoterIDs() {
		eligible[id] = true
	}
	kept := make([]VoteEntry, 0, len(r.Votes))
	for _, v := range r.Votes {
		if eligible[v.VoterID] {
			kept = append(kept, v)
		}
	}
	r.Votes = kept
}

// QuorumMet reports whether every eligible voter has voted
func (r *Room) QuorumMet() bool {
	eligible := len(r.EligibleVoterIDs())
	return eligible > 0 && len(r.Votes) >= eligible
}

// ResolveVotes tallies the current votes. A shared maximum restarts voting
// among the tied players only; a unique maximum eliminates that player and
// decides whether the game continues.
func (r *Room) ResolveVotes() VoteOutcome {
	counts := make(map[string]int)
	for _, v := range r.Votes {
		counts[v.TargetID]++
	}

	maxVotes := 0
	for _, n := range counts {
		if n > maxVotes {
			maxVotes = n
		}
	}
	// Walk players rather than the map so candidate order is stable.
	var top []string
	for _, p := range r.Players {
		if maxVotes > 0 && counts[p.ID] == maxVotes {
			top = append(top, p.ID)
		}
	}

	outcome := VoteOutcome{Counts: counts}
	r.Votes = []VoteEntry{}

	if len(top) > 1 {
		r.TieCandidates = top
		outcome.Tie = true
		outcome.TieCandidates = append([]string{}, top...)
		return outcome
	}

	r.TieCandidates = nil
	if len(top) == 0 {
		return outcome
	}

	eliminated, _ := r.GetPlayer(top[0])
	eliminated.Alive = false
	outcome.EliminatedID = eliminated.ID
	outcome.WasImpostor = eliminated.ID == r.ImpostorID

	switch {
	case outcome.WasImpostor:
		r.finish(WinnerPlayers)
	case len(r.AliveIDs()) <= MinAlivePlayers:
		r.finish(WinnerImpostor)
	default:
		r.CurrentRound++
		r.Phase = PhaseRevealRound
	}
	outcome.Winner = r.Winner
	return outcome
}

func (r *Room) finish(winner Winner) {
	r.Phase = PhaseFinished
	r.Winner = winner
}

func contains(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
