package domain

// MinAlivePlayers is the smallest group that can play a word round
const MinAlivePlayers = 2

// Randomizer picks an integer uniformly from [0, n)
type Randomizer interface {
	Intn(n int) int
}

// BeginRound fixes the speaking order for a round. The first round of a game
// starts at a random seat; every later round starts one seat further on so
// the same player does not always lead.
func (r *Room) BeginRound(aliveIDs []string, firstRound bool, rnd Randomizer) error {
	n := len(aliveIDs)
	if n < MinAlivePlayers {
		return ErrNotEnoughAlivePlayers
	}

	if firstRound {
		r.RoundStartIndex = rnd.Intn(n)
	} else {
		r.RoundStartIndex = (r.RoundStartIndex + 1) % n
	}
	r.BaseOrder = append([]string{}, aliveIDs...)
	r.CurrentTurnIndex = r.RoundStartIndex
	r.Words = []WordEntry{}
	r.Votes = []VoteEntry{}
	r.TieCandidates = nil
	return nil
}

// CurrentTurnPlayerID returns the player whose turn it is, or "" outside a round
func (r *Room) CurrentTurnPlayerID() string {
	if r.CurrentTurnIndex < 0 || r.CurrentTurnIndex >= len(r.BaseOrder) {
		return ""
	}
	return r.BaseOrder[r.CurrentTurnIndex]
}

// IsPlayerTurn checks if it's the given player's turn to submit
func (r *Room) IsPlayerTurn(playerID string) bool {
	current := r.CurrentTurnPlayerID()
	return current != "" && current == playerID
}

// Advance appends callerID's word and passes the turn on. When every seat in
// the base order has spoken it reports done; otherwise it returns the next
// speaker.
func (r *Room) Advance(callerID, word string) (done bool, next string, err error) {
	if !r.IsPlayerTurn(callerID) {
		return false, "", ErrNotYourTurn
	}
	r.Words = append(r.Words, WordEntry{PlayerID: callerID, Word: word})
	done, next = r.step()
	return done, next, nil
}

// SkipTurn consumes the current seat without a word.
func (r *Room) SkipTurn() (done bool, next string) {
	return r.step()
}

func (r *Room) step() (bool, string) {
	n := len(r.BaseOrder)
	if n == 0 {
		return true, ""
	}
	turnsDone := (r.CurrentTurnIndex-r.RoundStartIndex+n)%n + 1
	if turnsDone >= n {
		return true, ""
	}
	r.CurrentTurnIndex = (r.CurrentTurnIndex + 1) % n
	return false, r.BaseOrder[r.CurrentTurnIndex]
}
