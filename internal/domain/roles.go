package domain

// DealRoles starts a fresh game in the room: every player is revived, one is
// picked uniformly at random as the impostor, the rest share the topic, and
// round bookkeeping goes back to round 1 in the reveal phase.
func (r *Room) DealRoles(topicID, topic string, rnd Randomizer) string {
	for _, p := range r.Players {
		p.ResetForNewGame()
	}

	alive := r.AliveIDs()
	impostorID := alive[rnd.Intn(len(alive))]

	for _, p := range r.Players {
		if p.ID == impostorID {
			p.IsImpostor = true
			continue
		}
		t := topic
		p.Topic = &t
	}

	r.ImpostorID = impostorID
	r.Topic = &topic
	r.TopicID = topicID
	if topicID != "" && !contains(r.UsedTopicIDs, topicID) {
		r.UsedTopicIDs = append(r.UsedTopicIDs, topicID)
	}

	r.CurrentRound = 1
	r.BaseOrder = []string{}
	r.RoundStartIndex = 0
	r.CurrentTurnIndex = 0
	r.Words = []WordEntry{}
	r.Votes = []VoteEntry{}
	r.Winner = WinnerNone
	r.TieCandidates = nil
	r.Phase = PhaseReveal

	return impostorID
}
