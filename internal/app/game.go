package app

import (
	"context"
	"strings"

	"impostor/internal/content"
	"impostor/internal/domain"
)

// StartGame deals roles in a lobby with enough players. A nil filter uses
// the configured default.
func (c *Coordinator) StartGame(ctx context.Context, code string, caller Caller, filter *content.Filter) (*Outcome, error) {
	return c.update(ctx, "startGame", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if !player.IsHost {
			return domain.ErrOnlyHostCanStart
		}
		if room.Phase != domain.PhaseLobby {
			return domain.ErrGameAlreadyStarted
		}
		if len(room.Players) < c.opts.MinPlayers {
			return domain.ErrNotEnoughPlayers
		}
		return c.deal(room, out, filter)
	})
}

// RestartGame deals a fresh game to the same room from any phase
func (c *Coordinator) RestartGame(ctx context.Context, code string, caller Caller, filter *content.Filter) (*Outcome, error) {
	return c.update(ctx, "restartGame", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if !player.IsHost {
			return domain.ErrOnlyHostCanRestart
		}
		if len(room.Players) < c.opts.MinPlayers {
			return domain.ErrNotEnoughPlayers
		}
		return c.deal(room, out, filter)
	})
}

// deal picks a topic, assigns roles and queues the private role reveals
// followed by the room-wide start announcement.
func (c *Coordinator) deal(room *domain.Room, out *Outcome, filter *content.Filter) error {
	f := c.opts.DefaultFilter
	if filter != nil {
		f = *filter
	}
	f.ExcludeIDs = room.UsedTopicIDs

	topic, ok := c.catalog.PickFresh(f)
	if !ok {
		return domain.ErrNoTopicAvailable
	}

	impostorID := room.DealRoles(topic.ID, topic.Name, c.opts.Rand)
	c.logger.Info("roles dealt", "roomCode", room.Code, "players", len(room.Players), "topicID", topic.ID)
	c.logger.Debug("impostor chosen", "roomCode", room.Code, "playerID", impostorID)

	for _, p := range room.Players {
		out.private(domain.EventYourRole, p.ID, &domain.YourRolePayload{
			RoomCode:   room.Code,
			IsImpostor: p.IsImpostor,
			Topic:      p.Topic,
		})
	}
	out.broadcast(domain.EventGameStarted, &domain.GameStartedPayload{
		RoomCode: room.Code,
		Phase:    room.Phase,
		Players:  room.GetPlayerInfoList(),
	})
	return nil
}

// StartWordsRound opens the first word round after the role reveal
func (c *Coordinator) StartWordsRound(ctx context.Context, code string, caller Caller) (*Outcome, error) {
	return c.update(ctx, "startWordsRound", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if room.Mode == domain.ModeManual {
			return domain.ErrManualMode
		}
		if !player.IsHost {
			return domain.ErrOnlyHostCanStart
		}
		if room.Phase != domain.PhaseReveal {
			return domain.ErrNotRevealPhase
		}
		return c.beginRound(room, out, room.CurrentRound <= 1)
	})
}

// StartNextRound opens the next word round after an elimination was shown.
// Any player in the room may trigger it.
func (c *Coordinator) StartNextRound(ctx context.Context, code string, caller Caller) (*Outcome, error) {
	return c.update(ctx, "startNextRound", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if room.Mode == domain.ModeManual {
			return domain.ErrManualMode
		}
		if room.Phase != domain.PhaseRevealRound {
			return domain.ErrNotRevealRound
		}
		return c.beginRound(room, out, false)
	})
}

func (c *Coordinator) beginRound(room *domain.Room, out *Outcome, firstRound bool) error {
	if err := room.BeginRound(room.AliveIDs(), firstRound, c.opts.Rand); err != nil {
		return err
	}
	if err := room.TransitionTo(domain.PhaseWords); err != nil {
		return err
	}

	out.broadcast(domain.EventPhaseChanged, phasePayload(room))
	out.broadcast(domain.EventTurnChanged, &domain.TurnChangedPayload{
		CurrentPlayerID: room.CurrentTurnPlayerID(),
	})
	return nil
}

// SubmitWord records the caller's word when it is their turn
func (c *Coordinator) SubmitWord(ctx context.Context, code string, caller Caller, word string) (*Outcome, error) {
	word = strings.TrimSpace(word)
	return c.update(ctx, "submitWord", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if room.Mode == domain.ModeManual {
			return domain.ErrManualMode
		}
		if room.Phase != domain.PhaseWords {
			return domain.ErrNotWordsPhase
		}
		if word == "" {
			return domain.ErrEmptyWord
		}

		done, next, err := room.Advance(player.ID, word)
		if err != nil {
			return err
		}

		out.broadcast(domain.EventWordAdded, &domain.WordAddedPayload{
			PlayerID: player.ID,
			Word:     word,
			Words:    append([]domain.WordEntry{}, room.Words...),
		})
		return c.afterTurn(room, out, done, next, "")
	})
}

// SkipTurn lets the host pass over a current speaker who has disconnected
func (c *Coordinator) SkipTurn(ctx context.Context, code string, caller Caller) (*Outcome, error) {
	return c.update(ctx, "skipTurn", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if room.Mode == domain.ModeManual {
			return domain.ErrManualMode
		}
		if !player.IsHost {
			return domain.ErrOnlyHostCanSkip
		}
		if room.Phase != domain.PhaseWords {
			return domain.ErrNotWordsPhase
		}

		current, err := room.GetPlayer(room.CurrentTurnPlayerID())
		if err != nil {
			return err
		}
		if current.Connected {
			return domain.ErrCannotSkipConnected
		}

		done, next := room.SkipTurn()
		c.logger.Info("turn skipped", "roomCode", room.Code, "playerID", current.ID)
		return c.afterTurn(room, out, done, next, current.ID)
	})
}

func (c *Coordinator) afterTurn(room *domain.Room, out *Outcome, done bool, next, skipped string) error {
	if !done {
		out.broadcast(domain.EventTurnChanged, &domain.TurnChangedPayload{
			CurrentPlayerID: next,
			Skipped:         skipped,
		})
		return nil
	}

	if err := room.TransitionTo(domain.PhaseVoting); err != nil {
		return err
	}
	out.broadcast(domain.EventPhaseChanged, phasePayload(room))
	out.broadcast(domain.EventVoteProgress, voteProgressPayload(room))
	return nil
}

// SubmitVote records the caller's vote and resolves the sub-round once every
// eligible voter has voted.
func (c *Coordinator) SubmitVote(ctx context.Context, code string, caller Caller, targetID string) (*Outcome, error) {
	return c.update(ctx, "submitVote", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if room.Mode == domain.ModeManual {
			return domain.ErrManualMode
		}
		if room.Phase != domain.PhaseVoting {
			return domain.ErrNotVotingPhase
		}
		if err := room.CastVote(player.ID, targetID); err != nil {
			return err
		}

		out.broadcast(domain.EventVoteProgress, voteProgressPayload(room))
		if room.QuorumMet() {
			c.resolveVoting(room, out)
		}
		return nil
	})
}

func (c *Coordinator) resolveVoting(room *domain.Room, out *Outcome) {
	result := room.ResolveVotes()

	if result.Tie {
		candidates := make([]domain.PlayerInfo, 0, len(result.TieCandidates))
		for _, id := range result.TieCandidates {
			if p, err := room.GetPlayer(id); err == nil {
				candidates = append(candidates, p.ToInfo())
			}
		}
		c.logger.Info("vote tied", "roomCode", room.Code, "candidates", result.TieCandidates)
		out.broadcast(domain.EventTieVote, &domain.TieVotePayload{
			TieCandidates: candidates,
			Counts:        result.Counts,
		})
		return
	}

	eliminated, err := room.GetPlayer(result.EliminatedID)
	if err != nil {
		return
	}
	c.logger.Info("player eliminated",
		"roomCode", room.Code,
		"playerID", eliminated.ID,
		"wasImpostor", result.WasImpostor,
		"winner", result.Winner,
	)

	out.broadcast(domain.EventPhaseChanged, phasePayload(room))
	out.broadcast(domain.EventRoundResult, &domain.RoundResultPayload{
		EliminatedPlayer: eliminated.ToInfo(),
		WasImpostor:      result.WasImpostor,
		Winner:           result.Winner,
		Counts:           result.Counts,
	})
	if room.Phase == domain.PhaseFinished {
		out.broadcast(domain.EventGameFinished, &domain.GameFinishedPayload{
			Winner:     room.Winner,
			ImpostorID: room.ImpostorID,
			Topic:      room.Topic,
		})
	}
}

// EndGame closes the room for everyone and deletes it
func (c *Coordinator) EndGame(ctx context.Context, code string, caller Caller) (*Outcome, error) {
	return c.update(ctx, "endGame", code, func(room *domain.Room, out *Outcome) error {
		player, err := resolveCaller(room, caller)
		if err != nil {
			return err
		}
		out.Player = player

		if !player.IsHost {
			return domain.ErrOnlyHostCanEndGame
		}

		out.broadcast(domain.EventRoomEnded, nil)
		out.deleted = true
		c.logger.Info("room ended", "roomCode", room.Code, "playerID", player.ID)
		return nil
	})
}

func phasePayload(room *domain.Room) *domain.PhaseChangedPayload {
	return &domain.PhaseChangedPayload{Phase: room.Phase, CurrentRound: room.CurrentRound}
}
