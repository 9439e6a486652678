package app

import (
	"context"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"impostor/internal/domain"
)

// CreateRoom opens a new lobby with the caller as host
func (c *Coordinator) CreateRoom(ctx context.Context, name string, mode domain.Mode, connID string) (*Outcome, error) {
	ctx, span := c.tracer.Start(ctx, "room.create")
	defer span.End()

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, c.fail(span, "create", "", domain.ErrEmptyName)
	}
	if mode == "" {
		mode = domain.ModeClassic
	}
	if !mode.Valid() {
		return nil, c.fail(span, "create", "", domain.ErrInvalidMode)
	}

	for attempt := 0; attempt < c.opts.RoomCodeAttempts; attempt++ {
		code, err := c.opts.NewCode()
		if err != nil {
			return nil, c.fail(span, "create", "", err)
		}

		out, created, err := c.createWithCode(ctx, code, name, mode, connID)
		if err != nil {
			return nil, c.fail(span, "create", code, err)
		}
		if created {
			span.SetAttributes(
				attribute.String("room.code", out.Room.Code),
				attribute.Int("room.code_attempts", attempt+1),
			)
			c.logger.Info("room created", "roomCode", out.Room.Code, "playerID", out.Player.ID, "mode", mode)
			c.publish(ctx, out)
			return out, nil
		}
	}

	c.logger.Warn("room code space exhausted", "attempts", c.opts.RoomCodeAttempts)
	return nil, c.fail(span, "create", "", domain.ErrCouldNotGenerateRoomCode)
}

// createWithCode claims code if it is free. The store claims it atomically,
// so two creators on different servers cannot both win the same code.
func (c *Coordinator) createWithCode(ctx context.Context, code, name string, mode domain.Mode, connID string) (*Outcome, bool, error) {
	now := c.opts.Now()
	host := domain.NewPlayer(c.opts.NewID(), c.opts.NewID(), connID, name, now)
	room := domain.NewRoom(code, mode, host, now)

	created, err := c.rooms.Create(ctx, room, c.ttlFor(room))
	if err != nil {
		c.logger.Error("failed to persist room", "op", "create", "roomCode", room.Code, "error", err)
		return nil, false, err
	}
	if !created {
		return nil, false, nil
	}

	out := &Outcome{Room: room, Player: host, at: now}
	out.private(domain.EventRoomJoined, host.ID, joinedPayload(room, host, false))
	out.broadcast(domain.EventPlayersUpdated, playersPayload(room))
	return out, true, nil
}

// JoinRoom adds a new player to a lobby
func (c *Coordinator) JoinRoom(ctx context.Context, code, name, connID string) (*Outcome, error) {
	name = strings.TrimSpace(name)
	return c.update(ctx, "join", code, func(room *domain.Room, out *Outcome) error {
		if name == "" {
			return domain.ErrEmptyName
		}
		return c.addPlayer(room, out, name, connID)
	})
}

func (c *Coordinator) addPlayer(room *domain.Room, out *Outcome, name, connID string) error {
	player := domain.NewPlayer(c.opts.NewID(), c.opts.NewID(), connID, name, c.opts.Now())
	if err := room.AddPlayer(player); err != nil {
		return err
	}
	room.EnsureHost()

	out.Player = player
	out.private(domain.EventRoomJoined, player.ID, joinedPayload(room, player, false))
	out.broadcast(domain.EventPlayersUpdated, playersPayload(room))
	return nil
}

// RejoinRoom reclaims an existing seat with its possession token, in any phase
func (c *Coordinator) RejoinRoom(ctx context.Context, code, token, connID string) (*Outcome, error) {
	return c.update(ctx, "rejoin", code, func(room *domain.Room, out *Outcome) error {
		player, err := room.Reclaim(token, connID)
		if err != nil {
			return err
		}
		out.Player = player
		out.private(domain.EventRoomJoined, player.ID, joinedPayload(room, player, true))
		out.broadcast(domain.EventPlayersUpdated, playersPayload(room))
		return nil
	})
}

// JoinOrRejoin reclaims the seat behind token when it exists, renaming it if
// a different name is given. Otherwise it behaves like JoinRoom.
func (c *Coordinator) JoinOrRejoin(ctx context.Context, code, name, token, connID string) (*Outcome, error) {
	name = strings.TrimSpace(name)
	return c.update(ctx, "joinOrRejoin", code, func(room *domain.Room, out *Outcome) error {
		if player, err := room.Reclaim(token, connID); err == nil {
			if name != "" && name != player.Name {
				player.Name = name
			}
			out.Player = player
			out.private(domain.EventRoomJoined, player.ID, joinedPayload(room, player, true))
			out.broadcast(domain.EventPlayersUpdated, playersPayload(room))
			return nil
		}

		if room.Phase != domain.PhaseLobby {
			return domain.ErrGameAlreadyStarted
		}
		if name == "" {
			return domain.ErrEmptyName
		}
		return c.addPlayer(room, out, name, connID)
	})
}

// Disconnect marks the player bound to connID as gone. During voting the
// leaver's vote is dropped and, if everyone still reachable has voted, the
// vote resolves right away.
func (c *Coordinator) Disconnect(ctx context.Context, code, connID string) (*Outcome, error) {
	return c.update(ctx, "disconnect", code, func(room *domain.Room, out *Outcome) error {
		player, err := room.MarkDisconnected(connID, c.opts.Now())
		if err != nil {
			return err
		}

		out.Player = player
		out.broadcast(domain.EventPlayersUpdated, playersPayload(room))

		if room.Phase == domain.PhaseVoting {
			if room.QuorumMet() {
				c.resolveVoting(room, out)
			} else {
				out.broadcast(domain.EventVoteProgress, voteProgressPayload(room))
			}
		}
		return nil
	})
}

func joinedPayload(room *domain.Room, player *domain.Player, rejoin bool) *domain.RoomJoinedPayload {
	return &domain.RoomJoinedPayload{
		RoomCode: room.Code,
		Player:   player.ToSelf(),
		Room:     room.View(),
		IsRejoin: rejoin,
	}
}

func playersPayload(room *domain.Room) *domain.PlayersUpdatedPayload {
	return &domain.PlayersUpdatedPayload{Players: room.GetPlayerInfoList()}
}

func voteProgressPayload(room *domain.Room) *domain.VoteProgressPayload {
	return &domain.VoteProgressPayload{
		VotedCount:     len(room.Votes),
		EligibleVoters: len(room.EligibleVoterIDs()),
	}
}
