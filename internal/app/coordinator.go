// Package app runs room commands against the room store: load, validate,
// mutate, save, and report what changed.
package app

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"impostor/internal/config"
	"impostor/internal/content"
	"impostor/internal/domain"
	"impostor/internal/store"
)

const tracerName = "impostor/internal/app"

// Options tunes the coordinator. Zero fields fall back to DefaultOptions.
type Options struct {
	MinPlayers       int
	RoomCodeAttempts int
	DisconnectGrace  time.Duration
	RoomTTL          time.Duration
	RoomEmptyTTL     time.Duration
	DefaultFilter    content.Filter

	Now     func() time.Time
	Rand    domain.Randomizer
	NewID   func() string
	NewCode func() (string, error)

	// Publish receives every successful outcome while its room is still
	// locked, so events leave in the order their commands committed.
	Publish Publisher
}

// Publisher hands a committed outcome to the transport
type Publisher func(ctx context.Context, out *Outcome)

// DefaultOptions returns the production defaults
func DefaultOptions() Options {
	return Options{
		MinPlayers:       3,
		RoomCodeAttempts: 30,
		DisconnectGrace:  10 * time.Minute,
		RoomTTL:          2 * time.Hour,
		RoomEmptyTTL:     10 * time.Minute,
		Now:              time.Now,
		Rand:             globalRand{},
		NewID:            uuid.NewString,
		NewCode:          GenerateRoomCode,
	}
}

// OptionsFromConfig maps the game section of the config onto Options
func OptionsFromConfig(cfg config.GameConfig) Options {
	opts := DefaultOptions()
	opts.MinPlayers = cfg.MinPlayers
	opts.RoomCodeAttempts = cfg.RoomCodeAttempts
	opts.DisconnectGrace = cfg.DisconnectGrace
	opts.RoomTTL = cfg.RoomTTL
	opts.RoomEmptyTTL = cfg.RoomEmptyTTL
	opts.DefaultFilter = content.Filter{
		Category:   content.Category(cfg.TopicCategory),
		Difficulty: cfg.TopicDifficulty,
	}
	return opts
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.MinPlayers <= 0 {
		o.MinPlayers = d.MinPlayers
	}
	if o.RoomCodeAttempts <= 0 {
		o.RoomCodeAttempts = d.RoomCodeAttempts
	}
	if o.DisconnectGrace <= 0 {
		o.DisconnectGrace = d.DisconnectGrace
	}
	if o.RoomTTL <= 0 {
		o.RoomTTL = d.RoomTTL
	}
	if o.RoomEmptyTTL <= 0 {
		o.RoomEmptyTTL = d.RoomEmptyTTL
	}
	if o.Now == nil {
		o.Now = d.Now
	}
	if o.Rand == nil {
		o.Rand = d.Rand
	}
	if o.NewID == nil {
		o.NewID = d.NewID
	}
	if o.NewCode == nil {
		o.NewCode = d.NewCode
	}
	return o
}

type globalRand struct{}

func (globalRand) Intn(n int) int { return rand.Intn(n) }

// Caller identifies who issued a command. Token proves which player the
// caller is; a non-empty ConnID rebinds that player to the connection the
// command arrived on.
type Caller struct {
	Token  string
	ConnID string
}

// Outcome is the result of a successful command
type Outcome struct {
	Room   *domain.Room
	Player *domain.Player
	Events []*domain.GameEvent

	at      time.Time
	deleted bool
}

func (o *Outcome) broadcast(eventType domain.EventType, payload interface{}) {
	o.Events = append(o.Events, domain.NewEvent(eventType, o.Room.Code, payload, o.at))
}

func (o *Outcome) private(eventType domain.EventType, playerID string, payload interface{}) {
	o.Events = append(o.Events, domain.NewPlayerEvent(eventType, o.Room.Code, playerID, payload, o.at))
}

// Coordinator is the single entry point for room commands. Commands for the
// same room code run one at a time, across every process sharing the store;
// different rooms run in parallel.
type Coordinator struct {
	rooms   store.RoomStore
	catalog *content.Catalog
	opts    Options
	logger  *slog.Logger
	tracer  trace.Tracer
}

// NewCoordinator creates a coordinator over the given store and catalog
func NewCoordinator(rooms store.RoomStore, catalog *content.Catalog, logger *slog.Logger, opts Options) *Coordinator {
	return &Coordinator{
		rooms:   rooms,
		catalog: catalog,
		opts:    opts.withDefaults(),
		logger:  logger,
		tracer:  otel.Tracer(tracerName),
	}
}

// RoomExists reports whether a room is stored under code
func (c *Coordinator) RoomExists(ctx context.Context, code string) (bool, error) {
	return c.rooms.Exists(ctx, domain.NormalizeCode(code))
}

// RoomSummary is the public lobby card for a room
type RoomSummary struct {
	RoomCode    string       `json:"roomCode"`
	Mode        domain.Mode  `json:"mode"`
	Phase       domain.Phase `json:"phase"`
	PlayerCount int          `json:"playerCount"`
	CanJoin     bool         `json:"canJoin"`
}

// Summary reads a room without taking its lock or mutating it
func (c *Coordinator) Summary(ctx context.Context, code string) (*RoomSummary, error) {
	room, err := c.rooms.Load(ctx, domain.NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	return &RoomSummary{
		RoomCode:    room.Code,
		Mode:        room.Mode,
		Phase:       room.Phase,
		PlayerCount: len(room.Players),
		CanJoin:     room.Phase == domain.PhaseLobby,
	}, nil
}

// update runs fn as one atomic step against the stored room: the room is
// loaded under its store lock, tidied, handed to fn, saved only if fn
// succeeds, and published before the lock is released.
func (c *Coordinator) update(ctx context.Context, op, code string, fn func(room *domain.Room, out *Outcome) error) (*Outcome, error) {
	code = domain.NormalizeCode(code)
	ctx, span := c.tracer.Start(ctx, "room."+op, trace.WithAttributes(attribute.String("room.code", code)))
	defer span.End()

	unlock, err := c.rooms.Lock(ctx, code)
	if err != nil {
		c.logger.Error("failed to lock room", "op", op, "roomCode", code, "error", err)
		return nil, c.fail(span, op, code, err)
	}
	defer unlock()

	room, err := c.load(ctx, code)
	if err != nil {
		return nil, c.fail(span, op, code, err)
	}

	out := &Outcome{Room: room, at: c.opts.Now()}
	if err := fn(room, out); err != nil {
		return nil, c.fail(span, op, code, err)
	}

	if out.deleted {
		err = c.rooms.Delete(ctx, code)
	} else {
		err = c.save(ctx, room)
	}
	if err != nil {
		c.logger.Error("failed to persist room", "op", op, "roomCode", code, "error", err)
		return nil, c.fail(span, op, code, err)
	}

	if out.Player != nil {
		span.SetAttributes(attribute.String("player.id", out.Player.ID))
	}
	span.SetAttributes(attribute.String("room.phase", room.Phase.String()))
	c.publish(ctx, out)
	return out, nil
}

func (c *Coordinator) publish(ctx context.Context, out *Outcome) {
	if c.opts.Publish != nil {
		c.opts.Publish(ctx, out)
	}
}

// load fetches a room and applies lazy maintenance. A room with no players
// left after pruning is removed.
func (c *Coordinator) load(ctx context.Context, code string) (*domain.Room, error) {
	room, err := c.rooms.Load(ctx, code)
	if err != nil {
		if !errors.Is(err, domain.ErrRoomNotFound) {
			c.logger.Error("failed to load room", "roomCode", code, "error", err)
		}
		return nil, err
	}

	removed := room.PruneAbandoned(c.opts.DisconnectGrace, c.opts.Now())
	if len(removed) > 0 {
		c.logger.Info("pruned abandoned players", "roomCode", code, "players", removed)
	}
	if len(room.Players) == 0 {
		if err := c.rooms.Delete(ctx, code); err != nil {
			c.logger.Error("failed to delete abandoned room", "roomCode", code, "error", err)
		}
		return nil, domain.ErrRoomNotFound
	}
	return room, nil
}

func (c *Coordinator) save(ctx context.Context, room *domain.Room) error {
	return c.rooms.Save(ctx, room, c.ttlFor(room))
}

func (c *Coordinator) ttlFor(room *domain.Room) time.Duration {
	if room.AnyConnected() {
		return c.opts.RoomTTL
	}
	return c.opts.RoomEmptyTTL
}

func (c *Coordinator) fail(span trace.Span, op, code string, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	c.logger.Debug("command rejected", "op", op, "roomCode", code, "error", err)
	return err
}

// resolveCaller finds the player holding caller.Token and re-syncs their
// connection handle when it changed.
func resolveCaller(room *domain.Room, caller Caller) (*domain.Player, error) {
	player, err := room.PlayerByToken(caller.Token)
	if err != nil {
		return nil, err
	}
	if caller.ConnID != "" && (player.ConnID != caller.ConnID || !player.Connected) {
		return room.Reclaim(caller.Token, caller.ConnID)
	}
	return player, nil
}
