package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"impostor/internal/content"
	"impostor/internal/domain"
	"impostor/internal/store"
)

var epoch = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

type fixedRand int

func (f fixedRand) Intn(n int) int { return int(f) % n }

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type seqIDs struct {
	mu sync.Mutex
	n  int
}

func (s *seqIDs) Next() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id%d", s.n)
}

var testTopics = []content.Topic{
	{ID: "messi", Name: "Lionel Messi", Categories: []content.Category{content.CategorySports}, Difficulty: 1, Active: true},
	{ID: "aitana", Name: "Aitana", Categories: []content.Category{content.CategoryMusic}, Difficulty: 1, Active: true},
}

type harness struct {
	coord  *Coordinator
	rooms  store.RoomStore
	clock  *testClock
	opts   Options
	logger *slog.Logger
}

func newHarness(t *testing.T, mutate ...func(*Options)) *harness {
	t.Helper()
	return newHarnessWithStore(t, store.NewMemoryStore(), mutate...)
}

func newHarnessWithStore(t *testing.T, rooms store.RoomStore, mutate ...func(*Options)) *harness {
	t.Helper()

	clock := &testClock{now: epoch}
	ids := &seqIDs{}
	opts := Options{
		Now:   clock.Now,
		Rand:  fixedRand(1),
		NewID: ids.Next,
	}
	for _, m := range mutate {
		m(&opts)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &harness{
		coord:  NewCoordinator(rooms, content.NewCatalog(testTopics), logger, opts),
		rooms:  rooms,
		clock:  clock,
		opts:   opts,
		logger: logger,
	}
}

// sibling is a second coordinator over rooms sharing h's clock, ids and
// options, the way another server process would run against one Redis.
func (h *harness) sibling(rooms store.RoomStore) *Coordinator {
	return NewCoordinator(rooms, content.NewCatalog(testTopics), h.logger, h.opts)
}

// publishLog records every event handed to the publisher, in publish order
type publishLog struct {
	mu     sync.Mutex
	events []*domain.GameEvent
}

func (l *publishLog) publish(_ context.Context, out *Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, out.Events...)
}

func (l *publishLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = nil
}

func (l *publishLog) snapshot() []*domain.GameEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*domain.GameEvent(nil), l.events...)
}

// voteCounts lists the voted counts of every voteProgress event and how many
// round results were seen
func voteCounts(events []*domain.GameEvent) (counts []int, results int) {
	for _, e := range events {
		switch e.Type {
		case domain.EventVoteProgress:
			counts = append(counts, e.Payload.(*domain.VoteProgressPayload).VotedCount)
		case domain.EventRoundResult:
			results++
		}
	}
	return counts, results
}

// seat is a joined player as a client sees it
type seat struct {
	ID    string
	Token string
	Conn  string
}

func (s seat) caller() Caller {
	return Caller{Token: s.Token, ConnID: s.Conn}
}

func seatOf(out *Outcome, conn string) seat {
	return seat{ID: out.Player.ID, Token: out.Player.Token, Conn: conn}
}

// lobby creates a room with n players; seats[0] is the host
func (h *harness) lobby(t *testing.T, n int, mode domain.Mode) (string, []seat) {
	t.Helper()
	ctx := context.Background()

	out, err := h.coord.CreateRoom(ctx, "Player 1", mode, "conn1")
	require.NoError(t, err)
	code := out.Room.Code
	seats := []seat{seatOf(out, "conn1")}

	for i := 2; i <= n; i++ {
		h.clock.Advance(time.Second)
		conn := fmt.Sprintf("conn%d", i)
		out, err := h.coord.JoinRoom(ctx, code, fmt.Sprintf("Player %d", i), conn)
		require.NoError(t, err)
		seats = append(seats, seatOf(out, conn))
	}
	return code, seats
}

// toVoting starts a classic game and plays one full word round
func (h *harness) toVoting(t *testing.T, code string, seats []seat) *domain.Room {
	t.Helper()
	ctx := context.Background()

	_, err := h.coord.StartGame(ctx, code, seats[0].caller(), nil)
	require.NoError(t, err)
	out, err := h.coord.StartWordsRound(ctx, code, seats[0].caller())
	require.NoError(t, err)

	return h.playWords(t, code, seats, out.Room.BaseOrder, out.Room.RoundStartIndex)
}

func (h *harness) playWords(t *testing.T, code string, seats []seat, order []string, start int) *domain.Room {
	t.Helper()
	ctx := context.Background()

	byID := make(map[string]seat, len(seats))
	for _, s := range seats {
		byID[s.ID] = s
	}

	var out *Outcome
	for i := range order {
		speaker := byID[order[(start+i)%len(order)]]
		var err error
		out, err = h.coord.SubmitWord(ctx, code, speaker.caller(), "word-"+speaker.ID)
		require.NoError(t, err)
	}
	require.Equal(t, domain.PhaseVoting, out.Room.Phase)
	return out.Room
}

func (h *harness) load(t *testing.T, code string) *domain.Room {
	t.Helper()
	room, err := h.rooms.Load(context.Background(), code)
	require.NoError(t, err)
	return room
}

func eventTypes(out *Outcome) []domain.EventType {
	types := make([]domain.EventType, 0, len(out.Events))
	for _, e := range out.Events {
		types = append(types, e.Type)
	}
	return types
}

func countEvents(out *Outcome, eventType domain.EventType) int {
	n := 0
	for _, e := range out.Events {
		if e.Type == eventType {
			n++
		}
	}
	return n
}
