package ws

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impostor/internal/app"
	"impostor/internal/domain"
)

var eventTime = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestClient builds a client with no socket; only its send queue is used
func newTestClient(hub *Hub, id string) *Client {
	return NewClient(id, nil, nil, hub, nil, discardLogger())
}

func drain(c *Client) []ServerMessage {
	var msgs []ServerMessage
	for {
		select {
		case data := <-c.send:
			var msg ServerMessage
			if err := json.Unmarshal(data, &msg); err == nil {
				msgs = append(msgs, msg)
			}
		default:
			return msgs
		}
	}
}

func TestHub_DeliversPrivateAndBroadcastEvents(t *testing.T) {
	hub := NewHub(discardLogger())
	alice := newTestClient(hub, "c1")
	bob := newTestClient(hub, "c2")
	outsider := newTestClient(hub, "c3")
	alice.bind("ABCD", "t1", "p1")
	bob.bind("ABCD", "t2", "p2")
	outsider.bind("WXYZ", "t3", "p3")

	hub.Deliver(domain.NewPlayerEvent(domain.EventYourRole, "ABCD", "p2", &domain.YourRolePayload{IsImpostor: true}, eventTime))
	hub.Deliver(domain.NewEvent(domain.EventGameStarted, "ABCD", nil, eventTime))

	aliceMsgs := drain(alice)
	bobMsgs := drain(bob)
	require.Len(t, aliceMsgs, 1)
	require.Len(t, bobMsgs, 2)
	assert.Equal(t, MessageType(domain.EventGameStarted), aliceMsgs[0].Type)
	assert.Equal(t, MessageType(domain.EventYourRole), bobMsgs[0].Type)
	assert.Empty(t, drain(outsider))
}

func TestHub_RebindMovesSubscription(t *testing.T) {
	hub := NewHub(discardLogger())
	c := newTestClient(hub, "c1")

	c.bind("ABCD", "t1", "p1")
	c.bind("WXYZ", "t9", "p9")

	hub.Deliver(domain.NewEvent(domain.EventPlayersUpdated, "ABCD", nil, eventTime))
	assert.Empty(t, drain(c))

	hub.Deliver(domain.NewEvent(domain.EventPlayersUpdated, "WXYZ", nil, eventTime))
	assert.Len(t, drain(c), 1)
	assert.Equal(t, Stats{Rooms: 1}, hub.Stats())
}

func TestHub_RoomEndedDetachesSubscribers(t *testing.T) {
	hub := NewHub(discardLogger())
	c := newTestClient(hub, "c1")
	hub.Register(c)
	c.bind("ABCD", "t1", "p1")

	hub.Deliver(domain.NewEvent(domain.EventRoomEnded, "ABCD", nil, eventTime))

	assert.Len(t, drain(c), 1)
	assert.Empty(t, c.PlayerID())
	code, token := c.binding()
	assert.Empty(t, code)
	assert.Empty(t, token)
	assert.Equal(t, Stats{Rooms: 0, Connections: 1}, hub.Stats())

	hub.Unregister(c)
	assert.Equal(t, Stats{}, hub.Stats())
}

func TestHub_CommitBindsConnectionBeforeDelivery(t *testing.T) {
	hub := NewHub(discardLogger())
	joiner := newTestClient(hub, "c1")
	watcher := newTestClient(hub, "c2")
	hub.Register(joiner)
	hub.Register(watcher)
	watcher.bind("ABCD", "t2", "p2")

	player := domain.NewPlayer("p1", "t1", "c1", "Ana", eventTime)
	out := &app.Outcome{
		Room:   domain.NewRoom("ABCD", domain.ModeClassic, player, eventTime),
		Player: player,
		Events: []*domain.GameEvent{
			domain.NewPlayerEvent(domain.EventRoomJoined, "ABCD", "p1", nil, eventTime),
			domain.NewEvent(domain.EventPlayersUpdated, "ABCD", nil, eventTime),
		},
	}
	hub.Commit(context.Background(), out)

	code, token := joiner.binding()
	assert.Equal(t, "ABCD", code)
	assert.Equal(t, "t1", token)
	assert.Equal(t, "p1", joiner.PlayerID())

	joinerMsgs := drain(joiner)
	require.Len(t, joinerMsgs, 2)
	assert.Equal(t, MessageType(domain.EventRoomJoined), joinerMsgs[0].Type)
	assert.Equal(t, MessageType(domain.EventPlayersUpdated), joinerMsgs[1].Type)

	watcherMsgs := drain(watcher)
	require.Len(t, watcherMsgs, 1)
	assert.Equal(t, MessageType(domain.EventPlayersUpdated), watcherMsgs[0].Type)
}

func TestHub_CommitLeavesGoneConnectionUnbound(t *testing.T) {
	hub := NewHub(discardLogger())
	c := newTestClient(hub, "c1")
	hub.Register(c)

	player := domain.NewPlayer("p1", "t1", "c1", "Ana", eventTime)
	room := domain.NewRoom("ABCD", domain.ModeClassic, player, eventTime)
	player.Disconnect(eventTime)

	hub.Commit(context.Background(), &app.Outcome{
		Room:   room,
		Player: player,
		Events: []*domain.GameEvent{domain.NewEvent(domain.EventPlayersUpdated, "ABCD", nil, eventTime)},
	})

	code, _ := c.binding()
	assert.Empty(t, code)
	assert.Empty(t, drain(c))
	assert.Equal(t, Stats{Connections: 1}, hub.Stats())
}
