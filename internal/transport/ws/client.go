package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"impostor/internal/app"
	"impostor/internal/content"
	"impostor/internal/domain"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Size of the send channel buffer
	sendBufferSize = 256

	// Upper bound for one command's store round trips
	commandTimeout = 5 * time.Second
)

// Client is one websocket connection. It is bound to at most one room seat
// at a time; the binding follows whichever player the last command
// attached to this connection.
type Client struct {
	id      string
	conn    *websocket.Conn
	coord   *app.Coordinator
	hub     *Hub
	limiter *rate.Limiter
	send    chan []byte
	done    chan struct{}
	logger  *slog.Logger

	mu       sync.Mutex
	closed   bool
	roomCode string
	token    string
	playerID string
}

// NewClient creates a new WebSocket client
func NewClient(id string, conn *websocket.Conn, coord *app.Coordinator, hub *Hub, limiter *rate.Limiter, logger *slog.Logger) *Client {
	return &Client{
		id:      id,
		conn:    conn,
		coord:   coord,
		hub:     hub,
		limiter: limiter,
		send:    make(chan []byte, sendBufferSize),
		done:    make(chan struct{}),
		logger:  logger.With("connID", id),
	}
}

// ID returns the connection handle
func (c *Client) ID() string {
	return c.id
}

// PlayerID returns the player bound to this connection, if any
func (c *Client) PlayerID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.playerID
}

func (c *Client) binding() (roomCode, token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.roomCode, c.token
}

func (c *Client) bind(roomCode, token, playerID string) {
	c.mu.Lock()
	previous := c.roomCode
	c.roomCode, c.token, c.playerID = roomCode, token, playerID
	c.mu.Unlock()

	if previous != "" && previous != roomCode {
		c.hub.Unsubscribe(previous, c)
	}
	c.hub.Subscribe(roomCode, c)
}

func (c *Client) unbind(roomCode string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.roomCode == roomCode {
		c.roomCode, c.token, c.playerID = "", "", ""
	}
}

// Send queues a JSON message for the peer
func (c *Client) Send(message interface{}) error {
	data, err := json.Marshal(message)
	if err != nil {
		return err
	}
	c.sendRaw(data)
	return nil
}

func (c *Client) sendRaw(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	select {
	case c.send <- data:
	default:
		// Buffer full, message dropped
		c.logger.Warn("send buffer full, message dropped", "playerID", c.playerID)
	}
}

// Close closes the connection once
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	c.closed = true
	close(c.done)
	return c.conn.Close()
}

// Run starts the client's read and write pumps and blocks until the peer
// goes away.
func (c *Client) Run() {
	c.hub.Register(c)
	_ = c.Send(NewServerMessage(MsgConnected, &ConnectedPayload{ConnectionID: c.id}))

	go c.writePump()
	c.readPump()
}

// readPump pumps messages from the WebSocket connection
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.disconnect()
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.Debug("websocket read error", "error", err)
			}
			break
		}

		if !c.limiter.Allow() {
			c.sendError(ErrCodeRateLimited, "Too many messages")
			continue
		}
		c.handleMessage(message)
	}
}

// disconnect tells the coordinator this connection is gone. If the player
// has already moved to another connection nothing changes.
func (c *Client) disconnect() {
	roomCode, _ := c.binding()
	if roomCode == "" {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	_, err := c.coord.Disconnect(ctx, roomCode, c.id)
	if err != nil && !errors.Is(err, domain.ErrPlayerNotFound) && !errors.Is(err, domain.ErrRoomNotFound) {
		c.logger.Error("failed to record disconnect", "roomCode", roomCode, "error", err)
	}
}

// writePump pumps messages from the send channel to the WebSocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return
		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// handleMessage decodes one client message and runs the matching command
func (c *Client) handleMessage(data []byte) {
	var msg ClientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		c.sendError(ErrCodeInvalidMessage, "Invalid message format")
		return
	}

	if msg.Type == MsgPing {
		c.sendPong()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	// Successful outcomes reach the hub through the coordinator's publisher.
	if _, err := c.dispatch(ctx, msg); err != nil {
		var decodeErr *payloadError
		if errors.As(err, &decodeErr) {
			c.sendError(decodeErr.code, decodeErr.message)
			return
		}
		code := ErrorCode(err)
		if code == ErrCodeInternalError {
			c.logger.Error("command failed", "type", msg.Type, "error", err)
			c.sendError(code, "Internal server error")
			return
		}
		c.sendError(code, err.Error())
	}
}

type payloadError struct {
	code    string
	message string
}

func (e *payloadError) Error() string { return e.message }

func decodePayload(raw json.RawMessage, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return &payloadError{code: ErrCodeInvalidMessage, message: "Invalid payload"}
	}
	return nil
}

// target resolves the room and caller a room command applies to
func (c *Client) target(p RoomCommandPayload) (string, app.Caller, error) {
	roomCode, token := c.binding()
	if p.RoomCode != "" {
		roomCode = p.RoomCode
	}
	if p.Token != "" {
		token = p.Token
	}
	if roomCode == "" || token == "" {
		return "", app.Caller{}, &payloadError{code: ErrCodeNotInRoom, message: "Join a room first"}
	}
	return roomCode, app.Caller{Token: token, ConnID: c.id}, nil
}

func (c *Client) dispatch(ctx context.Context, msg ClientMessage) (*app.Outcome, error) {
	switch msg.Type {
	case MsgCreateRoom:
		var p CreateRoomPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return c.coord.CreateRoom(ctx, p.Name, p.Mode, c.id)

	case MsgJoinRoom:
		var p JoinRoomPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return c.coord.JoinRoom(ctx, p.RoomCode, p.Name, c.id)

	case MsgJoinOrRejoin:
		var p JoinOrRejoinPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return c.coord.JoinOrRejoin(ctx, p.RoomCode, p.Name, p.Token, c.id)

	case MsgRejoinRoom:
		var p RejoinRoomPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return c.coord.RejoinRoom(ctx, p.RoomCode, p.Token, c.id)

	case MsgStartGame, MsgRestartGame:
		var p StartGamePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		code, caller, err := c.target(p.RoomCommandPayload)
		if err != nil {
			return nil, err
		}
		filter := topicFilter(p)
		if msg.Type == MsgRestartGame {
			return c.coord.RestartGame(ctx, code, caller, filter)
		}
		return c.coord.StartGame(ctx, code, caller, filter)

	case MsgSubmitWord:
		var p SubmitWordPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		code, caller, err := c.target(p.RoomCommandPayload)
		if err != nil {
			return nil, err
		}
		return c.coord.SubmitWord(ctx, code, caller, p.Word)

	case MsgSubmitVote:
		var p SubmitVotePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		code, caller, err := c.target(p.RoomCommandPayload)
		if err != nil {
			return nil, err
		}
		return c.coord.SubmitVote(ctx, code, caller, p.TargetID)

	case MsgStartWordsRound, MsgStartNextRound, MsgSkipTurn, MsgEndGame:
		var p RoomCommandPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		code, caller, err := c.target(p)
		if err != nil {
			return nil, err
		}
		switch msg.Type {
		case MsgStartWordsRound:
			return c.coord.StartWordsRound(ctx, code, caller)
		case MsgStartNextRound:
			return c.coord.StartNextRound(ctx, code, caller)
		case MsgSkipTurn:
			return c.coord.SkipTurn(ctx, code, caller)
		default:
			return c.coord.EndGame(ctx, code, caller)
		}
	}

	return nil, &payloadError{code: ErrCodeInvalidMessage, message: "Unknown message type"}
}

// topicFilter returns nil when the client left the filter to the server
func topicFilter(p StartGamePayload) *content.Filter {
	if p.Category == "" && p.Difficulty == 0 {
		return nil
	}
	return &content.Filter{Category: content.Category(p.Category), Difficulty: p.Difficulty}
}

// sendError sends an error message to the client
func (c *Client) sendError(code, message string) {
	payload := &ErrorPayload{
		Code:    code,
		Message: message,
	}

	msg := NewServerMessage(MsgError, payload)
	c.Send(msg)
}

// sendPong sends a pong message in response to ping
func (c *Client) sendPong() {
	msg := NewServerMessage(MsgPong, nil)
	c.Send(msg)
}
