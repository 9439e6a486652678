package ws

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"impostor/internal/app"
)

// HandlerOptions tunes accepted origins and per-connection flood control
type HandlerOptions struct {
	AllowedOrigins    []string
	MessagesPerSecond float64
	Burst             int
}

// Handler handles WebSocket connections
type Handler struct {
	coord    *app.Coordinator
	hub      *Hub
	opts     HandlerOptions
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(coord *app.Coordinator, hub *Hub, opts HandlerOptions, logger *slog.Logger) *Handler {
	if opts.MessagesPerSecond <= 0 {
		opts.MessagesPerSecond = 10
	}
	if opts.Burst <= 0 {
		opts.Burst = 20
	}

	h := &Handler{
		coord:  coord,
		hub:    hub,
		opts:   opts,
		logger: logger,
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 || slices.Contains(h.opts.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(h.opts.AllowedOrigins, origin)
}

// ServeHTTP upgrades the request and serves the connection until it closes.
// Room membership is established by messages, not by the URL.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error("websocket upgrade failed", "error", err)
		return
	}

	connID := uuid.NewString()
	limiter := rate.NewLimiter(rate.Limit(h.opts.MessagesPerSecond), h.opts.Burst)
	client := NewClient(connID, conn, h.coord, h.hub, limiter, h.logger)

	h.logger.Info("websocket connected", "connID", connID, "remote", r.RemoteAddr)
	client.Run()
	h.logger.Info("websocket disconnected", "connID", connID)
}
