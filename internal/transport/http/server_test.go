package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"impostor/internal/app"
	"impostor/internal/config"
	"impostor/internal/content"
	"impostor/internal/domain"
	"impostor/internal/store"
	"impostor/internal/transport/ws"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestServer(t *testing.T, origins ...string) (*Server, *app.Coordinator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	cfg := &config.Config{}
	cfg.Server.Env = "development"
	cfg.Server.AllowedOrigins = origins

	hub := ws.NewHub(logger)
	opts := app.DefaultOptions()
	opts.Publish = hub.Commit
	coord := app.NewCoordinator(store.NewMemoryStore(), content.Default(), logger, opts)
	return NewServer(cfg, coord, hub, logger), coord
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestHandleHealth(t *testing.T) {
	s, _ := newTestServer(t)

	rec, resp := get(t, s, "/api/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"status": "ok"}, resp.Data)
}

func TestHandleRoomExists(t *testing.T) {
	s, coord := newTestServer(t)
	out, err := coord.CreateRoom(context.Background(), "Ana", domain.ModeClassic, "conn1")
	require.NoError(t, err)

	_, resp := get(t, s, "/api/rooms/"+strings.ToLower(out.Room.Code)+"/exists")
	assert.Equal(t, map[string]interface{}{"exists": true}, resp.Data)

	_, resp = get(t, s, "/api/rooms/QQQQ/exists")
	assert.Equal(t, map[string]interface{}{"exists": false}, resp.Data)
}

func TestHandleGetRoom(t *testing.T) {
	s, coord := newTestServer(t)
	out, err := coord.CreateRoom(context.Background(), "Ana", domain.ModeManual, "conn1")
	require.NoError(t, err)

	rec, resp := get(t, s, "/api/rooms/"+out.Room.Code)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]interface{}{
		"roomCode":    out.Room.Code,
		"mode":        "manual",
		"phase":       "lobby",
		"playerCount": float64(1),
		"canJoin":     true,
	}, resp.Data)

	rec, resp = get(t, s, "/api/rooms/QQQQ")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ws.ErrCodeRoomNotFound, resp.Error.Code)
}

func TestHandleStats(t *testing.T) {
	s, _ := newTestServer(t)

	_, resp := get(t, s, "/api/stats")
	assert.Equal(t, map[string]interface{}{"rooms": float64(0), "connections": float64(0)}, resp.Data)
}

func TestCORS(t *testing.T) {
	s, _ := newTestServer(t, "https://play.example")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://play.example")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://play.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCORS_AllowAll(t *testing.T) {
	s, _ := newTestServer(t, "*")

	req := httptest.NewRequest(http.MethodOptions, "/api/stats", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
