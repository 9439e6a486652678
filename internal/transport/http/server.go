package http

import (
	"context"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"impostor/internal/app"
	"impostor/internal/config"
	"impostor/internal/transport/ws"
)

// Server represents the HTTP server
type Server struct {
	server *http.Server
	engine *gin.Engine
	coord  *app.Coordinator
	hub    *ws.Hub
	config *config.Config
	logger *slog.Logger
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, coord *app.Coordinator, hub *ws.Hub, logger *slog.Logger) *Server {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		engine: gin.New(),
		coord:  coord,
		hub:    hub,
		config: cfg,
		logger: logger,
	}

	s.engine.Use(gin.Recovery(), s.requestLogger(), cors.New(corsConfig(cfg.Server.AllowedOrigins)))
	s.setupRoutes()

	s.server = &http.Server{
		Addr:        cfg.GetAddr(),
		Handler:     s.engine,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	return s
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	api := s.engine.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/stats", s.handleStats)
	api.GET("/rooms/:roomCode", s.handleGetRoom)
	api.GET("/rooms/:roomCode/exists", s.handleRoomExists)

	wsHandler := ws.NewHandler(s.coord, s.hub, ws.HandlerOptions{
		AllowedOrigins:    s.config.Server.AllowedOrigins,
		MessagesPerSecond: s.config.Transport.MessagesPerSecond,
		Burst:             s.config.Transport.Burst,
	}, s.logger)
	s.engine.GET("/ws", gin.WrapH(wsHandler))
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods: []string{"GET", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// requestLogger logs every request except health probes in production
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		if s.config.IsProduction() && path == "/api/health" {
			return
		}
		s.logger.Info("request",
			"method", c.Request.Method,
			"path", path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("server starting", "addr", s.server.Addr)
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server shutting down")
	return s.server.Shutdown(ctx)
}
