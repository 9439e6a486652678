package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"impostor/internal/domain"
	"impostor/internal/transport/ws"
)

// Response is a standard API response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo contains error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// RoomExistsResponse is the response for checking if room exists
type RoomExistsResponse struct {
	Exists bool `json:"exists"`
}

// HealthResponse is the response for health check
type HealthResponse struct {
	Status string `json:"status"`
}

// handleGetRoom handles GET /api/rooms/:roomCode
func (s *Server) handleGetRoom(c *gin.Context) {
	summary, err := s.coord.Summary(c.Request.Context(), c.Param("roomCode"))
	if err != nil {
		if errors.Is(err, domain.ErrRoomNotFound) {
			s.sendError(c, http.StatusNotFound, ws.ErrCodeRoomNotFound, "Room not found")
			return
		}
		s.logger.Error("failed to load room", "roomCode", c.Param("roomCode"), "error", err)
		s.sendError(c, http.StatusInternalServerError, ws.ErrCodeInternalError, "Internal server error")
		return
	}

	s.sendSuccess(c, summary)
}

// handleRoomExists handles GET /api/rooms/:roomCode/exists
func (s *Server) handleRoomExists(c *gin.Context) {
	exists, err := s.coord.RoomExists(c.Request.Context(), c.Param("roomCode"))
	if err != nil {
		s.logger.Error("failed to check room", "roomCode", c.Param("roomCode"), "error", err)
		s.sendError(c, http.StatusInternalServerError, ws.ErrCodeInternalError, "Internal server error")
		return
	}

	s.sendSuccess(c, &RoomExistsResponse{Exists: exists})
}

// handleHealth handles GET /api/health
func (s *Server) handleHealth(c *gin.Context) {
	s.sendSuccess(c, &HealthResponse{Status: "ok"})
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(c *gin.Context) {
	s.sendSuccess(c, s.hub.Stats())
}

func (s *Server) sendSuccess(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, &Response{
		Success: true,
		Data:    data,
	})
}

func (s *Server) sendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	})
}
