package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairlink/pairlink-server/internal/auth"
	"github.com/pairlink/pairlink-server/internal/core"
)

// APIHandlers provides HTTP handlers for REST API endpoints.
type APIHandlers struct {
	hub      *core.Hub
	sessions *auth.SessionConfig
	log      *zerolog.Logger
}

// NewAPIHandlers creates a new API handlers instance.
func NewAPIHandlers(hub *core.Hub, sessions *auth.SessionConfig, logger *zerolog.Logger) *APIHandlers {
	return &APIHandlers{
		hub:      hub,
		sessions: sessions,
		log:      logger,
	}
}

// SessionResponse represents the guest session response body.
type SessionResponse struct {
	Token   string `json:"token"`
	GuestID string `json:"guestId"`
}

// ErrorResponse represents an error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Health reports server liveness.
// GET /health
func (h *APIHandlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// Stats returns a snapshot of connected clients, waiting queue length
// and active rooms.
// GET /api/stats
func (h *APIHandlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.hub.Stats())
}

// CreateSession issues an anonymous guest session token. The token is
// optional: it only gives the client a stable display identity across
// reconnects.
// POST /api/session
func (h *APIHandlers) CreateSession(c *gin.Context) {
	token, guestID, err := auth.MintGuestToken(h.sessions)
	if err != nil {
		h.log.Error().Err(err).Msg("failed to mint guest token")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
		return
	}

	h.log.Debug().Str("guest_id", guestID).Msg("guest session created")
	c.JSON(http.StatusCreated, SessionResponse{Token: token, GuestID: guestID})
}
