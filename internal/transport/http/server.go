package http

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pairlink/pairlink-server/internal/auth"
	"github.com/pairlink/pairlink-server/internal/config"
	"github.com/pairlink/pairlink-server/internal/core"
)

// NewServer builds the HTTP server: health, stats, guest sessions and
// the WebSocket endpoint.
func NewServer(hub *core.Hub, sessions *auth.SessionConfig, cfg config.Config, logger *zerolog.Logger) *stdhttp.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(RequestLogger(logger), gin.Recovery())

	api := NewAPIHandlers(hub, sessions, logger)
	router.GET("/health", api.Health)
	router.GET("/api/stats", api.Stats)
	router.POST("/api/session", api.CreateSession)

	// The WebSocket upgrade must hijack the raw connection, which gin's
	// wrapped response writer does not allow; route /ws around the
	// router and everything else through it.
	mux := stdhttp.NewServeMux()
	mux.Handle("/ws", NewWSHandler(hub, sessions, logger))
	mux.Handle("/", router)

	return &stdhttp.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}
