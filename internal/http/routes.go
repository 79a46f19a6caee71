package http

import (
	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/config"
	"pipeline_rescue/internal/game"
	"pipeline_rescue/internal/http/handlers"
	"pipeline_rescue/internal/http/middleware"
	"pipeline_rescue/internal/repository"
	"pipeline_rescue/internal/scoring"
	"pipeline_rescue/internal/ws"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
)

// RegisterRoutes wires the game core into the public endpoints. The wire
// contract is flat (no version prefix): the two player frontends hardcode
// these paths.
func RegisterRoutes(r *gin.Engine, cfg *config.Config, state *game.State, hub *broadcast.Hub, sites *repository.SiteRepository, model *scoring.Model, clock clockwork.Clock) {
	h := handlers.NewHandler(state, hub, sites, model, clock, cfg.Penalty)
	healthHandler := handlers.NewHealthHandler(h, "")

	// Health checks (no rate limiting)
	r.GET("/health", healthHandler.Health)
	r.GET("/healthz", healthHandler.Liveness)
	r.GET("/readyz", healthHandler.Readiness)

	rl := middleware.RedisRateLimit(cfg.APIRateLimit, cfg.APIRateWindow)

	// Shared timer
	r.GET("/timer", rl, h.Timer)
	r.POST("/timer/start", rl, h.TimerStart)
	r.POST("/timer/sync", rl, h.TimerSync)

	// Live channels: same frames, two transports
	r.GET("/timer/ws", ws.Handle(state, hub, clock, cfg.AllowedOrigin))
	r.GET("/timer/stream", h.Stream)

	// Gameplay checks
	r.GET("/puzzle/image", h.PuzzleImage)
	r.POST("/puzzle/validate", rl, h.PuzzleValidate)
	r.POST("/predict", rl, h.Predict)
	r.POST("/validate", rl, h.Validate)
	r.POST("/final", rl, h.Final)

	// Data downloads
	r.GET("/country/:code", rl, h.Country)

	// New round; cheap in-memory limiter is enough here
	r.POST("/game/reset", middleware.SimpleRateLimit(10, cfg.APIRateWindow), h.Reset)
}
