package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pipeline_rescue/internal/broadcast"
	"pipeline_rescue/internal/config"
	"pipeline_rescue/internal/game"
	httpServer "pipeline_rescue/internal/http"
	"pipeline_rescue/internal/http/middleware"
	"pipeline_rescue/internal/logger"
	"pipeline_rescue/internal/repository"
	"pipeline_rescue/internal/scoring"

	"github.com/gin-gonic/gin"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	clock := clockwork.NewRealClock()

	sites := repository.NewSiteRepository(cfg.DataDir)

	var model *scoring.Model
	features := make([]scoring.Features, 0, len(sites.Sites()))
	for _, s := range sites.Sites() {
		features = append(features, s.Features)
	}
	if m, err := scoring.Train(features); err != nil {
		// keep the API alive; /validate answers 500 until data shows up
		logger.Warn("scoring model not trained", "err", err)
	} else {
		model = m
		logger.Info("scoring model trained", "sites", len(features))
	}

	state := game.NewState(cfg.TotalDuration, sites.Mapping(), clock)
	hub := broadcast.NewHub()

	r := gin.Default()

	// CORS for production (frontend on different domain)
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Auth-A")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		}
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	})

	middleware.InitRedisRateLimiter(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	httpServer.RegisterRoutes(r, cfg, state, hub, sites, model, clock)

	srv := &http.Server{
		Addr:    ":" + cfg.AppPort,
		Handler: r,
	}

	go func() {
		logger.Info("server started", "port", cfg.AppPort, "total_duration", cfg.TotalDuration.String())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", "err", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	// drop live subscribers first so ws/sse loops drain inside the grace period
	hub.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", "err", err)
	}

	logger.Info("server exited")
}
