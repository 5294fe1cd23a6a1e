package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mr1hm/go-biodiversity-dashboard/internal/api"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/config"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/events"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/logging"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/observability"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/repository"
	"github.com/mr1hm/go-biodiversity-dashboard/internal/session"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatalf("Fatal while loading config: %v", err)
	}
	logging.Setup(cfg.Logging.Level)

	params, err := config.LoadScenario(cfg.Synth.ScenarioPath)
	if err != nil {
		logging.Fatalf("Failed to load scenario: %v", err)
	}

	slog.Info("Server starting", "host", cfg.Server.Host, "port", cfg.Server.Port, "seed", cfg.Synth.Seed)

	db, err := repository.NewSQLiteDB(cfg.DB.Path)
	if err != nil {
		logging.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	broadcaster := events.NewBroadcaster()

	sessions := session.NewManager(cfg, params, db, broadcaster, metrics)
	sessions.Start(ctx)

	// Gin router
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: false, // Set to false when using wildcard origins
	}))
	router.Use(api.MetricsMiddleware(metrics))
	limiter := api.NewClientLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitIdle, nil)
	go limiter.Run(ctx, cfg.Session.SweepInterval)
	router.Use(limiter.Middleware())

	handler := api.NewHandler(sessions, broadcaster, metrics, cfg.Ensemble.Workers)
	handler.RegisterRoutes(router)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down...")

	cancel()
	sessions.Stop()
	broadcaster.Close() // Close all streams gracefully

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
}
