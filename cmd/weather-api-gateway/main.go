package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/i474232898/weather-api-gateway/internal/api/http"
	"github.com/i474232898/weather-api-gateway/internal/config"
	"github.com/i474232898/weather-api-gateway/internal/diag"
	"github.com/i474232898/weather-api-gateway/internal/providers"
	"github.com/i474232898/weather-api-gateway/internal/ratelimit"
	"github.com/i474232898/weather-api-gateway/internal/scheduler"
)

func main() {
	// Load configuration (.env is folded into the environment there).
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if !cfg.KeyConfigured() {
		log.Printf("INFO: OPENCAGE_API_KEY not set; geocoding endpoints will answer 503")
	}

	// Shared HTTP client for outbound provider calls.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	weather := providers.NewOpenMeteoClient(httpClient, cfg.OpenMeteoBaseURL)
	geo := providers.NewOpenCageClient(httpClient, cfg.OpenCageAPIKey, cfg.OpenCageBaseURL)

	// Per-client fixed windows, swept on the window cadence so idle clients
	// do not accumulate state.
	limits := ratelimit.NewStore(cfg.RateLimitMax, cfg.RateLimitWindow)
	sched := scheduler.New(limits, cfg.RateLimitWindow)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	app := httpapi.New(httpapi.Deps{
		Cfg:     cfg,
		Limits:  limits,
		Diag:    diag.New(cfg, weather, geo),
		Weather: weather,
		Geo:     geo,
		Started: time.Now(),
	})

	// Start server with graceful shutdown
	go func() {
		log.Printf("INFO: listening on :%s (env %s)", cfg.Port, cfg.Env)
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
