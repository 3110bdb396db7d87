package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// OpenCageAPIKey authorizes calls to the geocoding provider. When empty
	// the /api/map routes answer 503 and diagnostics report SKIP; startup
	// never fails on it.
	OpenCageAPIKey string

	// OpenMeteoBaseURL points at the forecast provider. Overridable for
	// testing against a local stand-in.
	OpenMeteoBaseURL string

	// OpenCageBaseURL points at the geocoding provider.
	OpenCageBaseURL string

	// FrontendOrigin is the deployed frontend allowed by the exact CORS list.
	FrontendOrigin string

	// AllowedOrigins is the exact-match allow-list (FrontendOrigin plus the
	// local dev origins).
	AllowedOrigins []string

	// AllowedOriginSuffixes are hosting-platform patterns; any origin
	// containing one of them is allowed.
	AllowedOriginSuffixes []string

	// Rate limiting for the /api surface.
	RateLimitMax    int
	RateLimitWindow time.Duration

	// HTTPTimeout bounds the shared outbound HTTP client.
	HTTPTimeout time.Duration

	// DiagTimeout is the per-check budget inside the diagnostics aggregator.
	DiagTimeout time.Duration

	Env  string
	Port string
}

// defaultDevOrigins are always on the exact allow-list so local frontends
// work without configuration.
var defaultDevOrigins = []string{
	"http://localhost:5173",
	"http://localhost:3000",
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenCageAPIKey = os.Getenv("OPENCAGE_API_KEY")
	cfg.OpenMeteoBaseURL = getenvDefault("OPEN_METEO_BASE_URL", "https://api.open-meteo.com/v1/forecast")
	cfg.OpenCageBaseURL = getenvDefault("OPENCAGE_BASE_URL", "https://api.opencagedata.com/geocode/v1/json")

	cfg.FrontendOrigin = os.Getenv("FRONTEND_ORIGIN")
	cfg.AllowedOrigins = append([]string{}, defaultDevOrigins...)
	if cfg.FrontendOrigin != "" {
		cfg.AllowedOrigins = append(cfg.AllowedOrigins, cfg.FrontendOrigin)
	}
	cfg.AllowedOriginSuffixes = splitList(getenvDefault("ALLOWED_ORIGIN_SUFFIXES", ".vercel.app,.netlify.app"))

	cfg.RateLimitMax = getenvInt("RATE_LIMIT_MAX", 300)

	var err error
	if cfg.RateLimitWindow, err = getenvDuration("RATE_LIMIT_WINDOW", 15*time.Minute); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if cfg.DiagTimeout, err = getenvDuration("DIAG_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}

	cfg.Env = getenvDefault("APP_ENV", "development")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// KeyConfigured reports whether the geocoding credential is present.
func (c *AppConfig) KeyConfigured() bool {
	return c.OpenCageAPIKey != ""
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
