package httpapi

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-api-gateway/internal/common"
	"github.com/i474232898/weather-api-gateway/internal/config"
	"github.com/i474232898/weather-api-gateway/internal/diag"
	"github.com/i474232898/weather-api-gateway/internal/providers"
	"github.com/i474232898/weather-api-gateway/internal/ratelimit"
)

var validate = validator.New()

// Deps carries everything the HTTP layer needs.
type Deps struct {
	Cfg     *config.AppConfig
	Limits  *ratelimit.Store
	Diag    *diag.Aggregator
	Weather *providers.OpenMeteoClient
	Geo     *providers.OpenCageClient
	Started time.Time
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. The catch-all
// 404 goes last; middleware must already be registered.
func RegisterRoutes(app *fiber.App, deps Deps) {
	// Liveness probe. Outside /api so load balancers are never rate limited.
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":        "ok",
			"service":       "weather-api-gateway",
			"env":           deps.Cfg.Env,
			"uptimeSeconds": int64(time.Since(deps.Started).Seconds()),
		})
	})

	api := app.Group("/api")

	api.Get("/test", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "weather-api-gateway is up",
			"endpoints": fiber.Map{
				"health":    "GET /health",
				"test":      "GET /api/test",
				"ratelimit": "GET /api/ratelimit",
				"check":     "GET /api/check",
				"debug":     "GET /api/debug",
				"weather":   "GET /api/weather/current, GET /api/weather/forecast",
				"map":       "GET /api/map/geocode, GET /api/map/reverse",
			},
			"rateLimit": fiber.Map{
				"max":      deps.Cfg.RateLimitMax,
				"windowMs": deps.Cfg.RateLimitWindow.Milliseconds(),
			},
		})
	})

	// Window introspection. Reads the caller's counters without consuming
	// quota beyond the request itself.
	api.Get("/ratelimit", func(c *fiber.Ctx) error {
		d := deps.Limits.Peek(ratelimit.ClientKey(c))
		return c.JSON(fiber.Map{
			"limit":         d.Limit,
			"used":          d.Used,
			"remaining":     d.Remaining,
			"resetSeconds":  d.ResetSeconds(),
			"windowSeconds": int64(deps.Cfg.RateLimitWindow.Seconds()),
		})
	})

	// Upstream diagnostics. Always 200; failures are data in the report.
	api.Get("/check", func(c *fiber.Ctx) error {
		return c.JSON(deps.Diag.Run(c.UserContext()))
	})

	api.Get("/debug", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"env":            deps.Cfg.Env,
			"port":           deps.Cfg.Port,
			"frontendOrigin": deps.Cfg.FrontendOrigin,
			"weatherBaseUrl": deps.Cfg.OpenMeteoBaseURL,
			"opencageKey":    common.Mask(deps.Cfg.OpenCageAPIKey, 4),
		})
	})

	registerWeatherRoutes(api.Group("/weather"), deps.Weather)
	registerGeocodeRoutes(api.Group("/map"), deps.Geo)

	// Anything unmatched answers with the path echoed back.
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Not Found",
			"path":  c.Path(),
		})
	})
}
