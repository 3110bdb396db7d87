package httpapi

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/i474232898/weather-api-gateway/internal/origin"
	"github.com/i474232898/weather-api-gateway/internal/ratelimit"
)

// New assembles the Fiber app: panic recovery first, then the origin policy,
// rate limiting scoped to /api, request ids and access logging, and finally
// the routes. The limiter must see every /api request before any handler
// runs, including requests that end up at the 404 catch-all.
func New(deps Deps) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "weather-api-gateway",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler:          errorHandler,
	})

	app.Use(recover.New(recover.Config{EnableStackTrace: true}))

	policy := origin.NewPolicy(deps.Cfg.AllowedOrigins, deps.Cfg.AllowedOriginSuffixes)
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: policy.Allow,
		ExposeHeaders:    "X-RateLimit-Limit,X-RateLimit-Remaining,X-RateLimit-Reset,Retry-After",
	}))

	app.Use("/api", ratelimit.New(deps.Limits))

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.New(logger.Config{
		Format: "${time} | ${locals:requestid} | ${status} | ${latency} | ${ip} | ${method} ${path} ${error}\n",
	}))

	RegisterRoutes(app, deps)

	return app
}

// errorHandler is the terminal stop for anything a handler returned or a
// panic the recover middleware converted. Detail goes to the log; callers get
// the message with a matching status.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}
	log.Printf("ERROR: %s %s -> %d: %v", c.Method(), c.Path(), code, err)
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
