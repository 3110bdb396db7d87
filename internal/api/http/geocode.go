package httpapi

import (
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-api-gateway/internal/providers"
)

// geocodeQuery holds query parameters for forward geocoding.
type geocodeQuery struct {
	Query string `validate:"required"`
	Limit int    `validate:"gte=1,lte=10"`
}

func registerGeocodeRoutes(r fiber.Router, client *providers.OpenCageClient) {
	// Both routes answer 503 without a credential so the frontend can tell
	// "not configured" apart from "provider down".
	r.Use(func(c *fiber.Ctx) error {
		if !client.Configured() {
			return fiber.NewError(fiber.StatusServiceUnavailable, "geocoding is not configured")
		}
		return c.Next()
	})

	r.Get("/geocode", func(c *fiber.Ctx) error {
		q := geocodeQuery{
			Query: c.Query("q"),
			Limit: c.QueryInt("limit", 5),
		}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		payload, _, err := client.Geocode(c.UserContext(), q.Query, q.Limit)
		if err != nil {
			return upstreamError("geocoding", err)
		}
		return c.JSON(payload)
	})

	r.Get("/reverse", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		payload, _, err := client.Reverse(c.UserContext(), q.Latitude, q.Longitude)
		if err != nil {
			return upstreamError("geocoding", err)
		}
		return c.JSON(payload)
	})
}
