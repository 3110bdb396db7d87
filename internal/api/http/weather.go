package httpapi

import (
	"errors"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-api-gateway/internal/providers"
)

// coordQuery holds the coordinate pair shared by the weather and reverse
// geocoding endpoints.
type coordQuery struct {
	Latitude  float64 `validate:"gte=-90,lte=90"`
	Longitude float64 `validate:"gte=-180,lte=180"`
}

func parseCoordQuery(c *fiber.Ctx) (coordQuery, error) {
	var q coordQuery

	latStr := c.Query("latitude")
	lonStr := c.Query("longitude")
	if latStr == "" || lonStr == "" {
		return q, errors.New("latitude and longitude query parameters are required")
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("latitude must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("longitude must be a number")
	}

	q.Latitude = lat
	q.Longitude = lon
	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// forecastQuery bounds the day count to what the provider accepts.
type forecastQuery struct {
	Days int `validate:"gte=1,lte=16"`
}

func registerWeatherRoutes(r fiber.Router, client *providers.OpenMeteoClient) {
	r.Get("/current", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		payload, _, err := client.Current(c.UserContext(), q.Latitude, q.Longitude)
		if err != nil {
			return upstreamError("weather", err)
		}
		return c.JSON(payload)
	})

	r.Get("/forecast", func(c *fiber.Ctx) error {
		q, err := parseCoordQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		fq := forecastQuery{Days: c.QueryInt("days", 7)}
		if err := validate.Struct(fq); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		payload, _, err := client.Forecast(c.UserContext(), q.Latitude, q.Longitude, fq.Days)
		if err != nil {
			return upstreamError("weather", err)
		}
		return c.JSON(payload)
	})
}

// upstreamError converts a provider failure into a gateway response. The raw
// error stays in the log; clients get a stable 502 message.
func upstreamError(name string, err error) error {
	log.Printf("ERROR: %s upstream call failed: %v", name, err)
	return fiber.NewError(fiber.StatusBadGateway, name+" provider request failed")
}
