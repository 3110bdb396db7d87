package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// OpenMeteoClient talks to the Open-Meteo forecast API. No credential needed.
type OpenMeteoClient struct {
	name       string
	baseURL    string
	httpClient *http.Client
}

func NewOpenMeteoClient(client *http.Client, baseURL string) *OpenMeteoClient {
	if baseURL == "" {
		baseURL = "https://api.open-meteo.com/v1/forecast"
	}
	return &OpenMeteoClient{
		name:       "openmeteo",
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (c *OpenMeteoClient) Name() string {
	return c.name
}

// CurrentWeather mirrors Open-Meteo's current conditions payload. Handlers
// pass it through to callers as-is.
type CurrentWeather struct {
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Timezone       string  `json:"timezone"`
	CurrentWeather struct {
		Temperature   float64 `json:"temperature"`
		WindSpeed     float64 `json:"windspeed"`
		WindDirection float64 `json:"winddirection"`
		WeatherCode   int     `json:"weathercode"`
		IsDay         int     `json:"is_day"`
		Time          string  `json:"time"`
	} `json:"current_weather"`
}

// Current fetches current conditions for a coordinate. The returned int is
// the upstream HTTP status when a response was received, zero otherwise.
func (c *OpenMeteoClient) Current(ctx context.Context, lat, lon float64) (*CurrentWeather, int, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("current_weather", "true")

	var payload CurrentWeather
	status, err := getJSON(ctx, c.httpClient, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), &payload)
	if err != nil {
		return nil, status, err
	}
	return &payload, status, nil
}

// DailyForecast mirrors Open-Meteo's daily aggregate payload.
type DailyForecast struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
	Daily     struct {
		Time             []string  `json:"time"`
		TemperatureMax   []float64 `json:"temperature_2m_max"`
		TemperatureMin   []float64 `json:"temperature_2m_min"`
		PrecipitationSum []float64 `json:"precipitation_sum"`
		WeatherCode      []int     `json:"weathercode"`
	} `json:"daily"`
	DailyUnits struct {
		TemperatureMax string `json:"temperature_2m_max"`
		TemperatureMin string `json:"temperature_2m_min"`
	} `json:"daily_units"`
}

// Forecast fetches a daily forecast covering days days for a coordinate.
func (c *OpenMeteoClient) Forecast(ctx context.Context, lat, lon float64, days int) (*DailyForecast, int, error) {
	values := url.Values{}
	values.Set("latitude", formatCoord(lat))
	values.Set("longitude", formatCoord(lon))
	values.Set("daily", "temperature_2m_max,temperature_2m_min,precipitation_sum,weathercode")
	values.Set("forecast_days", strconv.Itoa(days))
	values.Set("timezone", "UTC")

	var payload DailyForecast
	status, err := getJSON(ctx, c.httpClient, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), &payload)
	if err != nil {
		return nil, status, err
	}
	return &payload, status, nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
