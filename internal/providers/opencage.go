package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

// OpenCageClient talks to the OpenCage geocoding API. Every call requires an
// API key; without one the client refuses before touching the network.
type OpenCageClient struct {
	name       string
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

func NewOpenCageClient(client *http.Client, apiKey, baseURL string) *OpenCageClient {
	if baseURL == "" {
		baseURL = "https://api.opencagedata.com/geocode/v1/json"
	}
	return &OpenCageClient{
		name:       "opencage",
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: client,
	}
}

func (c *OpenCageClient) Name() string {
	return c.name
}

// Configured reports whether the client holds a credential.
func (c *OpenCageClient) Configured() bool {
	return c.apiKey != ""
}

// GeocodeResponse mirrors OpenCage's result envelope.
type GeocodeResponse struct {
	Results      []GeocodeResult `json:"results"`
	TotalResults int             `json:"total_results"`
	Status       struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"status"`
}

type GeocodeResult struct {
	Formatted string `json:"formatted"`
	Geometry  struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"geometry"`
	Components map[string]any `json:"components"`
	Confidence int            `json:"confidence"`
}

// Geocode resolves a free-form place query to coordinates, returning at most
// limit results.
func (c *OpenCageClient) Geocode(ctx context.Context, query string, limit int) (*GeocodeResponse, int, error) {
	return c.lookup(ctx, query, limit)
}

// Reverse resolves a coordinate to the nearest named place.
func (c *OpenCageClient) Reverse(ctx context.Context, lat, lon float64) (*GeocodeResponse, int, error) {
	return c.lookup(ctx, fmt.Sprintf("%s,%s", formatCoord(lat), formatCoord(lon)), 1)
}

func (c *OpenCageClient) lookup(ctx context.Context, q string, limit int) (*GeocodeResponse, int, error) {
	if c.apiKey == "" {
		return nil, 0, fmt.Errorf("opencage: %w", ErrNoAPIKey)
	}

	values := url.Values{}
	values.Set("q", q)
	values.Set("key", c.apiKey)
	values.Set("limit", strconv.Itoa(limit))
	values.Set("no_annotations", "1")

	var payload GeocodeResponse
	status, err := getJSON(ctx, c.httpClient, fmt.Sprintf("%s?%s", c.baseURL, values.Encode()), &payload)
	if err != nil {
		return nil, status, err
	}
	return &payload, status, nil
}
