package diag

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/i474232898/weather-api-gateway/internal/config"
	"github.com/i474232898/weather-api-gateway/internal/providers"
)

const (
	weatherBody = `{"latitude": 51.5, "longitude": -0.12, "current_weather": {"temperature": 12.5, "windspeed": 8.1, "time": "2024-05-01T12:00"}}`
	geocodeBody = `{"results": [{"formatted": "London, United Kingdom", "geometry": {"lat": 51.5074, "lng": -0.1278}}], "total_results": 1}`
)

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	})
}

func newAggregator(weatherURL, geoURL, key string, timeout time.Duration) *Aggregator {
	cfg := &config.AppConfig{
		OpenCageAPIKey:   key,
		OpenMeteoBaseURL: weatherURL,
		OpenCageBaseURL:  geoURL,
		DiagTimeout:      timeout,
		Env:              "test",
		Port:             "0",
	}
	weather := providers.NewOpenMeteoClient(&http.Client{}, weatherURL)
	geo := providers.NewOpenCageClient(&http.Client{}, key, geoURL)
	return New(cfg, weather, geo)
}

func TestRunReportsAllServicesHealthy(t *testing.T) {
	weatherSrv := httptest.NewServer(jsonHandler(weatherBody))
	defer weatherSrv.Close()
	geoSrv := httptest.NewServer(jsonHandler(geocodeBody))
	defer geoSrv.Close()

	agg := newAggregator(weatherSrv.URL, geoSrv.URL, "test-key", 2*time.Second)
	report := agg.Run(context.Background())

	if !report.Environment.GeocoderKeyPresent {
		t.Error("expected geocoder key to be reported present")
	}
	for _, name := range []string{"weather", "geocodeForward", "geocodeReverse"} {
		check, ok := report.Services[name]
		if !ok {
			t.Fatalf("missing %s check in report", name)
		}
		if check.Status != StatusOK {
			t.Errorf("%s: expected OK, got %s (%s)", name, check.Status, check.Message)
		}
		if check.HTTPStatus != http.StatusOK {
			t.Errorf("%s: expected http status 200, got %d", name, check.HTTPStatus)
		}
		if check.ResponseTimeMs == nil {
			t.Errorf("%s: expected a response time", name)
		}
		if check.DataPresent == nil || !*check.DataPresent {
			t.Errorf("%s: expected data to be present", name)
		}
	}
}

func TestRunSkipsGeocodingWithoutCredential(t *testing.T) {
	weatherSrv := httptest.NewServer(jsonHandler(weatherBody))
	defer weatherSrv.Close()

	var geoHits atomic.Int64
	geoSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		geoHits.Add(1)
	}))
	defer geoSrv.Close()

	agg := newAggregator(weatherSrv.URL, geoSrv.URL, "", 2*time.Second)
	report := agg.Run(context.Background())

	if report.Environment.GeocoderKeyPresent {
		t.Error("expected geocoder key to be reported absent")
	}
	for _, name := range []string{"geocodeForward", "geocodeReverse"} {
		check := report.Services[name]
		if check.Status != StatusSkip {
			t.Errorf("%s: expected SKIP without credential, got %s", name, check.Status)
		}
		if check.ResponseTimeMs != nil {
			t.Errorf("%s: skipped check must not time anything", name)
		}
		if check.Message == "" {
			t.Errorf("%s: expected a human-readable skip message", name)
		}
	}
	if got := report.Services["weather"].Status; got != StatusOK {
		t.Errorf("weather check should proceed without the geocoder key, got %s", got)
	}
	if geoHits.Load() != 0 {
		t.Errorf("geocoder must not be called without a credential, got %d hits", geoHits.Load())
	}
}

func TestRunBoundsSlowUpstream(t *testing.T) {
	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer weatherSrv.Close()
	geoSrv := httptest.NewServer(jsonHandler(geocodeBody))
	defer geoSrv.Close()

	timeout := 100 * time.Millisecond
	agg := newAggregator(weatherSrv.URL, geoSrv.URL, "test-key", timeout)

	start := time.Now()
	report := agg.Run(context.Background())
	elapsed := time.Since(start)

	check := report.Services["weather"]
	if check.Status != StatusError {
		t.Fatalf("expected slow upstream to be reported as ERROR, got %s", check.Status)
	}
	if check.ErrorCode != "timeout" {
		t.Errorf("expected timeout error code, got %q (message %q)", check.ErrorCode, check.Message)
	}
	if check.ResponseTimeMs == nil || *check.ResponseTimeMs < 90 {
		t.Errorf("expected the check to run up to its budget, got %v", check.ResponseTimeMs)
	}
	if elapsed > 1500*time.Millisecond {
		t.Errorf("run should settle near the per-check budget, took %v", elapsed)
	}

	// The slow check must not starve the others.
	for _, name := range []string{"geocodeForward", "geocodeReverse"} {
		if got := report.Services[name].Status; got != StatusOK {
			t.Errorf("%s: expected OK alongside the slow check, got %s", name, got)
		}
	}
}

func TestRunRecordsUpstreamFailure(t *testing.T) {
	weatherSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"reason":"maintenance"}`, http.StatusInternalServerError)
	}))
	defer weatherSrv.Close()
	geoSrv := httptest.NewServer(jsonHandler(geocodeBody))
	defer geoSrv.Close()

	agg := newAggregator(weatherSrv.URL, geoSrv.URL, "test-key", 2*time.Second)
	report := agg.Run(context.Background())

	check := report.Services["weather"]
	if check.Status != StatusError {
		t.Fatalf("expected ERROR for a 500 upstream, got %s", check.Status)
	}
	if check.HTTPStatus != http.StatusInternalServerError {
		t.Errorf("expected http status 500 in the check, got %d", check.HTTPStatus)
	}
	if check.Message == "" {
		t.Error("expected the failure message to be carried in the check")
	}
	if check.ResponseTimeMs == nil {
		t.Error("failed checks still record their response time")
	}
	if len(report.Services) != 3 {
		t.Errorf("report must always cover every service, got %d", len(report.Services))
	}
}
