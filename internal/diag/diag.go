package diag

import (
	"context"
	"errors"
	"log"
	"net"
	"sync"
	"time"

	"github.com/i474232898/weather-api-gateway/internal/common"
	"github.com/i474232898/weather-api-gateway/internal/config"
	"github.com/i474232898/weather-api-gateway/internal/providers"
)

// Status classifies the outcome of one upstream check.
type Status string

const (
	StatusOK    Status = "OK"
	StatusError Status = "ERROR"
	StatusSkip  Status = "SKIP"
)

// Probe fixture: central London. The checks only care that the upstream
// answers, not what the weather is.
const (
	refPlace = "London"
	refLat   = 51.5074
	refLon   = -0.1278
)

// ServiceCheck is the uniform outcome of probing one upstream capability.
// ResponseTimeMs is set for OK and ERROR, never for SKIP.
type ServiceCheck struct {
	Status         Status `json:"status"`
	ResponseTimeMs *int64 `json:"responseTimeMs,omitempty"`
	HTTPStatus     int    `json:"httpStatus,omitempty"`
	DataPresent    *bool  `json:"dataPresent,omitempty"`
	Message        string `json:"message,omitempty"`
	ErrorCode      string `json:"errorCode,omitempty"`
}

// EnvSnapshot reports configuration presence. Secret values never appear
// here, only whether they are set.
type EnvSnapshot struct {
	Env                string `json:"env"`
	Port               string `json:"port"`
	FrontendOrigin     string `json:"frontendOrigin"`
	WeatherBaseURL     string `json:"weatherBaseUrl"`
	GeocoderKeyPresent bool   `json:"geocoderKeyPresent"`
}

// Report is the aggregate produced by one diagnostics run.
type Report struct {
	Timestamp   time.Time               `json:"timestamp"`
	Environment EnvSnapshot             `json:"environment"`
	Services    map[string]ServiceCheck `json:"services"`
}

// Aggregator probes the upstream providers and assembles a report. Upstream
// failures are data in the report, never errors out of Run.
type Aggregator struct {
	cfg     *config.AppConfig
	weather *providers.OpenMeteoClient
	geo     *providers.OpenCageClient
	timeout time.Duration
}

func New(cfg *config.AppConfig, weather *providers.OpenMeteoClient, geo *providers.OpenCageClient) *Aggregator {
	timeout := cfg.DiagTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		cfg:     cfg,
		weather: weather,
		geo:     geo,
		timeout: timeout,
	}
}

// Run probes every upstream capability concurrently and waits for all checks
// to settle. Each check gets its own timeout so one slow upstream cannot
// starve the others.
func (a *Aggregator) Run(ctx context.Context) Report {
	report := Report{
		Timestamp: time.Now().UTC(),
		Environment: EnvSnapshot{
			Env:                a.cfg.Env,
			Port:               a.cfg.Port,
			FrontendOrigin:     a.cfg.FrontendOrigin,
			WeatherBaseURL:     a.cfg.OpenMeteoBaseURL,
			GeocoderKeyPresent: a.cfg.KeyConfigured(),
		},
		Services: make(map[string]ServiceCheck, 3),
	}

	checks := []struct {
		name string
		run  func(context.Context) ServiceCheck
	}{
		{"weather", a.checkWeather},
		{"geocodeForward", a.checkGeocodeForward},
		{"geocodeReverse", a.checkGeocodeReverse},
	}

	var wg sync.WaitGroup
	var mu sync.Mutex

	for _, check := range checks {
		check := check
		wg.Add(1)
		go func() {
			defer wg.Done()

			cctx, cancel := context.WithTimeout(ctx, a.timeout)
			defer cancel()

			result := check.run(cctx)
			if result.Status == StatusError {
				log.Printf("diag: %s check failed: %s", check.name, result.Message)
			}

			mu.Lock()
			report.Services[check.name] = result
			mu.Unlock()
		}()
	}
	wg.Wait()

	return report
}

func (a *Aggregator) checkWeather(ctx context.Context) ServiceCheck {
	start := time.Now()
	payload, status, err := a.weather.Current(ctx, refLat, refLon)
	elapsed := time.Since(start)

	if err != nil {
		return errorCheck(err, status, elapsed)
	}
	present := payload != nil && payload.CurrentWeather.Time != ""
	return okCheck(status, present, elapsed)
}

func (a *Aggregator) checkGeocodeForward(ctx context.Context) ServiceCheck {
	if !a.geo.Configured() {
		return skipCheck("geocoding credential not set, check skipped")
	}

	start := time.Now()
	payload, status, err := a.geo.Geocode(ctx, refPlace, 1)
	elapsed := time.Since(start)

	if err != nil {
		return errorCheck(err, status, elapsed)
	}
	present := payload != nil && len(payload.Results) > 0
	return okCheck(status, present, elapsed)
}

func (a *Aggregator) checkGeocodeReverse(ctx context.Context) ServiceCheck {
	if !a.geo.Configured() {
		return skipCheck("geocoding credential not set, check skipped")
	}

	start := time.Now()
	payload, status, err := a.geo.Reverse(ctx, refLat, refLon)
	elapsed := time.Since(start)

	if err != nil {
		return errorCheck(err, status, elapsed)
	}
	present := payload != nil && len(payload.Results) > 0
	return okCheck(status, present, elapsed)
}

func okCheck(status int, dataPresent bool, elapsed time.Duration) ServiceCheck {
	ms := elapsed.Milliseconds()
	return ServiceCheck{
		Status:         StatusOK,
		ResponseTimeMs: &ms,
		HTTPStatus:     status,
		DataPresent:    &dataPresent,
	}
}

func errorCheck(err error, status int, elapsed time.Duration) ServiceCheck {
	ms := elapsed.Milliseconds()
	return ServiceCheck{
		Status:         StatusError,
		ResponseTimeMs: &ms,
		HTTPStatus:     status,
		Message:        err.Error(),
		ErrorCode:      errorCode(err),
	}
}

func skipCheck(msg string) ServiceCheck {
	return ServiceCheck{
		Status:  StatusSkip,
		Message: msg,
	}
}

// errorCode collapses transport failures into a small stable vocabulary.
// Non-2xx responses carry their information in HTTPStatus instead and get no
// code here.
func errorCode(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "timeout"
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "dns"
	}
	if common.HasAny(err.Error(), "connection refused", "connection reset") {
		return "connection"
	}
	return ""
}
