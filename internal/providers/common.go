package providers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// ErrNoAPIKey marks calls that need a credential the process was not given.
var ErrNoAPIKey = errors.New("api key is not configured")

// StatusError reports a non-2xx upstream response. The status code stays
// inspectable so callers can surface it instead of a flattened message.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
	}
	return fmt.Sprintf("unexpected status code %d", e.StatusCode)
}

// getJSON performs a single GET against u and decodes the JSON body into out.
// It returns the upstream status code whenever a response was received. No
// retries: a failed call is reported, not repeated.
func getJSON(ctx context.Context, client *http.Client, u string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return 0, sanitizeErr(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return resp.StatusCode, &StatusError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
	}
	return resp.StatusCode, nil
}

// sanitizeErr strips query strings from transport errors. Request URLs carry
// credentials as query parameters, and the raw *url.Error message would leak
// them into logs and diagnostic payloads.
func sanitizeErr(err error) error {
	var uerr *url.Error
	if errors.As(err, &uerr) {
		if u, parseErr := url.Parse(uerr.URL); parseErr == nil && u.RawQuery != "" {
			u.RawQuery = ""
			uerr.URL = u.String()
		}
	}
	return err
}
