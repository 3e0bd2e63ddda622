// Package firstapi provides a client for the FIRST Events API, used to fill in
// venue and street address details the registry does not carry.
package firstapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://frc-api.firstinspires.org/v3.0/"

// Client defines the FIRST Events API operations.
type Client interface {
	// EventDetails returns venue details for the event with the given FIRST
	// code in a season. It returns nil, nil when the API knows no such event.
	EventDetails(ctx context.Context, year int, code string) (*EventDetails, error)
}

// EventDetails holds the location fields of a FIRST event listing. Fields the
// API omits are empty.
type EventDetails struct {
	Code      string `json:"code"`
	Name      string `json:"name"`
	Venue     string `json:"venue"`
	Address   string `json:"address"`
	City      string `json:"city"`
	StateProv string `json:"stateprov"`
	Country   string `json:"country"`
	Website   string `json:"website"`
}

// eventsResponse wraps the events endpoint payload.
type eventsResponse struct {
	Events     []EventDetails `json:"Events"`
	EventCount int            `json:"eventCount"`
}

// Option configures the FIRST API client.
type Option func(*httpClient)

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		if !strings.HasSuffix(u, "/") {
			u += "/"
		}
		c.baseURL = u
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	authHeader string
	baseURL    string
	http       *http.Client
}

// NewClient creates a FIRST API client. token is "username:authorization-key";
// it is sent with HTTP Basic authentication.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		authHeader: "Basic " + base64.StdEncoding.EncodeToString([]byte(token)),
		baseURL:    defaultBaseURL,
		http:       &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// EventDetails fetches the first event listed for year/code.
func (c *httpClient) EventDetails(ctx context.Context, year int, code string) (*EventDetails, error) {
	if code == "" {
		return nil, eris.New("firstapi: empty event code")
	}

	reqURL := fmt.Sprintf("%s%d/events?eventCode=%s", c.baseURL, year, url.QueryEscape(code))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, eris.Wrap(err, "firstapi: build request")
	}
	req.Header.Set("Authorization", c.authHeader)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "firstapi: request %s", reqURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, eris.Wrap(err, "firstapi: read body")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, eris.Errorf("firstapi: status %d for %s: %s", resp.StatusCode, reqURL, truncate(string(body), 200))
	}

	var out eventsResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, eris.Wrapf(err, "firstapi: parse response from %s", reqURL)
	}
	if len(out.Events) == 0 {
		return nil, nil
	}
	return &out.Events[0], nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
