// Package tba provides a client for The Blue Alliance API v3, the registry of
// FRC teams, events and rosters.
package tba

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/model"
)

const defaultBaseURL = "https://www.thebluealliance.com/api/v3/"

// regularEventKey matches season event keys such as 2025casj. Keys of
// special events (e.g. 2025cmptx_x) are filtered out.
var regularEventKey = regexp.MustCompile(`^20\d\d[a-z]+$`)

// Client defines the registry operations used by the map generator.
type Client interface {
	// Teams returns every team ever registered, keyed by team key.
	Teams(ctx context.Context) (map[string]*model.Team, error)
	// Events returns the season's regular events, keyed by event key, with
	// derived official/championship flags set.
	Events(ctx context.Context, year int) (map[string]*model.Event, error)
	// EventKeys returns the season's regular event keys.
	EventKeys(ctx context.Context, year int) ([]string, error)
	// EventTeamKeys returns the roster of one event.
	EventTeamKeys(ctx context.Context, eventKey string) ([]string, error)
	// ActiveTeamKeys returns the sorted union of all event rosters in a season.
	ActiveTeamKeys(ctx context.Context, year int) ([]string, error)
	// TeamEventMap maps each team key to the event keys it attends.
	TeamEventMap(ctx context.Context, year int) (map[string][]string, error)
}

// Option configures the TBA client.
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
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates a new TBA client authenticated with apiKey.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsRegularEventKey reports whether key is a regular season event key.
func IsRegularEventKey(key string) bool {
	return regularEventKey.MatchString(key)
}

// get fetches path relative to the base URL and decodes the JSON body into out.
func (c *httpClient) get(ctx context.Context, path string, out any) error {
	reqURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return eris.Wrap(err, "tba: build request")
	}
	req.Header.Set("X-TBA-Auth-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrapf(err, "tba: request %s", reqURL)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrapf(err, "tba: read body %s", reqURL)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := string(body)
		if len(msg) > 200 {
			msg = msg[:200]
		}
		return eris.Errorf("tba: status %d for %s: %s", resp.StatusCode, reqURL, msg)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrapf(err, "tba: parse response from %s", reqURL)
	}
	return nil
}

// Teams pages through teams/<n> until an empty page.
func (c *httpClient) Teams(ctx context.Context) (map[string]*model.Team, error) {
	teams := make(map[string]*model.Team)
	page := 0
	for {
		var batch []*model.Team
		if err := c.get(ctx, fmt.Sprintf("teams/%d", page), &batch); err != nil {
			return nil, eris.Wrapf(err, "tba: get teams page %d", page)
		}
		if len(batch) == 0 {
			break
		}
		for _, t := range batch {
			if t == nil || t.Key == "" {
				continue
			}
			teams[t.Key] = t
		}
		page++
	}
	zap.L().Info("fetched teams", zap.Int("teams", len(teams)), zap.Int("pages", page))
	return teams, nil
}

// Events returns the season's events, keeping only regular event keys.
func (c *httpClient) Events(ctx context.Context, year int) (map[string]*model.Event, error) {
	var all []*model.Event
	if err := c.get(ctx, fmt.Sprintf("events/%d", year), &all); err != nil {
		return nil, eris.Wrapf(err, "tba: get events %d", year)
	}
	events := make(map[string]*model.Event, len(all))
	for _, e := range all {
		if e == nil || !IsRegularEventKey(e.Key) {
			continue
		}
		e.DeriveFlags()
		events[e.Key] = e
	}
	return events, nil
}

// EventKeys returns the season's regular event keys.
func (c *httpClient) EventKeys(ctx context.Context, year int) ([]string, error) {
	var all []string
	if err := c.get(ctx, fmt.Sprintf("events/%d/keys", year), &all); err != nil {
		return nil, eris.Wrapf(err, "tba: get event keys %d", year)
	}
	keys := make([]string, 0, len(all))
	for _, k := range all {
		if IsRegularEventKey(k) {
			keys = append(keys, k)
		}
	}
	return keys, nil
}

// EventTeamKeys returns the team keys registered for an event.
func (c *httpClient) EventTeamKeys(ctx context.Context, eventKey string) ([]string, error) {
	var keys []string
	if err := c.get(ctx, fmt.Sprintf("event/%s/teams/keys", eventKey), &keys); err != nil {
		return nil, eris.Wrapf(err, "tba: get teams for event %s", eventKey)
	}
	for _, k := range keys {
		if !strings.HasPrefix(k, "frc") {
			zap.L().Warn("invalid team key in event roster",
				zap.String("team", k),
				zap.String("event", eventKey),
			)
		}
	}
	return keys, nil
}

// ActiveTeamKeys returns every team that appears on at least one roster.
// A roster that cannot be fetched is logged and skipped.
func (c *httpClient) ActiveTeamKeys(ctx context.Context, year int) ([]string, error) {
	events, err := c.EventKeys(ctx, year)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, ev := range events {
		keys, err := c.EventTeamKeys(ctx, ev)
		if err != nil {
			zap.L().Warn("failed to fetch event roster", zap.String("event", ev), zap.Error(err))
			continue
		}
		for _, k := range keys {
			seen[k] = struct{}{}
		}
	}
	active := make([]string, 0, len(seen))
	for k := range seen {
		active = append(active, k)
	}
	sort.Strings(active)
	return active, nil
}

// TeamEventMap builds team key -> event keys for the season. A roster that
// cannot be fetched is logged and skipped.
func (c *httpClient) TeamEventMap(ctx context.Context, year int) (map[string][]string, error) {
	events, err := c.EventKeys(ctx, year)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]string)
	for _, ev := range events {
		keys, err := c.EventTeamKeys(ctx, ev)
		if err != nil {
			zap.L().Warn("failed to fetch event roster", zap.String("event", ev), zap.Error(err))
			continue
		}
		for _, k := range keys {
			out[k] = append(out[k], ev)
		}
	}
	return out, nil
}
