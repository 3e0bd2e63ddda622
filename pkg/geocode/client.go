// Package geocode converts free-form address strings to coordinates using the
// Google Geocoding API.
package geocode

import (
	"context"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Client geocodes addresses.
type Client interface {
	// Geocode resolves a single address. A lookup that completes but finds
	// nothing returns a Result with Matched=false and a nil error.
	Geocode(ctx context.Context, address string) (*Result, error)
}

// Result holds the geocoding output for an address.
type Result struct {
	Latitude         float64
	Longitude        float64
	Quality          string // "rooftop", "range", "centroid", "approximate"
	FormattedAddress string
	Matched          bool
}

// Option configures the geocoder.
type Option func(*geocoder)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(g *geocoder) {
		g.httpClient = hc
	}
}

// WithRateLimit sets the requests-per-second rate limit for API calls. A
// non-positive rps disables limiting.
func WithRateLimit(rps float64) Option {
	return func(g *geocoder) {
		if rps <= 0 {
			g.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		g.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithMemoTTL sets how long results are remembered for identical addresses.
// Zero disables the memo.
func WithMemoTTL(ttl time.Duration) Option {
	return func(g *geocoder) {
		g.memoTTL = ttl
	}
}

type geocoder struct {
	httpClient *http.Client
	apiKey     string
	limiter    *rate.Limiter
	memoTTL    time.Duration
	memo       *gocache.Cache
}

// NewClient creates a new Google geocoding Client.
func NewClient(apiKey string, opts ...Option) Client {
	g := &geocoder{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(25, 25),
		memoTTL:    time.Hour,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.memoTTL > 0 {
		g.memo = gocache.New(g.memoTTL, 2*g.memoTTL)
	}
	return g
}

// Geocode resolves address, serving repeated addresses from the memo.
func (g *geocoder) Geocode(ctx context.Context, address string) (*Result, error) {
	if address == "" {
		return nil, eris.New("geocode: empty address")
	}

	key := cacheKey(address)
	if r, ok := g.lookupMemo(key); ok {
		zap.L().Debug("geocode memo hit", zap.String("address", address))
		return r, nil
	}

	result, err := g.geocodeGoogle(ctx, address)
	if err != nil {
		return nil, err
	}
	g.storeMemo(key, result)
	return result, nil
}
