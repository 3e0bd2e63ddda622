// Package transport builds the shared HTTP client used by every API gateway:
// transient-failure retries, a persistent response cache and per-host rate
// limiting layered as http.RoundTrippers.
package transport

import (
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/frcmap/season-map/internal/store"
)

// DefaultUserAgent identifies the generator to upstream APIs.
const DefaultUserAgent = "season-map/1.0"

// Options configures NewClient.
type Options struct {
	UserAgent string
	Timeout   time.Duration
	Retry     RetryConfig
	// Cache enables response caching when non-nil.
	Cache    store.Store
	CacheTTL time.Duration
	// RateLimits maps host to requests per second. Hosts not listed are
	// not limited.
	RateLimits map[string]float64
	// Base is the innermost transport. Defaults to http.DefaultTransport.
	Base http.RoundTripper
}

// NewClient returns an *http.Client whose transport chain is
// retry -> cache -> rate limit -> base.
func NewClient(opts Options) *http.Client {
	if opts.Timeout == 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	base := opts.Base
	if base == nil {
		base = http.DefaultTransport
	}

	var rt http.RoundTripper = newRateLimitTransport(base, opts.RateLimits)
	if opts.Cache != nil {
		rt = newCacheTransport(rt, opts.Cache, opts.CacheTTL)
	}
	rt = newRetryTransport(rt, opts.Retry)
	rt = &userAgentTransport{next: rt, userAgent: opts.UserAgent}

	return &http.Client{
		Timeout:   opts.Timeout,
		Transport: rt,
	}
}

type userAgentTransport struct {
	next      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.next.RoundTrip(r)
}

// rateLimitTransport waits on the host's limiter before each request.
type rateLimitTransport struct {
	next     http.RoundTripper
	limiters map[string]*rate.Limiter
}

func newRateLimitTransport(next http.RoundTripper, limits map[string]float64) *rateLimitTransport {
	limiters := make(map[string]*rate.Limiter, len(limits))
	for host, rps := range limits {
		if rps <= 0 {
			continue
		}
		burst := int(rps)
		if burst < 1 {
			burst = 1
		}
		limiters[host] = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return &rateLimitTransport{next: next, limiters: limiters}
}

func (t *rateLimitTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if lim, ok := t.limiters[req.URL.Host]; ok {
		if err := lim.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.next.RoundTrip(req)
}
