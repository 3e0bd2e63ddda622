package transport

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/store"
)

// CacheHeader marks responses served from the cache.
const CacheHeader = "X-Cache"

// authHeaders distinguish otherwise identical requests made with different
// credentials.
var authHeaders = []string{"Authorization", "X-TBA-Auth-Key"}

// cacheTransport serves fresh GET responses from a store and records
// successful ones.
type cacheTransport struct {
	next  http.RoundTripper
	store store.Store
	ttl   time.Duration
}

func newCacheTransport(next http.RoundTripper, st store.Store, ttl time.Duration) *cacheTransport {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &cacheTransport{next: next, store: st, ttl: ttl}
}

// cacheKey hashes the method, URL and credential headers of req.
func cacheKey(req *http.Request) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s %s\n", req.Method, req.URL.String())
	for _, name := range authHeaders {
		fmt.Fprintf(h, "%s: %s\n", name, req.Header.Get(name))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (t *cacheTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return t.next.RoundTrip(req)
	}
	ctx := req.Context()
	key := cacheKey(req)

	cached, err := t.store.GetResponse(ctx, key)
	if err != nil {
		zap.L().Warn("response cache read failed", zap.String("url", req.URL.String()), zap.Error(err))
	}
	if cached != nil {
		zap.L().Debug("response cache hit", zap.String("url", req.URL.String()))
		return cachedResponse(req, cached), nil
	}

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if !cacheable(resp) {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if err != nil {
		return nil, err
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))

	now := time.Now()
	entry := &store.CachedResponse{
		Key:       key,
		Method:    req.Method,
		URL:       req.URL.String(),
		Status:    resp.StatusCode,
		Header:    resp.Header.Clone(),
		Body:      body,
		FetchedAt: now,
		ExpiresAt: now.Add(t.ttl),
	}
	if err := t.store.PutResponse(ctx, entry); err != nil {
		zap.L().Warn("response cache write failed", zap.String("url", req.URL.String()), zap.Error(err))
	}
	return resp, nil
}

func cacheable(resp *http.Response) bool {
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return false
	}
	cc := strings.ToLower(resp.Header.Get("Cache-Control"))
	return !strings.Contains(cc, "no-store")
}

func cachedResponse(req *http.Request, c *store.CachedResponse) *http.Response {
	header := c.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	header.Set(CacheHeader, "HIT")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", c.Status, http.StatusText(c.Status)),
		StatusCode:    c.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(c.Body)),
		ContentLength: int64(len(c.Body)),
		Request:       req,
	}
}
