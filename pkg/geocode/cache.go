package geocode

import (
	"crypto/sha256"
	"fmt"
	"strings"

	gocache "github.com/patrickmn/go-cache"
)

// cacheKey returns SHA-256 hex of the normalized address for memo lookup.
func cacheKey(address string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(address), " "))
	h := sha256.Sum256([]byte(normalized))
	return fmt.Sprintf("%x", h)
}

// lookupMemo returns a previously stored result for key. Non-matches are
// remembered too so an unresolvable address is not paid for twice.
func (g *geocoder) lookupMemo(key string) (*Result, bool) {
	if g.memo == nil {
		return nil, false
	}
	v, ok := g.memo.Get(key)
	if !ok {
		return nil, false
	}
	r := v.(Result)
	return &r, true
}

func (g *geocoder) storeMemo(key string, result *Result) {
	if g.memo == nil || result == nil {
		return
	}
	g.memo.Set(key, *result, gocache.DefaultExpiration)
}
