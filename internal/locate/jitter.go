package locate

import (
	"math"
	"math/rand/v2"
	"sort"

	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/model"
)

// JitterStdDev is the standard deviation, in degrees, of the noise added to
// a colliding position. Roughly 100 m of latitude.
const JitterStdDev = 0.001

// positionKey identifies an exact coordinate pair by its bit pattern.
type positionKey struct {
	lat, lng uint64
}

func keyOf(lat, lng float64) positionKey {
	return positionKey{lat: math.Float64bits(lat), lng: math.Float64bits(lng)}
}

// Dedup moves every record that shares an exact position with an earlier
// record (in key order) by independent Gaussian noise on each axis. The
// first record at a position keeps it. Records without a location are
// skipped. It returns the keys that were moved.
func Dedup[T model.Locatable](t *Table[T], rng *rand.Rand) []string {
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	owners := make(map[positionKey]string)
	var moved []string
	t.Each(func(key string, item T) {
		lat, lng, ok := item.Location()
		if !ok {
			return
		}
		pk := keyOf(lat, lng)
		if owner, taken := owners[pk]; taken {
			zap.L().Debug("coordinate collision",
				zap.String("key", key),
				zap.String("owner", owner),
				zap.Float64("lat", lat),
				zap.Float64("lng", lng),
			)
			moved = append(moved, key)
			return
		}
		owners[pk] = key
	})

	for _, key := range moved {
		item := t.items[key]
		lat, lng, _ := item.Location()
		item.SetLocation(
			lat+rng.NormFloat64()*JitterStdDev,
			lng+rng.NormFloat64()*JitterStdDev,
		)
	}
	return moved
}

// CollisionGroup is a set of keys that share one exact position.
type CollisionGroup struct {
	Lat  float64  `json:"lat"`
	Lng  float64  `json:"lng"`
	Keys []string `json:"keys"`
}

// FindCollisions groups the archive entries that share an exact position.
// Only groups of two or more are returned, largest first.
func FindCollisions(a Archive) []CollisionGroup {
	byPos := make(map[positionKey]*CollisionGroup)
	keys := make([]string, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		c := a[k]
		pk := keyOf(c.Lat, c.Lng)
		g, ok := byPos[pk]
		if !ok {
			g = &CollisionGroup{Lat: c.Lat, Lng: c.Lng}
			byPos[pk] = g
		}
		g.Keys = append(g.Keys, k)
	}

	var groups []CollisionGroup
	for _, g := range byPos {
		if len(g.Keys) > 1 {
			groups = append(groups, *g)
		}
	}
	sort.Slice(groups, func(i, j int) bool {
		if len(groups[i].Keys) != len(groups[j].Keys) {
			return len(groups[i].Keys) > len(groups[j].Keys)
		}
		return groups[i].Keys[0] < groups[j].Keys[0]
	})
	return groups
}
