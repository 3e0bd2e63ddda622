// Package locate assigns map coordinates to teams and events. It composes
// geocodable addresses, applies manual overrides and archived coordinates,
// falls back to live geocoding, and breaks exact coordinate collisions.
package locate

import (
	"sort"

	"github.com/frcmap/season-map/internal/model"
)

// Table is a keyed set of locatable records. Records are held by pointer and
// mutated in place by the resolution and jitter passes. Iteration is always in
// sorted key order so a run is reproducible.
type Table[T model.Locatable] struct {
	items map[string]T
}

// NewTable wraps items. The map is taken over by the table.
func NewTable[T model.Locatable](items map[string]T) *Table[T] {
	if items == nil {
		items = make(map[string]T)
	}
	return &Table[T]{items: items}
}

// Len returns the number of records.
func (t *Table[T]) Len() int { return len(t.items) }

// Get returns the record for key.
func (t *Table[T]) Get(key string) (T, bool) {
	v, ok := t.items[key]
	return v, ok
}

// Keys returns every key in sorted order.
func (t *Table[T]) Keys() []string {
	keys := make([]string, 0, len(t.items))
	for k := range t.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Each calls fn for every record in sorted key order.
func (t *Table[T]) Each(fn func(key string, item T)) {
	for _, k := range t.Keys() {
		fn(k, t.items[k])
	}
}

// Items returns the underlying map.
func (t *Table[T]) Items() map[string]T { return t.items }
