package pipeline

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// MarshalGeoJSON renders every placed, non-ignored team and event as a
// point feature. Teams come first, each group in key order.
func MarshalGeoJSON(ds *Dataset) ([]byte, error) {
	fc := &geojson.FeatureCollection{}

	for _, key := range sortedKeys(ds.Teams) {
		t := ds.Teams[key]
		lat, lng, ok := t.Location()
		if !ok || t.IsIgnored() {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       key,
			Geometry: point(lat, lng),
			Properties: map[string]any{
				"kind":        "team",
				"team_number": t.TeamNumber,
				"nickname":    t.Nickname,
				"city":        t.City,
				"events":      t.Events,
			},
		})
	}

	for _, key := range sortedKeys(ds.Events) {
		e := ds.Events[key]
		lat, lng, ok := e.Location()
		if !ok || e.IsIgnored() {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       key,
			Geometry: point(lat, lng),
			Properties: map[string]any{
				"kind":        "event",
				"name":        e.Name,
				"is_official": e.IsOfficial,
				"is_cmp":      e.IsCmp,
				"start_date":  e.StartDate,
				"teams":       e.Teams,
			},
		})
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal geojson")
	}
	return data, nil
}

// point builds a WGS84 point; GeoJSON orders coordinates longitude first.
func point(lat, lng float64) *geom.Point {
	return geom.NewPointFlat(geom.XY, []float64{lng, lat}).SetSRID(4326)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
