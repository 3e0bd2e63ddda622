// Package pipeline runs a full season map generation: registry fetches,
// location resolution, archive persistence and dataset assembly.
package pipeline

import (
	"github.com/frcmap/season-map/internal/model"
)

// Dataset is the published season snapshot.
type Dataset struct {
	Teams  map[string]*model.Team  `json:"teams"`
	Events map[string]*model.Event `json:"events"`
}

// Located counts records that carry coordinates and are not ignored.
func (d *Dataset) Located() (teams, events int) {
	for _, t := range d.Teams {
		if t.HasLocation() && !t.IsIgnored() {
			teams++
		}
	}
	for _, e := range d.Events {
		if e.HasLocation() && !e.IsIgnored() {
			events++
		}
	}
	return teams, events
}
