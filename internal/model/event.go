package model

import "encoding/json"

// Webcast is a stream attached to an event.
type Webcast struct {
	Channel string `json:"channel,omitempty"`
	Type    string `json:"type,omitempty"`
	File    string `json:"file,omitempty"`
	Date    string `json:"date,omitempty"`
}

// Event is a registry event record enriched with derived flags, its resolved
// location, and its team roster.
type Event struct {
	Key               string          `json:"key"`
	Name              string          `json:"name,omitempty"`
	ShortName         string          `json:"short_name,omitempty"`
	EventCode         string          `json:"event_code,omitempty"`
	FirstEventCode    string          `json:"first_event_code,omitempty"`
	FirstEventID      string          `json:"first_event_id,omitempty"`
	EventType         *EventType      `json:"event_type,omitempty"`
	EventTypeString   string          `json:"event_type_string,omitempty"`
	Venue             string          `json:"venue,omitempty"`
	Address           string          `json:"address,omitempty"`
	City              string          `json:"city,omitempty"`
	StateProv         string          `json:"state_prov,omitempty"`
	Country           string          `json:"country,omitempty"`
	PostalCode        string          `json:"postal_code,omitempty"`
	LocationName      string          `json:"location_name,omitempty"`
	GmapsPlaceID      string          `json:"gmaps_place_id,omitempty"`
	GmapsURL          string          `json:"gmaps_url,omitempty"`
	Timezone          string          `json:"timezone,omitempty"`
	District          json.RawMessage `json:"district,omitempty"`
	StartDate         string          `json:"start_date,omitempty"`
	EndDate           string          `json:"end_date,omitempty"`
	Year              int             `json:"year,omitempty"`
	Week              *int            `json:"week,omitempty"`
	Website           string          `json:"website,omitempty"`
	Webcasts          []Webcast       `json:"webcasts,omitempty"`
	DivisionKeys      []string        `json:"division_keys,omitempty"`
	ParentEventKey    string          `json:"parent_event_key,omitempty"`
	PlayoffType       *int            `json:"playoff_type,omitempty"`
	PlayoffTypeString string          `json:"playoff_type_string,omitempty"`
	coordinates
	IsCmp      bool     `json:"is_cmp"`
	IsOfficial bool     `json:"is_official"`
	Ignore     *bool    `json:"ignore,omitempty"`
	Teams      []string `json:"teams,omitempty"`
}

// DeriveFlags sets IsCmp and IsOfficial from the event type. Events without
// a type are neither.
func (e *Event) DeriveFlags() {
	if e.EventType == nil {
		e.IsCmp, e.IsOfficial = false, false
		return
	}
	e.IsCmp = e.EventType.IsChampionship()
	e.IsOfficial = e.EventType.IsOfficial()
}

// ID implements Locatable.
func (e *Event) ID() string { return e.Key }

// Location implements Locatable.
func (e *Event) Location() (float64, float64, bool) { return e.location() }

// HasLocation implements Locatable.
func (e *Event) HasLocation() bool {
	_, _, ok := e.location()
	return ok
}

// SetLocation implements Locatable.
func (e *Event) SetLocation(lat, lng float64) { e.set(lat, lng) }

// ClearLocation implements Locatable.
func (e *Event) ClearLocation() { e.clear() }

// SetIgnore implements Locatable.
func (e *Event) SetIgnore(ignore bool) { e.Ignore = &ignore }

// IsIgnored implements Locatable.
func (e *Event) IsIgnored() bool { return e.Ignore != nil && *e.Ignore }
