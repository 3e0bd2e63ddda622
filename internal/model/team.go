package model

// Team is a registry team record enriched with its resolved location and the
// events it attends in the season.
type Team struct {
	Key          string `json:"key"`
	TeamNumber   int    `json:"team_number,omitempty"`
	Nickname     string `json:"nickname,omitempty"`
	Name         string `json:"name,omitempty"`
	SchoolName   string `json:"school_name,omitempty"`
	City         string `json:"city,omitempty"`
	StateProv    string `json:"state_prov,omitempty"`
	Country      string `json:"country,omitempty"`
	Address      string `json:"address,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
	GmapsPlaceID string `json:"gmaps_place_id,omitempty"`
	GmapsURL     string `json:"gmaps_url,omitempty"`
	LocationName string `json:"location_name,omitempty"`
	Website      string `json:"website,omitempty"`
	RookieYear   int    `json:"rookie_year,omitempty"`
	Motto        string `json:"motto,omitempty"`
	coordinates
	Ignore *bool    `json:"ignore,omitempty"`
	Events []string `json:"events,omitempty"`
}

// ID implements Locatable.
func (t *Team) ID() string { return t.Key }

// Location implements Locatable.
func (t *Team) Location() (float64, float64, bool) { return t.location() }

// HasLocation implements Locatable.
func (t *Team) HasLocation() bool {
	_, _, ok := t.location()
	return ok
}

// SetLocation implements Locatable.
func (t *Team) SetLocation(lat, lng float64) { t.set(lat, lng) }

// ClearLocation implements Locatable.
func (t *Team) ClearLocation() { t.clear() }

// SetIgnore implements Locatable.
func (t *Team) SetIgnore(ignore bool) { t.Ignore = &ignore }

// IsIgnored implements Locatable.
func (t *Team) IsIgnored() bool { return t.Ignore != nil && *t.Ignore }

// Clone returns a copy of the team that shares no mutable state with t.
func (t *Team) Clone() *Team {
	c := *t
	if t.Lat != nil {
		c.Lat = Float(*t.Lat)
	}
	if t.Lng != nil {
		c.Lng = Float(*t.Lng)
	}
	if t.Ignore != nil {
		c.Ignore = Bool(*t.Ignore)
	}
	c.Events = append([]string(nil), t.Events...)
	return &c
}
