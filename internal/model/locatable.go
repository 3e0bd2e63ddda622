package model

// Locatable is implemented by every record that can be placed on the map.
// Coordinates are always set and cleared as a pair, so HasLocation is true
// exactly when both latitude and longitude are present.
type Locatable interface {
	// ID returns the registry key of the record.
	ID() string
	// Location returns the coordinate pair and whether it is present.
	Location() (lat, lng float64, ok bool)
	HasLocation() bool
	SetLocation(lat, lng float64)
	ClearLocation()
	SetIgnore(ignore bool)
	IsIgnored() bool
}

// coordinates holds the optional lat/lng pair shared by teams and events.
type coordinates struct {
	Lat *float64 `json:"lat,omitempty"`
	Lng *float64 `json:"lng,omitempty"`
}

func (c *coordinates) location() (float64, float64, bool) {
	if c.Lat == nil || c.Lng == nil {
		return 0, 0, false
	}
	return *c.Lat, *c.Lng, true
}

func (c *coordinates) set(lat, lng float64) {
	c.Lat = &lat
	c.Lng = &lng
}

func (c *coordinates) clear() {
	c.Lat = nil
	c.Lng = nil
}

// Bool returns a pointer to b, for optional flags.
func Bool(b bool) *bool { return &b }

// Float returns a pointer to f, for optional coordinates.
func Float(f float64) *float64 { return &f }
