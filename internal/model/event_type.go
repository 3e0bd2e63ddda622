package model

// EventType is the registry's numeric event category.
type EventType int

// Known event types. Values outside this set are kept as-is.
const (
	EventTypeRegional            EventType = 0
	EventTypeDistrict            EventType = 1
	EventTypeDistrictCmp         EventType = 2
	EventTypeCmpDivision         EventType = 3
	EventTypeCmpFinals           EventType = 4
	EventTypeDistrictCmpDivision EventType = 5
	EventTypeFOC                 EventType = 6
	EventTypeRemote              EventType = 7
	EventTypeOffseason           EventType = 99
	EventTypePreseason           EventType = 100
)

// IsChampionship reports whether the type is a championship division or final.
func (t EventType) IsChampionship() bool {
	return t == EventTypeCmpDivision || t == EventTypeCmpFinals
}

// IsOfficial reports whether the type belongs to the competitive season.
// Offseason, preseason and unknown types are not official.
func (t EventType) IsOfficial() bool {
	switch t {
	case EventTypeRegional,
		EventTypeDistrict,
		EventTypeDistrictCmp,
		EventTypeDistrictCmpDivision,
		EventTypeCmpDivision,
		EventTypeCmpFinals,
		EventTypeFOC,
		EventTypeRemote:
		return true
	}
	return false
}

// String returns a short name for the type.
func (t EventType) String() string {
	switch t {
	case EventTypeRegional:
		return "regional"
	case EventTypeDistrict:
		return "district"
	case EventTypeDistrictCmp:
		return "district_cmp"
	case EventTypeCmpDivision:
		return "cmp_division"
	case EventTypeCmpFinals:
		return "cmp_finals"
	case EventTypeDistrictCmpDivision:
		return "district_cmp_division"
	case EventTypeFOC:
		return "foc"
	case EventTypeRemote:
		return "remote"
	case EventTypeOffseason:
		return "offseason"
	case EventTypePreseason:
		return "preseason"
	}
	return "unknown"
}
