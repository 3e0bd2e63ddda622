package locate

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/frcmap/season-map/internal/model"
)

// ComposeTeamAddress builds the geocoder query for a team from school, city,
// state/province, postal code and country. ok is false when every field is
// blank.
func ComposeTeamAddress(t *model.Team) (string, bool) {
	return composeAddress(t.SchoolName, t.City, t.StateProv, t.PostalCode, t.Country)
}

// ComposeEventAddress builds the geocoder query for an event from venue,
// street address, city, state/province, postal code and country.
func ComposeEventAddress(e *model.Event) (string, bool) {
	return composeAddress(e.Venue, e.Address, e.City, e.StateProv, e.PostalCode, e.Country)
}

// composeAddress joins the non-blank parts with single spaces, collapsing any
// internal whitespace, and NFC-normalizes the result.
func composeAddress(parts ...string) (string, bool) {
	words := make([]string, 0, len(parts)*2)
	for _, p := range parts {
		words = append(words, strings.Fields(p)...)
	}
	if len(words) == 0 {
		return "", false
	}
	return norm.NFC.String(strings.Join(words, " ")), true
}
