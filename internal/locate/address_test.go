package locate

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/frcmap/season-map/internal/model"
)

func TestComposeTeamAddress(t *testing.T) {
	tests := []struct {
		name   string
		team   model.Team
		want   string
		wantOK bool
	}{
		{
			name:   "school city state",
			team:   model.Team{SchoolName: "Bellarmine", City: "San Jose", StateProv: "CA"},
			want:   "Bellarmine San Jose CA",
			wantOK: true,
		},
		{
			name:   "all fields in priority order",
			team:   model.Team{SchoolName: "School", City: "City", StateProv: "ST", PostalCode: "12345", Country: "USA"},
			want:   "School City ST 12345 USA",
			wantOK: true,
		},
		{
			name:   "blank fields skipped",
			team:   model.Team{SchoolName: "", City: "Detroit", StateProv: "  ", Country: "USA"},
			want:   "Detroit USA",
			wantOK: true,
		},
		{
			name:   "empty city and postal",
			team:   model.Team{SchoolName: "Team HQ", City: "", StateProv: "CA", PostalCode: "", Country: "USA"},
			want:   "Team HQ CA USA",
			wantOK: true,
		},
		{
			name:   "internal whitespace collapsed",
			team:   model.Team{SchoolName: "  North   High\tSchool ", City: "Reno"},
			want:   "North High School Reno",
			wantOK: true,
		},
		{
			name:   "nothing",
			team:   model.Team{},
			wantOK: false,
		},
		{
			name:   "whitespace only",
			team:   model.Team{SchoolName: " ", City: "\t", Country: "\n"},
			wantOK: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ComposeTeamAddress(&tt.team)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestComposeEventAddress(t *testing.T) {
	e := &model.Event{
		Venue:      "SAP Center",
		Address:    "525 W Santa Clara St",
		City:       "San Jose",
		StateProv:  "CA",
		PostalCode: "95113",
		Country:    "USA",
	}
	got, ok := ComposeEventAddress(e)
	assert.True(t, ok)
	assert.Equal(t, "SAP Center 525 W Santa Clara St San Jose CA 95113 USA", got)

	_, ok = ComposeEventAddress(&model.Event{})
	assert.False(t, ok)
}

func TestComposeAddress_NFC(t *testing.T) {
	// "Québec" with a combining acute accent composes to the precomposed form.
	got, ok := composeAddress("Que\u0301bec")
	assert.True(t, ok)
	assert.Equal(t, "Qu\u00e9bec", got)
}
