package locate

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/fsutil"
	"github.com/frcmap/season-map/internal/model"
)

// EventArchiveFile is the name of the event archive.
const EventArchiveFile = "all_event_locations.json"

var teamArchivePattern = regexp.MustCompile(`^all_team_locations_(\d{4})\.json$`)

// Coordinate is one archived position.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Archive maps entity key to its last resolved position.
type Archive map[string]Coordinate

// Apply sets the archived coordinates of e, if any, and reports whether an
// entry was found.
func (a Archive) Apply(e model.Locatable) bool {
	c, ok := a[e.ID()]
	if !ok {
		return false
	}
	e.SetLocation(c.Lat, c.Lng)
	return true
}

// ArchiveOf collects the positions worth keeping from t: every record that
// has a location and is not ignored.
func ArchiveOf[T model.Locatable](t *Table[T]) Archive {
	a := make(Archive, t.Len())
	t.Each(func(key string, item T) {
		if item.IsIgnored() {
			return
		}
		if lat, lng, ok := item.Location(); ok {
			a[key] = Coordinate{Lat: lat, Lng: lng}
		}
	})
	return a
}

// TeamArchiveFile returns the team archive file name for a season.
func TeamArchiveFile(year int) string {
	return fmt.Sprintf("all_team_locations_%d.json", year)
}

// ArchiveStore reads and writes the archive files in one directory.
type ArchiveStore struct {
	dir string
}

// NewArchiveStore returns a store rooted at dir.
func NewArchiveStore(dir string) *ArchiveStore {
	return &ArchiveStore{dir: dir}
}

// Dir returns the archive directory.
func (s *ArchiveStore) Dir() string { return s.dir }

// LoadTeams loads the team archive of the most recent season present. Any
// failure is logged and yields an empty archive.
func (s *ArchiveStore) LoadTeams() Archive {
	path, year, err := s.latestTeamArchive()
	if err != nil {
		zap.L().Warn("no team archive loaded", zap.String("dir", s.dir), zap.Error(err))
		return Archive{}
	}
	a, err := LoadArchiveFile(path)
	if err != nil {
		zap.L().Warn("failed to load team archive", zap.String("path", path), zap.Error(err))
		return Archive{}
	}
	zap.L().Info("loaded team archive",
		zap.String("path", path),
		zap.Int("year", year),
		zap.Int("entries", len(a)),
	)
	return a
}

// LoadEvents loads the event archive. Any failure is logged and yields an
// empty archive.
func (s *ArchiveStore) LoadEvents() Archive {
	path := filepath.Join(s.dir, EventArchiveFile)
	a, err := LoadArchiveFile(path)
	if err != nil {
		zap.L().Warn("failed to load event archive", zap.String("path", path), zap.Error(err))
		return Archive{}
	}
	zap.L().Info("loaded event archive", zap.String("path", path), zap.Int("entries", len(a)))
	return a
}

// SaveTeams writes a as the team archive for year.
func (s *ArchiveStore) SaveTeams(a Archive, year int) error {
	return s.save(filepath.Join(s.dir, TeamArchiveFile(year)), a)
}

// SaveEvents overwrites the event archive with a.
func (s *ArchiveStore) SaveEvents(a Archive) error {
	return s.save(filepath.Join(s.dir, EventArchiveFile), a)
}

func (s *ArchiveStore) save(path string, a Archive) error {
	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return eris.Wrapf(err, "locate: marshal archive %s", path)
	}
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		return eris.Wrapf(err, "locate: save archive %s", path)
	}
	zap.L().Info("saved archive", zap.String("path", path), zap.Int("entries", len(a)))
	return nil
}

// latestTeamArchive finds the team archive with the highest year.
func (s *ArchiveStore) latestTeamArchive() (string, int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", 0, eris.Wrapf(err, "locate: read archive dir %s", s.dir)
	}

	best, bestYear := "", -1
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := teamArchivePattern.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		year, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if year > bestYear {
			best, bestYear = e.Name(), year
		}
	}
	if bestYear < 0 {
		return "", 0, eris.Errorf("locate: no team archive in %s", s.dir)
	}
	return filepath.Join(s.dir, best), bestYear, nil
}

// LoadArchiveFile parses one archive file.
func LoadArchiveFile(path string) (Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "locate: read archive %s", path)
	}
	var raw map[string]*struct {
		Lat *float64 `json:"lat"`
		Lng *float64 `json:"lng"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "locate: parse archive %s", path)
	}

	// Entries need both coordinates, as with overrides.
	a := make(Archive, len(raw))
	for k, c := range raw {
		if c == nil || c.Lat == nil || c.Lng == nil {
			zap.L().Warn("skipping incomplete archive entry", zap.String("path", path), zap.String("key", k))
			continue
		}
		a[k] = Coordinate{Lat: *c.Lat, Lng: *c.Lng}
	}
	return a, nil
}
