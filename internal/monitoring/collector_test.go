package monitoring

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counts(t *testing.T) {
	c := NewCollector("run-1")

	c.Resolved(EntityTeam, SourceOverride)
	c.Resolved(EntityTeam, SourceGeocode)
	c.Resolved(EntityTeam, SourceGeocode)
	c.Resolved(EntityEvent, SourceUnresolved)
	c.Jittered(EntityTeam, 3)
	c.Jittered(EntityEvent, 0)

	assert.Equal(t, 1.0, c.Count(EntityTeam, SourceOverride))
	assert.Equal(t, 2.0, c.Count(EntityTeam, SourceGeocode))
	assert.Equal(t, 0.0, c.Count(EntityTeam, SourceArchive))
	assert.Equal(t, 1.0, c.Count(EntityEvent, SourceUnresolved))
	assert.Equal(t, 3.0, c.JitterCount(EntityTeam))
	assert.Equal(t, 0.0, c.JitterCount(EntityEvent))
}

func TestCollector_Snapshot(t *testing.T) {
	c := NewCollector("run-2")
	c.Resolved(EntityTeam, SourceArchive)
	c.Resolved(EntityEvent, SourceOverride)
	c.Jittered(EntityEvent, 2)

	snap, err := c.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "run-2", snap.RunID)
	assert.Equal(t, 1.0, snap.Resolutions[EntityTeam][SourceArchive])
	assert.Equal(t, 1.0, snap.Resolutions[EntityEvent][SourceOverride])
	assert.Equal(t, 2.0, snap.Jittered[EntityEvent])
}

func TestCollector_NilSafe(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.Resolved(EntityTeam, SourceGeocode)
		c.Jittered(EntityTeam, 1)
		c.Finish()
		c.Log()
	})
	assert.Equal(t, 0.0, c.Count(EntityTeam, SourceGeocode))
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "x.prom")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector("run-3")
	c.Resolved(EntityTeam, SourceGeocode)
	c.Finish()

	path := filepath.Join(t.TempDir(), "season_map.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `season_map_resolutions_total{entity="team",source="geocode"} 1`)
	assert.Contains(t, string(data), "season_map_run_duration_seconds")
}

func TestCollector_WriteTextfileEmptyPath(t *testing.T) {
	c := NewCollector("run-4")
	assert.NoError(t, c.WriteTextfile(""))
}
