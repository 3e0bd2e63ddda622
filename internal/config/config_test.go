package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Year)
	assert.Equal(t, "locations/teams.json", cfg.Paths.TeamOverrides)
	assert.Equal(t, "locations/events.json", cfg.Paths.EventOverrides)
	assert.Equal(t, "locations/archive", cfg.Paths.Archive)
	assert.Equal(t, "cache", cfg.Paths.Cache)
	assert.Equal(t, "docs/data", cfg.Paths.Output)
	assert.Equal(t, "debug", cfg.Paths.Debug)
	assert.Equal(t, "api-keys.yaml", cfg.APIKeysFile)
	assert.Equal(t, 30, cfg.HTTP.TimeoutSecs)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 24, cfg.HTTP.CacheTTLHours)
	assert.Equal(t, "season-map/1.0", cfg.HTTP.UserAgent)
	assert.InDelta(t, 10, cfg.HTTP.TBARPS, 0.001)
	assert.InDelta(t, 25, cfg.Geocode.RPS, 0.001)
	assert.Equal(t, 60, cfg.Geocode.MemoTTLMinutes)
	assert.False(t, cfg.Output.GeoJSON)
	assert.True(t, cfg.Publish.UseSSL)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
year: 2024
paths:
  output: public/data
log:
  level: debug
  format: console
output:
  geojson: true
publish:
  endpoint: minio.local:9000
  bucket: maps
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 2024, cfg.Year)
	assert.Equal(t, "public/data", cfg.Paths.Output)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.True(t, cfg.Output.GeoJSON)
	assert.Equal(t, "minio.local:9000", cfg.Publish.Endpoint)
	assert.Equal(t, "maps", cfg.Publish.Bucket)
	// Defaults still apply for unset values
	assert.Equal(t, "locations/archive", cfg.Paths.Archive)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
keys:
  tba_key: from-file
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("SEASONMAP_KEYS_TBA_KEY", "from-env")
	t.Setenv("SEASONMAP_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "from-env", cfg.Keys.TBAKey)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("SEASONMAP_SERVER_PORT", "3000")
	t.Setenv("SEASONMAP_YEAR", "2023")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
	assert.Equal(t, 2023, cfg.Year)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("log: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadAPIKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "api-keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tba_key: abc\ngmaps_key: def\nfirst_token: user:xyz\n"), 0600))

	keys, err := LoadAPIKeys(path)
	require.NoError(t, err)
	assert.Equal(t, APIKeys{TBAKey: "abc", GmapsKey: "def", FirstToken: "user:xyz"}, keys)

	keys, err = LoadAPIKeys(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, APIKeys{}, keys)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("tba_key: [x"), 0600))
	_, err = LoadAPIKeys(bad)
	assert.Error(t, err)
}

func TestResolveKeys_FileWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "keys.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gmaps_key: file-gmaps\n"), 0600))

	cfg := &Config{
		APIKeysFile: path,
		Keys:        APIKeys{TBAKey: "env-tba", GmapsKey: "env-gmaps"},
	}
	require.NoError(t, cfg.ResolveKeys())
	assert.Equal(t, "env-tba", cfg.Keys.TBAKey)
	assert.Equal(t, "file-gmaps", cfg.Keys.GmapsKey)
}

func TestValidateGenerate(t *testing.T) {
	cfg := &Config{Keys: APIKeys{TBAKey: "a", GmapsKey: "b"}}
	assert.NoError(t, cfg.Validate("generate"))

	cfg.Keys.FirstToken = "no-colon"
	assert.Error(t, cfg.Validate("generate"))

	err := (&Config{}).Validate("generate")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "keys.tba_key")
	assert.Contains(t, err.Error(), "keys.gmaps_key")
}

func TestValidateServe(t *testing.T) {
	assert.NoError(t, (&Config{Server: ServerConfig{Port: 8080}}).Validate("serve"))
	assert.Error(t, (&Config{Server: ServerConfig{Port: 0}}).Validate("serve"))
	assert.Error(t, (&Config{Server: ServerConfig{Port: 70000}}).Validate("serve"))
}

func TestValidateUnknownMode(t *testing.T) {
	assert.Error(t, (&Config{}).Validate("bogus"))
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}
