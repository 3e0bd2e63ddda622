//go:build !integration

package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/frcmap/season-map/internal/config"
	"github.com/frcmap/season-map/internal/locate"
)

func TestValidateJSONTree(t *testing.T) {
	dir := t.TempDir()
	write := func(rel, body string) {
		p := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
	write("good.json", `{"a":1}`)
	write("nested/bad.json", `{"a":`)
	write("notes.txt", `not json`)
	write(".git/broken.json", `{`)

	invalid, checked, err := validateJSONTree(t.Context(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, checked)
	assert.Equal(t, []string{filepath.Join(dir, "nested", "bad.json")}, invalid)

	var buf bytes.Buffer
	reportValidation(&buf, invalid, checked, true)
	assert.NotContains(t, buf.String(), "files checked")
	assert.Contains(t, buf.String(), "invalid: ")
}

func TestValidateJSONTree_MissingDir(t *testing.T) {
	_, _, err := validateJSONTree(t.Context(), filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestPrintCollisions(t *testing.T) {
	groups := locate.FindCollisions(locate.Archive{
		"frc1": {Lat: 10, Lng: 20},
		"frc2": {Lat: 10, Lng: 20},
		"frc3": {Lat: 11, Lng: 20},
	})

	var buf bytes.Buffer
	printCollisions(&buf, groups)
	assert.Contains(t, buf.String(), "frc1 frc2")
	assert.Contains(t, buf.String(), "1 groups, 2 entries")

	buf.Reset()
	printCollisions(&buf, nil)
	assert.Equal(t, "no collisions\n", buf.String())
}

func TestRouter(t *testing.T) {
	out := t.TempDir()
	site := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(out, "season_2024.json"), []byte(`{"teams":{}}`), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(site, "index.html"), []byte("<html></html>"), 0o644))

	c := &config.Config{}
	c.Paths.Output = out
	c.Paths.Site = site
	h := newRouter(c)

	tests := []struct {
		path string
		code int
		body string
	}{
		{"/health", http.StatusOK, `{"status":"ok"}`},
		{"/data/season_2024.json", http.StatusOK, `{"teams":{}}`},
		{"/data/missing.json", http.StatusNotFound, ""},
		{"/", http.StatusOK, "<html></html>"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Origin", "http://localhost:3000")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)
			assert.Equal(t, tt.code, rec.Code)
			if tt.body != "" {
				assert.Equal(t, tt.body, rec.Body.String())
				assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
			}
		})
	}
}
