package pipeline

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/fsutil"
)

// OutputOptions selects the optional dataset renderings.
type OutputOptions struct {
	GeoJSON bool
}

// PrettyFile returns the indented dataset file name for year.
func PrettyFile(year int) string { return fmt.Sprintf("season_%d_pretty.json", year) }

// CompactFile returns the compact dataset file name for year.
func CompactFile(year int) string { return fmt.Sprintf("season_%d.json", year) }

// GeoJSONFile returns the GeoJSON file name for year.
func GeoJSONFile(year int) string { return fmt.Sprintf("season_%d.geojson", year) }

// WriteDataset writes the dataset into dir and returns the written paths.
func WriteDataset(dir string, year int, ds *Dataset, opts OutputOptions) ([]string, error) {
	pretty, err := json.MarshalIndent(ds, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal dataset")
	}
	compact, err := json.Marshal(ds)
	if err != nil {
		return nil, eris.Wrap(err, "pipeline: marshal dataset")
	}

	files := []struct {
		name string
		data []byte
	}{
		{PrettyFile(year), pretty},
		{CompactFile(year), compact},
	}

	if opts.GeoJSON {
		gj, err := MarshalGeoJSON(ds)
		if err != nil {
			return nil, err
		}
		files = append(files, struct {
			name string
			data []byte
		}{GeoJSONFile(year), gj})
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := fsutil.WriteFileAtomic(path, f.data); err != nil {
			return paths, eris.Wrapf(err, "pipeline: write %s", path)
		}
		zap.L().Info("wrote dataset", zap.String("path", path), zap.Int("bytes", len(f.data)))
		paths = append(paths, path)
	}
	return paths, nil
}
