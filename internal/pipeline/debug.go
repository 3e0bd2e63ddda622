package pipeline

import (
	"encoding/json"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/frcmap/season-map/internal/fsutil"
)

// debugDumper writes intermediate pipeline state as pretty JSON. A nil
// dumper, or one with no directory, writes nothing.
type debugDumper struct {
	dir string
}

func (d *debugDumper) dump(name string, v any) {
	if d == nil || d.dir == "" {
		return
	}
	path := filepath.Join(d.dir, name+".json")
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		zap.L().Warn("failed to marshal debug dump", zap.String("name", name), zap.Error(err))
		return
	}
	if err := fsutil.WriteFileAtomic(path, data); err != nil {
		zap.L().Warn("failed to write debug dump", zap.String("path", path), zap.Error(err))
		return
	}
	zap.L().Debug("wrote debug dump", zap.String("path", path))
}
