// Package fsutil holds small file helpers shared by the archive and output
// writers.
package fsutil

import (
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
)

// WriteFileAtomic replaces path with data by writing a temporary file in the
// same directory and renaming it over the target. Readers never observe a
// partially written file.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return eris.Wrapf(err, "fsutil: create temp file in %s", dir)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "fsutil: write %s", tmpName)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "fsutil: close %s", tmpName)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "fsutil: chmod %s", tmpName)
	}
	if err := os.Rename(tmpName, path); err != nil {
		_ = os.Remove(tmpName)
		return eris.Wrapf(err, "fsutil: rename %s to %s", tmpName, path)
	}
	return nil
}

// EnsureDir creates path (and parents) if it does not exist. It fails when
// path exists but is not a directory.
func EnsureDir(path string) error {
	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return eris.Errorf("fsutil: %s exists but is not a directory", path)
		}
		return nil
	case os.IsNotExist(err):
		if err := os.MkdirAll(path, 0o755); err != nil {
			return eris.Wrapf(err, "fsutil: create directory %s", path)
		}
		return nil
	default:
		return eris.Wrapf(err, "fsutil: stat %s", path)
	}
}
