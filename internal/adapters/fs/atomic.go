// Package fs persists the size and statistics caches as JSON files through
// an afero filesystem, so tests can run against an in-memory filesystem.
package fs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// writeJSON writes v to path atomically: the data goes to a temp file which
// is then renamed over the target.
func writeJSON(fsys afero.Fs, path string, v interface{}) error {
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "create %s", filepath.Dir(path))
	}
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "encode %s", path)
	}
	tmp := path + ".tmp"
	if err := afero.WriteFile(fsys, tmp, data, 0o644); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	return errors.Wrapf(fsys.Rename(tmp, path), "rename %s", tmp)
}

// readJSON decodes path into v. ok is false if the file does not exist.
func readJSON(fsys afero.Fs, path string, v interface{}) (ok bool, err error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, "read %s", path)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, errors.Wrapf(err, "decode %s", path)
	}
	return true, nil
}
