package fs

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

// SizeCacheFile implements ports.SizeCache with one sizes_<split>.json file
// per split holding a flat array of integers.
type SizeCacheFile struct {
	fs  afero.Fs
	dir string
}

// NewSizeCacheFile creates a size cache rooted at dir.
func NewSizeCacheFile(fsys afero.Fs, dir string) *SizeCacheFile {
	return &SizeCacheFile{fs: fsys, dir: dir}
}

// Path returns the cache file path for split.
func (c *SizeCacheFile) Path(split string) string {
	return filepath.Join(c.dir, fmt.Sprintf("sizes_%s.json", split))
}

// Load returns the cached sizes for split, or ok=false if none exist.
func (c *SizeCacheFile) Load(split string) ([]int, bool, error) {
	var sizes []int
	ok, err := readJSON(c.fs, c.Path(split), &sizes)
	if err != nil || !ok {
		return nil, false, err
	}
	if sizes == nil {
		sizes = []int{}
	}
	return sizes, true, nil
}

// Save writes sizes for split atomically.
func (c *SizeCacheFile) Save(split string, sizes []int) error {
	if sizes == nil {
		sizes = []int{}
	}
	return writeJSON(c.fs, c.Path(split), sizes)
}
