package fs

import (
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/bft-labs/seqbatch/internal/domain"
)

const statsFileName = "stats.json"

// StatsFile implements ports.StatsRepository with a single stats.json.
type StatsFile struct {
	fs  afero.Fs
	dir string
}

// NewStatsFile creates a statistics repository rooted at dir.
func NewStatsFile(fsys afero.Fs, dir string) *StatsFile {
	return &StatsFile{fs: fsys, dir: dir}
}

// Path returns the full path to the statistics file.
func (r *StatsFile) Path() string {
	return filepath.Join(r.dir, statsFileName)
}

// Load reads the statistics, or returns ok=false if the file is absent.
func (r *StatsFile) Load() (domain.Stats, bool, error) {
	var st domain.Stats
	ok, err := readJSON(r.fs, r.Path(), &st)
	if err != nil || !ok {
		return nil, false, err
	}
	return st, true, nil
}

// Save writes the statistics atomically.
func (r *StatsFile) Save(st domain.Stats) error {
	return writeJSON(r.fs, r.Path(), st)
}
