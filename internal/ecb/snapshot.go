package ecb

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/fxrates/fxrates/internal/model"
)

// snapshotFile is the name of the cached dataset inside the cache directory.
const snapshotFile = "eurofxref-hist.xml"

// ErrNoSnapshot is returned when the cache directory holds no usable snapshot.
var ErrNoSnapshot = errors.New("no dataset snapshot on disk")

// Snapshot caches the raw downloaded dataset in a directory, typically a
// mounted volume. Without it the dataset is re-downloaded on every restart.
type Snapshot struct {
	dir string
}

// NewSnapshot creates a Snapshot rooted at dir. An empty dir disables
// the on-disk cache entirely.
func NewSnapshot(dir string) *Snapshot {
	return &Snapshot{dir: dir}
}

// Enabled reports whether a cache directory is configured.
func (s *Snapshot) Enabled() bool {
	return s != nil && s.dir != ""
}

// Path returns the location of the snapshot file.
func (s *Snapshot) Path() string {
	return filepath.Join(s.dir, snapshotFile)
}

// Load reads and parses the cached dataset. Returns ErrNoSnapshot when the
// cache is disabled or the file does not exist; any other failure (including
// a corrupt document) is returned as-is so the caller can fall back to a
// fresh download.
func (s *Snapshot) Load() ([]model.Day, time.Time, error) {
	if !s.Enabled() {
		return nil, time.Time{}, ErrNoSnapshot
	}

	info, err := os.Stat(s.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, time.Time{}, ErrNoSnapshot
		}
		return nil, time.Time{}, fmt.Errorf("stat snapshot: %w", err)
	}

	raw, err := os.ReadFile(s.Path())
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("read snapshot: %w", err)
	}

	days, err := ParseBytes(raw)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("parse snapshot: %w", err)
	}

	return days, info.ModTime(), nil
}

// Store writes the raw document atomically (temp file + rename) so a
// crashed write never leaves a corrupt snapshot for the next boot.
func (s *Snapshot) Store(raw []byte) error {
	if !s.Enabled() {
		return nil
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	tmp, err := os.CreateTemp(s.dir, snapshotFile+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp snapshot: %w", err)
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close snapshot: %w", err)
	}

	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("rename snapshot: %w", err)
	}

	return nil
}
