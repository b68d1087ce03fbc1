package stats

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"agile-pricing/internal/model"
)

// Store persists YearStats records keyed by (region, year). Each save fully
// overwrites the record; there is no merge. Implementations must write
// atomically so a reader never observes a partial record.
type Store interface {
	Save(stats model.YearStats) error
	// Load returns nil (no error) when no record exists for the key.
	Load(region string, year int) (*model.YearStats, error)
}

// FileStore keeps one JSON file per region+year under a directory, the
// national record under the "national" key.
type FileStore struct {
	dir string
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(region string, year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", region, year))
}

func (s *FileStore) Save(stats model.YearStats) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create stats directory: %w", err)
	}
	raw, err := json.MarshalIndent(stats, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}
	return atomicWrite(s.path(stats.RegionCode, stats.Year), raw)
}

func (s *FileStore) Load(region string, year int) (*model.YearStats, error) {
	raw, err := os.ReadFile(s.path(region, year))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read stats file: %w", err)
	}
	var stats model.YearStats
	if err := json.Unmarshal(raw, &stats); err != nil {
		return nil, fmt.Errorf("parse stats file: %w", err)
	}
	return &stats, nil
}

// atomicWrite writes to a temp file in the target directory and renames it
// into place, so concurrent readers see either the old or the new record.
func atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename into place: %w", err)
	}
	return nil
}
