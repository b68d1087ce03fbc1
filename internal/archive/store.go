// Package archive persists the deduplicated historical slot series, one
// JSON file per region+year, with provenance metadata for every fetch that
// contributed to it.
package archive

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"agile-pricing/internal/model"
)

// FetchRecord is the provenance of one API fetch merged into the archive.
type FetchRecord struct {
	FetchedAt  time.Time `json:"fetched_at"`
	PeriodFrom time.Time `json:"period_from"`
	PeriodTo   time.Time `json:"period_to"`
	Pages      int       `json:"pages"`
	SlotCount  int       `json:"slot_count"`
	Reason     string    `json:"reason"`
}

// Archive is the on-disk record for one region+year: the full slot series
// plus the history of fetches that produced it.
type Archive struct {
	Region    string            `json:"region_code"`
	Year      int               `json:"year"`
	UpdatedAt time.Time         `json:"updated_at"`
	Fetches   []FetchRecord     `json:"fetches"`
	Prices    []model.PriceSlot `json:"prices"`
}

// Store reads and writes archive files. Ownership of each region+year key
// is exclusive; concurrent writers to the same key must be serialized by
// the caller.
type Store struct {
	dir string
}

func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

func (s *Store) path(region string, year int) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", region, year))
}

// Load returns the archive for a region+year, or nil when none exists yet.
func (s *Store) Load(region string, year int) (*Archive, error) {
	raw, err := os.ReadFile(s.path(region, year))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read archive: %w", err)
	}
	var a Archive
	if err := json.Unmarshal(raw, &a); err != nil {
		return nil, fmt.Errorf("parse archive %s_%d: %w", region, year, err)
	}
	return &a, nil
}

// Save writes the archive atomically (temp file then rename).
func (s *Store) Save(a *Archive) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create archive directory: %w", err)
	}
	raw, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal archive: %w", err)
	}
	path := s.path(a.Region, a.Year)
	tmp, err := os.CreateTemp(s.dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
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
