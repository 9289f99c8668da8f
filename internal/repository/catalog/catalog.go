package catalog

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kailas-cloud/orgrank/internal/domain"
	"github.com/kailas-cloud/orgrank/internal/domain/org"
)

// file is the on-disk catalog layout.
type file struct {
	Nonprofits []org.Record `json:"nonprofits"`
}

// Store is an immutable in-memory catalog keyed by record id.
type Store struct {
	records []org.Record
	byID    map[string]*org.Record
}

// Load reads and indexes a catalog file.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path) //nolint:gosec // operator-supplied path
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog JSON.
func Parse(data []byte) (*Store, error) {
	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	return New(f.Nonprofits)
}

// New indexes records. Empty or duplicate ids are rejected so that every id
// resolves to exactly one record.
func New(records []org.Record) (*Store, error) {
	s := &Store{
		records: records,
		byID:    make(map[string]*org.Record, len(records)),
	}
	for i := range s.records {
		r := &s.records[i]
		if r.ID == "" {
			return nil, fmt.Errorf("record %d: empty id", i)
		}
		if _, dup := s.byID[r.ID]; dup {
			return nil, fmt.Errorf("record %d: duplicate id %q", i, r.ID)
		}
		s.byID[r.ID] = r
	}
	return s, nil
}

// All returns every record in file order. Callers must not modify the slice.
func (s *Store) All() []org.Record { return s.records }

// Get returns the record for id, or domain.ErrNotFound.
func (s *Store) Get(id string) (*org.Record, error) {
	r, ok := s.byID[id]
	if !ok {
		return nil, fmt.Errorf("org %q: %w", id, domain.ErrNotFound)
	}
	return r, nil
}

// Len returns the number of records.
func (s *Store) Len() int { return len(s.records) }
