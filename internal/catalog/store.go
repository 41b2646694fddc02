package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store persists the full clip list as one JSON document. The whole list is
// replaced on every save; catalogs are bounded by the files in one directory,
// so partial writes buy nothing.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the persisted clip list. A missing or unparsable document
// means "no clips known yet" and yields an empty list, never an error.
func (s *Store) Load() []ClipRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Save replaces the persisted document. The write goes to a temp file in the
// same directory and is renamed over the target, so a concurrent reader never
// observes a truncated catalog.
func (s *Store) Save(records []ClipRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(records)
}

// Update runs a single load-mutate-save cycle under the store lock. When fn
// reports save=false the on-disk document is left untouched and the returned
// list is handed back as-is.
func (s *Store) Update(fn func(records []ClipRecord) (out []ClipRecord, save bool, err error)) ([]ClipRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out, save, err := fn(s.load())
	if err != nil {
		return nil, err
	}
	if !save {
		return out, nil
	}
	if err := s.save(out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) load() []ClipRecord {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return []ClipRecord{}
	}
	var docs []recordDocument
	if err := json.Unmarshal(data, &docs); err != nil {
		return []ClipRecord{}
	}
	records := make([]ClipRecord, 0, len(docs))
	for _, d := range docs {
		if rec, ok := d.normalize(); ok {
			records = append(records, rec)
		}
	}
	return records
}

func (s *Store) save(records []ClipRecord) error {
	if records == nil {
		records = []ClipRecord{}
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure state dir: %w", err)
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp catalog: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp catalog: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace catalog: %w", err)
	}
	return nil
}
