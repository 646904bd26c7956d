package dataset

import (
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/de-tools/billing-atlas/pkg/models/domain"
	"github.com/google/uuid"
)

// Dataset is one uploaded record set plus its externally owned side tables
// (manual overrides and free-text notes).
type Dataset struct {
	ID        string
	CreatedAt time.Time
	Records   []domain.SessionRecord
	Overrides map[string]string
	Notes     map[string]string
}

// Store keeps uploaded datasets in memory, keyed by id. The engine reads
// snapshots only; all mutation goes through Store methods so concurrent
// aggregation passes never share mutable state.
type Store struct {
	mu       sync.RWMutex
	datasets map[string]*Dataset
}

func NewStore() *Store {
	return &Store{datasets: make(map[string]*Dataset)}
}

// Create registers a new dataset and returns its id.
func (s *Store) Create(records []domain.SessionRecord) string {
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[id] = &Dataset{
		ID:        id,
		CreatedAt: time.Now().UTC(),
		Records:   records,
		Overrides: make(map[string]string),
		Notes:     make(map[string]string),
	}
	return id
}

// Snapshot returns a read-only view of a dataset: the shared record slice
// (never mutated after Create) and cloned override/notes maps.
func (s *Store) Snapshot(id string) (Dataset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ds, ok := s.datasets[id]
	if !ok {
		return Dataset{}, fmt.Errorf("dataset %q not found", id)
	}
	return Dataset{
		ID:        ds.ID,
		CreatedAt: ds.CreatedAt,
		Records:   ds.Records,
		Overrides: maps.Clone(ds.Overrides),
		Notes:     maps.Clone(ds.Notes),
	}, nil
}

// SetOverride records a manual not-viable reason for a client. An empty
// reason clears the override.
func (s *Store) SetOverride(id, client, reason string) error {
	if reason != "" && !domain.ValidOverrideReason(reason) {
		return fmt.Errorf("unknown override reason %q", reason)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return fmt.Errorf("dataset %q not found", id)
	}
	if reason == "" {
		delete(ds.Overrides, client)
		return nil
	}
	ds.Overrides[client] = reason
	return nil
}

// SetNotes stores free-text notes for a client. Empty notes clear the entry.
func (s *Store) SetNotes(id, client, notes string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ds, ok := s.datasets[id]
	if !ok {
		return fmt.Errorf("dataset %q not found", id)
	}
	if notes == "" {
		delete(ds.Notes, client)
		return nil
	}
	ds.Notes[client] = notes
	return nil
}
