// Package memory provides in-memory stores for tests and for running the
// server without a database.
package memory

import (
	"context"
	"sync"

	"github.com/warp/comp-calculator/roster"
	"github.com/warp/comp-calculator/session"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Store implements session.BlobStore and roster.Repository.
type Store struct {
	mu      sync.RWMutex
	blobs   map[string][]byte
	rosters map[string]roster.Roster
}

func New() *Store {
	return &Store{
		blobs:   make(map[string][]byte),
		rosters: make(map[string]roster.Roster),
	}
}

// GetBlob returns a copy of the stored bytes.
func (s *Store) GetBlob(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.blobs[key]
	if !ok {
		return nil, session.ErrBlobNotFound
	}
	return append([]byte(nil), data...), nil
}

func (s *Store) PutBlob(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *Store) DeleteBlob(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

// SaveRoster inserts or replaces a roster by id.
func (s *Store) SaveRoster(_ context.Context, r roster.Roster) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rosters[r.ID] = cloneRoster(r)
	return nil
}

func (s *Store) GetRoster(_ context.Context, id string) (roster.Roster, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.rosters[id]
	if !ok {
		return roster.Roster{}, roster.ErrRosterNotFound
	}
	return cloneRoster(r), nil
}

func (s *Store) DeleteRoster(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rosters[id]; !ok {
		return roster.ErrRosterNotFound
	}
	delete(s.rosters, id)
	return nil
}

// cloneRoster deep-copies the records so callers cannot mutate stored state.
func cloneRoster(r roster.Roster) roster.Roster {
	if r.Records == nil {
		return r
	}
	records := make([]roster.Record, len(r.Records))
	for i, rec := range r.Records {
		records[i] = rec.Clone()
	}
	r.Records = records
	return r
}
