// Package memstore is an in-memory persistence backend with the same
// contract as the SQLite store. It backs tests and ephemeral kiosk sessions.
//
// Writes can be made to fail with FailWrites to exercise storage-error paths.
package memstore

import (
	"context"
	"fmt"
	"sync"

	"github.com/roach88/boothsync/internal/survey"
)

// Store holds responses and settings in memory.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	mu        sync.RWMutex
	responses []survey.Response
	ids       map[string]struct{}
	settings  map[string]string
	failErr   error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		ids:      make(map[string]struct{}),
		settings: make(map[string]string),
	}
}

// FailWrites makes every subsequent write return a storage error wrapping
// err. Pass nil to restore normal behavior.
func (s *Store) FailWrites(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failErr = err
}

func (s *Store) writeErr(op string) error {
	if s.failErr != nil {
		return survey.NewStorageError(op, s.failErr)
	}
	return nil
}

// AppendResponse appends r. A duplicate id is rejected.
func (s *Store) AppendResponse(_ context.Context, r survey.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeErr("append response"); err != nil {
		return err
	}
	if _, dup := s.ids[r.ID]; dup {
		return survey.NewStorageError("append response", fmt.Errorf("duplicate id %q", r.ID))
	}
	s.appendLocked(r)
	return nil
}

// AppendResponses appends rs in order. Either all are stored or none.
func (s *Store) AppendResponses(_ context.Context, rs []survey.Response) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(rs) == 0 {
		return nil
	}
	if err := s.writeErr("append responses"); err != nil {
		return err
	}

	batch := make(map[string]struct{}, len(rs))
	for i, r := range rs {
		_, dup := s.ids[r.ID]
		_, dupBatch := batch[r.ID]
		if dup || dupBatch {
			return survey.NewStorageError(
				fmt.Sprintf("append responses: row %d", i),
				fmt.Errorf("duplicate id %q", r.ID),
			)
		}
		batch[r.ID] = struct{}{}
	}

	for _, r := range rs {
		s.appendLocked(r)
	}
	return nil
}

func (s *Store) appendLocked(r survey.Response) {
	r = r.Clone()
	if r.SelectedProducts == nil {
		r.SelectedProducts = []string{}
	}
	s.responses = append(s.responses, r)
	s.ids[r.ID] = struct{}{}
}

// ListResponses returns a copy of every response in insertion order.
func (s *Store) ListResponses(_ context.Context) ([]survey.Response, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]survey.Response, len(s.responses))
	for i, r := range s.responses {
		out[i] = r.Clone()
	}
	return out, nil
}

// ResponseIDs returns the set of stored ids.
func (s *Store) ResponseIDs(_ context.Context) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		out[id] = struct{}{}
	}
	return out, nil
}

// ClearResponses deletes every response.
func (s *Store) ClearResponses(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeErr("clear responses"); err != nil {
		return err
	}
	s.responses = nil
	s.ids = make(map[string]struct{})
	return nil
}

// MarkSynced sets synced=true on the given ids.
func (s *Store) MarkSynced(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(ids) == 0 {
		return nil
	}
	if err := s.writeErr("mark synced"); err != nil {
		return err
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	for i := range s.responses {
		if _, ok := want[s.responses[i].ID]; ok {
			s.responses[i].Synced = survey.Bool(true)
		}
	}
	return nil
}

// Setting returns the value stored under key.
func (s *Store) Setting(_ context.Context, key string) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.settings[key]
	return v, ok, nil
}

// PutSetting stores value under key.
func (s *Store) PutSetting(_ context.Context, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeErr("write setting"); err != nil {
		return err
	}
	s.settings[key] = value
	return nil
}
