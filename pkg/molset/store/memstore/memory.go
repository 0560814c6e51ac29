package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/cognicore/molset/pkg/molset/dataset"
	"github.com/cognicore/molset/pkg/molset/internalerr"
	"github.com/cognicore/molset/pkg/molset/store"
)

// Store is an in-memory implementation of store.Store for tests.
type Store struct {
	mu      sync.RWMutex
	ids     *store.IDSource
	now     func() time.Time
	builds  map[string]store.Build
	records map[string][]store.StoredRecord
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		ids:     store.NewIDSource(),
		now:     time.Now,
		builds:  make(map[string]store.Build),
		records: make(map[string][]store.StoredRecord),
	}
}

// Close implements store.Store.
func (s *Store) Close() error { return nil }

// CreateBuild registers a new, unfinished build.
func (s *Store) CreateBuild(ctx context.Context, source string) (store.Build, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	b := store.Build{
		ID:        s.ids.New(now),
		Source:    source,
		CreatedAt: now,
	}
	s.builds[b.ID] = b
	return b, nil
}

// FinishBuild marks a build complete with its final record count.
func (s *Store) FinishBuild(ctx context.Context, id string, records int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.builds[id]
	if !ok {
		return fmt.Errorf("%w: build %s", internalerr.ErrNotFound, id)
	}
	b.Records = records
	b.Finished = true
	s.builds[id] = b
	return nil
}

// GetBuild returns a build by ID.
func (s *Store) GetBuild(ctx context.Context, id string) (store.Build, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.builds[id]
	return b, ok, nil
}

// ListBuilds returns all builds, oldest first.
func (s *Store) ListBuilds(ctx context.Context) ([]store.Build, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]store.Build, 0, len(s.builds))
	for _, b := range s.builds {
		out = append(out, b)
	}
	// ULIDs sort by creation time
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// AppendRecords stores recs at positions start, start+1, ...
func (s *Store) AppendRecords(ctx context.Context, buildID string, start int, recs []dataset.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.builds[buildID]; !ok {
		return fmt.Errorf("%w: build %s", internalerr.ErrNotFound, buildID)
	}
	for i, rec := range recs {
		smiles, _ := rec.Smiles()
		s.records[buildID] = append(s.records[buildID], store.StoredRecord{
			BuildID: buildID,
			Index:   start + i,
			Smiles:  smiles,
			Payload: copyRecord(rec),
		})
	}
	return nil
}

// Records returns a build's records in index order.
func (s *Store) Records(ctx context.Context, buildID string) ([]store.StoredRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.records[buildID]
	out := make([]store.StoredRecord, len(src))
	copy(out, src)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

func copyRecord(r dataset.Record) dataset.Record {
	out := make(dataset.Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
