package store

import (
	"context"
	"crypto/rand"
	"fmt"
	"iter"
	"sync"
	"time"

	"github.com/cognicore/molset/pkg/molset/dataset"
	"github.com/oklog/ulid/v2"
)

// Store persists built datasets for downstream consumers
type Store interface {
	Close() error

	// Builds
	CreateBuild(ctx context.Context, source string) (Build, error)
	FinishBuild(ctx context.Context, id string, records int) error
	GetBuild(ctx context.Context, id string) (Build, bool, error)
	ListBuilds(ctx context.Context) ([]Build, error)

	// Records
	AppendRecords(ctx context.Context, buildID string, start int, recs []dataset.Record) error
	Records(ctx context.Context, buildID string) ([]StoredRecord, error)
}

// Build describes one exported dataset
type Build struct {
	ID        string
	Source    string
	CreatedAt time.Time
	Records   int
	Finished  bool
}

// StoredRecord is a record as read back from a store
type StoredRecord struct {
	BuildID string
	Index   int
	Smiles  string
	Payload dataset.Record
}

// IDSource hands out monotonic ULIDs for builds
type IDSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// NewIDSource creates an ID source seeded from crypto/rand
func NewIDSource() *IDSource {
	return &IDSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a fresh ULID string for t
func (s *IDSource) New(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

// DefaultBatchSize is how many records Export writes per AppendRecords call
const DefaultBatchSize = 500

// Export writes every record of seq into st under a new build and returns it.
// The build is only marked finished when seq is drained without error.
func Export(ctx context.Context, st Store, source string, seq iter.Seq2[dataset.Record, error], batchSize int) (Build, error) {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	b, err := st.CreateBuild(ctx, source)
	if err != nil {
		return Build{}, fmt.Errorf("create build: %w", err)
	}

	total := 0
	batch := make([]dataset.Record, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := st.AppendRecords(ctx, b.ID, total, batch); err != nil {
			return fmt.Errorf("append records at %d: %w", total, err)
		}
		total += len(batch)
		batch = batch[:0]
		return nil
	}

	for rec, err := range seq {
		if err != nil {
			return b, err
		}
		batch = append(batch, rec)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return b, err
			}
		}
	}
	if err := flush(); err != nil {
		return b, err
	}

	if err := st.FinishBuild(ctx, b.ID, total); err != nil {
		return b, fmt.Errorf("finish build: %w", err)
	}
	b.Records = total
	b.Finished = true
	return b, nil
}
