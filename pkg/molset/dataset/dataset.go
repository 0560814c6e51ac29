package dataset

import (
	"context"
	"fmt"
	"io"
	"iter"
)

// InMemory is a fully materialized dataset
type InMemory struct {
	records []Record
}

// NewInMemory wraps a completed record list. The dataset takes ownership of it.
func NewInMemory(records []Record) *InMemory {
	return &InMemory{records: records}
}

// Len returns the number of records
func (d *InMemory) Len() int { return len(d.records) }

// Get returns the i-th record. It panics if i is out of range.
func (d *InMemory) Get(i int) Record { return d.records[i] }

// Records returns the records in source order
func (d *InMemory) Records() []Record { return d.records }

// All ranges over (index, record) pairs in source order
func (d *InMemory) All() iter.Seq2[int, Record] {
	return func(yield func(int, Record) bool) {
		for i, rec := range d.records {
			if !yield(i, rec) {
				return
			}
		}
	}
}

// Seq adapts the dataset to the same shape as Stream.All,
// so consumers can accept either variant.
func (d *InMemory) Seq() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		for _, rec := range d.records {
			if !yield(rec, nil) {
				return
			}
		}
	}
}

// BuildInMemory drains src through f and keeps every non-nil record.
// A nil f passes raw records through unchanged. Any error aborts the build.
func BuildInMemory(ctx context.Context, src RowSource, f FeatureExtractor) (*InMemory, error) {
	defer src.Close()

	var records []Record
	for row := 0; ; row++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		smiles, err := src.Next()
		if isEOF(err) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", row, err)
		}

		rec, err := featurize(f, row, smiles)
		if err != nil {
			return nil, err
		}
		if rec != nil {
			records = append(records, rec)
		}
	}

	return NewInMemory(records), nil
}

// Stream is a lazily produced, single-pass dataset.
// It is not safe for concurrent use.
type Stream struct {
	src  RowSource
	f    FeatureExtractor
	row  int
	done bool
}

// NewStream creates a stream that featurizes one row of src per pull.
// Nothing is read until the first call to Next.
func NewStream(src RowSource, f FeatureExtractor) *Stream {
	return &Stream{src: src, f: f}
}

// Next returns the next non-dropped record, or io.EOF once the rows are exhausted.
// After an error, exhaustion or Close, every further call returns io.EOF.
func (s *Stream) Next() (Record, error) {
	if s.done {
		return nil, io.EOF
	}

	for {
		smiles, err := s.src.Next()
		if isEOF(err) {
			s.finish()
			return nil, io.EOF
		}
		if err != nil {
			s.finish()
			return nil, fmt.Errorf("read row %d: %w", s.row, err)
		}

		row := s.row
		s.row++

		rec, err := featurize(s.f, row, smiles)
		if err != nil {
			s.finish()
			return nil, err
		}
		if rec != nil {
			return rec, nil
		}
	}
}

// All ranges over the remaining records. The stream is closed when the loop
// ends, whether by exhaustion, error or break.
func (s *Stream) All() iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		defer s.Close()
		for {
			rec, err := s.Next()
			if isEOF(err) {
				return
			}
			if !yield(rec, err) || err != nil {
				return
			}
		}
	}
}

// Collect drains the remaining records into an InMemory dataset
func (s *Stream) Collect() (*InMemory, error) {
	var records []Record
	for rec, err := range s.All() {
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return NewInMemory(records), nil
}

// Close releases the underlying row source
func (s *Stream) Close() error {
	if s.done {
		return nil
	}
	return s.finish()
}

func (s *Stream) finish() error {
	s.done = true
	return s.src.Close()
}

func featurize(f FeatureExtractor, row int, smiles string) (Record, error) {
	raw := NewRawRecord(smiles)
	if f == nil {
		return raw, nil
	}

	rec, err := f.GenFeatures(raw)
	if err != nil {
		return nil, fmt.Errorf("featurize row %d: %w", row, err)
	}
	return rec, nil
}
