package dataset

import (
	"errors"
	"io"
)

// SmilesKey is the key a raw record stores its molecule under
const SmilesKey = "smiles"

// Record is a single dataset entry. A raw record holds only SmilesKey;
// featurized records carry whatever the featurizer put there.
type Record map[string]any

// NewRawRecord creates a fresh raw record for one SMILES string
func NewRawRecord(smiles string) Record {
	return Record{SmilesKey: smiles}
}

// Smiles returns the record's SMILES string, if it has one
func (r Record) Smiles() (string, bool) {
	s, ok := r[SmilesKey].(string)
	return s, ok
}

// FeatureExtractor turns a raw record into a processed one.
// A nil record with a nil error drops the row.
type FeatureExtractor interface {
	GenFeatures(raw Record) (Record, error)
}

// RowSource produces raw SMILES strings in file order.
// Next returns io.EOF once exhausted.
type RowSource interface {
	Next() (string, error)
	Close() error
}

type sliceSource struct {
	values []string
	pos    int
}

// FromStrings wraps an already loaded column as a RowSource
func FromStrings(values []string) RowSource {
	return &sliceSource{values: values}
}

func (s *sliceSource) Next() (string, error) {
	if s.pos >= len(s.values) {
		return "", io.EOF
	}
	v := s.values[s.pos]
	s.pos++
	return v, nil
}

func (s *sliceSource) Close() error {
	s.pos = len(s.values)
	return nil
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF)
}
