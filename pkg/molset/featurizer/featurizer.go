package featurizer

import (
	"fmt"

	"github.com/cognicore/molset/pkg/molset/dataset"
	"github.com/cognicore/molset/pkg/molset/internalerr"
)

// Batch is the aggregated form of many processed records
type Batch map[string]any

// Featurizer converts raw records into features (GenFeatures) and
// aggregates processed records into batches (CollateFn).
//
// GenFeatures returns a nil record to drop a row. It must not depend on
// state mutated by earlier calls. The dataset builders only call GenFeatures;
// CollateFn is for downstream batch consumers.
type Featurizer interface {
	dataset.FeatureExtractor
	CollateFn(records []dataset.Record) (Batch, error)
}

// Unimplemented can be embedded by featurizers that override only part of the
// contract. Both methods fail with internalerr.ErrNotImplemented.
type Unimplemented struct{}

// GenFeatures implements Featurizer.
func (Unimplemented) GenFeatures(dataset.Record) (dataset.Record, error) {
	return nil, fmt.Errorf("GenFeatures: %w", internalerr.ErrNotImplemented)
}

// CollateFn implements Featurizer.
func (Unimplemented) CollateFn([]dataset.Record) (Batch, error) {
	return nil, fmt.Errorf("CollateFn: %w", internalerr.ErrNotImplemented)
}
