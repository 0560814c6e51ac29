package molset

import (
	"context"

	"github.com/cognicore/molset/pkg/molset/dataset"
	"github.com/cognicore/molset/pkg/molset/rawload"
)

// Options configures how a dataset directory is loaded
type Options struct {
	// Featurizer is applied to every raw record. Nil passes records through;
	// so does a nil *smiles.Featurizer. Other typed nil featurizers must not be passed.
	Featurizer dataset.FeatureExtractor
	// Column names the SMILES column; defaults to "smiles".
	Column string
	// Policy picks the data file inside the directory; defaults to rawload.PolicyFirst.
	Policy rawload.Policy
}

func (o Options) rawOptions() rawload.Options {
	return rawload.Options{Column: o.Column, Policy: o.Policy}
}

// Load reads the SMILES column from the data file in dir and featurizes every
// row up front. Rows the featurizer rejects are left out; order is preserved.
func Load(ctx context.Context, dir string, opts Options) (*dataset.InMemory, error) {
	smiles, err := rawload.LoadColumn(dir, opts.rawOptions())
	if err != nil {
		return nil, err
	}
	return dataset.BuildInMemory(ctx, dataset.FromStrings(smiles), opts.Featurizer)
}

// LoadStream opens the data file in dir and returns a single-pass stream that
// featurizes one row per pull. The file stays open until the stream is
// exhausted or closed.
func LoadStream(dir string, opts Options) (*dataset.Stream, error) {
	src, err := rawload.OpenColumn(dir, opts.rawOptions())
	if err != nil {
		return nil, err
	}
	return dataset.NewStream(src, opts.Featurizer), nil
}
