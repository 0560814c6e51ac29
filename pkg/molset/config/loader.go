package config

import (
	"fmt"
	"sort"
	"strings"

	"github.com/cognicore/molset/pkg/molset"
	"github.com/cognicore/molset/pkg/molset/featurizer"
	"github.com/cognicore/molset/pkg/molset/featurizer/smiles"
	"github.com/cognicore/molset/pkg/molset/internalerr"
	"github.com/cognicore/molset/pkg/molset/rawload"
)

// NewFeaturizer builds a featurizer from its config section
type NewFeaturizer func(cfg Featurizer) (featurizer.Featurizer, error)

// Featurizers is the table of named featurizers.
// "" and "none" are handled by the loader and mean passthrough.
var Featurizers = map[string]NewFeaturizer{
	"smiles": newSMILES,
}

// FeaturizerNames lists the registered featurizer names, sorted
func FeaturizerNames() []string {
	names := make([]string, 0, len(Featurizers))
	for name := range Featurizers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newSMILES(cfg Featurizer) (featurizer.Featurizer, error) {
	vocab := smiles.DefaultVocab()
	if cfg.Vocab != "" {
		v, err := LoadVocab(cfg.Vocab)
		if err != nil {
			return nil, fmt.Errorf("load vocab: %w", err)
		}
		vocab = smiles.NewVocab(v.Tokens)
	}
	return smiles.New(vocab, smiles.Options{MaxTokens: cfg.MaxTokens}), nil
}

// Loader turns a Dataset config into ready-to-use components
type Loader struct {
	Config *Dataset
}

// Components holds everything needed to load a dataset
type Components struct {
	DataDir    string
	Options    molset.Options
	Featurizer featurizer.Featurizer // nil when records pass through
	SQLitePath string
}

// Load validates the config and constructs the featurizer
func (l *Loader) Load() (*Components, error) {
	cfg := l.Config
	if cfg == nil {
		cfg = &Dataset{}
	}

	if strings.TrimSpace(cfg.DataDir) == "" {
		return nil, fmt.Errorf("%w: data_dir is required", internalerr.ErrInvalidConfig)
	}

	policy, err := rawload.ParsePolicy(cfg.Select)
	if err != nil {
		return nil, err
	}

	comp := &Components{
		DataDir:    cfg.DataDir,
		SQLitePath: cfg.Export.SQLite,
		Options: molset.Options{
			Column: cfg.Column,
			Policy: policy,
		},
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Featurizer.Name))
	if name == "" || name == "none" {
		return comp, nil
	}

	build, ok := Featurizers[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown featurizer %q (have %s)",
			internalerr.ErrInvalidConfig, cfg.Featurizer.Name, strings.Join(FeaturizerNames(), ", "))
	}
	f, err := build(cfg.Featurizer)
	if err != nil {
		return nil, fmt.Errorf("featurizer %s: %w", name, err)
	}
	comp.Featurizer = f
	comp.Options.Featurizer = f

	return comp, nil
}
