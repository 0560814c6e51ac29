package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/molset/pkg/molset/internalerr"
)

// Dataset is the top-level loader configuration
type Dataset struct {
	DataDir    string     `yaml:"data_dir" env:"MOLSET_DATA_DIR"`
	Column     string     `yaml:"column" env:"MOLSET_COLUMN"`
	Select     string     `yaml:"select" env:"MOLSET_SELECT"`
	Featurizer Featurizer `yaml:"featurizer"`
	Export     Export     `yaml:"export"`
}

// Featurizer selects and configures the featurizer
type Featurizer struct {
	Name      string `yaml:"name" env:"MOLSET_FEATURIZER"`
	MaxTokens int    `yaml:"max_tokens" env:"MOLSET_MAX_TOKENS"`
	Vocab     string `yaml:"vocab" env:"MOLSET_VOCAB"`
}

// Export configures where built datasets are written
type Export struct {
	SQLite string `yaml:"sqlite" env:"MOLSET_SQLITE"`
}

// LoadDataset reads the YAML config at path and applies MOLSET_* environment
// overrides. An empty path skips the file and uses the environment alone.
func LoadDataset(path string) (*Dataset, error) {
	var cfg Dataset

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if cfg.Featurizer.MaxTokens < 0 {
		return nil, fmt.Errorf("%w: max_tokens must be >= 0, got %d", internalerr.ErrInvalidConfig, cfg.Featurizer.MaxTokens)
	}

	return &cfg, nil
}

// Vocab represents a token vocabulary file
type Vocab struct {
	Tokens []string `yaml:"tokens"`
}

// LoadVocab loads a token vocabulary from a YAML file
func LoadVocab(path string) (*Vocab, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var v Vocab
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	if len(v.Tokens) == 0 {
		return nil, fmt.Errorf("%w: vocab %s has no tokens", internalerr.ErrInvalidConfig, path)
	}

	return &v, nil
}
