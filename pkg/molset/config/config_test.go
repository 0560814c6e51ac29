package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/cognicore/molset/pkg/molset/internalerr"
	"github.com/cognicore/molset/pkg/molset/rawload"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadDatasetYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "molset.yaml", `
data_dir: ./data/zinc
column: smiles
select: single
featurizer:
  name: smiles
  max_tokens: 120
  vocab: ./vocab.yaml
export:
  sqlite: ./out.db
`)

	cfg, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}

	if cfg.DataDir != "./data/zinc" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.Select != "single" {
		t.Errorf("Select = %q", cfg.Select)
	}
	if cfg.Featurizer.Name != "smiles" || cfg.Featurizer.MaxTokens != 120 || cfg.Featurizer.Vocab != "./vocab.yaml" {
		t.Errorf("Featurizer = %+v", cfg.Featurizer)
	}
	if cfg.Export.SQLite != "./out.db" {
		t.Errorf("Export.SQLite = %q", cfg.Export.SQLite)
	}
}

func TestLoadDatasetEnvOverrides(t *testing.T) {
	path := writeFile(t, t.TempDir(), "molset.yaml", `
data_dir: ./from-file
featurizer:
  name: smiles
  max_tokens: 10
`)

	t.Setenv("MOLSET_DATA_DIR", "/from/env")
	t.Setenv("MOLSET_MAX_TOKENS", "64")

	cfg, err := LoadDataset(path)
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if cfg.DataDir != "/from/env" {
		t.Errorf("Env should override data_dir, got %q", cfg.DataDir)
	}
	if cfg.Featurizer.MaxTokens != 64 {
		t.Errorf("Env should override max_tokens, got %d", cfg.Featurizer.MaxTokens)
	}
	if cfg.Featurizer.Name != "smiles" {
		t.Errorf("Unset env must keep file value, got %q", cfg.Featurizer.Name)
	}
}

func TestLoadDatasetNoFile(t *testing.T) {
	t.Setenv("MOLSET_DATA_DIR", "/only/env")

	cfg, err := LoadDataset("")
	if err != nil {
		t.Fatalf("LoadDataset: %v", err)
	}
	if cfg.DataDir != "/only/env" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
}

func TestLoadDatasetErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadDataset(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("Should error on nonexistent config")
	}

	bad := writeFile(t, dir, "bad.yaml", "data_dir: [unclosed")
	if _, err := LoadDataset(bad); err == nil {
		t.Error("Should error on invalid YAML")
	}

	neg := writeFile(t, dir, "neg.yaml", "featurizer:\n  max_tokens: -1\n")
	if _, err := LoadDataset(neg); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Negative max_tokens: expected ErrInvalidConfig, got %v", err)
	}

	t.Setenv("MOLSET_MAX_TOKENS", "lots")
	if _, err := LoadDataset(""); err == nil {
		t.Error("Should error on non-integer MOLSET_MAX_TOKENS")
	}
}

func TestLoadVocab(t *testing.T) {
	dir := t.TempDir()

	path := writeFile(t, dir, "vocab.yaml", "tokens: [C, N, O, \"=\", \"(\", \")\"]\n")
	v, err := LoadVocab(path)
	if err != nil {
		t.Fatalf("LoadVocab: %v", err)
	}
	if len(v.Tokens) != 6 || v.Tokens[3] != "=" {
		t.Errorf("Tokens = %v", v.Tokens)
	}

	empty := writeFile(t, dir, "empty.yaml", "tokens: []\n")
	if _, err := LoadVocab(empty); !errors.Is(err, internalerr.ErrInvalidConfig) {
		t.Errorf("Empty vocab: expected ErrInvalidConfig, got %v", err)
	}
}

func TestLoaderPassthrough(t *testing.T) {
	loader := Loader{Config: &Dataset{DataDir: "/data"}}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Featurizer != nil || comp.Options.Featurizer != nil {
		t.Error("No featurizer name should mean passthrough")
	}
	if comp.Options.Policy != rawload.PolicyFirst {
		t.Errorf("Default policy = %q, want first", comp.Options.Policy)
	}

	loader.Config.Featurizer.Name = "None"
	comp, err = loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Featurizer != nil {
		t.Error("\"none\" should mean passthrough")
	}
}

func TestLoaderSMILES(t *testing.T) {
	dir := t.TempDir()
	vocab := writeFile(t, dir, "vocab.yaml", "tokens: [C, O]\n")

	loader := Loader{Config: &Dataset{
		DataDir: dir,
		Select:  "single",
		Featurizer: Featurizer{
			Name:      "smiles",
			MaxTokens: 5,
			Vocab:     vocab,
		},
	}}

	comp, err := loader.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if comp.Featurizer == nil || comp.Options.Featurizer == nil {
		t.Fatal("Expected a featurizer")
	}
	if comp.Options.Policy != rawload.PolicySingle {
		t.Errorf("Policy = %q, want single", comp.Options.Policy)
	}
}

func TestLoaderErrors(t *testing.T) {
	tests := []struct {
		name string
		cfg  *Dataset
	}{
		{"nil config", nil},
		{"no data dir", &Dataset{}},
		{"bad policy", &Dataset{DataDir: "/d", Select: "newest"}},
		{"unknown featurizer", &Dataset{DataDir: "/d", Featurizer: Featurizer{Name: "ecfp"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := Loader{Config: tt.cfg}
			if _, err := loader.Load(); !errors.Is(err, internalerr.ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}

	loader := Loader{Config: &Dataset{
		DataDir:    "/d",
		Featurizer: Featurizer{Name: "smiles", Vocab: "/nonexistent/vocab.yaml"},
	}}
	if _, err := loader.Load(); err == nil {
		t.Error("Should error on nonexistent vocab")
	}
}

func TestFeaturizerNames(t *testing.T) {
	names := FeaturizerNames()
	if len(names) == 0 || names[0] != "smiles" {
		t.Errorf("FeaturizerNames = %v", names)
	}
}
