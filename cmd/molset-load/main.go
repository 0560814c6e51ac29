package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"iter"
	"log"
	"os"

	"github.com/cognicore/molset/pkg/molset"
	"github.com/cognicore/molset/pkg/molset/config"
	"github.com/cognicore/molset/pkg/molset/dataset"
	"github.com/cognicore/molset/pkg/molset/featurizer/smiles"
	"github.com/cognicore/molset/pkg/molset/store"
	"github.com/cognicore/molset/pkg/molset/store/sqlite"
)

// overrides are flag values that take precedence over the config file
type overrides struct {
	dataDir    string
	featurizer string
	dbPath     string
}

func main() {
	var (
		configPath = flag.String("config", "", "YAML config file (optional)")
		dataDir    = flag.String("data", "", "Directory holding the gzip CSV data file")
		featName   = flag.String("featurizer", "", "Featurizer name (none, smiles)")
		stream     = flag.Bool("stream", false, "Stream records instead of materializing them")
		dbPath     = flag.String("db", "", "Export records to this SQLite database (optional)")
		limit      = flag.Int("limit", 5, "Number of records to print")
	)
	flag.Parse()

	comp, err := buildComponents(*configPath, overrides{
		dataDir:    *dataDir,
		featurizer: *featName,
		dbPath:     *dbPath,
	})
	if err != nil {
		log.Fatal("Failed to load configuration: ", err)
	}

	if err := run(context.Background(), comp, *stream, *limit, os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func buildComponents(configPath string, o overrides) (*config.Components, error) {
	cfg, err := config.LoadDataset(configPath)
	if err != nil {
		return nil, err
	}

	if o.dataDir != "" {
		cfg.DataDir = o.dataDir
	}
	if o.featurizer != "" {
		cfg.Featurizer.Name = o.featurizer
	}
	if o.dbPath != "" {
		cfg.Export.SQLite = o.dbPath
	}

	loader := config.Loader{Config: cfg}
	return loader.Load()
}

func run(ctx context.Context, comp *config.Components, stream bool, limit int, out io.Writer) error {
	var (
		seq   iter.Seq2[dataset.Record, error]
		count = func() int { return 0 }
	)

	if stream {
		s, err := molset.LoadStream(comp.DataDir, comp.Options)
		if err != nil {
			return fmt.Errorf("open stream: %w", err)
		}
		defer s.Close()
		log.Printf("Streaming records from %s", comp.DataDir)

		n := 0
		seq = counted(s.All(), &n)
		count = func() int { return n }
	} else {
		ds, err := molset.Load(ctx, comp.DataDir, comp.Options)
		if err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		log.Printf("Loaded %d records from %s", ds.Len(), comp.DataDir)

		seq = ds.Seq()
		count = ds.Len
	}

	if comp.SQLitePath != "" {
		st, err := sqlite.OpenSQLite(ctx, comp.SQLitePath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer st.Close()

		b, err := store.Export(ctx, st, comp.DataDir, printed(seq, limit, out), 0)
		if err != nil {
			return fmt.Errorf("export: %w", err)
		}
		log.Printf("✓ Exported build %s: %d records to %s", b.ID, b.Records, comp.SQLitePath)
		return nil
	}

	for _, err := range printed(seq, limit, out) {
		if err != nil {
			return err
		}
	}
	log.Printf("✓ Done: %d records", count())
	return nil
}

// printed writes the first limit records to out as they pass through
func printed(seq iter.Seq2[dataset.Record, error], limit int, out io.Writer) iter.Seq2[dataset.Record, error] {
	return func(yield func(dataset.Record, error) bool) {
		i := 0
		for rec, err := range seq {
			if err == nil && i < limit {
				fmt.Fprintf(out, "%d\t%s\n", i, describe(rec))
			}
			i++
			if !yield(rec, err) {
				return
			}
		}
	}
}

func counted(seq iter.Seq2[dataset.Record, error], n *int) iter.Seq2[dataset.Record, error] {
	return func(yield func(dataset.Record, error) bool) {
		for rec, err := range seq {
			if err == nil {
				*n++
			}
			if !yield(rec, err) {
				return
			}
		}
	}
}

func describe(rec dataset.Record) string {
	s, _ := rec.Smiles()
	if n, ok := rec[smiles.KeyLength].(int); ok {
		return fmt.Sprintf("%s\t(%d tokens)", s, n)
	}
	return s
}
