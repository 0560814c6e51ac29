package smiles

import (
	"fmt"
	"math"

	"github.com/cognicore/molset/pkg/molset/dataset"
	"github.com/cognicore/molset/pkg/molset/featurizer"
	"github.com/cognicore/molset/pkg/molset/internalerr"
)

// Keys set on featurized records and batches
const (
	KeyTokens   = "tokens"
	KeyTokenIDs = "token_ids"
	KeyLength   = "length"
	KeyLengths  = "lengths"
)

// Options configures the featurizer
type Options struct {
	// MaxTokens drops molecules with more tokens; 0 means unlimited.
	MaxTokens int
}

// Featurizer encodes SMILES strings as token id sequences
type Featurizer struct {
	tokenizer *Tokenizer
	vocab     *Vocab
	maxTokens int
}

var _ featurizer.Featurizer = (*Featurizer)(nil)

// New creates a featurizer. A nil vocab falls back to DefaultVocab.
func New(vocab *Vocab, opts Options) *Featurizer {
	if vocab == nil {
		vocab = DefaultVocab()
	}
	return &Featurizer{
		tokenizer: NewTokenizer(),
		vocab:     vocab,
		maxTokens: opts.MaxTokens,
	}
}

// Vocab returns the vocabulary in use
func (f *Featurizer) Vocab() *Vocab { return f.vocab }

// GenFeatures tokenizes the record's SMILES string. Blank, untokenizable and
// over-long molecules are dropped by returning a nil record.
// A nil *Featurizer passes records through unchanged.
func (f *Featurizer) GenFeatures(raw dataset.Record) (dataset.Record, error) {
	if f == nil {
		return raw, nil
	}

	s, ok := raw.Smiles()
	if !ok {
		return nil, fmt.Errorf("%w: record has no %q string", internalerr.ErrInvalidInput, dataset.SmilesKey)
	}

	tokens, ok := f.tokenizer.Tokenize(s)
	if !ok {
		return nil, nil
	}
	if f.maxTokens > 0 && len(tokens) > f.maxTokens {
		return nil, nil
	}

	return dataset.Record{
		dataset.SmilesKey: s,
		KeyTokens:         tokens,
		KeyTokenIDs:       f.vocab.Encode(tokens),
		KeyLength:         len(tokens),
	}, nil
}

// CollateFn right-pads token ids with PadID to the longest sequence in the batch.
// Token ids may be []int, or []any of whole numbers as they come back from a
// JSON-encoded store.
func (f *Featurizer) CollateFn(records []dataset.Record) (featurizer.Batch, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: empty batch", internalerr.ErrInvalidInput)
	}

	seqs := make([][]int, len(records))
	smiles := make([]string, len(records))
	maxLen := 0
	for i, rec := range records {
		ids, err := tokenIDs(rec)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", internalerr.ErrInvalidInput, i, err)
		}
		seqs[i] = ids
		smiles[i], _ = rec.Smiles()
		if len(ids) > maxLen {
			maxLen = len(ids)
		}
	}

	padded := make([][]int, len(seqs))
	lengths := make([]int, len(seqs))
	for i, ids := range seqs {
		row := make([]int, maxLen)
		copy(row, ids)
		for j := len(ids); j < maxLen; j++ {
			row[j] = PadID
		}
		padded[i] = row
		lengths[i] = len(ids)
	}

	return featurizer.Batch{
		KeyTokenIDs:       padded,
		KeyLengths:        lengths,
		dataset.SmilesKey: smiles,
	}, nil
}

func tokenIDs(rec dataset.Record) ([]int, error) {
	v, ok := rec[KeyTokenIDs]
	if !ok {
		return nil, fmt.Errorf("no %q", KeyTokenIDs)
	}

	switch ids := v.(type) {
	case []int:
		return ids, nil
	case []any:
		out := make([]int, len(ids))
		for j, x := range ids {
			switch n := x.(type) {
			case int:
				out[j] = n
			case float64:
				if n != math.Trunc(n) || n < 0 {
					return nil, fmt.Errorf("%q[%d] = %v is not a token id", KeyTokenIDs, j, n)
				}
				out[j] = int(n)
			default:
				return nil, fmt.Errorf("%q[%d] is %T, not a token id", KeyTokenIDs, j, x)
			}
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%q is %T", KeyTokenIDs, v)
	}
}
