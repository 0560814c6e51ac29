package smiles

import (
	"regexp"
	"strings"
)

// tokenPattern is the usual atom-level SMILES split: bracket atoms,
// two-letter halogens, organic-subset atoms, bonds, branches and ring closures.
var tokenPattern = regexp.MustCompile(`(\[[^\]]+]|Br?|Cl?|N|O|S|P|F|I|b|c|n|o|s|p|\(|\)|\.|=|#|-|\+|\\|/|:|~|@|\?|>|\*|\$|%[0-9]{2}|[0-9])`)

// Tokenizer splits SMILES strings into atom-level tokens
type Tokenizer struct {
	pattern *regexp.Regexp
}

// NewTokenizer creates a tokenizer using the standard SMILES token pattern
func NewTokenizer() *Tokenizer {
	return &Tokenizer{pattern: tokenPattern}
}

// Tokenize splits s into tokens. It reports false when some part of s
// is not covered by any token, so joining the tokens always reproduces s.
func (t *Tokenizer) Tokenize(s string) ([]string, bool) {
	if strings.TrimSpace(s) == "" {
		return nil, false
	}

	spans := t.pattern.FindAllStringIndex(s, -1)
	tokens := make([]string, 0, len(spans))
	pos := 0
	for _, span := range spans {
		// A gap means an unrecognised character sits between two tokens
		if span[0] != pos {
			return nil, false
		}
		tokens = append(tokens, s[span[0]:span[1]])
		pos = span[1]
	}
	if pos != len(s) {
		return nil, false
	}

	return tokens, true
}
