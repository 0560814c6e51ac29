package smiles

// Reserved token ids
const (
	PadID = 0
	UnkID = 1
)

const (
	padToken = "<pad>"
	unkToken = "<unk>"
)

// DefaultTokens covers the organic subset, common charged and chiral
// bracket atoms, bonds, branches and single-digit ring closures.
var DefaultTokens = []string{
	"C", "c", "N", "n", "O", "o", "S", "s", "P", "p",
	"F", "Cl", "Br", "I", "B", "b",
	"(", ")", "=", "#", "-", "+", "\\", "/", ".", ":",
	"1", "2", "3", "4", "5", "6", "7", "8", "9", "%10", "%11", "%12",
	"[nH]", "[NH+]", "[NH2+]", "[NH3+]", "[N+]", "[N-]", "[O-]", "[S-]",
	"[C@H]", "[C@@H]", "[C@]", "[C@@]", "[S@]", "[S@@]", "[n+]", "[o+]",
}

// Vocab maps tokens to integer ids. Ids 0 and 1 are reserved for padding
// and unknown tokens.
type Vocab struct {
	ids    map[string]int
	tokens []string
}

// NewVocab builds a vocabulary in the given order. Duplicates and the
// reserved tokens are skipped.
func NewVocab(tokens []string) *Vocab {
	v := &Vocab{
		ids:    map[string]int{padToken: PadID, unkToken: UnkID},
		tokens: []string{padToken, unkToken},
	}
	for _, tok := range tokens {
		if tok == "" {
			continue
		}
		if _, ok := v.ids[tok]; ok {
			continue
		}
		v.ids[tok] = len(v.tokens)
		v.tokens = append(v.tokens, tok)
	}
	return v
}

// DefaultVocab returns a vocabulary over DefaultTokens
func DefaultVocab() *Vocab {
	return NewVocab(DefaultTokens)
}

// ID returns the id for tok, or UnkID
func (v *Vocab) ID(tok string) int {
	if id, ok := v.ids[tok]; ok {
		return id
	}
	return UnkID
}

// Token returns the token for id, or the unknown token when out of range
func (v *Vocab) Token(id int) string {
	if id < 0 || id >= len(v.tokens) {
		return unkToken
	}
	return v.tokens[id]
}

// Size returns the number of ids including the reserved ones
func (v *Vocab) Size() int { return len(v.tokens) }

// Encode maps tokens to ids
func (v *Vocab) Encode(tokens []string) []int {
	ids := make([]int, len(tokens))
	for i, tok := range tokens {
		ids[i] = v.ID(tok)
	}
	return ids
}
