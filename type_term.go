package vest

import "fmt"

// Term is the holding period class of a realized gain.
type Term int

const (
	// ShortTerm gains come from units held one year or less.
	ShortTerm Term = iota
	// LongTerm gains come from units bought more than 365 days before the sale.
	LongTerm
	// MixedTerm flags a sale matched against both short and long term units.
	// It is never averaged into one of the other two.
	MixedTerm
)

func (t Term) String() string {
	switch t {
	case ShortTerm:
		return "short"
	case LongTerm:
		return "long"
	case MixedTerm:
		return "mixed"
	default:
		return "unknown"
	}
}

// ParseTerm parses a string into a Term.
func ParseTerm(s string) (Term, error) {
	switch s {
	case "short":
		return ShortTerm, nil
	case "long":
		return LongTerm, nil
	case "mixed":
		return MixedTerm, nil
	default:
		return 0, fmt.Errorf("unknown term: %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (t Term) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// combine merges the term of two groups of units.
func (t Term) combine(u Term) Term {
	if t == u {
		return t
	}
	return MixedTerm
}
