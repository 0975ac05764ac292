package corpus

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

// ErrMalformedStats is returned (wrapped) when a serialized model does not
// match the nested {frequency, ratio, symbols} record shape.
var ErrMalformedStats = errors.New("malformed stats")

// nodeJSON is the serialized form of a Node. Symbol keys are single-symbol
// strings. Pointer fields let Decode tell a missing field from a zero one.
type nodeJSON struct {
	Frequency *uint64              `json:"frequency"`
	Ratio     *float64             `json:"ratio"`
	Symbols   map[string]*nodeJSON `json:"symbols"`
}

// Encode writes the model as a nested JSON record rooted at the root node.
func (s *Stats) Encode(w io.Writer) error {
	return json.NewEncoder(w).Encode(toJSON(s.root))
}

// MarshalJSON implements json.Marshaler.
func (s *Stats) MarshalJSON() ([]byte, error) {
	return json.Marshal(toJSON(s.root))
}

func toJSON(n *Node) *nodeJSON {
	freq, ratio := n.Frequency, n.Ratio
	out := &nodeJSON{
		Frequency: &freq,
		Ratio:     &ratio,
		Symbols:   make(map[string]*nodeJSON, len(n.Symbols)),
	}
	for symbol, child := range n.Symbols {
		out.Symbols[string(symbol)] = toJSON(child)
	}
	return out
}

// Decode reads one serialized model. Unknown fields, missing fields,
// symbol keys that are not exactly one symbol, and ratios outside [0, 1]
// are rejected with ErrMalformedStats; no partial model is returned.
func Decode(r io.Reader) (*Stats, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var doc nodeJSON
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedStats, err)
	}

	root, err := fromJSON(&doc, "$")
	if err != nil {
		return nil, err
	}
	s := &Stats{root: root}
	s.contexts = sortedSymbols(root)
	return s, nil
}

func fromJSON(doc *nodeJSON, path string) (*Node, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: %s: null record", ErrMalformedStats, path)
	}
	if doc.Frequency == nil {
		return nil, fmt.Errorf("%w: %s: missing frequency", ErrMalformedStats, path)
	}
	if doc.Ratio == nil {
		return nil, fmt.Errorf("%w: %s: missing ratio", ErrMalformedStats, path)
	}
	if doc.Symbols == nil {
		return nil, fmt.Errorf("%w: %s: missing symbols", ErrMalformedStats, path)
	}
	if *doc.Ratio < 0 || *doc.Ratio > 1 {
		return nil, fmt.Errorf("%w: %s: ratio %v outside [0, 1]", ErrMalformedStats, path, *doc.Ratio)
	}

	n := &Node{
		Frequency: *doc.Frequency,
		Ratio:     *doc.Ratio,
		Symbols:   make(map[rune]*Node, len(doc.Symbols)),
	}
	for key, child := range doc.Symbols {
		symbol, size := utf8.DecodeRuneInString(key)
		if size == 0 || size != len(key) || (symbol == utf8.RuneError && size == 1) {
			return nil, fmt.Errorf("%w: %s: symbol key %q is not a single symbol", ErrMalformedStats, path, key)
		}
		c, err := fromJSON(child, path+"."+key)
		if err != nil {
			return nil, err
		}
		n.Symbols[symbol] = c
	}
	return n, nil
}
