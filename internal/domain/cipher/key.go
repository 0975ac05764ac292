// Package cipher implements substitution keys over a fixed alphabet.
//
// A Key is a bijection from the alphabet onto itself. It owns its random
// source: construction draws a uniform permutation, Choose draws one
// symbol, and Perturb swaps the images of two drawn symbols. Seeding the
// source fixes every draw, so a whole search is reproducible.
package cipher

import (
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
)

var (
	// ErrEmptyAlphabet is returned when a key is built over no symbols.
	ErrEmptyAlphabet = errors.New("alphabet is empty")

	// ErrDuplicateSymbol is returned when the alphabet repeats a symbol.
	ErrDuplicateSymbol = errors.New("alphabet has a duplicate symbol")

	// ErrNotBijection is returned when an explicit key image is not a
	// permutation of the alphabet.
	ErrNotBijection = errors.New("key is not a bijection over the alphabet")
)

// NewRand returns the canonical seeded source for keys.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// Key is a substitution key.
// Thread safety: NOT safe for concurrent use.
type Key struct {
	alphabet []rune
	mapping  map[rune]rune
	rng      *rand.Rand
}

// New builds a key whose mapping is a uniformly random permutation of
// alphabet, drawn from rng. Fixed points are allowed.
func New(alphabet string, rng *rand.Rand) (*Key, error) {
	symbols, err := parseAlphabet(alphabet)
	if err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, fmt.Errorf("nil random source")
	}

	shuffled := make([]rune, len(symbols))
	copy(shuffled, symbols)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	return &Key{
		alphabet: symbols,
		mapping:  zip(symbols, shuffled),
		rng:      rng,
	}, nil
}

// Parse builds a key mapping alphabet[i] to image[i]. rng is used only by
// later Choose and Perturb calls and may be nil if neither is needed.
func Parse(alphabet, image string, rng *rand.Rand) (*Key, error) {
	symbols, err := parseAlphabet(alphabet)
	if err != nil {
		return nil, err
	}
	values := []rune(image)
	if len(values) != len(symbols) {
		return nil, fmt.Errorf("%w: image has %d symbols, alphabet has %d",
			ErrNotBijection, len(values), len(symbols))
	}

	mapping := zip(symbols, values)
	seen := make(map[rune]bool, len(values))
	for _, v := range values {
		if _, ok := mapping[v]; !ok {
			return nil, fmt.Errorf("%w: %q is not in the alphabet", ErrNotBijection, v)
		}
		if seen[v] {
			return nil, fmt.Errorf("%w: %q appears twice", ErrNotBijection, v)
		}
		seen[v] = true
	}

	return &Key{alphabet: symbols, mapping: mapping, rng: rng}, nil
}

func parseAlphabet(alphabet string) ([]rune, error) {
	symbols := []rune(alphabet)
	if len(symbols) == 0 {
		return nil, ErrEmptyAlphabet
	}
	seen := make(map[rune]bool, len(symbols))
	for _, c := range symbols {
		if seen[c] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateSymbol, c)
		}
		seen[c] = true
	}
	return symbols, nil
}

func zip(keys, values []rune) map[rune]rune {
	m := make(map[rune]rune, len(keys))
	for i, k := range keys {
		m[k] = values[i]
	}
	return m
}

// Alphabet returns the key's domain in its original order.
func (k *Key) Alphabet() string {
	return string(k.alphabet)
}

// Map returns the image of symbol and whether symbol is in the domain.
func (k *Key) Map(symbol rune) (rune, bool) {
	v, ok := k.mapping[symbol]
	return v, ok
}

// Image returns the mapped values in alphabet order, the form Parse accepts.
func (k *Key) Image() string {
	var sb strings.Builder
	for _, c := range k.alphabet {
		sb.WriteRune(k.mapping[c])
	}
	return sb.String()
}

// String renders the key as "alphabet→image".
func (k *Key) String() string {
	return k.Alphabet() + "→" + k.Image()
}

// Choose draws one alphabet symbol uniformly at random.
func (k *Key) Choose() rune {
	return k.alphabet[k.rng.IntN(len(k.alphabet))]
}

// Perturb draws two symbols independently and swaps their images. When
// both draws coincide the mapping is unchanged, but both draws are still
// consumed. Returns k for chaining.
func (k *Key) Perturb() *Key {
	a, b := k.Choose(), k.Choose()
	k.mapping[a], k.mapping[b] = k.mapping[b], k.mapping[a]
	return k
}

// Clone copies the mapping. The clone shares the random source with k, so
// draws continue from the same stream whichever of the two is kept.
func (k *Key) Clone() *Key {
	mapping := make(map[rune]rune, len(k.mapping))
	for c, v := range k.mapping {
		mapping[c] = v
	}
	return &Key{alphabet: k.alphabet, mapping: mapping, rng: k.rng}
}

// Perturbed returns a perturbed clone, leaving k unchanged.
func (k *Key) Perturbed() *Key {
	return k.Clone().Perturb()
}

// Decipher maps every symbol of text through the key. Symbols outside the
// alphabet pass through unchanged.
func (k *Key) Decipher(text string) string {
	return translate(text, k.mapping)
}

// Inverse returns a key that undoes k. It shares k's random source.
func (k *Key) Inverse() *Key {
	inverse := make(map[rune]rune, len(k.mapping))
	for c, v := range k.mapping {
		inverse[v] = c
	}
	return &Key{alphabet: k.alphabet, mapping: inverse, rng: k.rng}
}

// Encipher applies the inverse mapping, so k.Decipher(k.Encipher(t)) == t.
func (k *Key) Encipher(text string) string {
	return k.Inverse().Decipher(text)
}

func translate(text string, mapping map[rune]rune) string {
	var sb strings.Builder
	sb.Grow(len(text))
	for _, c := range text {
		if v, ok := mapping[c]; ok {
			sb.WriteRune(v)
		} else {
			sb.WriteRune(c)
		}
	}
	return sb.String()
}
