// Package corpus implements the symbol-transition frequency model.
//
// A model is a tree of Nodes. The root counts every transition read; its
// children are "from" contexts, and their children are "to" symbols. Only
// the leaves hold raw counts. Finish derives every internal frequency from
// its children and then every ratio from its parent, so for any node with
// a non-zero frequency the ratios of its children sum to 1.
//
// The tree is uniformly recursive. Read drives it to depth two (order-1
// transitions); Lookup accepts paths of any length.
package corpus

import (
	"sort"

	"github.com/corey/emcee/internal/ports"
)

// DefaultBoundary is the conventional boundary symbol for natural-language
// text. It is the implicit predecessor of the first symbol and successor of
// the last symbol of every chunk passed to Read.
const DefaultBoundary = ' '

// Node is one context in the transition tree.
type Node struct {
	Frequency uint64
	Ratio     float64
	Symbols   map[rune]*Node
}

func newNode() *Node {
	return &Node{Symbols: make(map[rune]*Node)}
}

// Child returns the child for symbol, or nil if it was never observed.
func (n *Node) Child(symbol rune) *Node {
	if n == nil {
		return nil
	}
	return n.Symbols[symbol]
}

// Stats is a frequency model. Build it with Read (any number of times)
// followed by Finish, then treat it as read-only.
// Thread safety: NOT safe for concurrent mutation.
type Stats struct {
	root     *Node
	contexts []rune // sorted top-level symbols, set by Finish
}

// New creates an empty model.
func New() *Stats {
	return &Stats{root: newNode()}
}

// Build reads text with the given boundary and finishes the model.
func Build(text string, boundary rune) *Stats {
	s := New()
	s.Read(text, boundary)
	s.Finish()
	return s
}

// Read counts every transition in text. The cursor starts at boundary and
// one extra transition back to boundary is recorded after the last symbol,
// so Read("") records exactly (boundary, boundary). Counts are additive
// across calls.
func (s *Stats) Read(text string, boundary rune) {
	s.contexts = nil
	previous := boundary
	for _, c := range text {
		s.increment(previous, c)
		previous = c
	}
	s.increment(previous, boundary)
}

// increment adds one to the leaf at path, creating nodes on demand.
func (s *Stats) increment(path ...rune) {
	s.add(1, path...)
}

func (s *Stats) add(count uint64, path ...rune) {
	node := s.root
	for _, symbol := range path {
		child, ok := node.Symbols[symbol]
		if !ok {
			child = newNode()
			node.Symbols[symbol] = child
		}
		node = child
	}
	node.Frequency += count
}

// Finish computes frequencies bottom-up and ratios top-down. It may be
// called again after further reads; internal frequencies are always
// recomputed from the leaves.
func (s *Stats) Finish() {
	sumFrequencies(s.root)
	calculateRatios(s.root)
	s.contexts = sortedSymbols(s.root)
}

func sortedSymbols(n *Node) []rune {
	symbols := make([]rune, 0, len(n.Symbols))
	for symbol := range n.Symbols {
		symbols = append(symbols, symbol)
	}
	sort.Slice(symbols, func(i, j int) bool { return symbols[i] < symbols[j] })
	return symbols
}

// sumFrequencies overwrites every internal node's frequency with the sum of
// its children's. Leaves keep their raw counts.
func sumFrequencies(n *Node) {
	if len(n.Symbols) == 0 {
		return
	}
	var total uint64
	for _, child := range n.Symbols {
		sumFrequencies(child)
		total += child.Frequency
	}
	n.Frequency = total
}

// calculateRatios sets each child's ratio against n. The root's own ratio
// is left at zero.
func calculateRatios(n *Node) {
	for _, child := range n.Symbols {
		if n.Frequency == 0 {
			child.Ratio = 0
		} else {
			child.Ratio = float64(child.Frequency) / float64(n.Frequency)
		}
		calculateRatios(child)
	}
}

// Root returns the root node. Its frequency is the total number of
// transitions read.
func (s *Stats) Root() *Node {
	return s.root
}

// Total returns the number of transitions read.
func (s *Stats) Total() uint64 {
	return s.root.Frequency
}

// Lookup follows path from the root and returns the node there, or nil.
func (s *Stats) Lookup(path ...rune) *Node {
	node := s.root
	for _, symbol := range path {
		node = node.Child(symbol)
		if node == nil {
			return nil
		}
	}
	return node
}

// Ratio returns the ratio of the top-level context symbol, or 0.
func (s *Stats) Ratio(symbol rune) float64 {
	if n := s.root.Child(symbol); n != nil {
		return n.Ratio
	}
	return 0
}

// Frequency returns the frequency of the top-level context symbol, or 0.
func (s *Stats) Frequency(symbol rune) uint64 {
	if n := s.root.Child(symbol); n != nil {
		return n.Frequency
	}
	return 0
}

// Contexts returns the top-level context symbols in ascending order.
// The slice is owned by the model; do not modify it.
func (s *Stats) Contexts() []rune {
	if s.contexts == nil {
		s.contexts = sortedSymbols(s.root)
	}
	return s.contexts
}

// Diff scores how far other deviates from s. For every context k observed
// in s it sums (s.Ratio(k) - other.Ratio(k))^2 * s.Frequency(k).
//
// The score is directional: only contexts of s are visited and they are
// weighted by s's frequencies, so Diff(a, b) != Diff(b, a) in general.
// Lower is closer. Contexts are summed in sorted order so equal inputs
// always produce bit-identical scores.
func (s *Stats) Diff(other *Stats) float64 {
	var diff float64
	for _, k := range s.Contexts() {
		d := s.Ratio(k) - other.Ratio(k)
		diff += d * d * float64(s.Frequency(k))
	}
	return diff
}

// Transitions returns the raw leaf counts of a depth-two model, sorted by
// (From, To).
func (s *Stats) Transitions() []ports.Transition {
	var out []ports.Transition
	for from, ctx := range s.root.Symbols {
		for to, leaf := range ctx.Symbols {
			out = append(out, ports.Transition{From: from, To: to, Count: leaf.Frequency})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].From != out[j].From {
			return out[i].From < out[j].From
		}
		return out[i].To < out[j].To
	})
	return out
}

// FromTransitions rebuilds a finished model from raw transition counts.
func FromTransitions(ts []ports.Transition) *Stats {
	s := New()
	for _, t := range ts {
		s.add(t.Count, t.From, t.To)
	}
	s.Finish()
	return s
}
