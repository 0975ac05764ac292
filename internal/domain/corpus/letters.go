package corpus

import (
	"bufio"
	"io"
	"sort"
)

// LetterCount is one row of a unigram table.
type LetterCount struct {
	Symbol rune
	Count  uint64
}

// Letters counts single symbols line by line. Line terminators are not
// counted; instead each line contributes one boundary symbol, so word
// separators and line breaks are tallied together.
func Letters(r io.Reader, boundary rune) (map[rune]uint64, error) {
	counts := make(map[rune]uint64)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		for _, c := range sc.Text() {
			counts[c]++
		}
		counts[boundary]++
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// SortLetters orders counts by descending count, ties by symbol.
func SortLetters(counts map[rune]uint64) []LetterCount {
	out := make([]LetterCount, 0, len(counts))
	for symbol, n := range counts {
		out = append(out, LetterCount{Symbol: symbol, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Symbol < out[j].Symbol
	})
	return out
}
