// Binary encoding for stored models.
//
// A model is stored as its raw transition counts; every derived frequency
// and ratio is recomputed on load.
//
// Format v1 (little-endian):
//
//	version:         uint8 (1)
//	boundary:        uint32 (rune)
//	createdAt:       int64 (Unix seconds)
//	transitionCount: uint32
//	per transition:
//	  from:  uint32 (rune)
//	  to:    uint32 (rune)
//	  count: uint64
package bbolt

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/corey/emcee/internal/ports"
)

const (
	encodingVersion = 1
	headerSize      = 1 + 4 + 8 + 4
	transitionSize  = 4 + 4 + 8
)

// encodeModel encodes a model to the v1 binary format. Transitions are
// sorted for deterministic output. A single buffer is pre-allocated.
func encodeModel(m *ports.Model) []byte {
	ts := make([]ports.Transition, len(m.Transitions))
	copy(ts, m.Transitions)
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].From != ts[j].From {
			return ts[i].From < ts[j].From
		}
		return ts[i].To < ts[j].To
	})

	buf := make([]byte, headerSize+len(ts)*transitionSize)
	offset := 0

	buf[offset] = encodingVersion
	offset++
	binary.LittleEndian.PutUint32(buf[offset:], uint32(m.Boundary))
	offset += 4
	binary.LittleEndian.PutUint64(buf[offset:], uint64(m.CreatedAt))
	offset += 8
	binary.LittleEndian.PutUint32(buf[offset:], uint32(len(ts)))
	offset += 4

	for _, t := range ts {
		binary.LittleEndian.PutUint32(buf[offset:], uint32(t.From))
		offset += 4
		binary.LittleEndian.PutUint32(buf[offset:], uint32(t.To))
		offset += 4
		binary.LittleEndian.PutUint64(buf[offset:], t.Count)
		offset += 8
	}

	return buf
}

// decodeModel decodes the v1 binary format. Every read is bounds-checked
// to avoid panics on corrupt data.
func decodeModel(name string, data []byte) (*ports.Model, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("model too short: %d bytes", len(data))
	}

	offset := 0
	if v := data[offset]; v != encodingVersion {
		return nil, fmt.Errorf("unsupported model encoding version %d", v)
	}
	offset++

	m := &ports.Model{Name: name}
	m.Boundary = rune(binary.LittleEndian.Uint32(data[offset:]))
	offset += 4
	m.CreatedAt = int64(binary.LittleEndian.Uint64(data[offset:]))
	offset += 8
	count := binary.LittleEndian.Uint32(data[offset:])
	offset += 4

	if need := int(count) * transitionSize; offset+need != len(data) {
		return nil, fmt.Errorf("model body is %d bytes, want %d for %d transitions",
			len(data)-offset, need, count)
	}

	m.Transitions = make([]ports.Transition, count)
	for i := range m.Transitions {
		m.Transitions[i].From = rune(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		m.Transitions[i].To = rune(binary.LittleEndian.Uint32(data[offset:]))
		offset += 4
		m.Transitions[i].Count = binary.LittleEndian.Uint64(data[offset:])
		offset += 8
	}

	return m, nil
}

// summarize builds a ModelInfo from a decoded model.
func summarize(m *ports.Model) ports.ModelInfo {
	info := ports.ModelInfo{
		Name:        m.Name,
		Boundary:    m.Boundary,
		CreatedAt:   m.CreatedAt,
		Transitions: len(m.Transitions),
	}
	for _, t := range m.Transitions {
		info.Total += t.Count
	}
	return info
}
