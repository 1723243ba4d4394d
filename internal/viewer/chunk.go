// Package viewer implements the virtualized rendering and navigation engine
// for large documents: it decides which chunks must be materialized for the
// current viewport, derives the authoritative current position from
// intersection signals, arbitrates navigation requests, and routes edits from
// materialized nodes back to their owning chunk.
//
// The engine is rendering-surface agnostic. All coupling to the surface
// (visibility observation, scrolling, timers, persistence of edits) goes
// through the ports in ports.go so the algorithms are testable without a real
// UI.
package viewer

// Chunk is one materializable unit of a document. Chunks are read-only inputs
// to the engine; edits are forwarded upstream and come back as a wholesale
// refreshed chunk set.
type Chunk struct {
	ID         string
	DocumentID string
	Index      int
	Content    string
	WordCount  int
	StartWord  int
	EndWord    int
}

// contiguous reports whether chunks form a 0-based sequence with gap-free,
// overlap-free word ranges.
func contiguous(chunks []Chunk) bool {
	nextWord := 0
	for i, c := range chunks {
		if c.Index != i {
			return false
		}
		if c.StartWord != nextWord {
			return false
		}
		if c.EndWord != c.StartWord+c.WordCount-1 {
			return false
		}
		nextWord = c.EndWord + 1
	}
	return true
}

// renormalize rebuilds indices and word ranges from scratch, treating the
// given order and per-chunk word counts as authoritative. Used when an
// external refresh delivers a set that violates the contiguity invariant.
func renormalize(chunks []Chunk) []Chunk {
	out := make([]Chunk, len(chunks))
	nextWord := 0
	for i, c := range chunks {
		c.Index = i
		c.StartWord = nextWord
		c.EndWord = nextWord + c.WordCount - 1
		nextWord += c.WordCount
		out[i] = c
	}
	return out
}
