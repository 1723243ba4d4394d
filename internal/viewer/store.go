package viewer

import (
	"sort"
	"sync"
)

// Store holds the ordered chunk sequence for one open document. It is
// read-mostly: the engine reads it when computing windows and resolving word
// positions, and it is refreshed wholesale when the persistence collaborator
// commits a new chunk set. There is no partial in-place mutation.
type Store struct {
	mu     sync.RWMutex
	chunks []Chunk
}

// NewStore returns an empty chunk store.
func NewStore() *Store {
	return &Store{}
}

// Replace swaps in a new chunk set. The set is copied, so the caller keeps
// ownership of its slice. If the set violates the contiguity invariant it is
// renormalized and adopted as authoritative rather than rejected; mismatch
// reports that this happened so the caller can log it.
func (s *Store) Replace(chunks []Chunk) (mismatch bool) {
	copied := make([]Chunk, len(chunks))
	copy(copied, chunks)

	if !contiguous(copied) {
		copied = renormalize(copied)
		mismatch = true
	}

	s.mu.Lock()
	s.chunks = copied
	s.mu.Unlock()
	return mismatch
}

// Len returns the total number of chunks.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Get returns the chunk at index i.
func (s *Store) Get(i int) (Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i < 0 || i >= len(s.chunks) {
		return Chunk{}, false
	}
	return s.chunks[i], true
}

// All returns a copy of the full ordered chunk sequence.
func (s *Store) All() []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Chunk, len(s.chunks))
	copy(out, s.chunks)
	return out
}

// Range returns the chunks with indices in [start, end], inclusive, clamped
// to the available sequence. A start beyond the last chunk yields an empty
// result.
func (s *Store) Range(start, end int) []Chunk {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if start < 0 {
		start = 0
	}
	if end >= len(s.chunks) {
		end = len(s.chunks) - 1
	}
	if start > end {
		return nil
	}
	out := make([]Chunk, end-start+1)
	copy(out, s.chunks[start:end+1])
	return out
}

// FindByWord returns the chunk whose word range contains the given global
// word index.
func (s *Store) FindByWord(wordIndex int) (Chunk, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if wordIndex < 0 || len(s.chunks) == 0 {
		return Chunk{}, false
	}
	i := sort.Search(len(s.chunks), func(i int) bool {
		return s.chunks[i].EndWord >= wordIndex
	})
	if i == len(s.chunks) {
		return Chunk{}, false
	}
	c := s.chunks[i]
	if wordIndex < c.StartWord || wordIndex > c.EndWord {
		return Chunk{}, false
	}
	return c, true
}
