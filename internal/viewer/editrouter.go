package viewer

import (
	"log/slog"
	"sync"
)

// EditRouter maps edit events observed on materialized nodes back to their
// owning chunk and forwards committed (chunkIndex, content) deltas upstream.
// Edits from nodes that are no longer visible are discarded: a node
// mid-unmount must not corrupt its chunk with stale content. Unchanged
// content is suppressed so mid-keystroke echoes do not cause redundant
// upstream writes.
type EditRouter struct {
	mu        sync.Mutex
	sink      EditSink
	lastKnown map[int]string
	visible   map[int]bool
	logger    *slog.Logger
}

// NewEditRouter creates a router forwarding to sink.
func NewEditRouter(sink EditSink, logger *slog.Logger) *EditRouter {
	if logger == nil {
		logger = slog.Default()
	}
	return &EditRouter{
		sink:      sink,
		lastKnown: make(map[int]string),
		visible:   make(map[int]bool),
		logger:    logger,
	}
}

// Seed resets the last-known contents from a fresh chunk set.
func (r *EditRouter) Seed(chunks []Chunk) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lastKnown = make(map[int]string, len(chunks))
	for _, c := range chunks {
		r.lastKnown[c.Index] = c.Content
	}
}

// SetVisible replaces the set of chunk indices currently materialized.
func (r *EditRouter) SetVisible(indices []int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.visible = make(map[int]bool, len(indices))
	for _, i := range indices {
		r.visible[i] = true
	}
}

// OnEdit handles one edit event from the rendering surface. Within a chunk,
// edits are forwarded in the order they arrive; across chunks there is no
// ordering requirement.
func (r *EditRouter) OnEdit(chunkIndex int, content string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.visible[chunkIndex] {
		r.logger.Debug("discarding edit from non-visible node", "chunk_index", chunkIndex)
		return
	}
	if r.lastKnown[chunkIndex] == content {
		return
	}
	r.lastKnown[chunkIndex] = content
	// Forwarding under the lock keeps per-chunk deliveries in emission order.
	r.sink.SaveEdit(chunkIndex, content)
}
