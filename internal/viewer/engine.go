package viewer

import (
	"log/slog"
	"sync"
	"time"
)

// Config tunes the engine. Zero values are replaced with defaults.
type Config struct {
	// ChunkHeight is the fixed pixel height assigned to every chunk. It is a
	// constant, not a measurement.
	ChunkHeight int
	// Overscan is the number of extra chunks materialized on each side of the
	// current one to mask scroll latency.
	Overscan int
	// IntersectionDebounce is the coalescing window for intersection reports.
	IntersectionDebounce time.Duration
	// SettleDelay bounds one layout/paint pass between materializing a jump
	// target and scrolling to it.
	SettleDelay time.Duration
}

const (
	defaultChunkHeight          = 400
	defaultOverscan             = 2
	defaultIntersectionDebounce = 80 * time.Millisecond
	defaultSettleDelay          = 50 * time.Millisecond
)

func (c Config) withDefaults() Config {
	if c.ChunkHeight <= 0 {
		c.ChunkHeight = defaultChunkHeight
	}
	if c.Overscan <= 0 {
		c.Overscan = defaultOverscan
	}
	if c.IntersectionDebounce <= 0 {
		c.IntersectionDebounce = defaultIntersectionDebounce
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = defaultSettleDelay
	}
	return c
}

// Deps are the engine's ports. Visibility, Scroll and Edits are required;
// Scheduler defaults to real timers, Mutations and Logger are optional.
type Deps struct {
	Visibility Visibility
	Scroll     ScrollEngine
	Edits      EditSink
	Scheduler  Scheduler
	Mutations  MutationFeed
	Logger     *slog.Logger
}

// RenderState is the engine's contract with the rendering surface: exactly
// the items to materialize, the full scrollable extent, and the authoritative
// current position.
type RenderState struct {
	VirtualItems      []VirtualItem
	TotalScrollHeight int
	CurrentChunkIndex int
}

// Highlight locates the playback-highlighted word: its owning chunk and the
// word's offset within that chunk's content.
type Highlight struct {
	WordIndex  int
	ChunkIndex int
	WordOffset int
}

// Engine is the virtualized rendering and navigation engine for one open
// document. All methods are safe for concurrent use; timer callbacks arrive
// on their own goroutines.
type Engine struct {
	cfg     Config
	logger  *slog.Logger
	store   *Store
	tracker *Tracker
	coord   *Coordinator
	edits   *EditRouter

	mu             sync.Mutex
	onRender       func(RenderState)
	rawScrollTop   float64
	highlightWord  int
	mutationCancel CancelFunc
	closed         bool
}

// New creates an engine wired to the given ports.
func New(cfg Config, deps Deps) *Engine {
	cfg = cfg.withDefaults()
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	scheduler := deps.Scheduler
	if scheduler == nil {
		scheduler = NewTimerScheduler()
	}

	e := &Engine{
		cfg:           cfg,
		logger:        logger,
		store:         NewStore(),
		highlightWord: -1,
	}
	e.edits = NewEditRouter(deps.Edits, logger)
	e.tracker = NewTracker(deps.Visibility, scheduler, cfg.IntersectionDebounce, logger, e.trackerChanged)
	e.coord = NewCoordinator(deps.Scroll, scheduler, cfg.SettleDelay, cfg.ChunkHeight, e.store.Len, e.jumpTarget, logger)

	if deps.Mutations != nil {
		e.mutationCancel = deps.Mutations.SubscribeChanges(e.refresh)
	}
	return e
}

// SetOnRender registers the callback invoked whenever the materialization
// window changes. The callback runs outside the engine's lock.
func (e *Engine) SetOnRender(fn func(RenderState)) {
	e.mu.Lock()
	e.onRender = fn
	e.mu.Unlock()
}

// SetChunks replaces the document's chunk set wholesale, the only way chunk
// data enters the engine. A non-contiguous set is renormalized and adopted as
// authoritative rather than reconciled incrementally.
func (e *Engine) SetChunks(chunks []Chunk) {
	if e.store.Replace(chunks) {
		e.logger.Warn("received non-contiguous chunk set; renormalized", "chunks", len(chunks))
	}
	e.edits.Seed(e.store.All())

	// Clamp the tracked position to the new bounds.
	total := e.store.Len()
	if cur := e.tracker.Current(); total == 0 {
		e.tracker.SetCurrent(0)
	} else if cur >= total {
		e.tracker.SetCurrent(total - 1)
	}

	e.refresh()
}

// RenderState computes the current rendering contract without side effects.
// Calling it twice with no intervening events yields structurally equal
// results.
func (e *Engine) RenderState() RenderState {
	current := e.tracker.Current()
	total := e.store.Len()
	items := ComputeWindow(current, total, e.cfg.Overscan, e.cfg.ChunkHeight)
	for i := range items {
		if c, ok := e.store.Get(items[i].ChunkIndex); ok {
			items[i].Chunk = c
		}
	}
	return RenderState{
		VirtualItems:      items,
		TotalScrollHeight: TotalScrollHeight(total, e.cfg.ChunkHeight),
		CurrentChunkIndex: current,
	}
}

// OnScroll records the raw scroll offset for scrollbar display. The offset is
// never used to derive the current index; intersection reports own that.
func (e *Engine) OnScroll(rawScrollTop float64) {
	e.mu.Lock()
	e.rawScrollTop = rawScrollTop
	e.mu.Unlock()
	e.coord.Submit(Intent{Kind: IntentScroll})
}

// ScrollTop returns the last raw scroll offset reported by the surface.
func (e *Engine) ScrollTop() float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.rawScrollTop
}

// JumpToIndex requests a programmatic jump, e.g. from a page list or a search
// result click. Out-of-range indices are dropped silently.
func (e *Engine) JumpToIndex(index int) {
	e.coord.Submit(Intent{Kind: IntentJump, Index: index})
}

// SyncToWord moves the playback highlight to the given global word index.
// When the word's owning chunk differs from the current one, an external-sync
// jump brings it into view; otherwise only the highlight changes.
func (e *Engine) SyncToWord(wordIndex int) {
	chunk, ok := e.store.FindByWord(wordIndex)
	if !ok {
		e.logger.Debug("ignoring sync to unknown word", "word_index", wordIndex)
		return
	}

	e.mu.Lock()
	e.highlightWord = wordIndex
	e.mu.Unlock()

	if chunk.Index != e.tracker.Current() {
		e.coord.Submit(Intent{Kind: IntentExternalSync, Index: chunk.Index})
		return
	}
	e.refresh()
}

// Highlight returns the position of the playback-highlighted word, if any.
func (e *Engine) Highlight() (Highlight, bool) {
	e.mu.Lock()
	word := e.highlightWord
	e.mu.Unlock()
	if word < 0 {
		return Highlight{}, false
	}
	chunk, ok := e.store.FindByWord(word)
	if !ok {
		return Highlight{}, false
	}
	return Highlight{
		WordIndex:  word,
		ChunkIndex: chunk.Index,
		WordOffset: word - chunk.StartWord,
	}, true
}

// OnEdit routes one edit event from a materialized node.
func (e *Engine) OnEdit(chunkIndex int, content string) {
	e.edits.OnEdit(chunkIndex, content)
}

// ReportIntersection feeds one intersection signal into the tracker. Surfaces
// that push signals instead of being observed use this; reports arriving
// while a jump is in flight are dropped so they cannot fight the optimistic
// position.
func (e *Engine) ReportIntersection(chunkIndex int, ratio, distanceFromTop float64) {
	if !e.coord.Idle() {
		return
	}
	e.tracker.report(chunkIndex, ratio, distanceFromTop)
}

// Close tears the engine down: pending timers are cancelled and all
// observations released so no callback can fire against unmounted state.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	cancel := e.mutationCancel
	e.mutationCancel = nil
	e.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	e.coord.Close()
	e.tracker.Close()
}

// trackerChanged is the tracker's onChange hook: passive position updates are
// applied only while no jump is in flight.
func (e *Engine) trackerChanged(index int) {
	if !e.coord.Idle() {
		return
	}
	e.refresh()
}

// jumpTarget is the coordinator's materialize hook: set the position
// optimistically and rebuild the window so the target node exists before the
// scroll command fires.
func (e *Engine) jumpTarget(index int) {
	e.tracker.SetCurrent(index)
	e.refresh()
}

// refresh recomputes the window, re-registers observation on exactly the
// mounted chunks, updates edit visibility and notifies the surface.
func (e *Engine) refresh() {
	state := e.RenderState()

	indices := make([]int, len(state.VirtualItems))
	for i, item := range state.VirtualItems {
		indices[i] = item.ChunkIndex
	}
	e.tracker.Resubscribe(indices)
	e.edits.SetVisible(indices)

	e.mu.Lock()
	onRender := e.onRender
	closed := e.closed
	e.mu.Unlock()
	if onRender != nil && !closed {
		onRender(state)
	}
}
