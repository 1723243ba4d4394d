package viewer

import (
	"sync"
	"testing"
)

type renderRecorder struct {
	mu     sync.Mutex
	states []RenderState
}

func (r *renderRecorder) record(state RenderState) {
	r.mu.Lock()
	r.states = append(r.states, state)
	r.mu.Unlock()
}

func (r *renderRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.states)
}

func (r *renderRecorder) last() (RenderState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.states) == 0 {
		return RenderState{}, false
	}
	return r.states[len(r.states)-1], true
}

type testEngine struct {
	engine *Engine
	vis    *fakeVisibility
	scroll *fakeScroll
	sink   *fakeSink
	sched  *manualScheduler
	render *renderRecorder
}

func newTestEngine(t *testing.T) *testEngine {
	t.Helper()
	te := &testEngine{
		vis:    newFakeVisibility(),
		scroll: &fakeScroll{},
		sink:   &fakeSink{},
		sched:  newManualScheduler(),
		render: &renderRecorder{},
	}
	te.engine = New(
		Config{
			ChunkHeight:          testChunkHeight,
			Overscan:             2,
			IntersectionDebounce: testDebounce,
			SettleDelay:          testSettleDelay,
		},
		Deps{
			Visibility: te.vis,
			Scroll:     te.scroll,
			Edits:      te.sink,
			Scheduler:  te.sched,
		},
	)
	te.engine.SetOnRender(te.render.record)
	t.Cleanup(te.engine.Close)
	return te
}

func wantIndices(t *testing.T, items []VirtualItem, want []int) {
	t.Helper()
	if len(items) != len(want) {
		t.Fatalf("window has %d items, want %d (%v)", len(items), len(want), want)
	}
	for i, item := range items {
		if item.ChunkIndex != want[i] {
			t.Fatalf("item %d has index %d, want %d", i, item.ChunkIndex, want[i])
		}
	}
}

func TestEngine_SetChunksPublishesWindow(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	state, ok := te.render.last()
	if !ok {
		t.Fatal("no render published after SetChunks")
	}
	wantIndices(t, state.VirtualItems, []int{0, 1, 2})
	if state.TotalScrollHeight != 10*testChunkHeight {
		t.Errorf("TotalScrollHeight = %d, want %d", state.TotalScrollHeight, 10*testChunkHeight)
	}
	if state.CurrentChunkIndex != 0 {
		t.Errorf("CurrentChunkIndex = %d, want 0", state.CurrentChunkIndex)
	}
	for _, item := range state.VirtualItems {
		if item.Chunk.ID == "" {
			t.Errorf("item %d missing chunk payload", item.ChunkIndex)
		}
	}

	observed := te.vis.observedIndices()
	wantObs := []int{0, 1, 2}
	if len(observed) != len(wantObs) {
		t.Fatalf("observed = %v, want %v", observed, wantObs)
	}
}

func TestEngine_RenderStateIsSideEffectFree(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	a := te.engine.RenderState()
	b := te.engine.RenderState()

	if a.CurrentChunkIndex != b.CurrentChunkIndex || a.TotalScrollHeight != b.TotalScrollHeight {
		t.Error("consecutive RenderState calls disagree")
	}
	if len(a.VirtualItems) != len(b.VirtualItems) {
		t.Fatal("consecutive RenderState calls produced different windows")
	}
	for i := range a.VirtualItems {
		if a.VirtualItems[i] != b.VirtualItems[i] {
			t.Errorf("item %d differs between calls", i)
		}
	}
}

func TestEngine_NonContiguousChunkSetRenormalized(t *testing.T) {
	te := newTestEngine(t)

	chunks := makeChunks(3, 100)
	chunks[0].Index = 7
	chunks[1].Index = 9
	chunks[2].Index = 30
	te.engine.SetChunks(chunks)

	state := te.engine.RenderState()
	wantIndices(t, state.VirtualItems, []int{0, 1, 2})
}

func TestEngine_IntersectionReportsMoveCurrent(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.vis.emit(1, 0.6, 30.0)
	te.vis.emit(2, 0.9, 8.0)
	te.sched.Advance(testDebounce)

	state, _ := te.render.last()
	if state.CurrentChunkIndex != 2 {
		t.Fatalf("CurrentChunkIndex = %d, want 2", state.CurrentChunkIndex)
	}
	wantIndices(t, state.VirtualItems, []int{0, 1, 2, 3, 4})
}

func TestEngine_JumpMaterializesTargetBeforeScroll(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(100, 100))

	te.engine.JumpToIndex(50)

	// Before the settle delay the target window must already be published and
	// no scroll command issued.
	state, _ := te.render.last()
	wantIndices(t, state.VirtualItems, []int{48, 49, 50, 51, 52})
	if state.CurrentChunkIndex != 50 {
		t.Errorf("CurrentChunkIndex = %d, want 50 (optimistic update)", state.CurrentChunkIndex)
	}
	if len(te.scroll.all()) != 0 {
		t.Fatal("scroll command issued before the target was given a settle delay")
	}

	te.sched.Advance(testSettleDelay)

	calls := te.scroll.all()
	if len(calls) != 1 {
		t.Fatalf("scroll calls = %d, want 1", len(calls))
	}
	if calls[0].offset != 50*testChunkHeight || calls[0].behavior != ScrollInstant {
		t.Errorf("scroll call = %+v", calls[0])
	}
}

func TestEngine_JumpSupersession(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(100, 100))

	te.engine.JumpToIndex(10)
	te.engine.JumpToIndex(20)
	te.sched.Advance(testSettleDelay)

	calls := te.scroll.all()
	if len(calls) != 1 {
		t.Fatalf("scroll calls = %d, want 1", len(calls))
	}
	if calls[0].offset != 20*testChunkHeight {
		t.Errorf("scroll offset = %d, want %d", calls[0].offset, 20*testChunkHeight)
	}
	if te.engine.RenderState().CurrentChunkIndex != 20 {
		t.Errorf("CurrentChunkIndex = %d, want 20", te.engine.RenderState().CurrentChunkIndex)
	}
}

func TestEngine_OutOfRangeJumpIgnored(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.engine.JumpToIndex(500)
	te.sched.Advance(testSettleDelay)

	if len(te.scroll.all()) != 0 {
		t.Error("out-of-range jump issued a scroll command")
	}
	if te.engine.RenderState().CurrentChunkIndex != 0 {
		t.Errorf("CurrentChunkIndex = %d, want 0", te.engine.RenderState().CurrentChunkIndex)
	}
}

func TestEngine_ReportsDroppedWhileJumpInFlight(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(100, 100))

	te.engine.JumpToIndex(50)

	// A passive report racing the jump must not fight the optimistic position.
	te.engine.ReportIntersection(49, 0.9, 0.0)
	te.sched.Advance(testSettleDelay)
	te.sched.Advance(testDebounce)

	if got := te.engine.RenderState().CurrentChunkIndex; got != 50 {
		t.Errorf("CurrentChunkIndex = %d, want 50", got)
	}
}

func TestEngine_SyncToWordJumpsAcrossChunks(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.engine.SyncToWord(250) // word 250 lives in chunk 2, offset 50

	hl, ok := te.engine.Highlight()
	if !ok {
		t.Fatal("Highlight() reported no highlight after SyncToWord")
	}
	if hl.ChunkIndex != 2 || hl.WordOffset != 50 || hl.WordIndex != 250 {
		t.Errorf("Highlight() = %+v", hl)
	}

	te.sched.Advance(testSettleDelay)
	calls := te.scroll.all()
	if len(calls) != 1 || calls[0].offset != 2*testChunkHeight {
		t.Errorf("scroll calls = %v, want one instant scroll to %d", calls, 2*testChunkHeight)
	}
}

func TestEngine_SyncToWordWithinCurrentChunk(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.engine.SyncToWord(42)
	te.sched.Advance(testSettleDelay)

	if len(te.scroll.all()) != 0 {
		t.Error("sync within the current chunk must not scroll")
	}
	hl, ok := te.engine.Highlight()
	if !ok || hl.ChunkIndex != 0 || hl.WordOffset != 42 {
		t.Errorf("Highlight() = %+v, %v", hl, ok)
	}
}

func TestEngine_SyncToUnknownWordIgnored(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.engine.SyncToWord(100000)

	if _, ok := te.engine.Highlight(); ok {
		t.Error("Highlight() set for a word outside the document")
	}
	te.sched.Advance(testSettleDelay)
	if len(te.scroll.all()) != 0 {
		t.Error("sync to an unknown word issued a scroll command")
	}
}

func TestEngine_OnEditRoutesThroughVisibility(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.engine.OnEdit(1, "edited") // chunk 1 is in the window
	te.engine.OnEdit(9, "stale")  // chunk 9 is not materialized

	calls := te.sink.all()
	if len(calls) != 1 {
		t.Fatalf("sink calls = %v, want exactly the visible edit", calls)
	}
	if calls[0].chunkIndex != 1 || calls[0].content != "edited" {
		t.Errorf("sink call = %+v", calls[0])
	}
}

func TestEngine_OnScrollRecordsOffsetOnly(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.engine.OnScroll(1234.5)

	if got := te.engine.ScrollTop(); got != 1234.5 {
		t.Errorf("ScrollTop() = %v, want 1234.5", got)
	}
	te.sched.Advance(testSettleDelay)
	if len(te.scroll.all()) != 0 {
		t.Error("raw scroll offset triggered a scroll command")
	}
	if got := te.engine.RenderState().CurrentChunkIndex; got != 0 {
		t.Errorf("CurrentChunkIndex = %d, want 0 (offset must not derive position)", got)
	}
}

func TestEngine_ShrinkingChunkSetClampsPosition(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(100, 100))

	te.engine.JumpToIndex(80)
	te.sched.Advance(testSettleDelay)

	te.engine.SetChunks(makeChunks(10, 100))
	if got := te.engine.RenderState().CurrentChunkIndex; got != 9 {
		t.Errorf("CurrentChunkIndex = %d, want 9 after shrink", got)
	}
}

func TestEngine_CloseStopsCallbacks(t *testing.T) {
	te := newTestEngine(t)
	te.engine.SetChunks(makeChunks(10, 100))

	te.vis.emit(2, 0.9, 0.0)
	te.engine.Close()
	te.sched.Advance(testDebounce)

	if len(te.vis.observedIndices()) != 0 {
		t.Errorf("observations live after Close: %v", te.vis.observedIndices())
	}
}

type fakeMutations struct {
	mu        sync.Mutex
	fn        func()
	cancelled bool
}

func (m *fakeMutations) SubscribeChanges(fn func()) CancelFunc {
	m.mu.Lock()
	m.fn = fn
	m.mu.Unlock()
	return func() {
		m.mu.Lock()
		m.cancelled = true
		m.mu.Unlock()
	}
}

func (m *fakeMutations) fire() {
	m.mu.Lock()
	fn := m.fn
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
}

func TestEngine_MutationFeedTriggersResubscription(t *testing.T) {
	vis := newFakeVisibility()
	mutations := &fakeMutations{}
	engine := New(
		Config{ChunkHeight: testChunkHeight, Overscan: 2, IntersectionDebounce: testDebounce, SettleDelay: testSettleDelay},
		Deps{
			Visibility: vis,
			Scroll:     &fakeScroll{},
			Edits:      &fakeSink{},
			Scheduler:  newManualScheduler(),
			Mutations:  mutations,
		},
	)
	defer engine.Close()

	render := &renderRecorder{}
	engine.SetOnRender(render.record)
	engine.SetChunks(makeChunks(10, 100))

	before := render.count()
	mutations.fire()
	if render.count() != before+1 {
		t.Error("mutation notification did not republish the render state")
	}

	engine.Close()
	mutations.mu.Lock()
	cancelled := mutations.cancelled
	mutations.mu.Unlock()
	if !cancelled {
		t.Error("mutation subscription not cancelled on Close")
	}
}

func TestEngine_DefaultsApplied(t *testing.T) {
	cfg := Config{}.withDefaults()
	if cfg.ChunkHeight != defaultChunkHeight {
		t.Errorf("ChunkHeight = %d, want %d", cfg.ChunkHeight, defaultChunkHeight)
	}
	if cfg.Overscan != defaultOverscan {
		t.Errorf("Overscan = %d, want %d", cfg.Overscan, defaultOverscan)
	}
	if cfg.IntersectionDebounce != defaultIntersectionDebounce {
		t.Errorf("IntersectionDebounce = %v", cfg.IntersectionDebounce)
	}
	if cfg.SettleDelay != defaultSettleDelay {
		t.Errorf("SettleDelay = %v", cfg.SettleDelay)
	}
}
