package viewer

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

const (
	// minIntersectionRatio filters out slivers of neighboring chunks so they
	// cannot win the current-index ranking.
	minIntersectionRatio = 0.1
	// tieTolerancePx is the distance-from-top band within which two
	// candidates count as tied and the higher intersection ratio wins.
	tieTolerancePx = 4.0
)

// observation is the latest intersection report for one mounted chunk.
type observation struct {
	chunkIndex int
	ratio      float64
	distance   float64
}

// Tracker converts per-node intersection reports into exactly one
// authoritative current chunk index. Reports are coalesced within a debounce
// window; within a flush, candidates are ranked by ascending distance from
// the container top, with near-ties broken by higher intersection ratio and
// then by lower chunk index for reproducibility. The tracker owns the set of
// observed nodes: Resubscribe diffs against it so stale observations on
// unmounted nodes are always cancelled.
type Tracker struct {
	mu         sync.Mutex
	visibility Visibility
	scheduler  Scheduler
	debounce   time.Duration
	logger     *slog.Logger

	current     int
	pending     map[int]observation
	flushCancel CancelFunc
	observed    map[int]CancelFunc
	onChange    func(index int)
	closed      bool
}

// NewTracker creates a tracker. onChange fires outside the tracker's lock
// whenever the derived current index actually changes.
func NewTracker(visibility Visibility, scheduler Scheduler, debounce time.Duration, logger *slog.Logger, onChange func(index int)) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		visibility: visibility,
		scheduler:  scheduler,
		debounce:   debounce,
		logger:     logger,
		pending:    make(map[int]observation),
		observed:   make(map[int]CancelFunc),
		onChange:   onChange,
	}
}

// Current returns the last derived chunk index.
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// SetCurrent overrides the tracked index, used by the navigation coordinator
// for the optimistic update at jump time. Pending reports are discarded; the
// next intersection flush after the jump settles confirms or corrects.
func (t *Tracker) SetCurrent(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.current = index
	t.pending = make(map[int]observation)
	if t.flushCancel != nil {
		t.flushCancel()
		t.flushCancel = nil
	}
}

// Resubscribe re-registers observation on exactly the given chunk indices.
// Stale observations are cancelled before new ones are added so an unmounted
// node can never keep reporting.
func (t *Tracker) Resubscribe(indices []int) {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}

	want := make(map[int]bool, len(indices))
	for _, i := range indices {
		want[i] = true
	}

	var stale []CancelFunc
	for idx, cancel := range t.observed {
		if !want[idx] {
			stale = append(stale, cancel)
			delete(t.observed, idx)
			delete(t.pending, idx)
		}
	}

	var added []int
	for idx := range want {
		if _, ok := t.observed[idx]; !ok {
			added = append(added, idx)
			t.observed[idx] = nil // placeholder until Observe returns
		}
	}
	t.mu.Unlock()

	for _, cancel := range stale {
		if cancel != nil {
			cancel()
		}
	}

	for _, idx := range added {
		idx := idx
		cancel := t.visibility.Observe(idx, func(ratio, distance float64) {
			t.report(idx, ratio, distance)
		})
		t.mu.Lock()
		if _, still := t.observed[idx]; still && !t.closed {
			t.observed[idx] = cancel
			t.mu.Unlock()
		} else {
			// Unmounted (or closed) while Observe was in flight.
			t.mu.Unlock()
			cancel()
		}
	}
}

// report records an intersection signal. The latest report per chunk wins
// within a debounce window; the first report of a window arms the flush
// timer.
func (t *Tracker) report(chunkIndex int, ratio, distance float64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return
	}
	if _, ok := t.observed[chunkIndex]; !ok {
		// Ghost signal from a node that already unmounted.
		t.logger.Debug("dropping report from unobserved node", "chunk_index", chunkIndex)
		return
	}
	t.pending[chunkIndex] = observation{chunkIndex: chunkIndex, ratio: ratio, distance: distance}
	if t.flushCancel == nil {
		t.flushCancel = t.scheduler.ScheduleAfter(t.debounce, t.flush)
	}
}

// flush ranks the coalesced observations and publishes a new current index
// if it changed.
func (t *Tracker) flush() {
	t.mu.Lock()
	t.flushCancel = nil
	if t.closed || len(t.pending) == 0 {
		t.mu.Unlock()
		return
	}

	candidates := make([]observation, 0, len(t.pending))
	for _, obs := range t.pending {
		if obs.ratio >= minIntersectionRatio {
			candidates = append(candidates, obs)
		}
	}
	t.pending = make(map[int]observation)

	if len(candidates) == 0 {
		t.mu.Unlock()
		return
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].chunkIndex < candidates[j].chunkIndex
	})

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.distance-candidates[0].distance >= tieTolerancePx {
			break
		}
		if c.ratio > best.ratio {
			best = c
		}
	}

	if best.chunkIndex == t.current {
		t.mu.Unlock()
		return
	}
	t.current = best.chunkIndex
	onChange := t.onChange
	index := t.current
	t.mu.Unlock()

	if onChange != nil {
		onChange(index)
	}
}

// Close cancels the flush timer and all observations.
func (t *Tracker) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	if t.flushCancel != nil {
		t.flushCancel()
		t.flushCancel = nil
	}
	cancels := make([]CancelFunc, 0, len(t.observed))
	for _, cancel := range t.observed {
		if cancel != nil {
			cancels = append(cancels, cancel)
		}
	}
	t.observed = make(map[int]CancelFunc)
	t.mu.Unlock()

	for _, cancel := range cancels {
		cancel()
	}
}
