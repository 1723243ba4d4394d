package viewer

import (
	"fmt"
	"sort"
	"sync"
	"time"
)

// manualScheduler is a virtual-clock Scheduler for tests. Callbacks fire only
// when Advance moves the clock past their deadline.
type manualScheduler struct {
	mu    sync.Mutex
	now   time.Duration
	tasks []*manualTask
}

type manualTask struct {
	at        time.Duration
	fn        func()
	cancelled bool
	fired     bool
}

func newManualScheduler() *manualScheduler {
	return &manualScheduler{}
}

func (s *manualScheduler) ScheduleAfter(d time.Duration, fn func()) CancelFunc {
	s.mu.Lock()
	task := &manualTask{at: s.now + d, fn: fn}
	s.tasks = append(s.tasks, task)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		task.cancelled = true
		s.mu.Unlock()
	}
}

// Advance moves the clock forward and fires due callbacks in deadline order.
// Callbacks run outside the scheduler's lock so they may schedule new tasks.
func (s *manualScheduler) Advance(d time.Duration) {
	s.mu.Lock()
	s.now += d
	deadline := s.now
	s.mu.Unlock()

	for {
		s.mu.Lock()
		var due *manualTask
		for _, task := range s.tasks {
			if task.cancelled || task.fired || task.at > deadline {
				continue
			}
			if due == nil || task.at < due.at {
				due = task
			}
		}
		if due != nil {
			due.fired = true
		}
		s.mu.Unlock()

		if due == nil {
			return
		}
		due.fn()
	}
}

// fakeVisibility records observation registrations and lets tests emit
// intersection signals against them.
type fakeVisibility struct {
	mu        sync.Mutex
	observers map[int]IntersectionFunc
	cancelled []int
}

func newFakeVisibility() *fakeVisibility {
	return &fakeVisibility{observers: make(map[int]IntersectionFunc)}
}

func (v *fakeVisibility) Observe(chunkIndex int, fn IntersectionFunc) CancelFunc {
	v.mu.Lock()
	v.observers[chunkIndex] = fn
	v.mu.Unlock()
	return func() {
		v.mu.Lock()
		v.cancelled = append(v.cancelled, chunkIndex)
		delete(v.observers, chunkIndex)
		v.mu.Unlock()
	}
}

func (v *fakeVisibility) emit(chunkIndex int, ratio, distance float64) bool {
	v.mu.Lock()
	fn, ok := v.observers[chunkIndex]
	v.mu.Unlock()
	if !ok {
		return false
	}
	fn(ratio, distance)
	return true
}

func (v *fakeVisibility) observedIndices() []int {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]int, 0, len(v.observers))
	for idx := range v.observers {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}

type scrollCall struct {
	offset   int
	behavior ScrollBehavior
}

// fakeScroll records scroll commands.
type fakeScroll struct {
	mu    sync.Mutex
	calls []scrollCall
}

func (s *fakeScroll) ScrollTo(offset int, behavior ScrollBehavior) {
	s.mu.Lock()
	s.calls = append(s.calls, scrollCall{offset: offset, behavior: behavior})
	s.mu.Unlock()
}

func (s *fakeScroll) all() []scrollCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]scrollCall, len(s.calls))
	copy(out, s.calls)
	return out
}

type editCall struct {
	chunkIndex int
	content    string
}

// fakeSink records forwarded edits.
type fakeSink struct {
	mu    sync.Mutex
	calls []editCall
}

func (s *fakeSink) SaveEdit(chunkIndex int, content string) {
	s.mu.Lock()
	s.calls = append(s.calls, editCall{chunkIndex: chunkIndex, content: content})
	s.mu.Unlock()
}

func (s *fakeSink) all() []editCall {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]editCall, len(s.calls))
	copy(out, s.calls)
	return out
}

// makeChunks builds a contiguous chunk sequence with the given word count per
// chunk.
func makeChunks(n, wordsPer int) []Chunk {
	chunks := make([]Chunk, n)
	for i := 0; i < n; i++ {
		chunks[i] = Chunk{
			ID:        fmt.Sprintf("chunk-%d", i),
			Index:     i,
			Content:   fmt.Sprintf("content %d", i),
			WordCount: wordsPer,
			StartWord: i * wordsPer,
			EndWord:   (i+1)*wordsPer - 1,
		}
	}
	return chunks
}
