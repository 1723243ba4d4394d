package viewer

import (
	"log/slog"
	"sync"
	"time"
)

// IntentKind distinguishes the sources of a navigation request.
type IntentKind int

const (
	// IntentScroll is passive scroll tracking; it never enters a jump.
	IntentScroll IntentKind = iota
	// IntentJump is a programmatic jump (page list, search result click).
	IntentJump
	// IntentExternalSync is a jump driven by the playback collaborator.
	IntentExternalSync
)

func (k IntentKind) String() string {
	switch k {
	case IntentScroll:
		return "scroll"
	case IntentJump:
		return "jump"
	case IntentExternalSync:
		return "externalSync"
	}
	return "unknown"
}

// Intent is a transient navigation request. The coordinator holds at most one
// pending intent; a newer one supersedes an older unresolved one so a stale
// queued jump can never fire after the user has moved elsewhere.
type Intent struct {
	Kind  IntentKind
	Index int
}

type navState int

const (
	navIdle navState = iota
	navPendingJump
	navSettling
)

// Coordinator arbitrates between scroll-driven position changes and
// programmatic jumps. For a jump it asks the caller to materialize the target
// first (onTarget), waits one settle delay so the surface can lay the node
// out, then issues a single instant scroll command and returns to idle.
type Coordinator struct {
	mu          sync.Mutex
	scheduler   Scheduler
	scroll      ScrollEngine
	settleDelay time.Duration
	chunkHeight int
	total       func() int
	onTarget    func(index int)
	logger      *slog.Logger

	state        navState
	target       int
	settleCancel CancelFunc
	closed       bool
}

// NewCoordinator creates a coordinator. total reports the current chunk count
// for bounds checks; onTarget materializes the target window before any
// scroll command is issued.
func NewCoordinator(scroll ScrollEngine, scheduler Scheduler, settleDelay time.Duration, chunkHeight int, total func() int, onTarget func(index int), logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{
		scheduler:   scheduler,
		scroll:      scroll,
		settleDelay: settleDelay,
		chunkHeight: chunkHeight,
		total:       total,
		onTarget:    onTarget,
		logger:      logger,
	}
}

// Idle reports whether no jump is pending or settling. Passive tracker
// updates are only applied while idle; during a jump the optimistic target
// index holds until the jump settles.
func (c *Coordinator) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == navIdle
}

// Submit hands a navigation intent to the coordinator. A jump or external
// sync replaces any unresolved jump (last writer wins). An out-of-range
// target is dropped and the coordinator returns to idle; that is a local,
// non-fatal condition.
func (c *Coordinator) Submit(intent Intent) {
	if intent.Kind == IntentScroll {
		// Passive tracking flows through the viewport tracker while idle.
		return
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	if c.settleCancel != nil {
		c.settleCancel()
		c.settleCancel = nil
	}

	if intent.Index < 0 || intent.Index >= c.total() {
		c.logger.Debug("dropping out-of-range navigation intent",
			"kind", intent.Kind.String(), "index", intent.Index, "total", c.total())
		c.state = navIdle
		c.mu.Unlock()
		return
	}

	c.state = navPendingJump
	c.target = intent.Index
	onTarget := c.onTarget
	c.mu.Unlock()

	// Materialize before scroll: the node must exist at the destination
	// before the scroll command is issued.
	if onTarget != nil {
		onTarget(intent.Index)
	}

	c.mu.Lock()
	if c.state != navPendingJump || c.target != intent.Index {
		// Superseded while materializing.
		c.mu.Unlock()
		return
	}
	c.state = navSettling
	c.settleCancel = c.scheduler.ScheduleAfter(c.settleDelay, c.settle)
	c.mu.Unlock()
}

// settle fires after the settle delay: one instant scroll to the top of the
// target node, then back to idle and normal passive tracking.
func (c *Coordinator) settle() {
	c.mu.Lock()
	if c.state != navSettling || c.closed {
		c.mu.Unlock()
		return
	}
	target := c.target
	c.state = navIdle
	c.settleCancel = nil
	c.mu.Unlock()

	c.scroll.ScrollTo(target*c.chunkHeight, ScrollInstant)
}

// Close cancels any pending settle timer.
func (c *Coordinator) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.state = navIdle
	if c.settleCancel != nil {
		c.settleCancel()
		c.settleCancel = nil
	}
}
