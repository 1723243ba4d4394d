package viewer

import "time"

// CancelFunc revokes a subscription or a scheduled callback. Safe to call
// more than once.
type CancelFunc func()

// Scheduler is the engine's timer port. Debounce and settle delays go through
// it instead of ambient timers so tests can drive a virtual clock and
// cancellation is explicit.
type Scheduler interface {
	// ScheduleAfter runs fn once after d. The returned CancelFunc stops the
	// callback if it has not fired yet.
	ScheduleAfter(d time.Duration, fn func()) CancelFunc
}

// IntersectionFunc reports how a materialized node currently intersects the
// scroll container: the visible ratio in [0,1] and the distance of the node's
// top edge from the container's top edge in pixels.
type IntersectionFunc func(ratio, distanceFromTop float64)

// Visibility is implemented by the rendering surface. The tracker registers
// interest in exactly the currently materialized chunks and cancels
// observations when chunks unmount.
type Visibility interface {
	Observe(chunkIndex int, fn IntersectionFunc) CancelFunc
}

// ScrollBehavior selects how a scroll command is animated.
type ScrollBehavior int

const (
	// ScrollSmooth animates the scroll; used for normal user-facing moves.
	ScrollSmooth ScrollBehavior = iota
	// ScrollInstant jumps without animation; used during programmatic jumps
	// so the jump cannot visually race a user-initiated smooth scroll.
	ScrollInstant
)

// ScrollEngine executes scroll commands against the scroll container.
type ScrollEngine interface {
	ScrollTo(offset int, behavior ScrollBehavior)
}

// EditSink receives committed (chunkIndex, content) deltas from the edit
// router. Batching, debounce and retry policy belong to the implementation.
type EditSink interface {
	SaveEdit(chunkIndex int, content string)
}

// MutationFeed notifies the engine that the surface's mounted nodes changed
// outside its control. Optional; the engine reacts by re-registering
// observation on the mounted set.
type MutationFeed interface {
	SubscribeChanges(fn func()) CancelFunc
}
