package viewer

import "time"

// timerScheduler is the production Scheduler over time.AfterFunc. Callbacks
// fire on their own goroutine; engine state is mutex-guarded for that reason.
type timerScheduler struct{}

// NewTimerScheduler returns a Scheduler backed by real timers.
func NewTimerScheduler() Scheduler {
	return timerScheduler{}
}

func (timerScheduler) ScheduleAfter(d time.Duration, fn func()) CancelFunc {
	t := time.AfterFunc(d, fn)
	return func() { t.Stop() }
}
