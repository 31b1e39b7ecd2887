// Package schedule wraps deferred one-shot tasks behind a cancel handle.
// Nothing cancels a task today; handlers re-check session state at fire
// time instead.
package schedule

import (
	"sync"
	"time"
)

// Task is a pending one-shot function. Cancel is safe to call at any point,
// including after the task has fired.
type Task struct {
	timer *time.Timer
	once  sync.Once
}

// After runs fn on its own goroutine once d has elapsed.
func After(d time.Duration, fn func()) *Task {
	return &Task{timer: time.AfterFunc(d, fn)}
}

// Cancel stops the task if it has not fired yet.
func (t *Task) Cancel() {
	t.once.Do(func() { t.timer.Stop() })
}
