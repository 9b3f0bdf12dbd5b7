package engine

import (
	"container/heap"
	"sync"
	"time"
)

// Handle identifies a scheduler entry for later cancellation. It does not
// need to be globally unique — Cancel removes every entry carrying it — but
// the engine always passes an entity's id, so in practice at most one
// pending job is ever associated with a given handle at a time. A handle of
// 0 marks an entry that no task will ever need to cancel: a zero-delay Event
// re-entry, or an eater's repeating HungerDrainJob.
type Handle int64

// ScheduledEntry is one pending item: either a sim.Event (delivered once,
// at delay zero, when a Job's Execute loops events back through the
// engine) or a sim.Job (delivered after GetStartDelay/Repeat, possibly
// re-armed under the same Handle). Trigger is declared as `any` rather
// than a sim-typed union so this package does not need to import sim for
// its scheduling mechanics — Run's type switch resolves it.
type ScheduledEntry struct {
	Handle   Handle
	Deadline time.Time
	Trigger  any
}

// entryHeap is a container/heap.Interface ordering ScheduledEntry by
// Deadline, mirroring the teacher's workHeap in graph/scheduler.go (there
// ordered by OrderKey instead of time).
type entryHeap []ScheduledEntry

func (h entryHeap) Len() int            { return len(h) }
func (h entryHeap) Less(i, j int) bool  { return h[i].Deadline.Before(h[j].Deadline) }
func (h entryHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) { *h = append(*h, x.(ScheduledEntry)) }
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Scheduler is a time-ordered priority queue of pending events and jobs. It
// is the Go counterpart of the source's heapq-backed Scheduler: Enter
// schedules a future firing, Cancel removes every entry under a handle, and
// Pop/Peek let the Runner drive the queue. All three methods hold the same
// internal lock, so a cancel-then-enter composed by the caller under
// CancelAndEnter can never race with a concurrent Pop that would otherwise
// let a superseded job fire.
type Scheduler struct {
	mu   sync.Mutex
	heap entryHeap

	now func() time.Time
}

// NewScheduler constructs an empty Scheduler. now defaults to time.Now; a
// caller may override it (via SetClock) for deterministic tests.
func NewScheduler() *Scheduler {
	s := &Scheduler{now: time.Now}
	heap.Init(&s.heap)
	return s
}

// SetClock overrides the scheduler's notion of "now", for tests that need
// to control deadlines precisely.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Enter schedules trigger to fire after delay, tagged with handle.
func (s *Scheduler) Enter(handle Handle, delay time.Duration, trigger any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	heap.Push(&s.heap, ScheduledEntry{Handle: handle, Deadline: s.now().Add(delay), Trigger: trigger})
}

// Cancel removes every pending entry tagged with handle. A no-op handle of
// 0 is never cancelled by callers (it identifies entries nobody tracks),
// but Cancel(0) would remove any that happen to share it — callers
// should not rely on that.
func (s *Scheduler) Cancel(handle Handle) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(handle)
}

func (s *Scheduler) cancelLocked(handle Handle) {
	kept := s.heap[:0]
	for _, e := range s.heap {
		if e.Handle != handle {
			kept = append(kept, e)
		}
	}
	s.heap = kept
	heap.Init(&s.heap)
}

// CancelAndEnter cancels every pending entry under handle and enters a new
// one, atomically under the scheduler's lock — the entity-level analogue of
// the source's `scheduler.cancel(handle); scheduler.enter(handle, ...)`
// pair, composed so no Pop can observe the gap between them.
func (s *Scheduler) CancelAndEnter(handle Handle, delay time.Duration, trigger any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(handle)
	heap.Push(&s.heap, ScheduledEntry{Handle: handle, Deadline: s.now().Add(delay), Trigger: trigger})
}

// Peek returns the earliest entry without removing it, and whether one
// exists.
func (s *Scheduler) Peek() (ScheduledEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.heap) == 0 {
		return ScheduledEntry{}, false
	}
	return s.heap[0], true
}

// Pop removes and returns the earliest entry, regardless of whether its
// deadline has passed — callers (the Runner) are responsible for waiting
// until Peek reports a due deadline before popping.
func (s *Scheduler) Pop() (ScheduledEntry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.heap) == 0 {
		return ScheduledEntry{}, false
	}
	return heap.Pop(&s.heap).(ScheduledEntry), true
}

// Now reports the scheduler's current notion of time, honoring whatever
// clock SetClock installed.
func (s *Scheduler) Now() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// Len reports the number of pending entries.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.heap)
}
