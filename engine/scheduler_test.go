package engine

import (
	"testing"
	"time"
)

func TestSchedulerPopsInDeadlineOrder(t *testing.T) {
	s := NewScheduler()
	base := time.Now()
	s.SetClock(func() time.Time { return base })

	s.Enter(1, 3*time.Second, "third")
	s.Enter(2, 1*time.Second, "first")
	s.Enter(3, 2*time.Second, "second")

	want := []string{"first", "second", "third"}
	for _, w := range want {
		entry, ok := s.Pop()
		if !ok {
			t.Fatalf("expected an entry, queue empty")
		}
		if got := entry.Trigger.(string); got != w {
			t.Errorf("got trigger %q, want %q", got, w)
		}
	}
	if _, ok := s.Pop(); ok {
		t.Fatalf("expected queue to be empty")
	}
}

func TestSchedulerCancelRemovesAllEntriesUnderHandle(t *testing.T) {
	s := NewScheduler()
	s.Enter(5, time.Second, "a")
	s.Enter(5, 2*time.Second, "b")
	s.Enter(6, time.Second, "keep")

	s.Cancel(5)

	if got := s.Len(); got != 1 {
		t.Fatalf("got %d entries after cancel, want 1", got)
	}
	entry, ok := s.Pop()
	if !ok || entry.Handle != 6 {
		t.Fatalf("expected the surviving entry to belong to handle 6, got %+v ok=%v", entry, ok)
	}
}

func TestSchedulerCancelAndEnterIsAtomic(t *testing.T) {
	s := NewScheduler()
	base := time.Now()
	s.SetClock(func() time.Time { return base })

	s.Enter(7, time.Second, "stale")
	s.CancelAndEnter(7, 500*time.Millisecond, "fresh")

	if got := s.Len(); got != 1 {
		t.Fatalf("got %d entries, want 1", got)
	}
	entry, ok := s.Peek()
	if !ok {
		t.Fatalf("expected an entry")
	}
	if got := entry.Trigger.(string); got != "fresh" {
		t.Errorf("got trigger %q, want %q", got, "fresh")
	}
}

func TestSchedulerPeekDoesNotRemove(t *testing.T) {
	s := NewScheduler()
	s.Enter(1, time.Second, "only")

	if _, ok := s.Peek(); !ok {
		t.Fatalf("expected an entry")
	}
	if got := s.Len(); got != 1 {
		t.Fatalf("Peek should not remove entries, got len %d", got)
	}
}

func TestSchedulerNowHonorsInstalledClock(t *testing.T) {
	s := NewScheduler()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.SetClock(func() time.Time { return fixed })

	if got := s.Now(); !got.Equal(fixed) {
		t.Errorf("got %v, want %v", got, fixed)
	}
}
