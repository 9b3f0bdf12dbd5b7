package engine

import (
	"testing"
	"time"
)

func TestWithClockSetsNow(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	var o Options
	WithClock(func() time.Time { return fixed })(&o)

	if o.Now == nil {
		t.Fatalf("expected Now to be set")
	}
	if got := o.Now(); !got.Equal(fixed) {
		t.Errorf("got %v, want %v", got, fixed)
	}
}

func TestWithHungerDrainIntervalSetsField(t *testing.T) {
	var o Options
	WithHungerDrainInterval(5 * time.Second)(&o)

	if o.HungerDrainInterval != 5*time.Second {
		t.Errorf("got %v, want %v", o.HungerDrainInterval, 5*time.Second)
	}
}

func TestNewThreadsClockIntoScheduler(t *testing.T) {
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	scheduler := NewScheduler()

	_ = New(nil, nil, scheduler, nil, WithClock(func() time.Time { return fixed }))

	if got := scheduler.Now(); !got.Equal(fixed) {
		t.Errorf("New did not thread its clock option into the scheduler: got %v, want %v", got, fixed)
	}
}
