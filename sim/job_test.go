package sim

import (
	"testing"
	"time"

	"github.com/edginaround/worldcore/sim/feature"
	"github.com/edginaround/worldcore/sim/geometry"
)

func TestWaitJobFiresOnceWithoutChain(t *testing.T) {
	st := newTestState(t)
	job := NewWaitJob(time.Second, []Event{FinishedEvent{Receiver: 1}})

	result := job.Execute(st)
	if len(result.Events) != 1 {
		t.Fatalf("expected one event, got %d", len(result.Events))
	}
	if result.Repeat != nil {
		t.Errorf("expected no repeat without a chained link")
	}
}

func TestWaitJobAndThenChains(t *testing.T) {
	st := newTestState(t)
	job := NewWaitJob(time.Second, []Event{FinishedEvent{Receiver: 1}})
	job.AndThen(2*time.Second, []Event{FinishedEvent{Receiver: 2}})

	first := job.Execute(st)
	if first.Repeat == nil || *first.Repeat != 2*time.Second {
		t.Fatalf("expected chained repeat of 2s, got %v", first.Repeat)
	}

	second := job.Execute(st)
	if second.Repeat != nil {
		t.Errorf("expected chain to terminate after its second link")
	}
	if len(second.Events) != 1 {
		t.Fatalf("expected one event from the second link, got %d", len(second.Events))
	}
}

func TestMotionJobRepeatsUntilDurationElapses(t *testing.T) {
	st := newTestState(t)
	hero := NewHero(1, geometry.Point{})
	st.AddEntity(hero)

	job := NewMotionJob(1, 1.0, 0, time.Millisecond, []Event{FinishedEvent{Receiver: 1}})
	time.Sleep(2 * time.Millisecond)

	result := job.Execute(st)
	if result.Repeat != nil {
		t.Errorf("expected motion job to finish once duration has elapsed")
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected finish events once complete, got %d", len(result.Events))
	}
}

func TestMotionJobMovesEntityEachTick(t *testing.T) {
	st := newTestState(t)
	hero := NewHero(1, geometry.Point{Phi: 0, Theta: 0})
	st.AddEntity(hero)

	job := NewMotionJob(1, 10.0, 0, time.Hour, nil)
	before := *hero.Position
	job.Execute(st)

	if *hero.Position == before {
		t.Errorf("expected entity position to change after a motion tick")
	}
}

func TestDamageJobRepeatsAndDealsToolDamage(t *testing.T) {
	st := newTestState(t)
	dealer := NewHero(1, geometry.Point{})
	receiver := NewWarrior(2, geometry.Point{})
	axe := NewAxe(3, nil)
	st.AddEntity(dealer)
	st.AddEntity(receiver)
	st.AddEntity(axe)

	job := NewDamageJob(1, 2, 3, feature.HandRight, []Event{FinishedEvent{Receiver: 1}})
	result := job.Execute(st)

	if result.Repeat == nil {
		t.Fatalf("expected damage job to repeat")
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected one damage event, got %d", len(result.Events))
	}
	dmg, ok := result.Events[0].(DamageEvent)
	if !ok {
		t.Fatalf("expected a DamageEvent, got %T", result.Events[0])
	}
	if dmg.DamageAmount != axe.Features.ToolOrWeapon.Damage(receiver.Features.Damageable.Variant()) {
		t.Errorf("damage amount mismatch: got %v", dmg.DamageAmount)
	}
}

func TestDamageJobStopsWithoutTool(t *testing.T) {
	st := newTestState(t)
	dealer := NewHero(1, geometry.Point{})
	receiver := NewWarrior(2, geometry.Point{})
	st.AddEntity(dealer)
	st.AddEntity(receiver)

	job := NewDamageJob(1, 2, 999, feature.HandRight, []Event{FinishedEvent{Receiver: 1}})
	result := job.Execute(st)

	if result.Repeat != nil {
		t.Errorf("expected no repeat when the tool entity is missing")
	}
	if len(result.Events) != 1 {
		t.Fatalf("expected fallback finish events, got %d", len(result.Events))
	}
}

func TestEatJobAbsorbsNutrientsAndDeletesFood(t *testing.T) {
	st := newTestState(t)
	hero := NewHero(1, geometry.Point{})
	meat := NewRawMeat(2, nil)
	st.AddEntity(hero)
	st.AddEntity(meat)
	hero.Features.Inventory.StoreEntry(feature.HandRight, meat.AsInventoryEntry())

	job := NewEatJob(1, feature.HandRight, 2, []Event{FinishedEvent{Receiver: 1}})
	result := job.Execute(st)

	if len(result.Events) != 0 {
		t.Errorf("expected no finish events on a successful eat, got %d", len(result.Events))
	}
	if st.GetEntity(2) != nil {
		t.Errorf("expected food entity to be removed from state after eating")
	}
	if held := hero.Features.Inventory.GetHand(feature.HandRight); held != nil {
		t.Errorf("expected eater's hand to be cleared, got %+v", held)
	}
}

func TestHungerDrainJobAlwaysRepeats(t *testing.T) {
	st := newTestState(t)
	hero := NewHero(1, geometry.Point{})
	st.AddEntity(hero)

	job := NewHungerDrainJob(1)
	result := job.Execute(st)

	if result.Repeat == nil {
		t.Fatalf("expected hunger drain to repeat forever")
	}
	if len(result.Actions) != 1 {
		t.Fatalf("expected one stat update action, got %d", len(result.Actions))
	}
}

func TestHungerDrainJobWithIntervalUsesOverride(t *testing.T) {
	job := NewHungerDrainJobWithInterval(1, 5*time.Second)
	if got := job.GetStartDelay(); got != 5*time.Second {
		t.Fatalf("got start delay %v, want 5s", got)
	}

	st := newTestState(t)
	hero := NewHero(1, geometry.Point{})
	st.AddEntity(hero)

	result := job.Execute(st)
	if result.Repeat == nil || *result.Repeat != 5*time.Second {
		t.Fatalf("expected the job to repeat at the overridden interval, got %+v", result.Repeat)
	}
}
