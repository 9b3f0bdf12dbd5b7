package sim

import (
	"time"

	"github.com/edginaround/worldcore/sim/feature"
)

// JobResult is what a Job's Execute call produces: actions to broadcast,
// events to loop back through the engine at delay zero, and an optional
// repeat delay. If Repeat is nil the job terminates; otherwise it is
// re-entered under the same scheduler handle.
type JobResult struct {
	Actions []Action
	Events  []Event
	Repeat  *time.Duration
}

// Job is a time-deferred unit of simulation work. A Task constructs one and
// the Engine schedules it at GetStartDelay() after the task starts; on
// firing, Execute may mutate State and requests further scheduling via
// JobResult.Repeat.
type Job interface {
	GetStartDelay() time.Duration
	Execute(st *State) JobResult
}

// JobBase carries the soft-cancel bookkeeping every concrete job embeds.
// Concluding a job does not by itself stop it from firing again — task
// supersession (which cancels the scheduler entry outright) is what
// actually terminates a repeating job; Conclude exists so a job's own
// Execute can choose to stop re-arming itself once asked to.
type JobBase struct {
	concluded bool
}

func (b *JobBase) Conclude()          { b.concluded = true }
func (b *JobBase) ShouldConclude() bool { return b.concluded }

func repeatAfter(d time.Duration) *time.Duration { return &d }

// WaitJob fires once after duration, emitting events, then stops — unless
// chained with AndThen, in which case it advances to the next link on each
// firing. CraftTask, InventoryUpdateTask and StateChangeTask all drive
// their single-shot completion this way.
type WaitJob struct {
	JobBase
	duration time.Duration
	events   []Event
	next     *WaitJob
}

func NewWaitJob(duration time.Duration, events []Event) *WaitJob {
	return &WaitJob{duration: duration, events: events}
}

// AndThen chains a second wait after this one fires, returning it so chains
// can be built fluently.
func (j *WaitJob) AndThen(duration time.Duration, events []Event) *WaitJob {
	j.next = NewWaitJob(duration, events)
	return j.next
}

func (j *WaitJob) GetStartDelay() time.Duration { return j.duration }

func (j *WaitJob) Execute(st *State) JobResult {
	if j.next != nil {
		result := JobResult{Events: j.events, Repeat: repeatAfter(j.next.duration)}
		j.duration, j.events, j.next = j.next.duration, j.next.events, j.next.next
		return result
	}
	return JobResult{Events: j.events}
}

// DieJob removes its entity from State with no delay, the terminal step of
// a DieAndDropTask.
type DieJob struct {
	JobBase
	dierID EntityId
}

func NewDieJob(dierID EntityId) *DieJob { return &DieJob{dierID: dierID} }

func (j *DieJob) GetStartDelay() time.Duration { return 0 }

func (j *DieJob) Execute(st *State) JobResult {
	st.DeleteEntity(j.dierID)
	return JobResult{}
}

// MotionJob advances its entity along a great circle every tick until
// duration elapses, then emits finishEvents. MotionTask's Finish reads
// LastTick to integrate the partial interval since the last firing when
// the task is superseded mid-tick.
type MotionJob struct {
	JobBase
	entityID     EntityId
	speed        float64
	bearing      float64
	duration     time.Duration
	finishEvents []Event
	startTime    time.Time
	lastTick     time.Time
}

const motionJobInterval = 100 * time.Millisecond

func NewMotionJob(entityID EntityId, speed, bearing float64, duration time.Duration, finishEvents []Event) *MotionJob {
	now := time.Now()
	return &MotionJob{
		entityID:     entityID,
		speed:        speed,
		bearing:      bearing,
		duration:     duration,
		finishEvents: finishEvents,
		startTime:    now,
		lastTick:     now,
	}
}

func (j *MotionJob) GetStartDelay() time.Duration { return motionJobInterval }

func (j *MotionJob) LastTick() time.Time { return j.lastTick }

func (j *MotionJob) Execute(st *State) JobResult {
	entity := st.GetEntity(j.entityID)
	if entity == nil {
		return JobResult{Events: j.finishEvents}
	}

	entity.MoveBy(j.speed*motionJobInterval.Seconds(), j.bearing, st.Radius())
	j.lastTick = time.Now()

	if j.startTime.Add(j.duration).Before(j.lastTick) {
		return JobResult{Events: j.finishEvents}
	}
	return JobResult{Repeat: repeatAfter(motionJobInterval)}
}

// GrowJob periodically emits a GrowEvent for its entity — BerryBush's
// grow/state-change cycle.
type GrowJob struct {
	JobBase
	growerID EntityId
	interval time.Duration
}

func NewGrowJob(growerID EntityId, interval time.Duration) *GrowJob {
	return &GrowJob{growerID: growerID, interval: interval}
}

func (j *GrowJob) GetStartDelay() time.Duration { return j.interval }

func (j *GrowJob) Execute(st *State) JobResult {
	return JobResult{Events: []Event{GrowEvent{Receiver: j.growerID}}, Repeat: repeatAfter(j.interval)}
}

const hungerDrainInterval = time.Second

// HungerDrainJob ticks hunger down for any eater once connected, forever
// (it is never concluded — an eater's hunger simply keeps draining).
type HungerDrainJob struct {
	JobBase
	entityID EntityId
	interval time.Duration
}

func NewHungerDrainJob(entityID EntityId) *HungerDrainJob {
	return &HungerDrainJob{entityID: entityID, interval: hungerDrainInterval}
}

// NewHungerDrainJobWithInterval builds a HungerDrainJob that repeats every
// interval instead of the package default — how the engine honors a
// configured WithHungerDrainInterval option.
func NewHungerDrainJobWithInterval(entityID EntityId, interval time.Duration) *HungerDrainJob {
	return &HungerDrainJob{entityID: entityID, interval: interval}
}

func (j *HungerDrainJob) GetStartDelay() time.Duration { return j.interval }

func (j *HungerDrainJob) Execute(st *State) JobResult {
	entity := st.GetEntity(j.entityID)
	if entity == nil || entity.Features.Eater == nil {
		return JobResult{}
	}
	entity.Features.Eater.Deduce(1.0)
	stats := entity.Features.Eater.GatherStats()
	return JobResult{
		Actions: []Action{StatUpdateAction{ActorID_: entity.Id, Stats: stats}},
		Repeat:  repeatAfter(j.interval),
	}
}

const damageJobRepeatInterval = time.Second

// DamageJob repeats every damageJobRepeatInterval dealing the wielded
// tool's damage to the receiver, until the UseItemTask that owns it is
// superseded (which cancels this job's scheduler entry outright).
type DamageJob struct {
	JobBase
	dealerID     EntityId
	receiverID   EntityId
	toolID       EntityId
	hand         feature.Hand
	finishEvents []Event
}

func NewDamageJob(dealerID, receiverID, toolID EntityId, hand feature.Hand, finishEvents []Event) *DamageJob {
	return &DamageJob{dealerID: dealerID, receiverID: receiverID, toolID: toolID, hand: hand, finishEvents: finishEvents}
}

func (j *DamageJob) GetStartDelay() time.Duration { return damageJobRepeatInterval }

func (j *DamageJob) Execute(st *State) JobResult {
	finish := JobResult{Events: j.finishEvents}

	dealer := st.GetEntity(j.dealerID)
	if dealer == nil || dealer.Features.Inventory == nil {
		return finish
	}

	receiver := st.GetEntity(j.receiverID)
	if receiver == nil || receiver.Features.Damageable == nil {
		return finish
	}

	tool := st.GetEntity(j.toolID)
	if tool == nil || tool.Features.ToolOrWeapon == nil {
		return finish
	}

	variant := receiver.Features.Damageable.Variant()
	amount := tool.Features.ToolOrWeapon.Damage(variant)

	event := DamageEvent{Receiver: j.receiverID, DealerID: j.dealerID, DamageAmount: amount, Variant: variant}
	action := DamageAction{DealerID: j.dealerID, ReceiverID: j.receiverID, Variant: variant, Hand: j.hand}

	return JobResult{Events: []Event{event}, Actions: []Action{action}, Repeat: repeatAfter(damageJobRepeatInterval)}
}

const eatJobDelay = 500 * time.Millisecond

// EatJob resolves a single eating attempt: consumes the food's nutrients
// (scaled by its stack quantity) into the eater, then deletes the food
// entity and clears it from the eater's hand.
type EatJob struct {
	JobBase
	eaterID      EntityId
	eaterHand    feature.Hand
	foodID       EntityId
	finishEvents []Event
}

func NewEatJob(eaterID EntityId, eaterHand feature.Hand, foodID EntityId, finishEvents []Event) *EatJob {
	return &EatJob{eaterID: eaterID, eaterHand: eaterHand, foodID: foodID, finishEvents: finishEvents}
}

func (j *EatJob) GetStartDelay() time.Duration { return eatJobDelay }

func (j *EatJob) Execute(st *State) JobResult {
	finish := JobResult{Events: j.finishEvents}

	eater := st.GetEntity(j.eaterID)
	if eater == nil || eater.Features.Eater == nil || eater.Features.Inventory == nil {
		return finish
	}

	food := st.GetEntity(j.foodID)
	if food == nil || food.Features.Edible == nil {
		return finish
	}

	nutrients := food.Features.Edible.Nutrients().Scaled(food.Features.GetQuantity())
	if !eater.Features.Eater.Absorb(nutrients) {
		return JobResult{}
	}

	eater.Features.Inventory.StoreEntry(j.eaterHand, nil)
	stats := eater.Features.Eater.GatherStats()
	st.DeleteEntity(j.foodID)

	return JobResult{
		Actions: []Action{
			InventoryUpdateAction{ActorID_: eater.Id, Inventory: SnapshotInventory(eater.Features.Inventory)},
			ActorDeletionAction{ActorIDs: []EntityId{j.foodID}},
			StatUpdateAction{ActorID_: eater.Id, Stats: stats},
		},
	}
}
