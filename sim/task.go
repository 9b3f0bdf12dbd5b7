package sim

import (
	"time"

	"github.com/edginaround/worldcore/sim/feature"
)

// Task is an entity's current intent: constructed by Entity.HandleEvent in
// response to an Event, started exactly once by the engine when it becomes
// current (emitting actions and selecting a driving Job), and finished
// exactly once when superseded. Tasks reference other entities only by id,
// never by pointer — resolved through State on each step — so ownership
// never cycles back through Task.
type Task interface {
	Start(st *State) []Action
	Finish(st *State) []Action
	GetJob() Job
}

// emptyTask is every entity's task before its first event; it mirrors the
// source's EmptyTask sentinel.
type emptyTask struct{}

func (emptyTask) Start(*State) []Action  { return nil }
func (emptyTask) Finish(*State) []Action { return nil }
func (emptyTask) GetJob() Job            { return nil }

// IdleTask announces that an entity is doing nothing; it drives no job.
type IdleTask struct {
	actorID EntityId
}

func NewIdleTask(actorID EntityId) *IdleTask { return &IdleTask{actorID: actorID} }

func (t *IdleTask) Start(*State) []Action  { return []Action{IdleAction{ActorID_: t.actorID}} }
func (t *IdleTask) Finish(*State) []Action { return nil }
func (t *IdleTask) GetJob() Job            { return nil }

const motionTaskTimeout = 20 * time.Second

// MotionTask drives free-form movement until TIMEOUT elapses, at which
// point its job emits a FinishedEvent.
type MotionTask struct {
	entityID EntityId
	speed    float64
	bearing  float64
	job      *MotionJob
}

func NewMotionTask(entityID EntityId, speed, bearing float64) *MotionTask {
	return &MotionTask{
		entityID: entityID,
		speed:    speed,
		bearing:  bearing,
		job:      NewMotionJob(entityID, speed, bearing, motionTaskTimeout, []Event{FinishedEvent{Receiver: entityID}}),
	}
}

func (t *MotionTask) Start(*State) []Action {
	return []Action{MotionAction{ActorID_: t.entityID, Speed: t.speed, Bearing: t.bearing, Timeout: motionTaskTimeout.Seconds()}}
}

func (t *MotionTask) GetJob() Job { return t.job }

func (t *MotionTask) Finish(st *State) []Action {
	entity := st.GetEntity(t.entityID)
	if entity == nil {
		return nil
	}
	interval := time.Since(t.job.LastTick()).Seconds()
	entity.MoveBy(t.speed*interval, t.bearing, st.Radius())
	if entity.Position == nil {
		return nil
	}
	return []Action{LocalizationAction{ActorID_: t.entityID, Position: *entity.Position}}
}

// WalkTask is a fixed-duration, self-terminating walk — Warrior's resting
// behavior between attacks.
type WalkTask struct {
	entityID EntityId
	speed    float64
	bearing  float64
	duration time.Duration
	job      *MotionJob
}

func NewWalkTask(entityID EntityId, speed, bearing, durationSeconds float64) *WalkTask {
	duration := time.Duration(durationSeconds * float64(time.Second))
	return &WalkTask{
		entityID: entityID,
		speed:    speed,
		bearing:  bearing,
		duration: duration,
		job:      NewMotionJob(entityID, speed, bearing, duration, []Event{FinishedEvent{Receiver: entityID}}),
	}
}

func (t *WalkTask) Start(*State) []Action {
	return []Action{MotionAction{ActorID_: t.entityID, Speed: t.speed, Bearing: t.bearing, Timeout: t.duration.Seconds()}}
}

func (t *WalkTask) GetJob() Job { return t.job }

func (t *WalkTask) Finish(st *State) []Action {
	entity := st.GetEntity(t.entityID)
	if entity == nil || entity.Position == nil {
		return nil
	}
	return []Action{LocalizationAction{ActorID_: t.entityID, Position: *entity.Position}}
}

const (
	harvestTaskMaxDistance   = 1.0
	harvestTaskPickDuration  = time.Second
)

// HarvestTask is what a HandActivation against an empty-handed target
// becomes: picking up an inventorable item or harvesting a harvestable
// one, unified per the spec (the source's separate PickItemTask folds in
// here since both share the same distance-gated wait-and-resolve shape).
type HarvestTask struct {
	whoID  EntityId
	whatID *EntityId
	hand   feature.Hand
	job    *WaitJob
}

func NewHarvestTask(whoID EntityId, whatID *EntityId, hand feature.Hand) *HarvestTask {
	return &HarvestTask{whoID: whoID, whatID: whatID, hand: hand}
}

func (t *HarvestTask) Start(st *State) []Action {
	if t.whatID == nil {
		t.whatID = st.FindClosestDeliveringWithin(t.whoID, []feature.Claim{feature.ClaimCargo, feature.ClaimHarvest}, harvestTaskMaxDistance)
	}
	if t.whatID == nil {
		return nil
	}

	who := st.GetEntity(t.whoID)
	what := st.GetEntity(*t.whatID)
	if who == nil || what == nil {
		return nil
	}

	distance := st.CalculateDistance(who, what)
	if distance == nil || *distance > harvestTaskMaxDistance {
		return nil
	}

	finishEvents := []Event{FinishedEvent{Receiver: t.whoID}}
	if what.Features.Harvestable != nil {
		finishEvents = append(finishEvents, PickFinishEvent{Receiver: *t.whatID})
	}
	t.job = NewWaitJob(harvestTaskPickDuration, finishEvents)

	if what.Features.Inventorable != nil {
		return []Action{PickBeginAction{WhoID: t.whoID, WhatID: *t.whatID}}
	}
	if what.Features.Harvestable != nil {
		return []Action{HarvestBeginAction{WhoID: t.whoID, WhatID: *t.whatID}}
	}
	return nil
}

func (t *HarvestTask) GetJob() Job {
	if t.job == nil {
		return nil
	}
	return t.job
}

func (t *HarvestTask) Finish(st *State) []Action {
	if t.whatID == nil {
		return nil
	}

	who := st.GetEntity(t.whoID)
	what := st.GetEntity(*t.whatID)
	if who == nil || what == nil {
		return nil
	}

	distance := st.CalculateDistance(who, what)
	if distance == nil || *distance > harvestTaskMaxDistance {
		return nil
	}

	switch {
	case who.Features.Inventory != nil && what.Features.Inventorable != nil:
		who.Features.Inventory.StoreEntry(t.hand, what.AsInventoryEntry())
		what.Features.Inventorable.SetStoredBy(int64(who.Id))
		what.Position = nil

		return []Action{
			PickEndAction{WhoID: t.whoID},
			InventoryUpdateAction{ActorID_: who.Id, Inventory: SnapshotInventory(who.Features.Inventory)},
		}

	case what.Features.Harvestable != nil:
		amount := what.Features.Harvestable.Harvest()
		drops := what.HarvestYield(amount)
		snapshots := make([]ActorSnapshot, 0, len(drops))
		for _, drop := range drops {
			drop.Position = what.Position
			st.AddEntity(drop)
			snapshots = append(snapshots, drop.AsSnapshot())
		}
		if len(drops) == 1 && who.Features.Inventory != nil && drops[0].Features.Inventorable != nil {
			who.Features.Inventory.StoreEntry(t.hand, drops[0].AsInventoryEntry())
			drops[0].Features.Inventorable.SetStoredBy(int64(who.Id))
			drops[0].Position = nil
		}

		result := []Action{HarvestEndAction{WhoID: t.whoID}}
		if len(snapshots) > 0 {
			result = append(result, ActorCreationAction{Actors: snapshots})
		}
		if who.Features.Inventory != nil {
			result = append(result, InventoryUpdateAction{ActorID_: who.Id, Inventory: SnapshotInventory(who.Features.Inventory)})
		}
		return result
	}

	return nil
}

const useItemTaskMaxDistance = 1.0

// UseItemTask resolves a hand-held item against a receiver (explicit or
// nearest match): the receiver's first-absorbed claim for the item's
// delivery claims decides what happens (deal damage, eat, or nothing).
type UseItemTask struct {
	performerID EntityId
	itemID      EntityId
	receiverID  *EntityId
	hand        feature.Hand
	job         Job
}

func NewUseItemTask(performerID, itemID EntityId, receiverID *EntityId, hand feature.Hand) *UseItemTask {
	return &UseItemTask{performerID: performerID, itemID: itemID, receiverID: receiverID, hand: hand}
}

func (t *UseItemTask) Start(st *State) []Action {
	performer := st.GetEntity(t.performerID)
	item := st.GetEntity(t.itemID)
	if performer == nil || item == nil {
		return nil
	}

	claims := item.Features.DeliveryClaims()

	if t.receiverID == nil {
		t.receiverID = st.FindClosestAbsorbingWithin(t.performerID, claims, useItemTaskMaxDistance)
	}
	if t.receiverID == nil {
		return nil
	}

	receiver := st.GetEntity(*t.receiverID)
	if receiver == nil {
		return nil
	}

	distance := st.CalculateDistance(performer, receiver)
	if distance == nil || *distance > useItemTaskMaxDistance {
		return nil
	}

	claim, ok := receiver.Features.GetFirstAbsorbed(claims)
	if !ok {
		return nil
	}

	switch claim {
	case feature.ClaimPain:
		t.job = NewDamageJob(t.performerID, *t.receiverID, t.itemID, t.hand, []Event{FinishedEvent{Receiver: t.performerID}})
		return nil

	case feature.ClaimFood:
		t.job = NewEatJob(t.performerID, t.hand, t.itemID, []Event{FinishedEvent{Receiver: t.performerID}})
		return []Action{EatBeginAction{ActorID_: t.performerID}}

	default:
		// CARGO/HARVEST items used on a receiver: no-op, matching the
		// source's unimplemented give/deposit branches.
		return nil
	}
}

func (t *UseItemTask) GetJob() Job { return t.job }

func (t *UseItemTask) Finish(st *State) []Action {
	if _, ok := t.job.(*EatJob); ok {
		return []Action{EatEndAction{ActorID_: t.performerID}}
	}
	return nil
}

const craftTaskDuration = time.Second

// CraftTask validates and applies a crafting Assembly.
type CraftTask struct {
	crafterID EntityId
	assembly  Assembly
	catalog   RecipeCatalog
	job       *WaitJob
}

// NewCraftTask constructs a CraftTask. catalog resolves recipes and
// constructs their output entities; it is threaded in by the engine rather
// than looked up globally so State stays free of package-level state.
func NewCraftTask(crafterID EntityId, assembly Assembly) *CraftTask {
	return &CraftTask{crafterID: crafterID, assembly: assembly}
}

// WithCatalog attaches the recipe catalog this task should craft against;
// the engine calls this before Start.
func (t *CraftTask) WithCatalog(catalog RecipeCatalog) *CraftTask {
	t.catalog = catalog
	return t
}

func (t *CraftTask) Start(st *State) []Action {
	crafter := st.GetEntity(t.crafterID)
	if crafter == nil || crafter.Features.Inventory == nil || t.catalog == nil {
		return nil
	}
	if _, ok := crafter.Features.Inventory.GetFreeHand(feature.HandRight); !ok {
		return nil
	}
	if !st.ValidateAssembly(t.catalog, t.assembly, crafter.Features.Inventory) {
		return nil
	}

	t.job = NewWaitJob(craftTaskDuration, []Event{FinishedEvent{Receiver: t.crafterID}})
	return []Action{CraftBeginAction{ActorID_: t.crafterID}}
}

func (t *CraftTask) GetJob() Job {
	if t.job == nil {
		return nil
	}
	return t.job
}

func (t *CraftTask) Finish(st *State) []Action {
	crafter := st.GetEntity(t.crafterID)
	if crafter == nil || crafter.Features.Inventory == nil || t.catalog == nil {
		return []Action{CraftEndAction{ActorID_: t.crafterID}}
	}

	result := st.CraftEntity(t.catalog, t.assembly, crafter.Features.Inventory)

	created := make([]ActorSnapshot, 0, len(result.Created))
	for _, e := range result.Created {
		created = append(created, e.AsSnapshot())
	}

	return []Action{
		ActorCreationAction{Actors: created},
		ActorDeletionAction{ActorIDs: result.Deleted},
		InventoryUpdateAction{ActorID_: t.crafterID, Inventory: SnapshotInventory(crafter.Features.Inventory)},
		CraftEndAction{ActorID_: t.crafterID},
	}
}

// DieAndDropTask adds drops to State at the dier's last position, removes
// the dier from the wire, and schedules its actual deletion via DieJob.
type DieAndDropTask struct {
	dierID EntityId
	drops  []*Entity
	job    *DieJob
}

func NewDieAndDropTask(dierID EntityId, drops []*Entity) *DieAndDropTask {
	return &DieAndDropTask{dierID: dierID, drops: drops, job: NewDieJob(dierID)}
}

func (t *DieAndDropTask) Start(st *State) []Action {
	dier := st.GetEntity(t.dierID)
	if dier == nil {
		return nil
	}

	snapshots := make([]ActorSnapshot, 0, len(t.drops))
	for _, drop := range t.drops {
		st.AddEntity(drop)
		snapshots = append(snapshots, drop.AsSnapshot())
	}

	return []Action{
		ActorCreationAction{Actors: snapshots},
		ActorDeletionAction{ActorIDs: []EntityId{t.dierID}},
	}
}

func (t *DieAndDropTask) GetJob() Job { return t.job }

func (t *DieAndDropTask) Finish(*State) []Action { return nil }

const inventoryUpdateTaskSwapDuration = 10 * time.Millisecond

// InventoryUpdateTask applies a SWAP or MERGE between a hand and a pocket.
type InventoryUpdateTask struct {
	performerID    EntityId
	hand           feature.Hand
	inventoryIndex int
	variant        feature.UpdateVariant
}

func NewInventoryUpdateTask(performerID EntityId, hand feature.Hand, inventoryIndex int, variant feature.UpdateVariant) *InventoryUpdateTask {
	return &InventoryUpdateTask{performerID: performerID, hand: hand, inventoryIndex: inventoryIndex, variant: variant}
}

func (t *InventoryUpdateTask) Start(*State) []Action { return nil }

func (t *InventoryUpdateTask) GetJob() Job {
	return NewWaitJob(inventoryUpdateTaskSwapDuration, []Event{FinishedEvent{Receiver: t.performerID}})
}

func (t *InventoryUpdateTask) Finish(st *State) []Action {
	performer := st.GetEntity(t.performerID)
	if performer == nil || performer.Features.Inventory == nil {
		return nil
	}

	inv := performer.Features.Inventory
	switch t.variant {
	case feature.UpdateSwap:
		inv.Swap(t.hand, t.inventoryIndex)
	case feature.UpdateMerge:
		st.MergeEntities(inv, t.hand, t.inventoryIndex)
	}
	return []Action{InventoryUpdateAction{ActorID_: t.performerID, Inventory: SnapshotInventory(inv)}}
}

// GrowTask just arms a repeating GrowJob; all the interesting behavior
// lives in the owning entity's GrowEvent handler.
type GrowTask struct {
	entityID EntityId
	interval time.Duration
}

func NewGrowTask(entityID EntityId, intervalSeconds float64) *GrowTask {
	return &GrowTask{entityID: entityID, interval: time.Duration(intervalSeconds * float64(time.Second))}
}

func (t *GrowTask) Start(*State) []Action  { return nil }
func (t *GrowTask) Finish(*State) []Action { return nil }
func (t *GrowTask) GetJob() Job            { return NewGrowJob(t.entityID, t.interval) }

// StateChangeTask flips an entity's stateful feature to a new named state
// and announces it, then finishes at once: its job is a zero-delay wait that
// emits FinishedEvent.
type StateChangeTask struct {
	entityID  EntityId
	stateName string
}

func NewStateChangeTask(entityID EntityId, stateName string) *StateChangeTask {
	return &StateChangeTask{entityID: entityID, stateName: stateName}
}

func (t *StateChangeTask) Start(st *State) []Action {
	entity := st.GetEntity(t.entityID)
	if entity == nil || entity.Features.Stateful == nil {
		return nil
	}
	entity.Features.Stateful.SetName(t.stateName)
	return []Action{ActorUpdateAction{ActorID_: t.entityID, StateName: t.stateName}}
}

func (t *StateChangeTask) Finish(*State) []Action { return nil }

func (t *StateChangeTask) GetJob() Job {
	return NewWaitJob(0, []Event{FinishedEvent{Receiver: t.entityID}})
}
