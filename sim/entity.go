package sim

import (
	"math"
	"math/rand"

	"github.com/edginaround/worldcore/sim/feature"
	"github.com/edginaround/worldcore/sim/geometry"
)

// EntityId is a dense nonzero identifier; 0 means "unassigned", pending
// allocation by State.GenerateNewEntityId.
type EntityId int64

// Essence is the material-kind tag carried by every entity, used by
// crafting to match ingredients against inventory contents.
type Essence int

const (
	EssenceVoid Essence = iota
	EssenceRocks
	EssenceGold
	EssenceMeat
	EssenceLogs
	EssenceSticks
	EssenceTool
	EssencePlant
	EssenceHero
)

// Kind tags an entity's runtime behavior — the closed set of
// HandleEvent implementations. It stands in for the source's subclassing;
// dispatch in Entity.HandleEvent switches on it.
type Kind int

const (
	KindHero Kind = iota
	KindWarrior
	KindBerryBush
	KindSpruce
	KindRocks
	KindGold
	KindRawMeat
	KindLog
	KindTwig
	KindAxe
)

const berryBushStateThreshold = 10

// Entity is the simulated world object: an identity, an optional position
// on the world sphere, a Features bundle set once at construction, and the
// single Task currently governing its behavior.
type Entity struct {
	Id       EntityId
	Kind     Kind
	Codename string
	Essence  Essence
	Position *geometry.Point
	Features *feature.Features
	Task     Task
}

func (e *Entity) GetID() EntityId { return e.Id }

// MoveBy advances the entity's position along a great circle by distance
// at the given bearing, on a sphere of the given radius. A no-op if the
// entity has no position.
func (e *Entity) MoveBy(distance, bearing, radius float64) {
	if e.Position == nil {
		return
	}
	moved := e.Position.MovedBy(distance, bearing, radius)
	e.Position = &moved
}

// AsSnapshot renders the entity as the wire-facing shape used in
// creation/update action payloads.
func (e *Entity) AsSnapshot() ActorSnapshot {
	return ActorSnapshot{ID: e.Id, Codename: e.Codename, Position: e.Position}
}

// slotMaxVolume is the capacity every inventory slot is reported as able
// to hold, matching the source's as_info always reporting Sizes.BIG as an
// item's slot capacity regardless of what's actually stored there.
const slotMaxVolume = 25

// AsInventoryEntry renders the entity as the inventory slot entry it
// occupies once picked up, crafted, or merged into a hand or pocket.
func (e *Entity) AsInventoryEntry() *feature.Entry {
	volume := 1
	if e.Features.Inventorable != nil {
		volume = e.Features.Inventorable.Volume()
	}
	return &feature.Entry{
		ActorID:    int64(e.Id),
		Quantity:   e.Features.GetQuantity(),
		ItemVolume: volume,
		MaxVolume:  slotMaxVolume,
		Codename:   e.Codename,
	}
}

// HandleEvent lets the entity react to an inbound Event by replacing its
// Task. It is a pure function of the entity's current state, its features,
// and the event — the Go analogue of the source's per-subclass
// handle_event override, dispatched here on Kind instead of on type.
func (e *Entity) HandleEvent(st *State, ev Event) {
	switch e.Kind {
	case KindHero:
		e.handleHeroEvent(st, ev)
	case KindWarrior:
		e.handleWarriorEvent(ev)
	case KindBerryBush:
		e.handleBerryBushEvent(ev)
	case KindSpruce:
		e.handleSpruceEvent(ev)
	default:
		// Rocks/Gold/RawMeat/Log/Twig/Axe are inert: they never react to
		// events on their own.
	}
}

func (e *Entity) handleHeroEvent(st *State, ev Event) {
	switch ev := ev.(type) {
	case ResumeEvent, FinishedEvent, MotionStopEvent:
		e.Task = NewIdleTask(e.Id)

	case MotionStartEvent:
		e.Task = NewMotionTask(e.Id, 1.0, ev.Bearing)

	case HandActivationEvent:
		inv := e.Features.Inventory
		if inv == nil {
			return
		}
		if held := inv.GetHand(ev.Hand); held != nil {
			e.Task = NewUseItemTask(e.Id, EntityId(held.ActorID), ev.ObjectID, ev.Hand)
		} else {
			e.Task = NewHarvestTask(e.Id, ev.ObjectID, ev.Hand)
		}

	case InventoryUpdateEvent:
		e.Task = NewInventoryUpdateTask(e.Id, ev.Hand, ev.InventoryIndex, ev.UpdateVariant)

	case CraftEvent:
		e.Task = NewCraftTask(e.Id, ev.Assembly)

	case DisconnectionEvent:
		e.Task = NewDieAndDropTask(e.Id, nil)
	}
}

func (e *Entity) handleWarriorEvent(ev Event) {
	switch ev := ev.(type) {
	case ResumeEvent, FinishedEvent:
		bearing := rand.Float64()*2*math.Pi - math.Pi
		e.Task = NewWalkTask(e.Id, 1.0, bearing, 1.0)

	case DamageEvent:
		alive := e.Features.Damageable.HandleDamage(ev.DamageAmount)
		if !alive {
			e.Task = NewDieAndDropTask(e.Id, e.generateDrops(KindRawMeat, 4))
		}
	}
}

func (e *Entity) handleSpruceEvent(ev Event) {
	if dmg, ok := ev.(DamageEvent); ok {
		alive := e.Features.Damageable.HandleDamage(dmg.DamageAmount)
		if !alive {
			e.Task = NewDieAndDropTask(e.Id, e.generateDrops(KindLog, 3))
		}
	}
}

func (e *Entity) handleBerryBushEvent(ev Event) {
	switch ev := ev.(type) {
	case ResumeEvent, FinishedEvent:
		e.Task = NewGrowTask(e.Id, 5.0)

	case GrowEvent:
		before, after := e.Features.Harvestable.Grow()
		if stateForAmount(before) != stateForAmount(after) {
			e.Task = NewStateChangeTask(e.Id, stateForAmount(after))
		} else {
			e.Task = NewGrowTask(e.Id, 5.0)
		}

	case PickFinishEvent:
		current := e.Features.Harvestable.Current()
		if stateForAmount(current) != e.Features.Stateful.Name() {
			e.Task = NewStateChangeTask(e.Id, stateForAmount(current))
		} else {
			e.Task = NewGrowTask(e.Id, 5.0)
		}

	case DamageEvent:
		alive := e.Features.Damageable.HandleDamage(ev.DamageAmount)
		if !alive {
			e.Task = NewDieAndDropTask(e.Id, e.generateDrops(KindTwig, 3))
		}
	}
}

func stateForAmount(amount int) string {
	if amount < berryBushStateThreshold {
		return "bare"
	}
	return "covered"
}

// generateDrops builds n fresh, as-yet-unassigned-id entities of kind at
// this entity's position, for DieAndDropTask to add to State.
func (e *Entity) generateDrops(kind Kind, n int) []*Entity {
	drops := make([]*Entity, 0, n)
	for i := 0; i < n; i++ {
		drops = append(drops, newEntityOfKind(kind, 0, e.Position))
	}
	return drops
}

// newEntityOfKind is the entity-constructor registry's default set,
// grounded directly in entities.py's per-class __init__ feature wiring.
func newEntityOfKind(kind Kind, id EntityId, pos *geometry.Point) *Entity {
	e := &Entity{Id: id, Kind: kind, Position: pos, Features: feature.New()}
	switch kind {
	case KindHero:
		e.Codename, e.Essence = "hero", EssenceHero
		e.Features.SetInventory()
		e.Features.SetEater(100.0, 50.0)

	case KindWarrior:
		e.Codename, e.Essence = "warrior", EssenceHero
		e.Features.SetPerformer()
		e.Features.SetDamageable(200, 200, feature.DamageAttack)

	case KindBerryBush:
		e.Codename, e.Essence = "berry_bush", EssencePlant
		e.Features.SetHarvestable(0, 0, 20, 1, 5)
		e.Features.SetStateful("bare")
		e.Features.SetDamageable(50, 50, feature.DamageChop)

	case KindSpruce:
		e.Codename, e.Essence = "spruce", EssencePlant
		e.Features.SetDamageable(200, 400, feature.DamageChop)

	case KindRocks:
		e.Codename, e.Essence = "rocks", EssenceRocks
		e.Features.SetInventorable(5)
		e.Features.SetStackable(1)

	case KindGold:
		e.Codename, e.Essence = "gold", EssenceGold
		e.Features.SetInventorable(5)
		e.Features.SetStackable(1)

	case KindRawMeat:
		e.Codename, e.Essence = "raw_meat", EssenceMeat
		e.Features.SetEdible(feature.Nutrients{Hunger: 25})
		e.Features.SetInventorable(5)
		e.Features.SetStackable(1)

	case KindLog:
		e.Codename, e.Essence = "log", EssenceLogs
		e.Features.SetInventorable(100)

	case KindTwig:
		e.Codename, e.Essence = "twig", EssenceSticks
		e.Features.SetInventorable(5)
		e.Features.SetStackable(1)

	case KindAxe:
		e.Codename, e.Essence = "axe", EssenceTool
		e.Features.SetInventorable(10)
		e.Features.SetToolOrWeapon(10, 100, 20, 50)
	}
	e.Task = emptyTask{}
	return e
}

// HarvestYield turns a harvested amount into dropped entities, keyed by
// this entity's kind. A berry bush yields nothing — harvesting it is a
// state transition (see HandleEvent's GrowEvent/PickFinishEvent handling),
// not a drop.
func (e *Entity) HarvestYield(amount int) []*Entity {
	switch e.Kind {
	case KindBerryBush:
		return nil
	default:
		return nil
	}
}

// NewHero constructs the player-controlled entity assigned on connection.
func NewHero(id EntityId, pos geometry.Point) *Entity { return newEntityOfKind(KindHero, id, &pos) }

// NewWarrior constructs an autonomous NPC that walks randomly and drops
// RawMeat when killed.
func NewWarrior(id EntityId, pos geometry.Point) *Entity {
	return newEntityOfKind(KindWarrior, id, &pos)
}

// NewBerryBush constructs a harvestable, stateful plant.
func NewBerryBush(id EntityId, pos geometry.Point) *Entity {
	return newEntityOfKind(KindBerryBush, id, &pos)
}

// NewSpruce constructs a damageable tree that drops Log on death.
func NewSpruce(id EntityId, pos geometry.Point) *Entity {
	return newEntityOfKind(KindSpruce, id, &pos)
}

// NewRocks, NewGold, NewRawMeat, NewLog, NewTwig, NewAxe construct the
// plain item entities; id may be 0 (State.AddEntity allocates one).
func NewRocks(id EntityId, pos *geometry.Point) *Entity   { return newEntityOfKind(KindRocks, id, pos) }
func NewGold(id EntityId, pos *geometry.Point) *Entity    { return newEntityOfKind(KindGold, id, pos) }
func NewRawMeat(id EntityId, pos *geometry.Point) *Entity { return newEntityOfKind(KindRawMeat, id, pos) }
func NewLog(id EntityId, pos *geometry.Point) *Entity     { return newEntityOfKind(KindLog, id, pos) }
func NewTwig(id EntityId, pos *geometry.Point) *Entity    { return newEntityOfKind(KindTwig, id, pos) }
func NewAxe(id EntityId, pos *geometry.Point) *Entity     { return newEntityOfKind(KindAxe, id, pos) }
