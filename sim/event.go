package sim

import (
	"github.com/edginaround/worldcore/sim/feature"
)

// Event is an inbound signal addressed to a specific entity, produced
// either by decoding a client Move or by a Job's own execution. ReceiverID
// identifies the Entity whose HandleEvent should process it.
type Event interface {
	ReceiverID() EntityId
}

type ResumeEvent struct {
	Receiver EntityId
}

func (e ResumeEvent) ReceiverID() EntityId { return e.Receiver }

type FinishedEvent struct {
	Receiver EntityId
}

func (e FinishedEvent) ReceiverID() EntityId { return e.Receiver }

type DisconnectionEvent struct {
	Receiver EntityId
}

func (e DisconnectionEvent) ReceiverID() EntityId { return e.Receiver }

type MotionStartEvent struct {
	Receiver EntityId
	Bearing  float64
}

func (e MotionStartEvent) ReceiverID() EntityId { return e.Receiver }

type MotionStopEvent struct {
	Receiver EntityId
}

func (e MotionStopEvent) ReceiverID() EntityId { return e.Receiver }

type HandActivationEvent struct {
	Receiver EntityId
	Hand     feature.Hand
	ObjectID *EntityId
}

func (e HandActivationEvent) ReceiverID() EntityId { return e.Receiver }

type InventoryUpdateEvent struct {
	Receiver       EntityId
	Hand           feature.Hand
	InventoryIndex int
	UpdateVariant  feature.UpdateVariant
}

func (e InventoryUpdateEvent) ReceiverID() EntityId { return e.Receiver }

type CraftEvent struct {
	Receiver EntityId
	Assembly Assembly
}

func (e CraftEvent) ReceiverID() EntityId { return e.Receiver }

type DamageEvent struct {
	Receiver     EntityId
	DealerID     EntityId
	DamageAmount float64
	Variant      feature.DamageVariant
}

func (e DamageEvent) ReceiverID() EntityId { return e.Receiver }

// GrowEvent drives a BerryBush (or any harvestable-stateful entity) through
// its grow/state-change cycle; it is never produced from a client move.
type GrowEvent struct {
	Receiver EntityId
}

func (e GrowEvent) ReceiverID() EntityId { return e.Receiver }

// PickFinishEvent notifies a harvestable-stateful entity (e.g. a berry
// bush) that a HarvestTask against it has just completed, so it can
// re-check its state threshold. Never produced from a client move.
type PickFinishEvent struct {
	Receiver EntityId
}

func (e PickFinishEvent) ReceiverID() EntityId { return e.Receiver }

// EventFromMove converts a decoded client Move into the Event targeted at
// the sender's controlled entity, mirroring the one-to-one move/event
// vocabulary.
func EventFromMove(receiver EntityId, move Move) Event {
	switch m := move.(type) {
	case MotionStartMove:
		return MotionStartEvent{Receiver: receiver, Bearing: m.Bearing}
	case MotionStopMove:
		return MotionStopEvent{Receiver: receiver}
	case HandActivationMove:
		return HandActivationEvent{Receiver: receiver, Hand: m.Hand, ObjectID: m.ObjectID}
	case InventoryUpdateMove:
		return InventoryUpdateEvent{
			Receiver:       receiver,
			Hand:           m.Hand,
			InventoryIndex: m.InventoryIndex,
			UpdateVariant:  m.UpdateVariant,
		}
	case CraftMove:
		return CraftEvent{Receiver: receiver, Assembly: m.Assembly}
	default:
		return nil
	}
}
