package sim

import (
	"github.com/edginaround/worldcore/sim/feature"
	"github.com/edginaround/worldcore/sim/geometry"
)

// Action is an outbound message describing a world change, destined for the
// gateway to broadcast or deliver to a single connection. The concrete
// types below are a closed set; callers type-switch on them.
type Action interface {
	actorID() EntityId
}

// ActorSnapshot is the wire-shape of an entity used in creation/deletion
// action payloads — enough for a client to render it without touching
// internal Entity state.
type ActorSnapshot struct {
	ID       EntityId
	Codename string
	Position *geometry.Point
}

type ActorCreationAction struct {
	Actors []ActorSnapshot
}

func (a ActorCreationAction) actorID() EntityId { return 0 }

type ActorUpdateAction struct {
	ActorID_  EntityId
	StateName string
}

func (a ActorUpdateAction) actorID() EntityId { return a.ActorID_ }

type ActorDeletionAction struct {
	ActorIDs []EntityId
}

func (a ActorDeletionAction) actorID() EntityId { return 0 }

type ConfigurationAction struct {
	ActorID_ EntityId
	Radius   float64
}

func (a ConfigurationAction) actorID() EntityId { return a.ActorID_ }

type IdleAction struct {
	ActorID_ EntityId
}

func (a IdleAction) actorID() EntityId { return a.ActorID_ }

type MotionAction struct {
	ActorID_ EntityId
	Speed    float64
	Bearing  float64
	Timeout  float64
}

func (a MotionAction) actorID() EntityId { return a.ActorID_ }

type LocalizationAction struct {
	ActorID_ EntityId
	Position geometry.Point
}

func (a LocalizationAction) actorID() EntityId { return a.ActorID_ }

type PickBeginAction struct {
	WhoID  EntityId
	WhatID EntityId
}

func (a PickBeginAction) actorID() EntityId { return a.WhoID }

type PickEndAction struct {
	WhoID EntityId
}

func (a PickEndAction) actorID() EntityId { return a.WhoID }

type HarvestBeginAction struct {
	WhoID  EntityId
	WhatID EntityId
}

func (a HarvestBeginAction) actorID() EntityId { return a.WhoID }

type HarvestEndAction struct {
	WhoID EntityId
}

func (a HarvestEndAction) actorID() EntityId { return a.WhoID }

type EatBeginAction struct {
	ActorID_ EntityId
}

func (a EatBeginAction) actorID() EntityId { return a.ActorID_ }

type EatEndAction struct {
	ActorID_ EntityId
}

func (a EatEndAction) actorID() EntityId { return a.ActorID_ }

type CraftBeginAction struct {
	ActorID_ EntityId
}

func (a CraftBeginAction) actorID() EntityId { return a.ActorID_ }

type CraftEndAction struct {
	ActorID_ EntityId
}

func (a CraftEndAction) actorID() EntityId { return a.ActorID_ }

type DamageAction struct {
	DealerID   EntityId
	ReceiverID EntityId
	Variant    feature.DamageVariant
	Hand       feature.Hand
}

func (a DamageAction) actorID() EntityId { return a.ReceiverID }

// InventorySnapshot is the wire shape of an Inventory, flattened for the
// gateway — hands by name, pockets by index.
type InventorySnapshot struct {
	LeftHand  *feature.Entry
	RightHand *feature.Entry
	Pockets   []*feature.Entry
}

type InventoryUpdateAction struct {
	ActorID_  EntityId
	Inventory InventorySnapshot
}

func (a InventoryUpdateAction) actorID() EntityId { return a.ActorID_ }

type StatUpdateAction struct {
	ActorID_ EntityId
	Stats    feature.Stats
}

func (a StatUpdateAction) actorID() EntityId { return a.ActorID_ }

// SnapshotInventory flattens inv into its wire shape. Exported so callers
// outside this package (the engine's initial-connection delivery) can build
// an InventoryUpdateAction without duplicating hand/pocket traversal.
func SnapshotInventory(inv *feature.Inventory) InventorySnapshot {
	if inv == nil {
		return InventorySnapshot{}
	}
	pockets := make([]*feature.Entry, 8)
	for i := range pockets {
		pockets[i] = inv.GetPocketEntry(i)
	}
	return InventorySnapshot{
		LeftHand:  inv.GetHandEntry(feature.HandLeft),
		RightHand: inv.GetHandEntry(feature.HandRight),
		Pockets:   pockets,
	}
}
