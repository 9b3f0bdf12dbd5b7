package sim

import "github.com/edginaround/worldcore/sim/feature"

// Move is a client-submitted command, decoded by the wire codec (out of
// scope here — see engine/gateway and server) into one of the concrete
// types below before reaching EventFromMove.
type Move interface {
	isMove()
}

type MotionStartMove struct {
	Bearing float64
}

func (MotionStartMove) isMove() {}

type MotionStopMove struct{}

func (MotionStopMove) isMove() {}

type HandActivationMove struct {
	Hand     feature.Hand
	ObjectID *EntityId
}

func (HandActivationMove) isMove() {}

type InventoryUpdateMove struct {
	Hand           feature.Hand
	InventoryIndex int
	UpdateVariant  feature.UpdateVariant
}

func (InventoryUpdateMove) isMove() {}

type CraftMove struct {
	Assembly Assembly
}

func (CraftMove) isMove() {}

// Assembly is a concrete crafting attempt: a recipe codename plus, for each
// ingredient slot, the inventory sources the crafter wants consumed.
type Assembly struct {
	RecipeCodename string
	Sources        [][]AssemblySource
}

// AssemblySource names one inventory entry (by the entity it holds) and how
// much of it to consume.
type AssemblySource struct {
	ActorID  EntityId `json:"actor_id"`
	Quantity int      `json:"quantity"`
}
