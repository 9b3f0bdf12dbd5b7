// Package gateway delivers outbound Actions to connected clients. It is
// the Go counterpart of the source's gateway.py: a ClientAssociation
// tracking which actor id belongs to which connection, plus per-actor and
// broadcast delivery. Wire framing itself (how an Action becomes bytes on a
// socket) is the server package's concern; Gateway only decides who
// receives what.
package gateway

import "github.com/edginaround/worldcore/sim"

// Gateway is the Engine's one outbound collaborator: every Action a Job or
// Task produces is routed through it, either to one actor or broadcast to
// everyone currently connected.
type Gateway interface {
	// AssociateActor records that clientID controls actorID, so future
	// SendAction calls addressed to actorID reach that client.
	AssociateActor(clientID int64, actorID sim.EntityId)

	// DisassociateActor forgets an actor's client association, typically
	// called right before the engine handles that actor's disconnection.
	DisassociateActor(actorID sim.EntityId)

	// SendAction delivers action to the single client controlling actorID.
	// A Gateway with no such association silently drops the action,
	// matching the source's best-effort send_action.
	SendAction(actorID sim.EntityId, action sim.Action)

	// BroadcastAction delivers action to every connected client.
	BroadcastAction(action sim.Action)
}

// NullGateway discards every action. Useful for headless simulation runs
// and for tests that only care about State/Task/Job behavior, not delivery.
type NullGateway struct{}

func NewNullGateway() *NullGateway { return &NullGateway{} }

func (NullGateway) AssociateActor(int64, sim.EntityId)  {}
func (NullGateway) DisassociateActor(sim.EntityId)      {}
func (NullGateway) SendAction(sim.EntityId, sim.Action) {}
func (NullGateway) BroadcastAction(sim.Action)          {}

// TeeGateway forwards every call to primary (the real delivery mechanism)
// and to every observer (e.g. a LogGateway), so a deployment can watch
// traffic without changing how it's delivered.
type TeeGateway struct {
	primary   Gateway
	observers []Gateway
}

// NewTeeGateway builds a TeeGateway delivering through primary and mirroring
// every call to observers.
func NewTeeGateway(primary Gateway, observers ...Gateway) *TeeGateway {
	return &TeeGateway{primary: primary, observers: observers}
}

func (g *TeeGateway) AssociateActor(clientID int64, actorID sim.EntityId) {
	g.primary.AssociateActor(clientID, actorID)
	for _, o := range g.observers {
		o.AssociateActor(clientID, actorID)
	}
}

func (g *TeeGateway) DisassociateActor(actorID sim.EntityId) {
	g.primary.DisassociateActor(actorID)
	for _, o := range g.observers {
		o.DisassociateActor(actorID)
	}
}

func (g *TeeGateway) SendAction(actorID sim.EntityId, action sim.Action) {
	g.primary.SendAction(actorID, action)
	for _, o := range g.observers {
		o.SendAction(actorID, action)
	}
}

func (g *TeeGateway) BroadcastAction(action sim.Action) {
	g.primary.BroadcastAction(action)
	for _, o := range g.observers {
		o.BroadcastAction(action)
	}
}
