package gateway

import (
	"testing"

	"github.com/edginaround/worldcore/sim"
)

func TestNullGatewayDiscardsEverything(t *testing.T) {
	g := NewNullGateway()
	g.AssociateActor(1, 2)
	g.DisassociateActor(2)
	g.SendAction(2, sim.IdleAction{ActorID_: 2})
	g.BroadcastAction(sim.IdleAction{ActorID_: 2})
	// nothing to assert: the point is that none of this panics
}

func TestBufferedGatewayCapturesSendAndBroadcastSeparately(t *testing.T) {
	g := NewBufferedGateway()

	g.SendAction(1, sim.IdleAction{ActorID_: 1})
	g.BroadcastAction(sim.IdleAction{ActorID_: 2})

	if got := len(g.Actions()); got != 2 {
		t.Fatalf("got %d total actions, want 2", got)
	}
	if got := len(g.ActionsFor(1)); got != 1 {
		t.Fatalf("got %d actions addressed to actor 1, want 1", got)
	}
	if got := len(g.ActionsFor(2)); got != 0 {
		t.Fatalf("got %d actions addressed to actor 2, want 0 (it was only broadcast to)", got)
	}
}

func TestBufferedGatewayClearResetsRecords(t *testing.T) {
	g := NewBufferedGateway()
	g.BroadcastAction(sim.IdleAction{ActorID_: 1})
	g.Clear()

	if got := len(g.Actions()); got != 0 {
		t.Fatalf("got %d actions after Clear, want 0", got)
	}
}

func TestTeeGatewayForwardsToPrimaryAndObservers(t *testing.T) {
	primary := NewBufferedGateway()
	observerA := NewBufferedGateway()
	observerB := NewBufferedGateway()
	tee := NewTeeGateway(primary, observerA, observerB)

	tee.AssociateActor(10, 1)
	tee.SendAction(1, sim.IdleAction{ActorID_: 1})
	tee.BroadcastAction(sim.IdleAction{ActorID_: 2})
	tee.DisassociateActor(1)

	for name, g := range map[string]*BufferedGateway{"primary": primary, "observerA": observerA, "observerB": observerB} {
		if got := len(g.Actions()); got != 2 {
			t.Errorf("%s: got %d actions, want 2", name, got)
		}
	}
}

func TestTeeGatewayWithNoObserversStillDeliversToPrimary(t *testing.T) {
	primary := NewBufferedGateway()
	tee := NewTeeGateway(primary)

	tee.BroadcastAction(sim.IdleAction{ActorID_: 1})

	if got := len(primary.Actions()); got != 1 {
		t.Fatalf("got %d actions, want 1", got)
	}
}
