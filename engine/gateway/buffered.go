package gateway

import (
	"sync"

	"github.com/edginaround/worldcore/sim"
)

// record is one delivery BufferedGateway captured: either addressed (actor
// non-nil) or broadcast (actor nil).
type record struct {
	actor  *sim.EntityId
	action sim.Action
}

// BufferedGateway captures every delivery in memory instead of sending it
// anywhere, mirroring the teacher's BufferedEmitter in graph/emit/buffered.go.
// Development tooling and tests use it to assert on exactly what the engine
// would have sent without standing up a real connection.
type BufferedGateway struct {
	mu      sync.RWMutex
	records []record
}

func NewBufferedGateway() *BufferedGateway { return &BufferedGateway{} }

func (g *BufferedGateway) AssociateActor(int64, sim.EntityId) {}
func (g *BufferedGateway) DisassociateActor(sim.EntityId)     {}

func (g *BufferedGateway) SendAction(actorID sim.EntityId, action sim.Action) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, record{actor: &actorID, action: action})
}

func (g *BufferedGateway) BroadcastAction(action sim.Action) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = append(g.records, record{action: action})
}

// Actions returns every action captured so far, addressed and broadcast
// alike, in delivery order.
func (g *BufferedGateway) Actions() []sim.Action {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]sim.Action, len(g.records))
	for i, r := range g.records {
		out[i] = r.action
	}
	return out
}

// ActionsFor returns only the actions addressed to actorID via SendAction
// (broadcasts are excluded — a caller wanting "everything this actor would
// see" should combine this with Actions()).
func (g *BufferedGateway) ActionsFor(actorID sim.EntityId) []sim.Action {
	g.mu.RLock()
	defer g.mu.RUnlock()
	var out []sim.Action
	for _, r := range g.records {
		if r.actor != nil && *r.actor == actorID {
			out = append(out, r.action)
		}
	}
	return out
}

// Clear discards every captured record.
func (g *BufferedGateway) Clear() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.records = nil
}
