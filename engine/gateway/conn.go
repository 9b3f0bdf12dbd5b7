package gateway

import (
	"net"
	"sync"

	"github.com/edginaround/worldcore/sim"
)

// ActionEncoder turns an Action into wire bytes. The server package owns
// the concrete (JSON-by-default) implementation; ConnGateway only needs
// the contract, so this package never imports server.
type ActionEncoder interface {
	Encode(action sim.Action) ([]byte, error)
}

// ConnGateway is the real delivery mechanism: a ClientAssociation (which
// client's socket controls which actor) plus best-effort writes, ported
// from the source's gateway.py ClientAssociation/Gateway pair. A failed
// write drops that connection's association rather than propagating the
// error, matching the source's broad except-and-disconnect.
type ConnGateway struct {
	mu      sync.Mutex
	encoder ActionEncoder

	conns  map[int64]net.Conn
	actors map[sim.EntityId]int64
}

// NewConnGateway builds a ConnGateway that serializes outbound Actions with
// encoder.
func NewConnGateway(encoder ActionEncoder) *ConnGateway {
	return &ConnGateway{
		encoder: encoder,
		conns:   make(map[int64]net.Conn),
		actors:  make(map[sim.EntityId]int64),
	}
}

// RegisterConnection records the socket backing a newly accepted client,
// before any actor has been associated with it.
func (g *ConnGateway) RegisterConnection(clientID int64, conn net.Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[clientID] = conn
}

// ForgetConnection drops a client's socket and any actor association
// pointing at it, called once its connection is known to be gone.
func (g *ConnGateway) ForgetConnection(clientID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.conns, clientID)
	for actorID, cid := range g.actors {
		if cid == clientID {
			delete(g.actors, actorID)
		}
	}
}

func (g *ConnGateway) AssociateActor(clientID int64, actorID sim.EntityId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.actors[actorID] = clientID
}

func (g *ConnGateway) DisassociateActor(actorID sim.EntityId) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.actors, actorID)
}

func (g *ConnGateway) SendAction(actorID sim.EntityId, action sim.Action) {
	g.mu.Lock()
	defer g.mu.Unlock()

	clientID, ok := g.actors[actorID]
	if !ok {
		return
	}
	conn, ok := g.conns[clientID]
	if !ok {
		return
	}
	g.writeLocked(clientID, conn, action)
}

func (g *ConnGateway) BroadcastAction(action sim.Action) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for clientID, conn := range g.conns {
		g.writeLocked(clientID, conn, action)
	}
}

// writeLocked must be called with g.mu held. A write or encode failure
// drops the connection entirely, mirroring the source's disconnect-on-error
// behavior rather than surfacing an error the Engine has no use for.
func (g *ConnGateway) writeLocked(clientID int64, conn net.Conn, action sim.Action) {
	data, err := g.encoder.Encode(action)
	if err != nil {
		return
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		_ = conn.Close()
		delete(g.conns, clientID)
		for actorID, cid := range g.actors {
			if cid == clientID {
				delete(g.actors, actorID)
			}
		}
	}
}
