// Package server is the network glue binding an Engine to the outside
// world: a TCP accept loop decoding framed Moves into Events, and a UDP
// broadcast responder for LAN discovery. Ported from the source's
// harbour.py (EventAcceptor/EventListener/ServerBroadcaster) and
// utils.SocketProcessor's framing.
package server

import (
	"context"
	"fmt"
	"log"
	"math"
	"net"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/edginaround/worldcore/engine"
	"github.com/edginaround/worldcore/engine/gateway"
	"github.com/edginaround/worldcore/sim"
	"github.com/edginaround/worldcore/sim/geometry"
)

// DiscoveryName and DiscoveryVersion identify this server to a UDP
// broadcast probe, mirroring the source's {"name": "edgin_around",
// "version": defs.VERSION} reply.
const (
	DiscoveryName    = "edgin_around"
	DiscoveryVersion = "1"
)

// SpawnPicker chooses where a newly connected hero enters the world.
type SpawnPicker func() geometry.Point

// Config bundles the pieces Server needs beyond the Engine itself.
type Config struct {
	TCPAddr          string
	UDPBroadcastAddr string
	ConnectionRate   float64 // moves/sec a single connection may submit before throttling
	Decoder          MoveDecoder
	Spawn            SpawnPicker
}

// Server wires a TCP accept loop and a UDP discovery responder to an
// Engine/ConnGateway pair, the Go counterpart of harbour.Harbour plus
// server.Server's top-level wiring.
type Server struct {
	cfg     Config
	engine  *engine.Engine
	gateway *gateway.ConnGateway

	clientSeq atomic.Int64

	mu        sync.Mutex
	listeners []net.Listener
	conns     net.PacketConn
}

// New builds a Server. eng and gw must already be wired to each other (gw
// passed as eng's Gateway at construction).
func New(cfg Config, eng *engine.Engine, gw *gateway.ConnGateway) *Server {
	if cfg.Decoder == nil {
		cfg.Decoder = NewJSONMoveDecoder()
	}
	if cfg.Spawn == nil {
		// the equator (Phi=pi/2, Theta=0), where every hero enters the world
		cfg.Spawn = func() geometry.Point { return geometry.Point{Phi: math.Pi / 2} }
	}
	return &Server{cfg: cfg, engine: eng, gateway: gw}
}

// Run starts the TCP accept loop and UDP discovery responder and blocks
// until ctx is cancelled or either goroutine returns an error, the Go
// counterpart of the source's Harbour.start/stop pair collapsed into one
// errgroup-coordinated call.
func (s *Server) Run(ctx context.Context) error {
	tcpListener, err := net.Listen("tcp", s.cfg.TCPAddr)
	if err != nil {
		return fmt.Errorf("server: listen tcp %s: %w", s.cfg.TCPAddr, err)
	}

	udpConn, err := net.ListenPacket("udp", s.cfg.UDPBroadcastAddr)
	if err != nil {
		tcpListener.Close()
		return fmt.Errorf("server: listen udp %s: %w", s.cfg.UDPBroadcastAddr, err)
	}

	s.mu.Lock()
	s.listeners = []net.Listener{tcpListener}
	s.conns = udpConn
	s.mu.Unlock()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return s.acceptLoop(gctx, tcpListener) })
	group.Go(func() error { return s.discoveryLoop(gctx, udpConn) })

	group.Go(func() error {
		<-gctx.Done()
		tcpListener.Close()
		udpConn.Close()
		return nil
	})

	return group.Wait()
}

// acceptLoop accepts TCP connections and spawns a handler goroutine for
// each, the Go counterpart of harbour.EventAcceptor.
func (s *Server) acceptLoop(ctx context.Context, listener net.Listener) error {
	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: accept: %w", err)
		}
		clientID := s.clientSeq.Add(1)
		sessionID := uuid.New().String()
		go s.handleConnection(ctx, clientID, sessionID, conn)
	}
}

// handleConnection is the Go counterpart of harbour.EventListener: frame
// messages off conn, decode each into a Move, convert to an Event, and run
// it through the engine, until the connection reports a clean disconnect or
// errors.
func (s *Server) handleConnection(ctx context.Context, clientID int64, sessionID string, conn net.Conn) {
	log.Printf("server: session=%s client=%d connected from %s", sessionID, clientID, conn.RemoteAddr())

	s.gateway.RegisterConnection(clientID, conn)
	heroID, err := s.engine.HandleConnection(clientID, s.cfg.Spawn())
	if err != nil {
		log.Printf("server: session=%s client=%d: handle connection: %v", sessionID, clientID, err)
		s.gateway.ForgetConnection(clientID)
		conn.Close()
		return
	}

	defer func() {
		s.gateway.ForgetConnection(clientID)
		if err := s.engine.HandleDisconnection(heroID); err != nil {
			log.Printf("server: session=%s client=%d: handle disconnection: %v", sessionID, clientID, err)
		}
		conn.Close()
		log.Printf("server: session=%s client=%d disconnected", sessionID, clientID)
	}()

	limiter := rate.NewLimiter(rate.Limit(s.connectionRate()), 1+int(s.connectionRate()))
	reader := newMessageReader(conn)

	for {
		data, ok := reader.ReadMessage()
		if !ok {
			return
		}
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		move, err := s.cfg.Decoder.Decode(data)
		if err != nil {
			log.Printf("server: session=%s client=%d: decode move: %v", sessionID, clientID, err)
			continue
		}
		event := sim.EventFromMove(heroID, move)
		if event == nil {
			continue
		}
		s.engine.HandleEvent(event)
	}
}

func (s *Server) connectionRate() float64 {
	if s.cfg.ConnectionRate > 0 {
		return s.cfg.ConnectionRate
	}
	return 20
}

// discoveryLoop answers any UDP datagram with a fixed identification
// payload, the Go counterpart of harbour.ServerBroadcaster.
func (s *Server) discoveryLoop(ctx context.Context, conn net.PacketConn) error {
	buf := make([]byte, 512)
	for {
		_, addr, err := conn.ReadFrom(buf)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("server: udp read: %w", err)
		}
		reply := []byte(fmt.Sprintf(`{"name":%q,"version":%q}`, DiscoveryName, DiscoveryVersion))
		if _, err := conn.WriteTo(reply, addr); err != nil {
			log.Printf("server: udp reply to %s: %v", addr, err)
		}
	}
}
