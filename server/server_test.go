package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"testing"
	"time"

	"github.com/edginaround/worldcore/engine"
	"github.com/edginaround/worldcore/engine/catalog"
	"github.com/edginaround/worldcore/engine/gateway"
	"github.com/edginaround/worldcore/sim"
	"github.com/edginaround/worldcore/sim/geometry"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free port: %v", err)
	}
	addr := l.Addr().String()
	l.Close()
	return addr
}

func freeUDPAddr(t *testing.T) string {
	t.Helper()
	c, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("find free udp port: %v", err)
	}
	addr := c.LocalAddr().String()
	c.Close()
	return addr
}

func startTestServer(t *testing.T) (tcpAddr, udpAddr string) {
	t.Helper()

	st := sim.NewState(geometry.NewFlatElevation(1000), nil)
	encoder := NewJSONActionEncoder()
	gw := gateway.NewConnGateway(encoder)
	scheduler := engine.NewScheduler()
	eng := engine.New(st, gw, scheduler, catalog.NewDefault())

	tcpAddr = freeAddr(t)
	udpAddr = freeUDPAddr(t)

	srv := New(Config{
		TCPAddr:          tcpAddr,
		UDPBroadcastAddr: udpAddr,
		ConnectionRate:   1000,
	}, eng, gw)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Run(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	// give the listeners a moment to bind
	time.Sleep(20 * time.Millisecond)
	return tcpAddr, udpAddr
}

func TestServerAcceptsConnectionAndDeliversInitialActions(t *testing.T) {
	tcpAddr, _ := startTestServer(t)

	conn, err := net.Dial("tcp", tcpAddr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	reader := bufio.NewReader(conn)

	sawCreation := false
	for i := 0; i < 5; i++ {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		var envelope struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal([]byte(line), &envelope); err == nil && envelope.Kind == "sim.ActorCreationAction" {
			sawCreation = true
			break
		}
	}
	if !sawCreation {
		t.Fatalf("expected an ActorCreationAction to be delivered on connect")
	}
}

func TestServerRespondsToDiscoveryBroadcast(t *testing.T) {
	_, udpAddr := startTestServer(t)

	conn, err := net.Dial("udp", udpAddr)
	if err != nil {
		t.Fatalf("dial udp: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("discover")); err != nil {
		t.Fatalf("write: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 512)
	n, err := conn.Read(buf)
	if err != nil {
		t.Fatalf("read reply: %v", err)
	}

	var reply struct {
		Name    string `json:"name"`
		Version string `json:"version"`
	}
	if err := json.Unmarshal(buf[:n], &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	if reply.Name != DiscoveryName {
		t.Errorf("got name %q, want %q", reply.Name, DiscoveryName)
	}
}

func TestServerProcessesMotionMoveFromClient(t *testing.T) {
	tcpAddr, _ := startTestServer(t)

	conn, err := net.Dial("tcp", tcpAddr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(`{"kind":"motion_start","bearing":0}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}

	// give the server goroutine a moment to process the move; absence of a
	// crash or dropped connection is the behavior under test here, since the
	// resulting MotionAction broadcast is timing-sensitive to assert on.
	time.Sleep(50 * time.Millisecond)

	if _, err := conn.Write([]byte(`{"kind":"motion_stop"}` + "\n")); err != nil {
		t.Fatalf("write: %v", err)
	}
}
