// Command worldcore runs the world simulation server: it loads process
// configuration, builds the recipe catalog, wires the engine to a
// connection-backed gateway, and serves TCP/UDP traffic until interrupted.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/edginaround/worldcore/engine"
	"github.com/edginaround/worldcore/engine/catalog"
	"github.com/edginaround/worldcore/engine/config"
	"github.com/edginaround/worldcore/engine/gateway"
	"github.com/edginaround/worldcore/engine/metrics"
	"github.com/edginaround/worldcore/server"
	"github.com/edginaround/worldcore/sim"
	"github.com/edginaround/worldcore/sim/geometry"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	configPath := flag.String("config", "", "path to a worldcore.yaml config file (defaults built in if omitted)")
	recipesPath := flag.String("recipes", "", "path to a recipe catalog JSON file (built-in catalog if omitted)")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			log.Fatalf("worldcore: %v", err)
		}
		cfg = loaded
	}

	recipeCatalog := catalog.NewDefault()
	if *recipesPath != "" {
		loaded, err := catalog.LoadFile(*recipesPath)
		if err != nil {
			log.Fatalf("worldcore: %v", err)
		}
		recipeCatalog = loaded
	}

	state := sim.NewState(geometry.NewFlatElevation(cfg.World.SphereRadius), nil)
	encoder := server.NewJSONActionEncoder()
	connGateway := gateway.NewConnGateway(encoder)
	// broadcast deliveries go out over the wire and are mirrored to the operator's log
	gw := gateway.Gateway(gateway.NewTeeGateway(connGateway, gateway.NewDefaultLogGateway()))

	promMetrics := metrics.New(prometheus.DefaultRegisterer)

	scheduler := engine.NewScheduler()
	eng := engine.New(state, gw, scheduler, recipeCatalog,
		engine.WithHungerDrainInterval(time.Duration(cfg.World.HungerDrainInterval)),
		engine.WithMetrics(promMetrics),
	)
	runner := engine.NewRunner(eng, scheduler)

	srv := server.New(server.Config{
		TCPAddr:          fmt.Sprintf(":%d", cfg.Server.TCPPort),
		UDPBroadcastAddr: fmt.Sprintf(":%d", cfg.Server.UDPBroadcastPort),
		ConnectionRate:   cfg.Server.ConnectionRate,
	}, eng, connGateway)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, gctx := errgroup.WithContext(ctx)
	group.Go(func() error { return runner.Start(gctx) })
	group.Go(func() error { return srv.Run(gctx) })

	if err := group.Wait(); err != nil && gctx.Err() == nil {
		log.Fatalf("worldcore: %v", err)
	}

	if err := runner.Stop(); err != nil {
		log.Printf("worldcore: runner stop: %v", err)
	}
}
