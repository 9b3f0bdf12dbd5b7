package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultHasSaneValues(t *testing.T) {
	cfg := Default()

	if cfg.Server.TCPPort == 0 {
		t.Errorf("expected a nonzero default TCP port")
	}
	if cfg.World.SphereRadius <= 0 {
		t.Errorf("expected a positive default sphere radius")
	}
}

func TestLoadOverridesOnlyNamedFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worldcore.yaml")
	doc := "server:\n  tcp_port: 9999\nworld:\n  sphere_radius: 2500\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Server.TCPPort != 9999 {
		t.Errorf("got tcp_port %d, want 9999", cfg.Server.TCPPort)
	}
	if cfg.World.SphereRadius != 2500 {
		t.Errorf("got sphere_radius %v, want 2500", cfg.World.SphereRadius)
	}
	// fields the file didn't mention should keep their Default() value
	if cfg.World.HungerDrainInterval != Duration(time.Minute) {
		t.Errorf("got hunger_drain_interval %v, want the default 1m", cfg.World.HungerDrainInterval)
	}
	if cfg.Server.UDPBroadcastPort != Default().Server.UDPBroadcastPort {
		t.Errorf("got udp_broadcast_port %d, want the default", cfg.Server.UDPBroadcastPort)
	}
}

func TestLoadParsesDurationStrings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worldcore.yaml")
	doc := "world:\n  hunger_drain_interval: 90s\nserver:\n  read_timeout: 5s\n"
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.World.HungerDrainInterval != Duration(90*time.Second) {
		t.Errorf("got hunger_drain_interval %v, want 90s", cfg.World.HungerDrainInterval)
	}
	if cfg.Server.ReadTimeout != Duration(5*time.Second) {
		t.Errorf("got read_timeout %v, want 5s", cfg.Server.ReadTimeout)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	if _, err := Load("/nonexistent/worldcore.yaml"); err == nil {
		t.Fatalf("expected an error loading a nonexistent file")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "worldcore.yaml")
	if err := os.WriteFile(path, []byte("server: [this is not: a map"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("expected an error parsing malformed YAML")
	}
}
