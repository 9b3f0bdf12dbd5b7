// Package config loads the process-level configuration a worldcore
// deployment needs beyond an Engine's in-process Options: listen ports,
// world sphere radius, tick intervals, and the recipe-catalog path.
package config

import (
	"fmt"
	"os"
	"time"

	yaml "go.yaml.in/yaml/v2"
)

// Config is the top-level process configuration, unmarshaled from a single
// YAML document.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	World   WorldConfig   `yaml:"world"`
	Catalog CatalogConfig `yaml:"catalog"`
}

// ServerConfig holds the network-facing settings.
type ServerConfig struct {
	TCPPort          int      `yaml:"tcp_port"`
	UDPBroadcastPort int      `yaml:"udp_broadcast_port"`
	ConnectionRate   float64  `yaml:"connection_rate_per_sec"`
	ReadTimeout      Duration `yaml:"read_timeout"`
}

// WorldConfig holds the simulated world's shape and tick behavior.
type WorldConfig struct {
	SphereRadius        float64  `yaml:"sphere_radius"`
	HungerDrainInterval Duration `yaml:"hunger_drain_interval"`
}

// Duration wraps time.Duration so it can be written as "30s"/"1m" in YAML
// instead of a raw nanosecond count.
type Duration time.Duration

// UnmarshalYAML parses a duration string via time.ParseDuration.
func (d *Duration) UnmarshalYAML(unmarshal func(any) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("config: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// CatalogConfig points at the recipe-catalog data file.
type CatalogConfig struct {
	RecipesPath string `yaml:"recipes_path"`
}

// Default returns the configuration a deployment gets with no file at all.
// Its one-minute hunger-drain interval differs from the one-second interval
// HungerDrainJob uses when an Engine is built without WithHungerDrainInterval.
func Default() Config {
	return Config{
		Server: ServerConfig{
			TCPPort:          8222,
			UDPBroadcastPort: 8223,
			ConnectionRate:   20,
			ReadTimeout:      Duration(30 * time.Second),
		},
		World: WorldConfig{
			SphereRadius:        1000,
			HungerDrainInterval: Duration(time.Minute),
		},
	}
}

// Load reads and parses a YAML configuration file at path, starting from
// Default so a partial file only overrides the fields it names.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
