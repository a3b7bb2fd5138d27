// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Physics   PhysicsConfig   `yaml:"physics"`
	Placement PlacementConfig `yaml:"placement"`
	Villagers VillagerConfig  `yaml:"villagers"`
	Resources ResourcesConfig `yaml:"resources"`
	Buildings BuildingsConfig `yaml:"buildings"`
	Planets   []PlanetConfig  `yaml:"planets"`
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// PhysicsConfig holds simulation timing parameters.
type PhysicsConfig struct {
	DT float64 `yaml:"dt"`
}

// PlacementConfig holds surface placement parameters.
type PlacementConfig struct {
	MaxTries        int     `yaml:"max_tries"`        // random placement samples before giving up
	AttachThreshold float32 `yaml:"attach_threshold"` // world units from a surface a point may snap from
	SurfaceSink     float32 `yaml:"surface_sink"`     // how far sprites sit below the surface
}

// VillagerConfig holds villager movement, work and spawning parameters.
// Speeds are in degrees per second, times in seconds.
type VillagerConfig struct {
	Width              float32 `yaml:"width"`
	WanderSpeed        float32 `yaml:"wander_speed"`
	WorkSpeed          float32 `yaml:"work_speed"`
	WanderRange        float32 `yaml:"wander_range"`
	WaitMin            float32 `yaml:"wait_min"`
	WaitMax            float32 `yaml:"wait_max"`
	WorkOffset         float32 `yaml:"work_offset"`
	ProductionInterval float32 `yaml:"production_interval"`
	FoodCost           uint32  `yaml:"food_cost"`
	SpawnInterval      float32 `yaml:"spawn_interval"`
	Initial            int     `yaml:"initial"`
}

// NaturalConfig describes a kind of harvestable resource.
type NaturalConfig struct {
	Width      float32 `yaml:"width"`
	Amount     uint32  `yaml:"amount"`
	MaxWorkers uint32  `yaml:"max_workers"`
}

// ResourcesConfig holds natural resource parameters.
type ResourcesConfig struct {
	Tree NaturalConfig `yaml:"tree"`
	Bush NaturalConfig `yaml:"bush"`
}

// BuildingConfig describes a constructible structure.
// Cost and Initial map resource names ("food", "wood") to amounts.
type BuildingConfig struct {
	Width      float32           `yaml:"width"`
	Cost       map[string]uint32 `yaml:"cost"`
	Initial    map[string]uint32 `yaml:"initial"`
	Range      float32           `yaml:"range"`
	MaxWorkers uint32            `yaml:"max_workers"`
}

// BuildingsConfig holds per-building parameters.
type BuildingsConfig struct {
	Stockpile BuildingConfig `yaml:"stockpile"`
	Sawmill   BuildingConfig `yaml:"sawmill"`
}

// WaterConfig is a water arc on a planet surface.
type WaterConfig struct {
	Angle float32 `yaml:"angle"`
	Width float32 `yaml:"width"`
}

// PlanetConfig describes one planet and what is scattered on it at setup.
type PlanetConfig struct {
	Name    string        `yaml:"name"`
	X       float64       `yaml:"x"`
	Y       float64       `yaml:"y"`
	Radius  float32       `yaml:"radius"`
	Main    bool          `yaml:"main"`
	Waters  []WaterConfig `yaml:"waters"`
	Trees   int           `yaml:"trees"`
	Bushes  int           `yaml:"bushes"`
	Sawmill bool          `yaml:"sawmill"`
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow float64 `yaml:"stats_window"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	DT32              float32 // Physics.DT as float32
	StatsWindowTicks  int     // Telemetry.StatsWindow in ticks
	MainPlanet        int     // index into Planets, -1 if none
	SpawnIntervalTick int     // Villagers.SpawnInterval in ticks
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	// Start with embedded defaults
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	// Load user config if provided
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Finalize(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Finalize validates c and recomputes derived values. Call it after changing
// fields on a loaded config.
func (c *Config) Finalize() error {
	if err := c.validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// Clone returns a deep copy of c.
func (c *Config) Clone() *Config {
	out := *c
	out.Buildings.Stockpile = c.Buildings.Stockpile.clone()
	out.Buildings.Sawmill = c.Buildings.Sawmill.clone()
	out.Planets = make([]PlanetConfig, len(c.Planets))
	for i, p := range c.Planets {
		p.Waters = append([]WaterConfig(nil), p.Waters...)
		out.Planets[i] = p
	}
	return &out
}

func (b BuildingConfig) clone() BuildingConfig {
	b.Cost = cloneTable(b.Cost)
	b.Initial = cloneTable(b.Initial)
	return b
}

func cloneTable(m map[string]uint32) map[string]uint32 {
	if m == nil {
		return nil
	}
	out := make(map[string]uint32, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// validate rejects values the simulation cannot run with.
func (c *Config) validate() error {
	if c.Physics.DT <= 0 {
		return fmt.Errorf("physics.dt must be positive, got %v", c.Physics.DT)
	}
	if c.Placement.MaxTries < 1 {
		return fmt.Errorf("placement.max_tries must be at least 1, got %d", c.Placement.MaxTries)
	}
	if c.Villagers.WaitMax < c.Villagers.WaitMin {
		return fmt.Errorf("villagers.wait_max (%v) is below wait_min (%v)", c.Villagers.WaitMax, c.Villagers.WaitMin)
	}
	mains := 0
	for i, p := range c.Planets {
		if p.Radius <= 0 {
			return fmt.Errorf("planets[%d] %q: radius must be positive", i, p.Name)
		}
		if p.Main {
			mains++
		}
	}
	if mains > 1 {
		return fmt.Errorf("at most one planet may be main, got %d", mains)
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.DT32 = float32(c.Physics.DT)
	c.Derived.StatsWindowTicks = max(1, int(math.Round(c.Telemetry.StatsWindow/c.Physics.DT)))
	c.Derived.SpawnIntervalTick = max(1, int(math.Round(float64(c.Villagers.SpawnInterval)/c.Physics.DT)))

	// The first planet is main when none is marked
	c.Derived.MainPlanet = -1
	for i, p := range c.Planets {
		if p.Main {
			c.Derived.MainPlanet = i
		}
	}
	if c.Derived.MainPlanet < 0 && len(c.Planets) > 0 {
		c.Derived.MainPlanet = 0
	}
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := c.YAML()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

// YAML returns the configuration as YAML bytes.
func (c *Config) YAML() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshaling config: %w", err)
	}
	return data, nil
}
