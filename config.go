package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// World shape policies for boundary clamping
const (
	ShapeCircle = "circle"
	ShapeRect   = "rect"
)

// Config holds the gameplay tunables loaded from tuning.yaml.
// Zero-value fields fall back to defaults so a partial file is fine.
type Config struct {
	TickRateHz  int     `yaml:"tick_rate_hz"`
	WorldShape  string  `yaml:"world_shape"`
	MapRadius   float64 `yaml:"map_radius"`
	WorldWidth  float64 `yaml:"world_width"`
	WorldHeight float64 `yaml:"world_height"`

	InventorySize int `yaml:"inventory_size"`
	HotbarSize    int `yaml:"hotbar_size"`

	// Target live mob count per rarity tier
	MobPopulation map[string]int `yaml:"mob_population"`

	ChatMaxLen    int `yaml:"chat_max_len"`
	ChatPerMinute int `yaml:"chat_per_minute"`
	MaxConnsPerIP int `yaml:"max_conns_per_ip"`
	MaxTotalConns int `yaml:"max_total_conns"`
}

// DefaultConfig returns the built-in tuning values
func DefaultConfig() Config {
	return Config{
		TickRateHz:    20,
		WorldShape:    ShapeCircle,
		MapRadius:     1200,
		WorldWidth:    2400,
		WorldHeight:   2400,
		InventorySize: 10,
		HotbarSize:    5,
		MobPopulation: map[string]int{
			"common":    10,
			"uncommon":  6,
			"rare":      4,
			"epic":      2,
			"legendary": 1,
			"mythic":    0,
		},
		ChatMaxLen:    200,
		ChatPerMinute: 20,
		MaxConnsPerIP: 5,
		MaxTotalConns: 1000,
	}
}

// LoadConfig reads a YAML tuning file and overlays it on the defaults.
// A missing path returns the defaults without error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return cfg, fmt.Errorf("tuning.yaml: %w", err)
	}
	cfg.overlay(file)
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) overlay(o Config) {
	if o.TickRateHz > 0 {
		c.TickRateHz = o.TickRateHz
	}
	if o.WorldShape != "" {
		c.WorldShape = o.WorldShape
	}
	if o.MapRadius > 0 {
		c.MapRadius = o.MapRadius
	}
	if o.WorldWidth > 0 {
		c.WorldWidth = o.WorldWidth
	}
	if o.WorldHeight > 0 {
		c.WorldHeight = o.WorldHeight
	}
	if o.InventorySize > 0 {
		c.InventorySize = o.InventorySize
	}
	if o.HotbarSize > 0 {
		c.HotbarSize = o.HotbarSize
	}
	if o.MobPopulation != nil {
		c.MobPopulation = o.MobPopulation
	}
	if o.ChatMaxLen > 0 {
		c.ChatMaxLen = o.ChatMaxLen
	}
	if o.ChatPerMinute > 0 {
		c.ChatPerMinute = o.ChatPerMinute
	}
	if o.MaxConnsPerIP > 0 {
		c.MaxConnsPerIP = o.MaxConnsPerIP
	}
	if o.MaxTotalConns > 0 {
		c.MaxTotalConns = o.MaxTotalConns
	}
}

func (c Config) validate() error {
	if c.WorldShape != ShapeCircle && c.WorldShape != ShapeRect {
		return fmt.Errorf("world_shape must be %q or %q, got %q", ShapeCircle, ShapeRect, c.WorldShape)
	}
	for rarity := range c.MobPopulation {
		if _, ok := ParseRarity(rarity); !ok {
			return fmt.Errorf("mob_population: unknown rarity %q", rarity)
		}
	}
	return nil
}

// Bounds returns the world extents the spatial grid has to cover.
// Circular worlds are centered at (MapRadius, MapRadius).
func (c Config) Bounds() (w, h float64) {
	if c.WorldShape == ShapeCircle {
		return c.MapRadius * 2, c.MapRadius * 2
	}
	return c.WorldWidth, c.WorldHeight
}
