// Package config provides YAML-based tuning for the sharkdash game and
// server, with embedded defaults so the binary runs without any file on
// disk.
package config

// Config is the root configuration.
type Config struct {
	Canvas    CanvasConfig   `yaml:"canvas"`
	Physics   PhysicsConfig  `yaml:"physics"`
	Obstacles ObstacleConfig `yaml:"obstacles"`
	Session   SessionConfig  `yaml:"session"`
}

// CanvasConfig defines the playfield dimensions in pixels.
type CanvasConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

// PhysicsConfig defines the local simulation's physics parameters.
type PhysicsConfig struct {
	Gravity      float64 `yaml:"gravity"`        // Downward acceleration per tick
	JumpImpulse  float64 `yaml:"jump_impulse"`   // Velocity set on jump (negative = up)
	MaxFallSpeed float64 `yaml:"max_fall_speed"` // Terminal velocity
	ScrollSpeed  float64 `yaml:"scroll_speed"`   // Obstacle movement per tick
}

// ObstacleConfig defines obstacle geometry.
type ObstacleConfig struct {
	Width      float64 `yaml:"width"`       // Horizontal size of a pillar pair
	GapHeight  float64 `yaml:"gap_height"`  // Passable gap between top and bottom
	Spacing    float64 `yaml:"spacing"`     // Horizontal distance between pairs
	EdgeMargin float64 `yaml:"edge_margin"` // Gap keeps this far from floor and ceiling
}

// SessionConfig defines timing for the simulation and its server sync.
type SessionConfig struct {
	TickRate         int `yaml:"tick_rate"`         // Simulation ticks per second
	PositionInterval int `yaml:"position_interval"` // Push position every N ticks
}

// SpriteWidth and SpriteHeight are the player hitbox dimensions. They are
// part of the collision contract between clients, so they are constants
// rather than tunables.
const (
	SpriteWidth  = 70.0
	SpriteHeight = 50.0
)
