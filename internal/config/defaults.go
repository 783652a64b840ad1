package config

import (
	_ "embed"
)

//go:embed defaults/sharkdash.yaml
var defaultYAML []byte

// Default returns the built-in configuration, used when no YAML is found
// anywhere and as the last-resort fallback if the embedded file fails to
// parse.
func Default() Config {
	return Config{
		Canvas: CanvasConfig{
			Width:  500,
			Height: 720,
		},
		Physics: PhysicsConfig{
			Gravity:      1.2,
			JumpImpulse:  -10.0,
			MaxFallSpeed: 4.0,
			ScrollSpeed:  2.0,
		},
		Obstacles: ObstacleConfig{
			Width:      50,
			GapHeight:  150,
			Spacing:    300,
			EdgeMargin: 50,
		},
		Session: SessionConfig{
			TickRate:         60,
			PositionInterval: 3,
		},
	}
}
