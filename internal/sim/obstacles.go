package sim

import (
	"math/rand"

	"github.com/tidepool-arcade/sharkdash/internal/config"
)

// Rect is an axis-aligned bounding box used for collision detection.
type Rect struct {
	X, Y, W, H float64
}

// Intersects reports whether two boxes overlap.
func (r Rect) Intersects(o Rect) bool {
	if r.X >= o.X+o.W || o.X >= r.X+r.W {
		return false
	}
	if r.Y >= o.Y+o.H || o.Y >= r.Y+r.H {
		return false
	}
	return true
}

// Pillar is a vertical obstacle pair with a gap for the player to pass
// through.
type Pillar struct {
	X      float64 // Left edge
	GapY   float64 // Where the gap starts (top of gap)
	Passed bool    // Whether the player already scored on this pillar
}

// TopRect returns the collision box of the upper section.
func (p Pillar) TopRect(cfg config.ObstacleConfig) Rect {
	return Rect{X: p.X, Y: 0, W: cfg.Width, H: p.GapY}
}

// BottomRect returns the collision box of the lower section.
func (p Pillar) BottomRect(cfg config.ObstacleConfig, canvasHeight float64) Rect {
	bottom := p.GapY + cfg.GapHeight
	return Rect{X: p.X, Y: bottom, W: cfg.Width, H: canvasHeight - bottom}
}

// ObstacleField handles spawning, movement, and removal of pillars. Gap
// placement is drawn uniformly at random within bounds that keep the gap
// at least EdgeMargin away from floor and ceiling.
type ObstacleField struct {
	pillars      []Pillar
	rng          *rand.Rand
	cfg          config.ObstacleConfig
	canvasWidth  float64
	canvasHeight float64
}

// NewObstacleField creates a field seeded for deterministic replays.
func NewObstacleField(seed int64, canvas config.CanvasConfig, cfg config.ObstacleConfig) *ObstacleField {
	f := &ObstacleField{
		pillars:      make([]Pillar, 0, 8),
		cfg:          cfg,
		canvasWidth:  canvas.Width,
		canvasHeight: canvas.Height,
	}
	f.Reset(seed)
	return f
}

// Reset clears all pillars and reseeds the RNG.
func (f *ObstacleField) Reset(seed int64) {
	f.pillars = f.pillars[:0]
	f.rng = rand.New(rand.NewSource(seed))
}

// Advance moves pillars left by speed, drops the ones off the left edge,
// spawns a new one when the spacing allows, and returns how many pillars
// the player passed this tick (for scoring).
func (f *ObstacleField) Advance(speed, playerRight float64) int {
	passed := 0

	for i := range f.pillars {
		f.pillars[i].X -= speed
		if !f.pillars[i].Passed && f.pillars[i].X+f.cfg.Width < playerRight {
			f.pillars[i].Passed = true
			passed++
		}
	}

	live := f.pillars[:0]
	for _, p := range f.pillars {
		if p.X+f.cfg.Width > 0 {
			live = append(live, p)
		}
	}
	f.pillars = live

	if len(f.pillars) == 0 || f.pillars[len(f.pillars)-1].X < f.canvasWidth-f.cfg.Spacing {
		f.spawn()
	}

	return passed
}

// spawn places a new pillar at the right edge of the canvas.
func (f *ObstacleField) spawn() {
	minGapY := f.cfg.EdgeMargin
	maxGapY := f.canvasHeight - f.cfg.EdgeMargin - f.cfg.GapHeight
	if maxGapY < minGapY {
		maxGapY = minGapY
	}

	gapY := minGapY
	if maxGapY > minGapY {
		gapY = minGapY + f.rng.Float64()*(maxGapY-minGapY)
	}

	f.pillars = append(f.pillars, Pillar{X: f.canvasWidth, GapY: gapY})
}

// Pillars returns the live pillars, nearest first.
func (f *ObstacleField) Pillars() []Pillar {
	return f.pillars
}

// Collides tests the player box against every pillar section.
func (f *ObstacleField) Collides(player Rect) bool {
	for _, p := range f.pillars {
		if player.Intersects(p.TopRect(f.cfg)) || player.Intersects(p.BottomRect(f.cfg, f.canvasHeight)) {
			return true
		}
	}
	return false
}
