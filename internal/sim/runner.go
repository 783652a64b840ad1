// Package sim runs the client-local fixed-tick physics simulation: gravity
// and jump impulses on the local sprite, obstacle scrolling, and collision
// detection. It is authoritative for nothing but the local run; positions
// are pushed to the session host for remote rendering, and the first
// terminal collision is reported as a loss with the final score.
package sim

import (
	"context"
	"sync"
	"time"

	"github.com/tidepool-arcade/sharkdash/internal/config"
)

// Reporter is the narrow slice of the client session mirror the simulation
// needs: periodic position sync and the one-shot loss report.
type Reporter interface {
	SetPosition(y float64) error
	ReportLoss(score int) error
}

// Runner owns one local simulation run. Step is pure and deterministic for
// a given seed and input sequence; Run wraps it in a wall-clock ticker.
type Runner struct {
	cfg      config.Config
	reporter Reporter
	field    *ObstacleField

	mu       sync.Mutex
	jumpHeld bool

	spriteX  float64
	spriteY  float64
	velocity float64
	score    int
	tick     int
	over     bool
}

// NewRunner creates a run with the sprite centered vertically, like every
// fresh round.
func NewRunner(cfg config.Config, seed int64, reporter Reporter) *Runner {
	return &Runner{
		cfg:      cfg,
		reporter: reporter,
		field:    NewObstacleField(seed, cfg.Canvas, cfg.Obstacles),
		spriteX:  cfg.Canvas.Width / 4,
		spriteY:  cfg.Canvas.Height / 2,
	}
}

// Jump queues a jump impulse for the next tick. Safe to call from the
// input goroutine while the loop runs.
func (r *Runner) Jump() {
	r.mu.Lock()
	r.jumpHeld = true
	r.mu.Unlock()
}

// Score returns the current score.
func (r *Runner) Score() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.score
}

// Over reports whether the run hit a terminal collision.
func (r *Runner) Over() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.over
}

// SpriteY returns the sprite's current vertical offset.
func (r *Runner) SpriteY() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.spriteY
}

// NextGapCenter returns the vertical center of the gap in the nearest
// pillar pair the sprite has not yet cleared, or false when none is live.
func (r *Runner) NextGapCenter() (float64, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.field.Pillars() {
		if p.X+r.cfg.Obstacles.Width >= r.spriteX {
			return p.GapY + r.cfg.Obstacles.GapHeight/2, true
		}
	}
	return 0, false
}

// Step advances the simulation one tick. Once the run is over, further
// steps do nothing; the loss has already been reported exactly once.
func (r *Runner) Step() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.over {
		return
	}
	r.tick++

	if r.jumpHeld {
		r.velocity = r.cfg.Physics.JumpImpulse
		r.jumpHeld = false
	}
	r.velocity += r.cfg.Physics.Gravity
	if r.velocity > r.cfg.Physics.MaxFallSpeed {
		r.velocity = r.cfg.Physics.MaxFallSpeed
	}
	r.spriteY += r.velocity
	if r.spriteY < 0 {
		r.spriteY = 0
		r.velocity = 0
	}

	r.score += r.field.Advance(r.cfg.Physics.ScrollSpeed, r.spriteX+config.SpriteWidth)

	sprite := Rect{X: r.spriteX, Y: r.spriteY, W: config.SpriteWidth, H: config.SpriteHeight}
	floor := r.spriteY+config.SpriteHeight >= r.cfg.Canvas.Height
	if floor || r.field.Collides(sprite) {
		if floor {
			r.spriteY = r.cfg.Canvas.Height - config.SpriteHeight
		}
		r.over = true
		// Freeze first, then report: a failed report must not unfreeze
		// or double-fire.
		if r.reporter != nil {
			_ = r.reporter.ReportLoss(r.score)
		}
		return
	}

	if r.reporter != nil && r.tick%r.positionInterval() == 0 {
		_ = r.reporter.SetPosition(r.spriteY)
	}
}

func (r *Runner) positionInterval() int {
	if r.cfg.Session.PositionInterval < 1 {
		return 1
	}
	return r.cfg.Session.PositionInterval
}

// Run drives Step at the configured tick rate until the run ends or the
// context is cancelled.
func (r *Runner) Run(ctx context.Context) {
	rate := r.cfg.Session.TickRate
	if rate < 1 {
		rate = 60
	}
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Step()
			if r.Over() {
				return
			}
		}
	}
}
