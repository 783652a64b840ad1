// Package arena hosts game sessions: it maps each room to at most one live
// engine instance, routes typed commands to it, and broadcasts a state
// snapshot to the room's subscribers after every successful mutation.
package arena

import (
	"errors"

	"github.com/tidepool-arcade/sharkdash/internal/game"
)

// Command is the tagged union of requests a participant can issue against
// a room. Every command except JoinGame carries the instance id it was
// issued against, guarding clients racing a session replacement.
type Command interface {
	arenaCommand()
}

// JoinGame seats the issuing participant, lazily creating a fresh engine
// when the room has none (or only a finished one). The result carries the
// instance id for all subsequent commands.
type JoinGame struct{}

func (JoinGame) arenaCommand() {}

// LeaveGame removes the issuing participant from the session.
type LeaveGame struct {
	InstanceID string
}

func (LeaveGame) arenaCommand() {}

// SetReady marks the issuing participant ready for a multiplayer start.
type SetReady struct {
	InstanceID string
}

func (SetReady) arenaCommand() {}

// SetSkin stores the issuing participant's skin choice; empty selects the
// default.
type SetSkin struct {
	InstanceID string
	Skin       string
}

func (SetSkin) arenaCommand() {}

// SetPosition pushes the issuing participant's vertical offset.
type SetPosition struct {
	InstanceID string
	Y          float64
}

func (SetPosition) arenaCommand() {}

// UpdateScore pushes the issuing participant's current score.
type UpdateScore struct {
	InstanceID string
	Score      int
}

func (UpdateScore) arenaCommand() {}

// StartGame begins the run: single-player with one seat occupied,
// multiplayer with two. A redundant multiplayer start is a no-op.
type StartGame struct {
	InstanceID string
}

func (StartGame) arenaCommand() {}

// ReportOutcome reports that the issuing participant's run ended with the
// given final score; the other seated participant becomes the winner.
type ReportOutcome struct {
	InstanceID string
	Score      int
}

func (ReportOutcome) arenaCommand() {}

// Result is the success payload of a handled command.
type Result struct {
	// InstanceID identifies the live engine; always set.
	InstanceID string
}

// Snapshot is what subscribers receive after each successful mutation.
type Snapshot struct {
	RoomID     string
	InstanceID string
	State      game.SessionState
}

// Host-level errors. Engine failures pass through unchanged.
var (
	// ErrNoGameInProgress is returned for any non-join command when the
	// room has no live engine.
	ErrNoGameInProgress = errors.New("no game in progress")

	// ErrInstanceMismatch is returned when a command's instance id does
	// not match the room's live engine.
	ErrInstanceMismatch = errors.New("game instance id does not match")

	// ErrUnsupportedCommand is returned for a command kind the host does
	// not know.
	ErrUnsupportedCommand = errors.New("unsupported command")
)
