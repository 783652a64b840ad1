// Package mirror reconciles authoritative session snapshots on the client
// side. Each received snapshot is diffed against the previous one and
// turned into an ordered list of typed change events; the rendering layer
// pattern-matches on those instead of re-deriving state every frame.
package mirror

import "github.com/tidepool-arcade/sharkdash/internal/game"

// Participant is a slot id resolved into a richer identity through the
// surrounding space's directory.
type Participant struct {
	ID   string
	Name string
}

// Directory resolves participant ids to identities. It is owned by the
// surrounding virtual-space session, not by this package.
type Directory interface {
	Resolve(id string) (Participant, bool)
}

// PlayerSkin pairs a resolved participant with their skin reference.
type PlayerSkin struct {
	Player Participant
	Skin   string
}

// PlayerPosition pairs a resolved participant with their vertical offset.
type PlayerPosition struct {
	Player Participant
	Y      float64
}

// Event is one granular change derived from a snapshot diff.
type Event interface {
	mirrorEvent()
}

// PlayersChanged reports a different seated roster (identity and order
// sensitive).
type PlayersChanged struct {
	Players []Participant
}

func (PlayersChanged) mirrorEvent() {}

// ReadyCountChanged reports a different number of readied players.
type ReadyCountChanged struct {
	Count int
}

func (ReadyCountChanged) mirrorEvent() {}

// SkinsChanged reports a different (participant, skin) pairing.
type SkinsChanged struct {
	Skins []PlayerSkin
}

func (SkinsChanged) mirrorEvent() {}

// PositionsChanged reports a different (participant, position) pairing.
type PositionsChanged struct {
	Positions []PlayerPosition
}

func (PositionsChanged) mirrorEvent() {}

// OutcomeDetermined reports the first observation of a decided winner.
type OutcomeDetermined struct {
	Winner Participant
}

func (OutcomeDetermined) mirrorEvent() {}

// SnapshotApplied is emitted on every receipt, after the granular events.
type SnapshotApplied struct {
	State game.SessionState
}

func (SnapshotApplied) mirrorEvent() {}

// GameEnded reports that the session left its in-progress state, whether
// by a decided winner, a full reset, or an explicit status flip.
type GameEnded struct{}

func (GameEnded) mirrorEvent() {}
