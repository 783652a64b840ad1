// Package game implements the authoritative session state machine for the
// sharkdash obstacle-avoidance minigame. It contains pure transition logic
// with no I/O, timers, or external dependencies, so the engine stays
// deterministic and trivially testable.
package game

// Canvas and skin constants shared with the client simulation.
const (
	// DefaultCanvasHeight is the playfield height in pixels. It is carried
	// in SessionState so snapshots are self-describing for bounds checks.
	DefaultCanvasHeight = 720.0

	// DefaultCanvasWidth is the playfield width in pixels.
	DefaultCanvasWidth = 500.0

	// DefaultSkin is used when a player never picked a skin, or picked the
	// empty one.
	DefaultSkin = "skins/sillyshark.png"
)

// Status describes where a session is in its lifecycle.
type Status int

const (
	// StatusWaitingToStart is the initial state: players may join, leave,
	// ready up, and pick skins.
	StatusWaitingToStart Status = iota

	// StatusSinglePlayer is a solo run in progress.
	StatusSinglePlayer

	// StatusMultiPlayer is a two-player match in progress.
	StatusMultiPlayer

	// StatusOver marks a concluded session. In practice a terminal outcome
	// is usually signaled by Winner being set while the status stays in an
	// in-progress variant; see SessionState.Finished.
	StatusOver
)

// String returns a human-readable name for the status.
func (s Status) String() string {
	switch s {
	case StatusWaitingToStart:
		return "WaitingToStart"
	case StatusSinglePlayer:
		return "SinglePlayerInProgress"
	case StatusMultiPlayer:
		return "MultiPlayerInProgress"
	case StatusOver:
		return "Over"
	default:
		return "Unknown"
	}
}

// InProgress reports whether the status is one of the in-progress variants.
func (s Status) InProgress() bool {
	return s == StatusSinglePlayer || s == StatusMultiPlayer
}

// SessionState is the complete record of one game instance. The engine
// replaces it wholesale on every transition; callers only ever see copies,
// never the engine's own value, so a held snapshot can never be mutated
// from under a client.
type SessionState struct {
	Status Status

	// Player1 and Player2 are slot assignments holding globally unique
	// participant ids. An empty string means the slot is free.
	Player1 string
	Player2 string

	// Ready, Skins, Positions, Scores and Lost are keyed by participant
	// id. Their keys are a subset of the currently seated participants;
	// entries are pruned when a participant departs.
	Ready     map[string]bool
	Skins     map[string]string
	Positions map[string]float64
	Scores    map[string]int
	Lost      map[string]bool

	// Winner is the participant id of the decided winner, or empty while
	// undecided (and for ties). Once set it is never recomputed.
	Winner string

	// CanvasHeight is the vertical bound for position updates.
	CanvasHeight float64
}

// newSessionState returns the fresh all-defaults state used both at engine
// creation and after a full reset.
func newSessionState(canvasHeight float64) SessionState {
	return SessionState{
		Status:       StatusWaitingToStart,
		Ready:        make(map[string]bool),
		Skins:        make(map[string]string),
		Positions:    make(map[string]float64),
		Scores:       make(map[string]int),
		Lost:         make(map[string]bool),
		CanvasHeight: canvasHeight,
	}
}

// Clone returns a deep copy safe to hand to subscribers.
func (s SessionState) Clone() SessionState {
	c := s
	c.Ready = copyMap(s.Ready)
	c.Skins = copyMap(s.Skins)
	c.Positions = copyMap(s.Positions)
	c.Scores = copyMap(s.Scores)
	c.Lost = copyMap(s.Lost)
	return c
}

// Players returns the seated participant ids in slot order.
func (s SessionState) Players() []string {
	ids := make([]string, 0, 2)
	if s.Player1 != "" {
		ids = append(ids, s.Player1)
	}
	if s.Player2 != "" {
		ids = append(ids, s.Player2)
	}
	return ids
}

// Seated reports whether the participant occupies a slot.
func (s SessionState) Seated(id string) bool {
	return id != "" && (s.Player1 == id || s.Player2 == id)
}

// ReadyCount returns how many seated participants have readied up.
func (s SessionState) ReadyCount() int {
	n := 0
	for _, ok := range s.Ready {
		if ok {
			n++
		}
	}
	return n
}

// Finished reports whether the session reached a terminal outcome, either
// through an explicit status flip or a decided winner.
func (s SessionState) Finished() bool {
	return s.Status == StatusOver || s.Winner != ""
}

// Skin returns the participant's chosen skin, falling back to the default.
func (s SessionState) Skin(id string) string {
	if skin, ok := s.Skins[id]; ok && skin != "" {
		return skin
	}
	return DefaultSkin
}

func copyMap[K comparable, V any](m map[K]V) map[K]V {
	c := make(map[K]V, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Skins lists the skin references players can pick from. The first entry
// is the default.
func Skins() []string {
	return []string{
		DefaultSkin,
		"skins/shark_blue.png",
		"skins/shark_red.png",
		"skins/shark_gold.png",
	}
}
