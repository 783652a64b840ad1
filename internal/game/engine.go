package game

import "github.com/google/uuid"

// Engine owns the SessionState for one game instance and applies the
// transitions on it. Every operation is synchronous and side-effect-free
// beyond replacing the state: on failure the prior state is left
// completely untouched.
//
// The engine is not safe for concurrent use; the session host serializes
// access per room.
type Engine struct {
	id    string
	state SessionState
}

// NewEngine creates a fresh instance with an empty default state.
// canvasHeight <= 0 falls back to DefaultCanvasHeight.
func NewEngine(canvasHeight float64) *Engine {
	if canvasHeight <= 0 {
		canvasHeight = DefaultCanvasHeight
	}
	return &Engine{
		id:    uuid.NewString(),
		state: newSessionState(canvasHeight),
	}
}

// ID returns the unique instance identifier. Commands carrying a stale id
// are rejected by the session host before they ever reach the engine.
func (e *Engine) ID() string {
	return e.id
}

// State returns a deep copy of the current session state.
func (e *Engine) State() SessionState {
	return e.state.Clone()
}

// Join seats the participant in the first free slot, Player1 preferred.
// The ready flag starts false, and any skin left over from a previous
// occupancy of the same id is cleared.
func (e *Engine) Join(id string) error {
	if e.state.Seated(id) {
		return ErrPlayerAlreadySeated
	}
	if e.state.Player1 != "" && e.state.Player2 != "" {
		return ErrGameFull
	}

	next := e.state.Clone()
	delete(next.Skins, id)
	next.Ready[id] = false
	if next.Player1 == "" {
		next.Player1 = id
	} else {
		next.Player2 = id
	}
	e.state = next
	return nil
}

// Leave removes the participant from their slot.
//
// While waiting to start, the participant's per-player entries are pruned
// and the session keeps waiting. Mid-run, the remaining occupant (if any)
// is declared winner by forfeit while the status stays in progress; once
// both slots are empty the session fully resets to a fresh waiting state.
func (e *Engine) Leave(id string) error {
	if !e.state.Seated(id) {
		return ErrPlayerNotSeated
	}

	next := e.state.Clone()
	if next.Player1 == id {
		next.Player1 = ""
	} else {
		next.Player2 = ""
	}

	switch {
	case e.state.Status == StatusWaitingToStart:
		pruneParticipant(&next, id)
	case e.state.Status.InProgress():
		remaining := next.Player1
		if remaining == "" {
			remaining = next.Player2
		}
		pruneParticipant(&next, id)
		if remaining == "" {
			next = newSessionState(next.CanvasHeight)
		} else if next.Winner == "" {
			next.Winner = remaining
		}
	default: // StatusOver
		pruneParticipant(&next, id)
		if next.Player1 == "" && next.Player2 == "" {
			next = newSessionState(next.CanvasHeight)
		}
	}

	e.state = next
	return nil
}

// pruneParticipant drops every per-player map entry for id. Winner is
// deliberately not touched here so a forfeit survives the departure.
func pruneParticipant(s *SessionState, id string) {
	delete(s.Ready, id)
	delete(s.Skins, id)
	delete(s.Positions, id)
	delete(s.Scores, id)
	delete(s.Lost, id)
}

// SetReady marks the participant as ready. Idempotent.
func (e *Engine) SetReady(id string) error {
	if !e.state.Seated(id) {
		return ErrPlayerNotSeated
	}
	next := e.state.Clone()
	next.Ready[id] = true
	e.state = next
	return nil
}

// SetSkin stores the participant's skin choice; the empty string selects
// the default skin.
func (e *Engine) SetSkin(id, skin string) error {
	if !e.state.Seated(id) {
		return ErrPlayerNotSeated
	}
	if skin == "" {
		skin = DefaultSkin
	}
	next := e.state.Clone()
	next.Skins[id] = skin
	e.state = next
	return nil
}

// SetPosition stores the participant's vertical offset. Both bounds are
// inclusive.
func (e *Engine) SetPosition(id string, y float64) error {
	if !e.state.Seated(id) {
		return ErrPlayerNotSeated
	}
	if y < 0 || y > e.state.CanvasHeight {
		return ErrPositionOutOfBounds
	}
	next := e.state.Clone()
	next.Positions[id] = y
	e.state = next
	return nil
}

// UpdateScore stores the participant's score; negative values clamp to 0.
func (e *Engine) UpdateScore(id string, score int) error {
	if !e.state.Seated(id) {
		return ErrPlayerNotSeated
	}
	if score < 0 {
		score = 0
	}
	next := e.state.Clone()
	next.Scores[id] = score
	e.state = next
	return nil
}

// BothReady reports whether two seated participants have both readied up.
func (e *Engine) BothReady() bool {
	return e.state.ReadyCount() == 2
}

// StartSinglePlayer begins a solo run. There is no readiness precondition.
func (e *Engine) StartSinglePlayer() error {
	if e.state.Status != StatusWaitingToStart {
		return ErrGameInProgress
	}
	next := e.state.Clone()
	next.Status = StatusSinglePlayer
	e.state = next
	return nil
}

// StartMultiPlayer begins a two-player match once both seated participants
// are ready.
func (e *Engine) StartMultiPlayer() error {
	if e.state.Status != StatusWaitingToStart {
		return ErrGameInProgress
	}
	if !e.BothReady() {
		return ErrPlayersNotReady
	}
	next := e.state.Clone()
	next.Status = StatusMultiPlayer
	e.state = next
	return nil
}

// ReportLoss records that the given participant's run ended, declaring the
// other seated participant the winner. A winner already decided is sticky:
// a later report is accepted but changes nothing.
func (e *Engine) ReportLoss(loser string) error {
	if e.state.Player1 == "" || e.state.Player2 == "" {
		return ErrIncompleteRoster
	}
	if e.state.Winner != "" {
		return nil
	}

	var winner string
	switch loser {
	case e.state.Player1:
		winner = e.state.Player2
	case e.state.Player2:
		winner = e.state.Player1
	default:
		return ErrInvalidPlayer
	}

	next := e.state.Clone()
	next.Winner = winner
	next.Lost[loser] = true
	next.Lost[winner] = false
	e.state = next
	return nil
}
