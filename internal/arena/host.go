package arena

import (
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/tidepool-arcade/sharkdash/internal/game"
)

// ScoreReporter persists a participant's final score. Implementations must
// tolerate being called from short-lived goroutines; the host never blocks
// command handling on persistence.
type ScoreReporter interface {
	ReportFinalScore(playerID string, score int) error
}

// MatchRecord describes a finished session for persistence.
type MatchRecord struct {
	InstanceID string
	RoomID     string
	Player1    string
	Player2    string
	Score1     int
	Score2     int
	Winner     string
	EndReason  string // "reported" or "forfeit"
}

// MatchRecorder persists finished matches. Same contract as ScoreReporter:
// called off the command path, failures are logged and dropped.
type MatchRecorder interface {
	RecordMatch(rec MatchRecord) error
}

// Config tunes the host.
type Config struct {
	// CanvasHeight is handed to every engine the host creates.
	CanvasHeight float64

	// Logger defaults to a stderr logger with the "arena" prefix.
	Logger *log.Logger

	// Scores is the optional best-score persistence hook, fired on each
	// reported outcome.
	Scores ScoreReporter

	// Matches is the optional match-history hook, fired once per session
	// when it first reaches a decided or over state.
	Matches MatchRecorder
}

// room couples a live engine with the subscribers watching it. The mutex
// serializes command handling per room: join/leave/start races interleave
// only between rooms, never within one.
type room struct {
	mu      sync.Mutex
	engine  *game.Engine
	subs    map[int]Subscriber
	nextSub int
}

// Host routes commands to per-room engines and fans successful state
// changes out to subscribers. Exactly one engine is live per room at a
// time; a finished one is replaced on the next JoinGame.
type Host struct {
	canvasHeight float64
	logger       *log.Logger
	scores       ScoreReporter
	matches      MatchRecorder

	mu    sync.Mutex
	rooms map[string]*room
}

// NewHost creates a host.
func NewHost(cfg Config) *Host {
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "arena",
		})
	}
	height := cfg.CanvasHeight
	if height <= 0 {
		height = game.DefaultCanvasHeight
	}
	return &Host{
		canvasHeight: height,
		logger:       logger,
		scores:       cfg.Scores,
		matches:      cfg.Matches,
		rooms:        make(map[string]*room),
	}
}

func (h *Host) room(roomID string) *room {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[roomID]
	if !ok {
		r = &room{subs: make(map[int]Subscriber)}
		h.rooms[roomID] = r
	}
	return r
}

// Subscribe registers a subscriber for the room's snapshots and returns
// its unsubscribe func.
func (h *Host) Subscribe(roomID string, sub Subscriber) func() {
	r := h.room(roomID)
	r.mu.Lock()
	id := r.nextSub
	r.nextSub++
	r.subs[id] = sub
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.subs, id)
		r.mu.Unlock()
	}
}

// Handle applies one command issued by the given participant against the
// given room. On success the new state is broadcast to every subscriber of
// the room, exactly once; on failure nothing is broadcast and the session
// state is untouched.
func (h *Host) Handle(roomID, participantID string, cmd Command) (Result, error) {
	r := h.room(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()

	var prev game.SessionState
	hadEngine := r.engine != nil
	if hadEngine {
		prev = r.engine.State()
	}

	res, changed, err := h.apply(r, participantID, cmd)
	if err != nil {
		h.logger.Debug("command rejected",
			"room", roomID, "participant", participantID, "err", err)
		return Result{}, err
	}
	if changed {
		h.broadcastLocked(r, roomID)
		h.recordMatchLocked(r, roomID, cmd, hadEngine, prev)
	}
	return res, nil
}

// recordMatchLocked fires the match-history hook when the session crosses
// from live to finished. JoinGame is excluded: it may swap in a fresh
// engine, which is never a finish. Must be called with the room lock held.
func (h *Host) recordMatchLocked(r *room, roomID string, cmd Command, hadEngine bool, prev game.SessionState) {
	if h.matches == nil || !hadEngine {
		return
	}
	if _, isJoin := cmd.(JoinGame); isJoin {
		return
	}
	cur := r.engine.State()
	if prev.Finished() || !cur.Finished() {
		return
	}

	reason := "reported"
	if _, isLeave := cmd.(LeaveGame); isLeave {
		reason = "forfeit"
	}
	rec := MatchRecord{
		InstanceID: r.engine.ID(),
		RoomID:     roomID,
		Player1:    prev.Player1,
		Player2:    prev.Player2,
		Score1:     finalScore(prev.Player1, cur, prev),
		Score2:     finalScore(prev.Player2, cur, prev),
		Winner:     cur.Winner,
		EndReason:  reason,
	}
	go func() {
		if err := h.matches.RecordMatch(rec); err != nil {
			h.logger.Warn("match persistence failed", "instance", rec.InstanceID, "err", err)
		}
	}()
}

// finalScore reads a player's score, falling back to the pre-command state
// for a forfeiting player whose entries were already pruned.
func finalScore(id string, cur, prev game.SessionState) int {
	if score, ok := cur.Scores[id]; ok {
		return score
	}
	return prev.Scores[id]
}

// apply runs the command against the room's engine. It returns whether the
// state changed (and therefore must be broadcast). Must be called with the
// room lock held.
func (h *Host) apply(r *room, participantID string, cmd Command) (Result, bool, error) {
	if join, ok := cmd.(JoinGame); ok {
		return h.applyJoin(r, participantID, join)
	}

	if r.engine == nil {
		return Result{}, false, ErrNoGameInProgress
	}

	instanceID, ok := commandInstance(cmd)
	if !ok {
		return Result{}, false, ErrUnsupportedCommand
	}
	if instanceID != r.engine.ID() {
		return Result{}, false, ErrInstanceMismatch
	}
	res := Result{InstanceID: r.engine.ID()}

	switch c := cmd.(type) {
	case LeaveGame:
		return res, true, r.engine.Leave(participantID)
	case SetReady:
		return res, true, r.engine.SetReady(participantID)
	case SetSkin:
		return res, true, r.engine.SetSkin(participantID, c.Skin)
	case SetPosition:
		return res, true, r.engine.SetPosition(participantID, c.Y)
	case UpdateScore:
		return res, true, r.engine.UpdateScore(participantID, c.Score)
	case StartGame:
		return h.applyStart(r, res)
	case ReportOutcome:
		return h.applyOutcome(r, participantID, c, res)
	default:
		return Result{}, false, ErrUnsupportedCommand
	}
}

func (h *Host) applyJoin(r *room, participantID string, _ JoinGame) (Result, bool, error) {
	if r.engine == nil || r.engine.State().Finished() {
		r.engine = game.NewEngine(h.canvasHeight)
		h.logger.Info("new game instance", "instance", r.engine.ID())
	}
	if err := r.engine.Join(participantID); err != nil {
		return Result{}, false, err
	}
	return Result{InstanceID: r.engine.ID()}, true, nil
}

// applyStart picks the start variant by occupancy. A StartGame arriving
// after the match already began is tolerated as a no-op: clients start
// optimistically when they see both players ready, and the loser of that
// race must not receive an error.
func (h *Host) applyStart(r *room, res Result) (Result, bool, error) {
	state := r.engine.State()
	if state.Status == game.StatusMultiPlayer {
		return res, false, nil
	}
	if len(state.Players()) == 2 {
		return res, true, r.engine.StartMultiPlayer()
	}
	return res, true, r.engine.StartSinglePlayer()
}

// applyOutcome records the loss before the score so a rejected report
// leaves the state fully untouched; after a validated report the score
// update cannot fail. The persistence hook runs best-effort off the
// command path.
func (h *Host) applyOutcome(r *room, participantID string, c ReportOutcome, res Result) (Result, bool, error) {
	if err := r.engine.ReportLoss(participantID); err != nil {
		return Result{}, false, err
	}
	if err := r.engine.UpdateScore(participantID, c.Score); err != nil {
		return Result{}, false, err
	}
	if h.scores != nil {
		go func(id string, score int) {
			if err := h.scores.ReportFinalScore(id, score); err != nil {
				h.logger.Warn("score persistence failed", "participant", id, "err", err)
			}
		}(participantID, c.Score)
	}
	return res, true, nil
}

// broadcastLocked sends the current snapshot to every subscriber. Must be
// called with the room lock held.
func (h *Host) broadcastLocked(r *room, roomID string) {
	snap := Snapshot{
		RoomID:     roomID,
		InstanceID: r.engine.ID(),
		State:      r.engine.State(),
	}
	for _, sub := range r.subs {
		sub.Send(snap)
	}
}

func commandInstance(cmd Command) (string, bool) {
	switch c := cmd.(type) {
	case LeaveGame:
		return c.InstanceID, true
	case SetReady:
		return c.InstanceID, true
	case SetSkin:
		return c.InstanceID, true
	case SetPosition:
		return c.InstanceID, true
	case UpdateScore:
		return c.InstanceID, true
	case StartGame:
		return c.InstanceID, true
	case ReportOutcome:
		return c.InstanceID, true
	default:
		return "", false
	}
}

// RoomState returns a snapshot of the room's live session, if any.
func (h *Host) RoomState(roomID string) (Snapshot, bool) {
	r := h.room(roomID)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.engine == nil {
		return Snapshot{}, false
	}
	return Snapshot{
		RoomID:     roomID,
		InstanceID: r.engine.ID(),
		State:      r.engine.State(),
	}, true
}
