package mirror

import (
	"errors"

	"github.com/tidepool-arcade/sharkdash/internal/arena"
	"github.com/tidepool-arcade/sharkdash/internal/game"
)

// ErrNoActiveInstance is returned by command helpers invoked before a
// JoinGame response recorded an instance id.
var ErrNoActiveInstance = errors.New("no active game instance")

// Commander is the command surface the mirror talks to. Satisfied by
// *arena.Host directly and by any transport proxy with the same shape.
type Commander interface {
	Handle(roomID, participantID string, cmd arena.Command) (arena.Result, error)
}

// Mirror holds the last received session snapshot for one client plus the
// derived views the rendering layer reads. The cached snapshot is private
// to the client and only ever replaced wholesale.
type Mirror struct {
	roomID string
	selfID string
	dir    Directory
	host   Commander

	instanceID string
	hasState   bool
	state      game.SessionState

	players    []Participant
	readyCount int
	skins      []PlayerSkin
	positions  []PlayerPosition
	winnerSeen bool
}

// New creates a mirror for the given client in the given room.
func New(roomID, selfID string, dir Directory, host Commander) *Mirror {
	return &Mirror{
		roomID: roomID,
		selfID: selfID,
		dir:    dir,
		host:   host,
	}
}

// InstanceID returns the live instance id recorded from the last join, or
// empty before one.
func (m *Mirror) InstanceID() string {
	return m.instanceID
}

// State returns the last applied snapshot. The second result is false
// before the first snapshot arrives.
func (m *Mirror) State() (game.SessionState, bool) {
	return m.state, m.hasState
}

// Players returns the cached resolved roster.
func (m *Mirror) Players() []Participant {
	return m.players
}

// ApplySnapshot diffs the new snapshot against the cached one and returns
// the ordered change events. The snapshot is never mutated. When both
// readied players are first observed, the mirror optimistically issues
// StartGame; the server stays authoritative and treats the redundant start
// as a no-op.
func (m *Mirror) ApplySnapshot(snap arena.Snapshot) []Event {
	m.instanceID = snap.InstanceID
	next := snap.State

	var events []Event

	players := m.resolvePlayers(next)
	if !participantsEqual(players, m.players) {
		m.players = players
		events = append(events, PlayersChanged{Players: players})
	}

	readyCount := next.ReadyCount()
	if readyCount != m.readyCount {
		prev := m.readyCount
		m.readyCount = readyCount
		events = append(events, ReadyCountChanged{Count: readyCount})
		if readyCount == 2 && prev < 2 {
			m.startOptimistically()
		}
	}

	skins := m.resolveSkins(next, players)
	if !skinsEqual(skins, m.skins) {
		m.skins = skins
		events = append(events, SkinsChanged{Skins: skins})
	}

	positions := m.resolvePositions(next, players)
	if !positionsEqual(positions, m.positions) {
		m.positions = positions
		events = append(events, PositionsChanged{Positions: positions})
	}

	if next.Winner != "" && !m.winnerSeen {
		m.winnerSeen = true
		events = append(events, OutcomeDetermined{Winner: m.resolve(next.Winner)})
	}
	if next.Winner == "" {
		m.winnerSeen = false
	}

	events = append(events, SnapshotApplied{State: next})

	if m.gameEnded(next) {
		events = append(events, GameEnded{})
	}

	m.state = next
	m.hasState = true
	return events
}

// gameEnded detects the transition out of an in-progress session: either
// the status itself left in-progress (full reset, explicit over), or a
// winner was decided while the status stayed in-progress.
func (m *Mirror) gameEnded(next game.SessionState) bool {
	if !m.hasState {
		return false
	}
	old := m.state
	if old.Status.InProgress() && !next.Status.InProgress() {
		return true
	}
	return old.Winner == "" && next.Winner != ""
}

func (m *Mirror) startOptimistically() {
	if m.instanceID == "" {
		return
	}
	// The race loser sees the server already in progress; that is fine,
	// and any other failure surfaces through the next snapshot anyway.
	_, _ = m.host.Handle(m.roomID, m.selfID, arena.StartGame{InstanceID: m.instanceID})
}

func (m *Mirror) resolve(id string) Participant {
	if p, ok := m.dir.Resolve(id); ok {
		return p
	}
	return Participant{ID: id}
}

func (m *Mirror) resolvePlayers(s game.SessionState) []Participant {
	ids := s.Players()
	players := make([]Participant, 0, len(ids))
	for _, id := range ids {
		players = append(players, m.resolve(id))
	}
	return players
}

func (m *Mirror) resolveSkins(s game.SessionState, players []Participant) []PlayerSkin {
	skins := make([]PlayerSkin, 0, len(players))
	for _, p := range players {
		skins = append(skins, PlayerSkin{Player: p, Skin: s.Skin(p.ID)})
	}
	return skins
}

func (m *Mirror) resolvePositions(s game.SessionState, players []Participant) []PlayerPosition {
	positions := make([]PlayerPosition, 0, len(players))
	for _, p := range players {
		y, ok := s.Positions[p.ID]
		if !ok {
			continue
		}
		positions = append(positions, PlayerPosition{Player: p, Y: y})
	}
	return positions
}

// Equality is value-based, element-wise and order-sensitive, so reordered
// map iteration or fresh slice headers never produce spurious events.

func participantsEqual(a, b []Participant) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func skinsEqual(a, b []PlayerSkin) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func positionsEqual(a, b []PlayerPosition) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// Command helpers. Each translates to a session host command; all but
// Join fail fast when no instance id has been recorded yet.

// Join seats this client, recording the instance id from the response.
func (m *Mirror) Join() error {
	res, err := m.host.Handle(m.roomID, m.selfID, arena.JoinGame{})
	if err != nil {
		return err
	}
	m.instanceID = res.InstanceID
	return nil
}

// Leave removes this client from the session.
func (m *Mirror) Leave() error {
	if m.instanceID == "" {
		return ErrNoActiveInstance
	}
	_, err := m.host.Handle(m.roomID, m.selfID, arena.LeaveGame{InstanceID: m.instanceID})
	return err
}

// SetReady marks this client ready.
func (m *Mirror) SetReady() error {
	if m.instanceID == "" {
		return ErrNoActiveInstance
	}
	_, err := m.host.Handle(m.roomID, m.selfID, arena.SetReady{InstanceID: m.instanceID})
	return err
}

// SetSkin stores this client's skin choice.
func (m *Mirror) SetSkin(skin string) error {
	if m.instanceID == "" {
		return ErrNoActiveInstance
	}
	_, err := m.host.Handle(m.roomID, m.selfID, arena.SetSkin{InstanceID: m.instanceID, Skin: skin})
	return err
}

// SetPosition pushes this client's vertical offset.
func (m *Mirror) SetPosition(y float64) error {
	if m.instanceID == "" {
		return ErrNoActiveInstance
	}
	_, err := m.host.Handle(m.roomID, m.selfID, arena.SetPosition{InstanceID: m.instanceID, Y: y})
	return err
}

// StartGame asks the server to begin the run.
func (m *Mirror) StartGame() error {
	if m.instanceID == "" {
		return ErrNoActiveInstance
	}
	_, err := m.host.Handle(m.roomID, m.selfID, arena.StartGame{InstanceID: m.instanceID})
	return err
}

// ReportLoss reports this client's terminal collision and final score.
func (m *Mirror) ReportLoss(score int) error {
	if m.instanceID == "" {
		return ErrNoActiveInstance
	}
	_, err := m.host.Handle(m.roomID, m.selfID, arena.ReportOutcome{InstanceID: m.instanceID, Score: score})
	return err
}
