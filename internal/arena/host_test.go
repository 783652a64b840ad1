package arena

import (
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/tidepool-arcade/sharkdash/internal/game"
)

const (
	roomID = "shark-corner"
	p1     = "player-1"
	p2     = "player-2"
	p3     = "player-3"
)

// recordingSubscriber captures every snapshot it is sent.
type recordingSubscriber struct {
	mu    sync.Mutex
	snaps []Snapshot
}

func (s *recordingSubscriber) Send(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = append(s.snaps, snap)
}

func (s *recordingSubscriber) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.snaps)
}

func (s *recordingSubscriber) last() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snaps[len(s.snaps)-1]
}

func newTestHost() *Host {
	return NewHost(Config{
		Logger: log.New(io.Discard),
	})
}

// join is a helper returning the instance id.
func join(t *testing.T, h *Host, player string) string {
	t.Helper()
	res, err := h.Handle(roomID, player, JoinGame{})
	if err != nil {
		t.Fatalf("JoinGame for %s failed: %v", player, err)
	}
	return res.InstanceID
}

func TestJoinCreatesEngineLazily(t *testing.T) {
	h := newTestHost()

	if _, ok := h.RoomState(roomID); ok {
		t.Fatal("room must have no live session before the first join")
	}
	id := join(t, h, p1)
	if id == "" {
		t.Fatal("JoinGame must return the instance id")
	}

	snap, ok := h.RoomState(roomID)
	if !ok {
		t.Fatal("room must have a live session after join")
	}
	if snap.InstanceID != id {
		t.Errorf("instance id = %q, want %q", snap.InstanceID, id)
	}
}

func TestSecondJoinReusesInstance(t *testing.T) {
	h := newTestHost()
	id1 := join(t, h, p1)
	id2 := join(t, h, p2)
	if id1 != id2 {
		t.Errorf("joins created distinct instances %q and %q", id1, id2)
	}
}

func TestCommandsWithoutGameFail(t *testing.T) {
	h := newTestHost()
	if _, err := h.Handle(roomID, p1, SetReady{InstanceID: "anything"}); !errors.Is(err, ErrNoGameInProgress) {
		t.Errorf("SetReady without game = %v, want ErrNoGameInProgress", err)
	}
}

func TestInstanceMismatchRejected(t *testing.T) {
	h := newTestHost()
	join(t, h, p1)

	sub := &recordingSubscriber{}
	defer h.Subscribe(roomID, sub)()

	if _, err := h.Handle(roomID, p1, SetReady{InstanceID: "stale-id"}); !errors.Is(err, ErrInstanceMismatch) {
		t.Errorf("stale command = %v, want ErrInstanceMismatch", err)
	}
	if sub.count() != 0 {
		t.Errorf("rejected command broadcast %d snapshots, want 0", sub.count())
	}
}

func TestSuccessBroadcastsExactlyOnce(t *testing.T) {
	h := newTestHost()
	id := join(t, h, p1)

	sub := &recordingSubscriber{}
	defer h.Subscribe(roomID, sub)()

	if _, err := h.Handle(roomID, p1, SetReady{InstanceID: id}); err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if sub.count() != 1 {
		t.Fatalf("successful command broadcast %d snapshots, want exactly 1", sub.count())
	}
	if !sub.last().State.Ready[p1] {
		t.Error("broadcast snapshot must reflect the applied command")
	}
}

func TestFailureBroadcastsNothing(t *testing.T) {
	h := newTestHost()
	id := join(t, h, p1)
	join(t, h, p2)

	sub := &recordingSubscriber{}
	defer h.Subscribe(roomID, sub)()

	// Engine-level failure: third join on a full roster.
	if _, err := h.Handle(roomID, p3, JoinGame{}); !errors.Is(err, game.ErrGameFull) {
		t.Fatalf("third join = %v, want ErrGameFull", err)
	}
	// Engine-level failure: out-of-bounds position.
	if _, err := h.Handle(roomID, p1, SetPosition{InstanceID: id, Y: -1}); !errors.Is(err, game.ErrPositionOutOfBounds) {
		t.Fatalf("SetPosition(-1) = %v, want ErrPositionOutOfBounds", err)
	}
	if sub.count() != 0 {
		t.Errorf("failed commands broadcast %d snapshots, want 0", sub.count())
	}
}

func TestStartGamePicksVariantByOccupancy(t *testing.T) {
	h := newTestHost()
	id := join(t, h, p1)
	if _, err := h.Handle(roomID, p1, StartGame{InstanceID: id}); err != nil {
		t.Fatalf("solo StartGame failed: %v", err)
	}
	snap, _ := h.RoomState(roomID)
	if snap.State.Status != game.StatusSinglePlayer {
		t.Errorf("Status = %v, want StatusSinglePlayer", snap.State.Status)
	}
}

func TestStartGameMultiRequiresReadiness(t *testing.T) {
	h := newTestHost()
	id := join(t, h, p1)
	join(t, h, p2)

	if _, err := h.Handle(roomID, p1, StartGame{InstanceID: id}); !errors.Is(err, game.ErrPlayersNotReady) {
		t.Fatalf("StartGame before ready = %v, want ErrPlayersNotReady", err)
	}
	for _, p := range []string{p1, p2} {
		if _, err := h.Handle(roomID, p, SetReady{InstanceID: id}); err != nil {
			t.Fatalf("SetReady(%s) failed: %v", p, err)
		}
	}
	if _, err := h.Handle(roomID, p1, StartGame{InstanceID: id}); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	snap, _ := h.RoomState(roomID)
	if snap.State.Status != game.StatusMultiPlayer {
		t.Errorf("Status = %v, want StatusMultiPlayer", snap.State.Status)
	}
}

func TestRedundantStartGameIsIdempotentNoOp(t *testing.T) {
	h := newTestHost()
	id := startMulti(t, h)

	sub := &recordingSubscriber{}
	defer h.Subscribe(roomID, sub)()

	// Both clients observe readyCount == 2 and race to start; the loser of
	// the race must get a clean success and no extra broadcast.
	if _, err := h.Handle(roomID, p2, StartGame{InstanceID: id}); err != nil {
		t.Fatalf("redundant StartGame = %v, want nil", err)
	}
	if sub.count() != 0 {
		t.Errorf("redundant StartGame broadcast %d snapshots, want 0", sub.count())
	}
}

func startMulti(t *testing.T, h *Host) string {
	t.Helper()
	id := join(t, h, p1)
	join(t, h, p2)
	for _, p := range []string{p1, p2} {
		if _, err := h.Handle(roomID, p, SetReady{InstanceID: id}); err != nil {
			t.Fatalf("SetReady(%s) failed: %v", p, err)
		}
	}
	if _, err := h.Handle(roomID, p1, StartGame{InstanceID: id}); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	return id
}

type recordingScores struct {
	mu     sync.Mutex
	calls  int
	player string
	score  int
	doneCh chan struct{}
}

func (r *recordingScores) ReportFinalScore(playerID string, score int) error {
	r.mu.Lock()
	r.calls++
	r.player = playerID
	r.score = score
	r.mu.Unlock()
	close(r.doneCh)
	return nil
}

func TestReportOutcomeSetsWinnerAndPersistsScore(t *testing.T) {
	scores := &recordingScores{doneCh: make(chan struct{})}
	h := NewHost(Config{Logger: log.New(io.Discard), Scores: scores})
	id := startMulti(t, h)

	if _, err := h.Handle(roomID, p1, ReportOutcome{InstanceID: id, Score: 17}); err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}

	snap, _ := h.RoomState(roomID)
	if snap.State.Winner != p2 {
		t.Errorf("Winner = %q, want %q", snap.State.Winner, p2)
	}
	if snap.State.Scores[p1] != 17 {
		t.Errorf("Scores[p1] = %d, want 17", snap.State.Scores[p1])
	}

	<-scores.doneCh
	scores.mu.Lock()
	defer scores.mu.Unlock()
	if scores.player != p1 || scores.score != 17 {
		t.Errorf("persisted (%q, %d), want (%q, 17)", scores.player, scores.score, p1)
	}
}

type recordingMatches struct {
	mu     sync.Mutex
	recs   []MatchRecord
	doneCh chan struct{}
}

func (r *recordingMatches) RecordMatch(rec MatchRecord) error {
	r.mu.Lock()
	r.recs = append(r.recs, rec)
	r.mu.Unlock()
	close(r.doneCh)
	return nil
}

func TestReportOutcomeRecordsMatch(t *testing.T) {
	matches := &recordingMatches{doneCh: make(chan struct{})}
	h := NewHost(Config{Logger: log.New(io.Discard), Matches: matches})
	id := startMulti(t, h)

	if _, err := h.Handle(roomID, p2, ReportOutcome{InstanceID: id, Score: 9}); err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}

	<-matches.doneCh
	matches.mu.Lock()
	defer matches.mu.Unlock()
	if len(matches.recs) != 1 {
		t.Fatalf("recorded %d matches, want 1", len(matches.recs))
	}
	rec := matches.recs[0]
	if rec.InstanceID != id || rec.RoomID != roomID {
		t.Errorf("record identifies (%q, %q), want (%q, %q)", rec.InstanceID, rec.RoomID, id, roomID)
	}
	if rec.Winner != p1 {
		t.Errorf("Winner = %q, want %q", rec.Winner, p1)
	}
	if rec.Score2 != 9 {
		t.Errorf("Score2 = %d, want 9", rec.Score2)
	}
	if rec.EndReason != "reported" {
		t.Errorf("EndReason = %q, want reported", rec.EndReason)
	}
}

func TestForfeitRecordsMatchWithLeaverScore(t *testing.T) {
	matches := &recordingMatches{doneCh: make(chan struct{})}
	h := NewHost(Config{Logger: log.New(io.Discard), Matches: matches})
	id := startMulti(t, h)

	if _, err := h.Handle(roomID, p1, UpdateScore{InstanceID: id, Score: 5}); err != nil {
		t.Fatalf("UpdateScore failed: %v", err)
	}
	if _, err := h.Handle(roomID, p1, LeaveGame{InstanceID: id}); err != nil {
		t.Fatalf("LeaveGame failed: %v", err)
	}

	<-matches.doneCh
	matches.mu.Lock()
	defer matches.mu.Unlock()
	rec := matches.recs[0]
	if rec.EndReason != "forfeit" {
		t.Errorf("EndReason = %q, want forfeit", rec.EndReason)
	}
	if rec.Winner != p2 {
		t.Errorf("Winner = %q, want %q", rec.Winner, p2)
	}
	// The forfeiting player's entries are pruned from the live state; the
	// record must still carry the score they had when they left.
	if rec.Player1 != p1 || rec.Score1 != 5 {
		t.Errorf("record carries (%q, %d), want (%q, 5)", rec.Player1, rec.Score1, p1)
	}
}

func TestSecondOutcomeReportRecordsNothing(t *testing.T) {
	matches := &recordingMatches{doneCh: make(chan struct{})}
	h := NewHost(Config{Logger: log.New(io.Discard), Matches: matches})
	id := startMulti(t, h)

	if _, err := h.Handle(roomID, p1, ReportOutcome{InstanceID: id, Score: 2}); err != nil {
		t.Fatalf("first ReportOutcome failed: %v", err)
	}
	<-matches.doneCh

	// Loser-side report of the already-decided session: state still changes
	// (score, lost flag) but the match is already recorded.
	if _, err := h.Handle(roomID, p2, ReportOutcome{InstanceID: id, Score: 8}); err != nil {
		t.Fatalf("second ReportOutcome failed: %v", err)
	}

	matches.mu.Lock()
	defer matches.mu.Unlock()
	if len(matches.recs) != 1 {
		t.Errorf("recorded %d matches, want exactly 1", len(matches.recs))
	}
}

func TestJoinReplacesFinishedInstance(t *testing.T) {
	h := newTestHost()
	id := startMulti(t, h)
	if _, err := h.Handle(roomID, p1, ReportOutcome{InstanceID: id, Score: 3}); err != nil {
		t.Fatalf("ReportOutcome failed: %v", err)
	}

	// The session is decided; a newcomer must get a fresh instance rather
	// than a seat in the concluded one.
	res, err := h.Handle(roomID, p3, JoinGame{})
	if err != nil {
		t.Fatalf("JoinGame after outcome failed: %v", err)
	}
	if res.InstanceID == id {
		t.Error("join after a decided outcome must create a fresh instance")
	}
	snap, _ := h.RoomState(roomID)
	if snap.State.Winner != "" {
		t.Errorf("fresh instance Winner = %q, want empty", snap.State.Winner)
	}
}

func TestMidMatchLeaveForfeits(t *testing.T) {
	h := newTestHost()
	id := startMulti(t, h)

	if _, err := h.Handle(roomID, p1, LeaveGame{InstanceID: id}); err != nil {
		t.Fatalf("LeaveGame failed: %v", err)
	}
	snap, _ := h.RoomState(roomID)
	if snap.State.Winner != p2 {
		t.Errorf("Winner = %q, want forfeit win for %q", snap.State.Winner, p2)
	}
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	h := newTestHost()
	id := join(t, h, p1)

	sub := &recordingSubscriber{}
	unsub := h.Subscribe(roomID, sub)
	unsub()

	if _, err := h.Handle(roomID, p1, SetReady{InstanceID: id}); err != nil {
		t.Fatalf("SetReady failed: %v", err)
	}
	if sub.count() != 0 {
		t.Errorf("unsubscribed subscriber received %d snapshots, want 0", sub.count())
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	h := newTestHost()
	idA := join(t, h, p1)

	resB, err := h.Handle("other-room", p1, JoinGame{})
	if err != nil {
		t.Fatalf("join in second room failed: %v", err)
	}
	if resB.InstanceID == idA {
		t.Error("distinct rooms must not share an engine instance")
	}
}

func TestChannelSubscriberDropsOldestUnderPressure(t *testing.T) {
	sub := NewChannelSubscriber(2)
	defer sub.Close()

	for i := 0; i < 5; i++ {
		sub.Send(Snapshot{InstanceID: string(rune('a' + i))})
	}

	// The most recent snapshot must survive the drops.
	var last Snapshot
	for {
		select {
		case s := <-sub.Snapshots():
			last = s
			continue
		default:
		}
		break
	}
	if last.InstanceID != "e" {
		t.Errorf("newest buffered snapshot = %q, want %q", last.InstanceID, "e")
	}
}
