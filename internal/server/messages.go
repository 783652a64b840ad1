// Package server exposes the session host over WebSockets: JSON command
// frames in, snapshot frames out. It is a thin transport shell; every
// rule lives in the arena and game packages.
package server

import (
	"fmt"

	"github.com/tidepool-arcade/sharkdash/internal/arena"
)

// Client message types.
const (
	MsgJoinGame      = "joinGame"
	MsgLeaveGame     = "leaveGame"
	MsgSetReady      = "setReady"
	MsgSetSkin       = "setSkin"
	MsgSetPosition   = "setPosition"
	MsgUpdateScore   = "updateScore"
	MsgStartGame     = "startGame"
	MsgReportOutcome = "reportOutcome"
)

// Server message types.
const (
	MsgJoined   = "joined"
	MsgAck      = "ack"
	MsgError    = "error"
	MsgSnapshot = "snapshot"
)

// ClientMessage is one inbound command frame.
type ClientMessage struct {
	Type       string  `json:"type"`
	InstanceID string  `json:"instanceId,omitempty"`
	Skin       string  `json:"skin,omitempty"`
	Y          float64 `json:"y,omitempty"`
	Score      int     `json:"score,omitempty"`
}

// ServerMessage is one outbound frame.
type ServerMessage struct {
	Type       string         `json:"type"`
	InstanceID string         `json:"instanceId,omitempty"`
	For        string         `json:"for,omitempty"` // Command type an ack/error answers
	Error      string         `json:"error,omitempty"`
	Snapshot   *StateSnapshot `json:"snapshot,omitempty"`
}

// StateSnapshot is the wire form of a session state broadcast.
type StateSnapshot struct {
	RoomID       string             `json:"roomId"`
	InstanceID   string             `json:"instanceId"`
	Status       string             `json:"status"`
	Player1      string             `json:"player1,omitempty"`
	Player2      string             `json:"player2,omitempty"`
	Ready        map[string]bool    `json:"ready"`
	Skins        map[string]string  `json:"skins"`
	Positions    map[string]float64 `json:"positions"`
	Scores       map[string]int     `json:"scores"`
	Lost         map[string]bool    `json:"lost"`
	Winner       string             `json:"winner,omitempty"`
	CanvasHeight float64            `json:"canvasHeight"`
}

func encodeSnapshot(snap arena.Snapshot) *StateSnapshot {
	s := snap.State
	return &StateSnapshot{
		RoomID:       snap.RoomID,
		InstanceID:   snap.InstanceID,
		Status:       s.Status.String(),
		Player1:      s.Player1,
		Player2:      s.Player2,
		Ready:        s.Ready,
		Skins:        s.Skins,
		Positions:    s.Positions,
		Scores:       s.Scores,
		Lost:         s.Lost,
		Winner:       s.Winner,
		CanvasHeight: s.CanvasHeight,
	}
}

// decodeCommand maps an inbound frame onto the arena's command union.
func decodeCommand(msg ClientMessage) (arena.Command, error) {
	switch msg.Type {
	case MsgJoinGame:
		return arena.JoinGame{}, nil
	case MsgLeaveGame:
		return arena.LeaveGame{InstanceID: msg.InstanceID}, nil
	case MsgSetReady:
		return arena.SetReady{InstanceID: msg.InstanceID}, nil
	case MsgSetSkin:
		return arena.SetSkin{InstanceID: msg.InstanceID, Skin: msg.Skin}, nil
	case MsgSetPosition:
		return arena.SetPosition{InstanceID: msg.InstanceID, Y: msg.Y}, nil
	case MsgUpdateScore:
		return arena.UpdateScore{InstanceID: msg.InstanceID, Score: msg.Score}, nil
	case MsgStartGame:
		return arena.StartGame{InstanceID: msg.InstanceID}, nil
	case MsgReportOutcome:
		return arena.ReportOutcome{InstanceID: msg.InstanceID, Score: msg.Score}, nil
	default:
		return nil, fmt.Errorf("%w: %q", arena.ErrUnsupportedCommand, msg.Type)
	}
}
