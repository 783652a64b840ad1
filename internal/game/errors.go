package game

import "errors"

// Sentinel errors raised by engine transitions. The session host surfaces
// them unchanged to remote callers; message text is user-facing.
var (
	// ErrPlayerAlreadySeated is returned by Join when the participant
	// already occupies a slot in this session.
	ErrPlayerAlreadySeated = errors.New("player is already in the game")

	// ErrGameFull is returned by Join when both slots are occupied.
	ErrGameFull = errors.New("game is full")

	// ErrPlayerNotSeated is returned by operations targeting a participant
	// who occupies neither slot.
	ErrPlayerNotSeated = errors.New("player is not in this game")

	// ErrPositionOutOfBounds is returned by SetPosition for a vertical
	// offset outside [0, CanvasHeight].
	ErrPositionOutOfBounds = errors.New("position is out of bounds")

	// ErrGameInProgress is returned by the start operations when a run is
	// already underway.
	ErrGameInProgress = errors.New("game is already in progress")

	// ErrPlayersNotReady is returned by StartMultiPlayer unless both
	// seated participants have readied up.
	ErrPlayersNotReady = errors.New("both players must be ready")

	// ErrInvalidPlayer is returned by ReportLoss when the reported loser
	// is not one of the two seated participants.
	ErrInvalidPlayer = errors.New("reported player is not in this game")

	// ErrIncompleteRoster is returned by ReportLoss when fewer than two
	// participants are seated.
	ErrIncompleteRoster = errors.New("both players must be seated")
)
