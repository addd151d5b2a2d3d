package game

import "errors"

// Errors surfaced to the boundary. Handlers map these onto status codes;
// everything else is treated as internal.
var (
	ErrGameNotFound       = errors.New("game not found")
	ErrTurnNotFound       = errors.New("turn not found")
	ErrInvitationNotFound = errors.New("invitation not found")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrSessionExists      = errors.New("game already set up for this invitation")
	ErrWrongPlayer        = errors.New("not this player's turn")
	ErrTurnEnded          = errors.New("turn already ended")
	ErrNoTilesPlayed      = errors.New("no tiles played")
	ErrTileNotOnRack      = errors.New("played tile is not on the rack")
	ErrInvalidWord        = errors.New("invalid word")
)
