package service

import "errors"

// Invalid-command errors. These reject the command without touching the
// shared record; handlers map them onto 4xx responses.
var (
	ErrMatchNotFound    = errors.New("match not found")
	ErrMatchFull        = errors.New("match already has two players")
	ErrNotInMatch       = errors.New("player is not part of this match")
	ErrNotHost          = errors.New("only the host may perform this action")
	ErrLobbyNotReady    = errors.New("both players must be present to start")
	ErrWrongPhase       = errors.New("action not valid in the current match phase")
	ErrRoundClosed      = errors.New("round is already closed")
	ErrAlreadyGuessed   = errors.New("guess already recorded for this round")
	ErrCatalogExhausted = errors.New("no unused locations left in the catalog")
	ErrInvalidToken     = errors.New("invalid or expired token")
)
