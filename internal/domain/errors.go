package domain

import "errors"

var (
	ErrNoPlayers      = errors.New("no players")
	ErrNotEnoughCards = errors.New("deck cannot cover the deal")
	ErrInvalidPlayer  = errors.New("invalid player index")
	ErrInvalidSlot    = errors.New("invalid hand slot")
	ErrInvalidSource  = errors.New("invalid draw source")
	ErrEmptySource    = errors.New("draw source is empty")
	ErrDrawPending    = errors.New("a drawn card must be placed first")
	ErrNoPendingDraw  = errors.New("no card has been drawn")
	ErrNotSpecial     = errors.New("drawn card has no special effect")
	ErrRoundEnded     = errors.New("round has ended")
)
