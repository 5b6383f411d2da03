package domain

import "fmt"

// Suit is one of the four French suits.
type Suit string

const (
	SuitHearts   Suit = "hearts"
	SuitDiamonds Suit = "diamonds"
	SuitClubs    Suit = "clubs"
	SuitSpades   Suit = "spades"
)

// Suits lists the suits in deck generation order.
var Suits = [4]Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// IsRed reports whether the suit is hearts or diamonds.
func (s Suit) IsRed() bool {
	return s == SuitHearts || s == SuitDiamonds
}

// Rank is the face value of a card, 1 (Ace) through 13 (King).
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

// Card is a single playing card. The zero Card marks an empty hand slot.
type Card struct {
	Suit Suit
	Rank Rank
}

// IsZero reports whether c is the empty slot marker.
func (c Card) IsZero() bool {
	return c == Card{}
}

// IsSpecial reports whether the card carries a play-time or score-time effect.
func (c Card) IsSpecial() bool {
	switch c.Rank {
	case Ace, Jack, Queen, King:
		return true
	}
	return false
}

func (c Card) String() string {
	if c.IsZero() {
		return "--"
	}
	var r string
	switch c.Rank {
	case Ace:
		r = "A"
	case Jack:
		r = "J"
	case Queen:
		r = "Q"
	case King:
		r = "K"
	default:
		r = fmt.Sprintf("%d", c.Rank)
	}
	var s string
	switch c.Suit {
	case SuitHearts:
		s = "♥"
	case SuitDiamonds:
		s = "♦"
	case SuitClubs:
		s = "♣"
	case SuitSpades:
		s = "♠"
	default:
		s = "?"
	}
	return r + s
}
