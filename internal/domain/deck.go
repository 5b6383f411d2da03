package domain

import "math/rand"

// DeckSize is the number of cards in a standard deck.
const DeckSize = 52

// NewDeck returns an ordered 52-card deck, suit-major with ranks ascending.
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, s := range Suits {
		for r := Ace; r <= King; r++ {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// Shuffle returns a shuffled copy of in. The input is left untouched.
// A nil rng falls back to the math/rand package source.
func Shuffle[T any](rng *rand.Rand, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	swap := func(i, j int) { out[i], out[j] = out[j], out[i] }
	if rng == nil {
		rand.Shuffle(len(out), swap)
		return out
	}
	rng.Shuffle(len(out), swap)
	return out
}
