package domain

import (
	"math/rand"

	"github.com/google/uuid"
)

// StartRound shuffles a fresh deck, deals rules.HandSize cards to every player
// slot by slot and seeds the discard pile with one card.
func StartRound(rng *rand.Rand, names []string, rules Rules) (*GameState, error) {
	if len(names) == 0 {
		return nil, ErrNoPlayers
	}
	rules = rules.withDefaults()
	if len(names)*rules.HandSize+1 > DeckSize {
		return nil, ErrNotEnoughCards
	}

	deck := Shuffle(rng, NewDeck())

	players := make([]*Player, len(names))
	for i, name := range names {
		players[i] = &Player{Name: name, Hand: make([]Card, rules.HandSize)}
	}

	// Slot 0 goes round the table before slot 1 is dealt.
	for slot := 0; slot < rules.HandSize; slot++ {
		for _, p := range players {
			p.Hand[slot] = deck[len(deck)-1]
			deck = deck[:len(deck)-1]
		}
	}

	discard := []Card{deck[len(deck)-1]}
	deck = deck[:len(deck)-1]

	return &GameState{
		RoundID:       uuid.NewString(),
		Rules:         rules,
		Players:       players,
		Deck:          deck,
		DiscardPile:   discard,
		CurrentPlayer: 0,
		DutchCaller:   NoPlayer,
	}, nil
}
