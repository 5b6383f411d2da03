package domain

// DrawCard peeks at the top card of src without removing it.
// ok is false when the source is empty or unknown.
func DrawCard(s *GameState, src DrawSource) (Card, bool) {
	pile := s.pile(src)
	if pile == nil || len(*pile) == 0 {
		return Card{}, false
	}
	return (*pile)[len(*pile)-1], true
}

// RemoveDrawnCard pops the top card of src. Popping an empty source does nothing.
func RemoveDrawnCard(s *GameState, src DrawSource) {
	pile := s.pile(src)
	if pile == nil || len(*pile) == 0 {
		return
	}
	*pile = (*pile)[:len(*pile)-1]
}

// ExchangeCard puts card into the given hand slot and returns the previous
// occupant, which the caller is responsible for discarding.
func ExchangeCard(s *GameState, playerIdx, handIdx int, card Card) (Card, error) {
	slot, err := s.slot(Position{Player: playerIdx, Slot: handIdx})
	if err != nil {
		return Card{}, err
	}
	old := *slot
	*slot = card
	return old, nil
}

// TakeCard commits a draw from src into the pending slot of the state.
func TakeCard(s *GameState, src DrawSource) (Card, error) {
	if s.RoundEnded {
		return Card{}, ErrRoundEnded
	}
	if s.Pending != nil {
		return Card{}, ErrDrawPending
	}
	if s.pile(src) == nil {
		return Card{}, ErrInvalidSource
	}
	card, ok := DrawCard(s, src)
	if !ok {
		return Card{}, ErrEmptySource
	}
	RemoveDrawnCard(s, src)
	s.Pending = &PendingDraw{Card: card, Source: src}
	return card, nil
}

// PlacePending exchanges the pending card into a slot of the current player
// and discards whatever it displaced.
func PlacePending(s *GameState, handIdx int) (Card, error) {
	if s.Pending == nil {
		return Card{}, ErrNoPendingDraw
	}
	old, err := ExchangeCard(s, s.CurrentPlayer, handIdx, s.Pending.Card)
	if err != nil {
		return Card{}, err
	}
	if !old.IsZero() {
		s.DiscardPile = append(s.DiscardPile, old)
	}
	s.Pending = nil
	return old, nil
}

// DiscardPending throws the pending card onto the discard pile unplayed.
func DiscardPending(s *GameState) (Card, error) {
	if s.Pending == nil {
		return Card{}, ErrNoPendingDraw
	}
	card := s.Pending.Card
	s.DiscardPile = append(s.DiscardPile, card)
	s.Pending = nil
	return card, nil
}

// PlayPending resolves the pending special card for the current player, then
// discards it. On error the pending card stays in place.
func PlayPending(s *GameState, handIdx, targetPlayer, targetSlot int) (Effect, error) {
	if s.Pending == nil {
		return Effect{}, ErrNoPendingDraw
	}
	card := s.Pending.Card
	if !card.IsSpecial() {
		return Effect{}, ErrNotSpecial
	}
	eff, err := PlaySpecialCard(s, s.CurrentPlayer, handIdx, card, targetPlayer, targetSlot)
	if err != nil {
		return Effect{}, err
	}
	s.DiscardPile = append(s.DiscardPile, card)
	s.Pending = nil
	return eff, nil
}

// AdvanceTurn hands the turn to the next seat.
func AdvanceTurn(s *GameState) {
	if len(s.Players) == 0 {
		return
	}
	s.CurrentPlayer = (s.CurrentPlayer + 1) % len(s.Players)
}

func (s *GameState) pile(src DrawSource) *[]Card {
	switch src {
	case SourceDeck:
		return &s.Deck
	case SourceDiscard:
		return &s.DiscardPile
	}
	return nil
}
