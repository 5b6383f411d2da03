package domain

// EffectKind identifies what a special card did when played.
type EffectKind int

const (
	// EffectNone: King, non-special ranks, or a Jack/Ace missing its targets.
	EffectNone EffectKind = iota
	// EffectSwap: Jack exchanged two table cards.
	EffectSwap
	// EffectPeek: Queen lets the actor look at one card.
	EffectPeek
	// EffectGive: Ace deals the top of the deck into a target's empty slot.
	EffectGive
)

// String returns the signal name shown to players.
func (k EffectKind) String() string {
	switch k {
	case EffectSwap:
		return "valet"
	case EffectPeek:
		return "dame"
	case EffectGive:
		return "as"
	default:
		return ""
	}
}

// Effect describes the outcome of a special card.
//
//   - EffectSwap: From and To are the swapped positions.
//   - EffectPeek: From is the peeked position, Card its content.
//   - EffectGive: To is the receiving position and Card the dealt card. When
//     nothing could be dealt Card is zero and To.Slot is NoTarget.
type Effect struct {
	Kind EffectKind
	From Position
	To   Position
	Card Card
}

// PlaySpecialCard applies the rank effect of card. playerIdx/handIdx name the
// actor's card; targetPlayer/targetSlot are NoTarget when not supplied.
func PlaySpecialCard(s *GameState, playerIdx, handIdx int, card Card, targetPlayer, targetSlot int) (Effect, error) {
	switch card.Rank {
	case Jack:
		if targetPlayer == NoTarget || targetSlot == NoTarget {
			return Effect{}, nil
		}
		from := Position{Player: playerIdx, Slot: handIdx}
		to := Position{Player: targetPlayer, Slot: targetSlot}
		a, err := s.slot(from)
		if err != nil {
			return Effect{}, err
		}
		b, err := s.slot(to)
		if err != nil {
			return Effect{}, err
		}
		*a, *b = *b, *a
		return Effect{Kind: EffectSwap, From: from, To: to}, nil

	case Queen:
		pos := Position{Player: playerIdx, Slot: handIdx}
		c, err := s.slot(pos)
		if err != nil {
			return Effect{}, err
		}
		return Effect{Kind: EffectPeek, From: pos, Card: *c}, nil

	case Ace:
		if targetPlayer == NoTarget {
			return Effect{}, nil
		}
		target, err := s.Player(targetPlayer)
		if err != nil {
			return Effect{}, err
		}
		eff := Effect{Kind: EffectGive, To: Position{Player: targetPlayer, Slot: NoTarget}}
		if len(s.Deck) == 0 {
			return eff, nil
		}
		for i, c := range target.Hand {
			if c.IsZero() {
				target.Hand[i] = s.Deck[len(s.Deck)-1]
				s.Deck = s.Deck[:len(s.Deck)-1]
				eff.To.Slot = i
				eff.Card = target.Hand[i]
				break
			}
		}
		return eff, nil
	}

	// King scores at round end; nothing happens at play time.
	return Effect{}, nil
}
