package domain

// NoPlayer marks an unset player index (no Dutch caller yet).
const NoPlayer = -1

// NoTarget marks an absent target argument for a special card.
const NoTarget = -1

// DrawSource selects the pile a card is drawn from.
type DrawSource string

const (
	// SourceDeck draws the face-down top of the deck.
	SourceDeck DrawSource = "deck"
	// SourceDiscard draws the visible top of the discard pile.
	SourceDiscard DrawSource = "discard"
)

// Rules holds the tunable constants of a game.
type Rules struct {
	HandSize      int
	DutchPenalty  int
	GameOverScore int
}

// DefaultRules returns the standard Dutch rules: four-card hands, a ten point
// penalty for a wrong Dutch call, game over at one hundred points.
func DefaultRules() Rules {
	return Rules{HandSize: 4, DutchPenalty: 10, GameOverScore: 100}
}

// withDefaults fills unset fields from DefaultRules. The zero Rules is
// entirely unset; otherwise a zero DutchPenalty is kept and disables the
// penalty.
func (r Rules) withDefaults() Rules {
	d := DefaultRules()
	if r == (Rules{}) {
		return d
	}
	if r.HandSize <= 0 {
		r.HandSize = d.HandSize
	}
	if r.DutchPenalty < 0 {
		r.DutchPenalty = d.DutchPenalty
	}
	if r.GameOverScore <= 0 {
		r.GameOverScore = d.GameOverScore
	}
	return r
}

// Player holds a participant's hand and scoring state.
type Player struct {
	Name    string
	Hand    []Card // fixed length; zero Card is an empty slot
	Score   int    // cumulative across rounds
	Penalty int    // pending for the current round
}

// PendingDraw is the card a player has drawn but not yet placed.
type PendingDraw struct {
	Card   Card
	Source DrawSource
}

// Position addresses a single hand slot on the table.
type Position struct {
	Player int
	Slot   int
}

// GameState is the aggregate for one round of Dutch.
type GameState struct {
	RoundID string
	Rules   Rules

	Players     []*Player
	Deck        []Card // last element is the next draw
	DiscardPile []Card // last element is the visible top

	CurrentPlayer int
	RoundEnded    bool
	DutchCalled   bool
	DutchCaller   int

	Pending *PendingDraw
}

// Player returns the player at idx or ErrInvalidPlayer.
func (s *GameState) Player(idx int) (*Player, error) {
	if idx < 0 || idx >= len(s.Players) {
		return nil, ErrInvalidPlayer
	}
	return s.Players[idx], nil
}

// TopDiscard returns the visible discard card, if any.
func (s *GameState) TopDiscard() (Card, bool) {
	return DrawCard(s, SourceDiscard)
}

func (s *GameState) slot(pos Position) (*Card, error) {
	p, err := s.Player(pos.Player)
	if err != nil {
		return nil, err
	}
	if pos.Slot < 0 || pos.Slot >= len(p.Hand) {
		return nil, ErrInvalidSlot
	}
	return &p.Hand[pos.Slot], nil
}

// CardCount returns the number of cards held in hands, deck, discard pile and
// the pending slot.
func (s *GameState) CardCount() int {
	n := len(s.Deck) + len(s.DiscardPile)
	for _, p := range s.Players {
		n += p.FilledSlots()
	}
	if s.Pending != nil {
		n++
	}
	return n
}

// FilledSlots counts the non-empty slots of the hand.
func (p *Player) FilledSlots() int {
	n := 0
	for _, c := range p.Hand {
		if !c.IsZero() {
			n++
		}
	}
	return n
}
