package app

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"dutch/internal/domain"
)

// Service contains Dutch use-cases operating on domain state. It enforces the
// turn protocol: only the current player acts, one draw then one placement.
type Service struct {
	rng   *rand.Rand
	rules domain.Rules
}

// NewService constructs a Service with provided rng or a time-seeded default.
func NewService(rng *rand.Rand, rules domain.Rules) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{rng: rng, rules: rules}
}

var (
	ErrTooFewPlayers   = errors.New("not enough players to start")
	ErrTooManyPlayers  = errors.New("too many players for one deck")
	ErrUnknownPlayer   = errors.New("player not found")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrRoundOver       = errors.New("round already scored")
	ErrRoundInProgress = errors.New("round still in progress")
)

// Rules returns the rules new rounds are dealt with.
func (s *Service) Rules() domain.Rules {
	return s.rules
}

// StartRound deals a new round for the given players, scores starting at zero.
func (s *Service) StartRound(names []string) (*domain.GameState, []Event, error) {
	if len(names) < MinPlayers {
		return nil, nil, ErrTooFewPlayers
	}
	if len(names) > MaxPlayers {
		return nil, nil, ErrTooManyPlayers
	}

	state, err := domain.StartRound(s.rng, names, s.rules)
	if err != nil {
		return nil, nil, fmt.Errorf("start round: %w", err)
	}
	return state, []Event{roundStarted(state)}, nil
}

// NextRound replaces a scored round with a fresh deal, carrying the
// cumulative scores over.
func (s *Service) NextRound(prev *domain.GameState) (*domain.GameState, []Event, error) {
	if !prev.RoundEnded {
		return nil, nil, ErrRoundInProgress
	}
	names := make([]string, len(prev.Players))
	for i, p := range prev.Players {
		names[i] = p.Name
	}

	state, err := domain.StartRound(s.rng, names, s.rules)
	if err != nil {
		return nil, nil, fmt.Errorf("next round: %w", err)
	}
	for i, p := range prev.Players {
		state.Players[i].Score = p.Score
	}
	return state, []Event{roundStarted(state)}, nil
}

// Draw takes the top card of src into the actor's pending slot. A deck draw is
// only revealed to the actor.
func (s *Service) Draw(state *domain.GameState, actor int, src domain.DrawSource) ([]Event, error) {
	if err := checkTurn(state, actor); err != nil {
		return nil, err
	}
	card, err := domain.TakeCard(state, src)
	if err != nil {
		return nil, fmt.Errorf("draw: %w", err)
	}

	if src == domain.SourceDiscard {
		return []Event{{
			Kind:    EventCardDrawn,
			RoundID: state.RoundID,
			Payload: CardDrawnPayload{Seat: actor, Source: src, Card: card},
		}}, nil
	}

	events := []Event{{
		Kind:       EventCardDrawn,
		RoundID:    state.RoundID,
		Payload:    CardDrawnPayload{Seat: actor, Source: src, Card: card},
		Recipients: []int{actor},
	}}
	if others := otherSeats(state, actor); len(others) > 0 {
		events = append(events, Event{
			Kind:       EventCardDrawn,
			RoundID:    state.RoundID,
			Payload:    CardDrawnPayload{Seat: actor, Source: src},
			Recipients: others,
		})
	}
	return events, nil
}

// Exchange places the drawn card into one of the actor's slots and discards
// the displaced card, ending the turn.
func (s *Service) Exchange(state *domain.GameState, actor, slot int) ([]Event, error) {
	if err := checkTurn(state, actor); err != nil {
		return nil, err
	}
	old, err := domain.PlacePending(state, slot)
	if err != nil {
		return nil, fmt.Errorf("exchange: %w", err)
	}

	events := []Event{{
		Kind:    EventCardExchanged,
		RoundID: state.RoundID,
		Payload: CardExchangedPayload{Seat: actor, Slot: slot, Displaced: old},
	}}
	return append(events, endTurn(state)), nil
}

// Discard throws the drawn card away unplayed, ending the turn.
func (s *Service) Discard(state *domain.GameState, actor int) ([]Event, error) {
	if err := checkTurn(state, actor); err != nil {
		return nil, err
	}
	card, err := domain.DiscardPending(state)
	if err != nil {
		return nil, fmt.Errorf("discard: %w", err)
	}

	events := []Event{{
		Kind:    EventCardDiscarded,
		RoundID: state.RoundID,
		Payload: CardDiscardedPayload{Seat: actor, Card: card},
	}}
	return append(events, endTurn(state)), nil
}

// PlaySpecial resolves the drawn special card with the actor's slot and the
// optional targets, then discards it and ends the turn. A peeked card is only
// shown to the actor; dealt cards are never shown.
func (s *Service) PlaySpecial(state *domain.GameState, actor, slot, targetPlayer, targetSlot int) ([]Event, error) {
	if err := checkTurn(state, actor); err != nil {
		return nil, err
	}
	var card domain.Card
	if state.Pending != nil {
		card = state.Pending.Card
	}
	eff, err := domain.PlayPending(state, slot, targetPlayer, targetSlot)
	if err != nil {
		return nil, fmt.Errorf("play special: %w", err)
	}

	// Only a Queen shows a face; an Ace deals face down even to the actor.
	redacted := eff
	redacted.Card = domain.Card{}
	own := redacted
	if eff.Kind == domain.EffectPeek {
		own = eff
	}

	events := []Event{{
		Kind:       EventSpecialPlayed,
		RoundID:    state.RoundID,
		Payload:    SpecialPlayedPayload{Seat: actor, Card: card, Effect: own},
		Recipients: []int{actor},
	}}
	if others := otherSeats(state, actor); len(others) > 0 {
		events = append(events, Event{
			Kind:       EventSpecialPlayed,
			RoundID:    state.RoundID,
			Payload:    SpecialPlayedPayload{Seat: actor, Card: card, Effect: redacted},
			Recipients: others,
		})
	}
	return append(events, endTurn(state)), nil
}

// CallDutch ends the round on the actor's call and scores it immediately.
func (s *Service) CallDutch(state *domain.GameState, actor int) ([]Event, error) {
	if err := checkTurn(state, actor); err != nil {
		return nil, err
	}
	if state.Pending != nil {
		return nil, fmt.Errorf("call dutch: %w", domain.ErrDrawPending)
	}
	if err := domain.CallDutch(state, actor); err != nil {
		return nil, fmt.Errorf("call dutch: %w", err)
	}

	scores := domain.ComputeScores(state)
	state.RoundEnded = true

	hands := make([][]domain.Card, len(state.Players))
	totals := make([]int, len(state.Players))
	for i, p := range state.Players {
		hands[i] = append([]domain.Card(nil), p.Hand...)
		totals[i] = p.Score
	}

	events := []Event{
		{Kind: EventDutchCalled, RoundID: state.RoundID, Payload: DutchCalledPayload{Seat: actor}},
		{Kind: EventRoundScored, RoundID: state.RoundID, Payload: RoundScoredPayload{Hands: hands, Scores: scores, Totals: totals}},
	}
	if domain.IsGameOver(state) {
		events = append(events, Event{
			Kind:    EventGameOver,
			RoundID: state.RoundID,
			Payload: GameOverPayload{Standings: domain.Standings(state)},
		})
	}
	return events, nil
}

func checkTurn(state *domain.GameState, actor int) error {
	if state.RoundEnded {
		return ErrRoundOver
	}
	if _, err := state.Player(actor); err != nil {
		return ErrUnknownPlayer
	}
	if state.CurrentPlayer != actor {
		return ErrNotYourTurn
	}
	return nil
}

func endTurn(state *domain.GameState) Event {
	domain.AdvanceTurn(state)
	return Event{
		Kind:    EventTurnChanged,
		RoundID: state.RoundID,
		Payload: TurnChangedPayload{CurrentPlayer: state.CurrentPlayer},
	}
}

func otherSeats(state *domain.GameState, seat int) []int {
	out := make([]int, 0, len(state.Players)-1)
	for i := range state.Players {
		if i != seat {
			out = append(out, i)
		}
	}
	return out
}

func roundStarted(state *domain.GameState) Event {
	names := make([]string, len(state.Players))
	scores := make([]int, len(state.Players))
	for i, p := range state.Players {
		names[i] = p.Name
		scores[i] = p.Score
	}
	top, _ := state.TopDiscard()
	return Event{
		Kind:    EventRoundStarted,
		RoundID: state.RoundID,
		Payload: RoundStartedPayload{
			Players:       names,
			Scores:        scores,
			DiscardTop:    top,
			DeckSize:      len(state.Deck),
			HandSize:      state.Rules.HandSize,
			CurrentPlayer: state.CurrentPlayer,
		},
	}
}
