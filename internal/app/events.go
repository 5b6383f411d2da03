package app

import "dutch/internal/domain"

// EventKind identifies emitted domain events for dispatch by a transport.
type EventKind string

const (
	EventRoundStarted  EventKind = "round_started"
	EventCardDrawn     EventKind = "card_drawn"
	EventCardExchanged EventKind = "card_exchanged"
	EventCardDiscarded EventKind = "card_discarded"
	EventSpecialPlayed EventKind = "special_played"
	EventTurnChanged   EventKind = "turn_changed"
	EventDutchCalled   EventKind = "dutch_called"
	EventRoundScored   EventKind = "round_scored"
	EventGameOver      EventKind = "game_over"
)

// Event is a domain/app event with optional targeted recipients.
type Event struct {
	Kind       EventKind
	RoundID    string
	Payload    any
	Recipients []int // seat indices; empty means broadcast
}

type RoundStartedPayload struct {
	Players       []string
	Scores        []int
	DiscardTop    domain.Card
	DeckSize      int
	HandSize      int
	CurrentPlayer int
}

type CardDrawnPayload struct {
	Seat   int
	Source domain.DrawSource
	Card   domain.Card // zero for recipients who may not see it
}

type CardExchangedPayload struct {
	Seat      int
	Slot      int
	Displaced domain.Card
}

type CardDiscardedPayload struct {
	Seat int
	Card domain.Card
}

type SpecialPlayedPayload struct {
	Seat   int
	Card   domain.Card
	Effect domain.Effect
}

type TurnChangedPayload struct {
	CurrentPlayer int
}

type DutchCalledPayload struct {
	Seat int
}

type RoundScoredPayload struct {
	Hands  [][]domain.Card
	Scores []domain.RoundScore
	Totals []int
}

type GameOverPayload struct {
	Standings []domain.Standing
}
