package app

import (
	"errors"
	"math/rand"
	"testing"

	"dutch/internal/domain"
)

func newTestService(seed int64) *Service {
	return NewService(rand.New(rand.NewSource(seed)), domain.DefaultRules())
}

func card(r domain.Rank, s domain.Suit) domain.Card {
	return domain.Card{Suit: s, Rank: r}
}

func findEvent(t *testing.T, evs []Event, kind EventKind) Event {
	t.Helper()
	for _, ev := range evs {
		if ev.Kind == kind {
			return ev
		}
	}
	t.Fatalf("no %s event in %+v", kind, evs)
	return Event{}
}

func TestStartRoundDealsHands(t *testing.T) {
	svc := newTestService(42)

	state, evs, err := svc.StartRound([]string{"Joueur 1", "Joueur 2"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	for i, p := range state.Players {
		if p.FilledSlots() != 4 {
			t.Fatalf("player %d has %d cards, want 4", i, p.FilledSlots())
		}
	}

	ev := findEvent(t, evs, EventRoundStarted)
	payload := ev.Payload.(RoundStartedPayload)
	if len(payload.Players) != 2 || payload.DeckSize != 43 || payload.HandSize != 4 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if ev.RoundID != state.RoundID || len(ev.Recipients) != 0 {
		t.Fatalf("round started should be a broadcast for round %s: %+v", state.RoundID, ev)
	}
}

func TestStartRoundPlayerBounds(t *testing.T) {
	svc := newTestService(1)
	if _, _, err := svc.StartRound([]string{"solo"}); !errors.Is(err, ErrTooFewPlayers) {
		t.Fatalf("err = %v, want ErrTooFewPlayers", err)
	}
	if _, _, err := svc.StartRound(make([]string, MaxPlayers+1)); !errors.Is(err, ErrTooManyPlayers) {
		t.Fatalf("err = %v, want ErrTooManyPlayers", err)
	}
}

func TestDrawFromDeckIsPrivate(t *testing.T) {
	svc := newTestService(5)
	state, _, err := svc.StartRound([]string{"a", "b", "c"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	top := state.Deck[len(state.Deck)-1]

	evs, err := svc.Draw(state, 0, domain.SourceDeck)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if len(evs) != 2 {
		t.Fatalf("events = %d, want 2", len(evs))
	}
	mine := evs[0].Payload.(CardDrawnPayload)
	if mine.Card != top || len(evs[0].Recipients) != 1 || evs[0].Recipients[0] != 0 {
		t.Fatalf("actor event = %+v", evs[0])
	}
	theirs := evs[1].Payload.(CardDrawnPayload)
	if !theirs.Card.IsZero() || len(evs[1].Recipients) != 2 {
		t.Fatalf("others event leaks card: %+v", evs[1])
	}

	if _, err := svc.Draw(state, 0, domain.SourceDiscard); !errors.Is(err, domain.ErrDrawPending) {
		t.Fatalf("second draw err = %v, want ErrDrawPending", err)
	}
}

func TestTurnProtocol(t *testing.T) {
	svc := newTestService(9)
	state, _, err := svc.StartRound([]string{"a", "b"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}

	if _, err := svc.Draw(state, 1, domain.SourceDeck); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("err = %v, want ErrNotYourTurn", err)
	}
	if _, err := svc.Draw(state, 7, domain.SourceDeck); !errors.Is(err, ErrUnknownPlayer) {
		t.Fatalf("err = %v, want ErrUnknownPlayer", err)
	}
	if _, err := svc.Exchange(state, 0, 0); !errors.Is(err, domain.ErrNoPendingDraw) {
		t.Fatalf("err = %v, want ErrNoPendingDraw", err)
	}

	discardTop, _ := state.TopDiscard()
	evs, err := svc.Draw(state, 0, domain.SourceDiscard)
	if err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if len(evs) != 1 || evs[0].Payload.(CardDrawnPayload).Card != discardTop {
		t.Fatalf("discard draw should be one public event: %+v", evs)
	}
	if _, err := svc.CallDutch(state, 0); !errors.Is(err, domain.ErrDrawPending) {
		t.Fatalf("err = %v, want ErrDrawPending", err)
	}

	old := state.Players[0].Hand[2]
	evs, err = svc.Exchange(state, 0, 2)
	if err != nil {
		t.Fatalf("exchange error: %v", err)
	}
	if state.Players[0].Hand[2] != discardTop {
		t.Fatalf("slot = %v, want %v", state.Players[0].Hand[2], discardTop)
	}
	if got := findEvent(t, evs, EventCardExchanged).Payload.(CardExchangedPayload); got.Displaced != old {
		t.Fatalf("displaced = %v, want %v", got.Displaced, old)
	}
	if got := findEvent(t, evs, EventTurnChanged).Payload.(TurnChangedPayload); got.CurrentPlayer != 1 {
		t.Fatalf("next player = %d, want 1", got.CurrentPlayer)
	}
	if top, _ := state.TopDiscard(); top != old {
		t.Fatalf("discard top = %v, want %v", top, old)
	}
	if state.CardCount() != domain.DeckSize {
		t.Fatalf("card count = %d, want %d", state.CardCount(), domain.DeckSize)
	}

	if _, err := svc.Draw(state, 1, domain.SourceDeck); err != nil {
		t.Fatalf("draw error: %v", err)
	}
	evs, err = svc.Discard(state, 1)
	if err != nil {
		t.Fatalf("discard error: %v", err)
	}
	findEvent(t, evs, EventCardDiscarded)
	if state.CurrentPlayer != 0 {
		t.Fatalf("turn should return to 0, got %d", state.CurrentPlayer)
	}
}

func TestPlaySpecialRedactsForOthers(t *testing.T) {
	svc := newTestService(11)
	state, _, err := svc.StartRound([]string{"a", "b"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	state.Deck = append(state.Deck, card(domain.Queen, domain.SuitClubs))
	peeked := state.Players[0].Hand[3]

	if _, err := svc.Draw(state, 0, domain.SourceDeck); err != nil {
		t.Fatalf("draw error: %v", err)
	}
	evs, err := svc.PlaySpecial(state, 0, 3, domain.NoTarget, domain.NoTarget)
	if err != nil {
		t.Fatalf("play special error: %v", err)
	}

	var mine, theirs *SpecialPlayedPayload
	for _, ev := range evs {
		if ev.Kind != EventSpecialPlayed {
			continue
		}
		p := ev.Payload.(SpecialPlayedPayload)
		if len(ev.Recipients) == 1 && ev.Recipients[0] == 0 {
			mine = &p
		} else {
			theirs = &p
		}
	}
	if mine == nil || theirs == nil {
		t.Fatalf("expected actor and public special events: %+v", evs)
	}
	if mine.Effect.Kind != domain.EffectPeek || mine.Effect.Card != peeked {
		t.Fatalf("actor effect = %+v, want peek of %v", mine.Effect, peeked)
	}
	if !theirs.Effect.Card.IsZero() || theirs.Effect.Kind != domain.EffectPeek {
		t.Fatalf("public effect leaks card: %+v", theirs.Effect)
	}
	if top, _ := state.TopDiscard(); top != card(domain.Queen, domain.SuitClubs) {
		t.Fatalf("queen not discarded, top = %v", top)
	}
	if state.CurrentPlayer != 1 {
		t.Fatalf("turn not advanced")
	}
}

func TestPlaySpecialAceDealsFaceDown(t *testing.T) {
	svc := newTestService(13)
	state, _, err := svc.StartRound([]string{"a", "b"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	dealt := card(9, domain.SuitHearts)
	state.Players[1].Hand[2] = domain.Card{}
	state.Deck = append(state.Deck, dealt, card(domain.Ace, domain.SuitSpades))

	if _, err := svc.Draw(state, 0, domain.SourceDeck); err != nil {
		t.Fatalf("draw error: %v", err)
	}
	evs, err := svc.PlaySpecial(state, 0, 0, 1, domain.NoTarget)
	if err != nil {
		t.Fatalf("play special error: %v", err)
	}

	if state.Players[1].Hand[2] != dealt {
		t.Fatalf("slot 2 = %v, want %v", state.Players[1].Hand[2], dealt)
	}
	seen := 0
	for _, ev := range evs {
		if ev.Kind != EventSpecialPlayed {
			continue
		}
		seen++
		eff := ev.Payload.(SpecialPlayedPayload).Effect
		if eff.Kind != domain.EffectGive || eff.To != (domain.Position{Player: 1, Slot: 2}) {
			t.Fatalf("effect = %+v, want give to 1/2", eff)
		}
		if !eff.Card.IsZero() {
			t.Fatalf("dealt card shown to %v: %v", ev.Recipients, eff.Card)
		}
	}
	if seen != 2 {
		t.Fatalf("special events = %d, want 2", seen)
	}
}

func TestPlaySpecialRejectsPlainCard(t *testing.T) {
	svc := newTestService(12)
	state, _, err := svc.StartRound([]string{"a", "b"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	state.Deck = append(state.Deck, card(7, domain.SuitClubs))
	if _, err := svc.Draw(state, 0, domain.SourceDeck); err != nil {
		t.Fatalf("draw error: %v", err)
	}
	if _, err := svc.PlaySpecial(state, 0, 0, domain.NoTarget, domain.NoTarget); !errors.Is(err, domain.ErrNotSpecial) {
		t.Fatalf("err = %v, want ErrNotSpecial", err)
	}
	if state.Pending == nil || state.CurrentPlayer != 0 {
		t.Fatalf("refused play must keep the turn and the drawn card")
	}
}

func TestCallDutchScoresRound(t *testing.T) {
	svc := newTestService(21)
	state, _, err := svc.StartRound([]string{"a", "b"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	state.Players[0].Hand = []domain.Card{
		card(10, domain.SuitSpades), card(2, domain.SuitClubs), card(2, domain.SuitHearts), card(domain.Ace, domain.SuitClubs),
	}
	state.Players[1].Hand = []domain.Card{
		card(4, domain.SuitHearts), card(3, domain.SuitClubs), card(2, domain.SuitDiamonds), card(domain.Ace, domain.SuitSpades),
	}

	evs, err := svc.CallDutch(state, 0)
	if err != nil {
		t.Fatalf("call dutch error: %v", err)
	}
	if !state.RoundEnded || state.DutchCaller != 0 {
		t.Fatalf("round not finalized: ended=%v caller=%d", state.RoundEnded, state.DutchCaller)
	}
	if state.Players[0].Score != 25 || state.Players[1].Score != 10 {
		t.Fatalf("scores = %d/%d, want 25/10", state.Players[0].Score, state.Players[1].Score)
	}

	scored := findEvent(t, evs, EventRoundScored).Payload.(RoundScoredPayload)
	if scored.Scores[0].DutchPenalty != 10 || scored.Totals[1] != 10 || len(scored.Hands[0]) != 4 {
		t.Fatalf("round scored payload = %+v", scored)
	}
	for _, ev := range evs {
		if ev.Kind == EventGameOver {
			t.Fatalf("game should not be over at 25 points")
		}
	}

	if _, err := svc.Draw(state, 1, domain.SourceDeck); !errors.Is(err, ErrRoundOver) {
		t.Fatalf("err = %v, want ErrRoundOver", err)
	}
}

func TestNextRoundCarriesScores(t *testing.T) {
	svc := newTestService(33)
	state, _, err := svc.StartRound([]string{"a", "b"})
	if err != nil {
		t.Fatalf("start round error: %v", err)
	}
	if _, _, err := svc.NextRound(state); !errors.Is(err, ErrRoundInProgress) {
		t.Fatalf("err = %v, want ErrRoundInProgress", err)
	}

	state.Players[0].Score = 40
	state.Players[1].Score = 95
	state.Players[1].Hand = []domain.Card{
		card(domain.King, domain.SuitSpades), card(domain.King, domain.SuitClubs), card(10, domain.SuitClubs), card(9, domain.SuitClubs),
	}
	state.Players[0].Hand = []domain.Card{
		card(domain.Ace, domain.SuitHearts), card(domain.Ace, domain.SuitClubs), card(domain.Ace, domain.SuitSpades), card(domain.Ace, domain.SuitDiamonds),
	}
	evs, err := svc.CallDutch(state, 0)
	if err != nil {
		t.Fatalf("call dutch error: %v", err)
	}
	over := findEvent(t, evs, EventGameOver).Payload.(GameOverPayload)
	if over.Standings[0].Name != "a" || over.Standings[0].Score != 44 {
		t.Fatalf("standings = %+v", over.Standings)
	}

	next, evs, err := svc.NextRound(state)
	if err != nil {
		t.Fatalf("next round error: %v", err)
	}
	if next.Players[0].Score != 44 || next.Players[1].Score != 140 {
		t.Fatalf("scores = %d/%d, want 44/140", next.Players[0].Score, next.Players[1].Score)
	}
	if next.RoundEnded || next.DutchCalled || next.RoundID == state.RoundID {
		t.Fatalf("next round should be fresh: %+v", next)
	}
	started := findEvent(t, evs, EventRoundStarted).Payload.(RoundStartedPayload)
	if started.Scores[1] != 140 {
		t.Fatalf("round started scores = %v", started.Scores)
	}
}
