package nakama

import (
	"errors"
	"fmt"
	"math"

	"dutch/internal/app"
	"dutch/internal/domain"

	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

var errBadField = errors.New("malformed field")

// encodeMessage marshals a flat payload as protobuf Struct JSON.
func encodeMessage(fields map[string]interface{}) ([]byte, error) {
	st, err := structpb.NewStruct(fields)
	if err != nil {
		return nil, err
	}
	return protojson.Marshal(st)
}

// decodeRequest parses a client payload. An empty payload is an empty request.
func decodeRequest(data []byte) (*structpb.Struct, error) {
	st := &structpb.Struct{}
	if len(data) == 0 {
		return st, nil
	}
	if err := protojson.Unmarshal(data, st); err != nil {
		return nil, err
	}
	return st, nil
}

// intField reads an integral number field, returning def when absent.
func intField(req *structpb.Struct, key string, def int) (int, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return def, nil
	}
	n, ok := v.GetKind().(*structpb.Value_NumberValue)
	if !ok || n.NumberValue != math.Trunc(n.NumberValue) {
		return 0, fmt.Errorf("%s: %w", key, errBadField)
	}
	return int(n.NumberValue), nil
}

// stringField reads a string field, returning def when absent.
func stringField(req *structpb.Struct, key, def string) (string, error) {
	v, ok := req.GetFields()[key]
	if !ok {
		return def, nil
	}
	s, ok := v.GetKind().(*structpb.Value_StringValue)
	if !ok {
		return "", fmt.Errorf("%s: %w", key, errBadField)
	}
	return s.StringValue, nil
}

// cardValue maps a card to its wire form; the empty slot is null.
func cardValue(c domain.Card) interface{} {
	if c.IsZero() {
		return nil
	}
	return map[string]interface{}{
		"suit": string(c.Suit),
		"rank": int(c.Rank),
	}
}

func cardsValue(cards []domain.Card) []interface{} {
	out := make([]interface{}, len(cards))
	for i, c := range cards {
		out[i] = cardValue(c)
	}
	return out
}

func intsValue(ns []int) []interface{} {
	out := make([]interface{}, len(ns))
	for i, n := range ns {
		out[i] = n
	}
	return out
}

func positionValue(p domain.Position) map[string]interface{} {
	return map[string]interface{}{"player": p.Player, "slot": p.Slot}
}

// eventMessage converts an app event into an op code and wire payload.
// seatOf maps game player indices to table seats.
func eventMessage(ev app.Event, seatOf func(int) int) (int64, map[string]interface{}, error) {
	fields := map[string]interface{}{"round_id": ev.RoundID}

	switch p := ev.Payload.(type) {
	case app.RoundStartedPayload:
		names := make([]interface{}, len(p.Players))
		seats := make([]interface{}, len(p.Players))
		for i, n := range p.Players {
			names[i] = n
			seats[i] = seatOf(i)
		}
		fields["players"] = names
		fields["seats"] = seats
		fields["scores"] = intsValue(p.Scores)
		fields["discard_top"] = cardValue(p.DiscardTop)
		fields["deck_size"] = p.DeckSize
		fields["hand_size"] = p.HandSize
		fields["current_player"] = p.CurrentPlayer
		return OpRoundStarted, fields, nil

	case app.CardDrawnPayload:
		fields["player"] = p.Seat
		fields["source"] = string(p.Source)
		fields["card"] = cardValue(p.Card)
		return OpCardDrawn, fields, nil

	case app.CardExchangedPayload:
		fields["player"] = p.Seat
		fields["slot"] = p.Slot
		fields["displaced"] = cardValue(p.Displaced)
		return OpCardExchanged, fields, nil

	case app.CardDiscardedPayload:
		fields["player"] = p.Seat
		fields["card"] = cardValue(p.Card)
		return OpCardDiscarded, fields, nil

	case app.SpecialPlayedPayload:
		fields["player"] = p.Seat
		fields["card"] = cardValue(p.Card)
		fields["effect"] = p.Effect.Kind.String()
		fields["from"] = positionValue(p.Effect.From)
		fields["to"] = positionValue(p.Effect.To)
		fields["revealed"] = cardValue(p.Effect.Card)
		return OpSpecialPlayed, fields, nil

	case app.TurnChangedPayload:
		fields["current_player"] = p.CurrentPlayer
		return OpTurnChanged, fields, nil

	case app.DutchCalledPayload:
		fields["player"] = p.Seat
		return OpDutchCalled, fields, nil

	case app.RoundScoredPayload:
		hands := make([]interface{}, len(p.Hands))
		for i, h := range p.Hands {
			hands[i] = cardsValue(h)
		}
		rows := make([]interface{}, len(p.Scores))
		for i, s := range p.Scores {
			rows[i] = map[string]interface{}{
				"player":        s.Player,
				"hand_total":    s.HandTotal,
				"penalty":       s.Penalty,
				"dutch_penalty": s.DutchPenalty,
				"added":         s.Added,
			}
		}
		fields["hands"] = hands
		fields["scores"] = rows
		fields["totals"] = intsValue(p.Totals)
		return OpRoundScored, fields, nil

	case app.GameOverPayload:
		rows := make([]interface{}, len(p.Standings))
		for i, s := range p.Standings {
			rows[i] = map[string]interface{}{"player": s.Player, "name": s.Name, "score": s.Score}
		}
		fields["standings"] = rows
		return OpGameOver, fields, nil
	}
	return 0, nil, fmt.Errorf("unknown event kind %q", ev.Kind)
}
