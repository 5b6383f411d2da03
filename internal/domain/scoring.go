package domain

import "sort"

// CardPoints returns the end-of-round value of a card. Red Kings are worth
// nothing, black Kings thirteen.
func CardPoints(c Card) int {
	switch c.Rank {
	case Ace:
		return 1
	case Jack:
		return 11
	case Queen:
		return 10
	case King:
		if c.Suit.IsRed() {
			return 0
		}
		return 13
	}
	return int(c.Rank)
}

// HandTotal sums the points of the cards currently in the player's hand.
func HandTotal(p *Player) int {
	total := 0
	for _, c := range p.Hand {
		if !c.IsZero() {
			total += CardPoints(c)
		}
	}
	return total
}

// CallDutch records playerIdx as the Dutch caller. Scoring is a separate step.
func CallDutch(s *GameState, playerIdx int) error {
	if _, err := s.Player(playerIdx); err != nil {
		return err
	}
	s.DutchCalled = true
	s.DutchCaller = playerIdx
	return nil
}

// RoundScore is the breakdown of what one player gained in a scoring pass.
type RoundScore struct {
	Player       int
	HandTotal    int
	Penalty      int
	DutchPenalty int
	Added        int
}

// ComputeScores adds each hand total and pending penalty to the cumulative
// scores, then charges the Dutch penalty to a caller who did not hold the
// lowest hand.
func ComputeScores(s *GameState) []RoundScore {
	scores := make([]RoundScore, len(s.Players))
	for i, p := range s.Players {
		total := HandTotal(p)
		scores[i] = RoundScore{Player: i, HandTotal: total, Penalty: p.Penalty, Added: total + p.Penalty}
		p.Score += total + p.Penalty
		p.Penalty = 0
	}

	if s.DutchCalled && s.DutchCaller != NoPlayer {
		caller, err := s.Player(s.DutchCaller)
		if err != nil {
			return scores
		}
		// Hand totals are recomputed here, independent of the pass above.
		lowest := HandTotal(s.Players[0])
		for _, p := range s.Players[1:] {
			if t := HandTotal(p); t < lowest {
				lowest = t
			}
		}
		if HandTotal(caller) > lowest {
			penalty := s.Rules.withDefaults().DutchPenalty
			caller.Score += penalty
			scores[s.DutchCaller].DutchPenalty = penalty
			scores[s.DutchCaller].Added += penalty
		}
	}
	return scores
}

// IsGameOver reports whether any player reached the game-over score.
func IsGameOver(s *GameState) bool {
	limit := s.Rules.withDefaults().GameOverScore
	for _, p := range s.Players {
		if p.Score >= limit {
			return true
		}
	}
	return false
}

// Standing is one row of the scoreboard.
type Standing struct {
	Player int
	Name   string
	Score  int
}

// Standings orders players by ascending cumulative score, ties kept in seat order.
func Standings(s *GameState) []Standing {
	out := make([]Standing, len(s.Players))
	for i, p := range s.Players {
		out[i] = Standing{Player: i, Name: p.Name, Score: p.Score}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}
