package ports

import "context"

// GameResult is one player's final standing when a game ends.
type GameResult struct {
	UserID   string
	Username string
	Score    int
	Rank     int // 1 = winner (lowest score)
	Metadata map[string]interface{}
}

// ScoreboardPort records finished games outside the match.
type ScoreboardPort interface {
	// RecordResults stores the outcome of a finished game.
	// Only the winner(s) with Rank 1 are credited with a win.
	RecordResults(ctx context.Context, results []GameResult) error
}
