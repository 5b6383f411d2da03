package nakama

import (
	"context"
	"fmt"

	"dutch/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

// LeaderboardWins counts games won per user.
const LeaderboardWins = "dutch_wins"

// LeaderboardWriter is the subset of runtime.NakamaModule the adapter needs.
type LeaderboardWriter interface {
	LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error)
}

// NakamaScoreboardAdapter implements ports.ScoreboardPort using a Nakama leaderboard.
type NakamaScoreboardAdapter struct {
	nk LeaderboardWriter
}

// NewNakamaScoreboardAdapter creates a new scoreboard adapter.
func NewNakamaScoreboardAdapter(nk LeaderboardWriter) *NakamaScoreboardAdapter {
	return &NakamaScoreboardAdapter{nk: nk}
}

// RecordResults increments the win count of every rank-1 player. The
// leaderboard uses the incr operator, which sums subscores too, so the
// subscore stays 0 and the final score only travels in the metadata.
func (a *NakamaScoreboardAdapter) RecordResults(ctx context.Context, results []ports.GameResult) error {
	for _, r := range results {
		if r.Rank != 1 || r.UserID == "" {
			continue
		}
		metadata := map[string]interface{}{"final_score": r.Score}
		for k, v := range r.Metadata {
			metadata[k] = v
		}
		if _, err := a.nk.LeaderboardRecordWrite(ctx, LeaderboardWins, r.UserID, r.Username, 1, 0, metadata, nil); err != nil {
			return fmt.Errorf("failed to record win for user %s: %w", r.UserID, err)
		}
	}
	return nil
}

// LeaderboardCreator is the subset of runtime.NakamaModule used at init.
type LeaderboardCreator interface {
	LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, enableRanks bool) error
}

// createLeaderboards makes sure the wins leaderboard exists.
func createLeaderboards(ctx context.Context, nk LeaderboardCreator) error {
	// authoritative, descending by wins, incremented on each write, never reset
	return nk.LeaderboardCreate(ctx, LeaderboardWins, true, "desc", "incr", "", map[string]interface{}{"game": GameName}, true)
}
