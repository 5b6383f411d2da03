package nakama

import (
	"context"
	"errors"
	"testing"

	"dutch/internal/ports"

	"github.com/heroiclabs/nakama-common/api"
)

type leaderboardWrite struct {
	id, ownerID, username string
	score, subscore       int64
	metadata              map[string]interface{}
}

type mockLeaderboard struct {
	writes []leaderboardWrite
	err    error
}

func (m *mockLeaderboard) LeaderboardRecordWrite(ctx context.Context, id, ownerID, username string, score, subscore int64, metadata map[string]interface{}, overrideOperator *int) (*api.LeaderboardRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.writes = append(m.writes, leaderboardWrite{id: id, ownerID: ownerID, username: username, score: score, subscore: subscore, metadata: metadata})
	return &api.LeaderboardRecord{}, nil
}

func TestRecordResults_CreditsWinnersOnly(t *testing.T) {
	lb := &mockLeaderboard{}
	adapter := NewNakamaScoreboardAdapter(lb)

	err := adapter.RecordResults(context.Background(), []ports.GameResult{
		{UserID: "user-1", Username: "ann", Score: 40, Rank: 1},
		{UserID: "user-2", Username: "bob", Score: 40, Rank: 1},
		{UserID: "user-3", Username: "cid", Score: 101, Rank: 3},
		{UserID: "", Score: 10, Rank: 1},
	})
	if err != nil {
		t.Fatalf("RecordResults: %v", err)
	}

	if len(lb.writes) != 2 {
		t.Fatalf("writes = %+v, want 2", lb.writes)
	}
	got := lb.writes[0]
	if got.id != LeaderboardWins || got.ownerID != "user-1" || got.username != "ann" {
		t.Fatalf("write = %+v", got)
	}
	// incr adds both score and subscore, so only the win count may move.
	if got.score != 1 || got.subscore != 0 {
		t.Fatalf("score/subscore = %d/%d, want 1/0", got.score, got.subscore)
	}
	if got.metadata["final_score"] != 40 {
		t.Fatalf("metadata = %v, want final_score 40", got.metadata)
	}
}

type leaderboardCreate struct {
	id                  string
	authoritative       bool
	sortOrder, operator string
	resetSchedule       string
}

type mockLeaderboardCreator struct {
	created []leaderboardCreate
}

func (m *mockLeaderboardCreator) LeaderboardCreate(ctx context.Context, id string, authoritative bool, sortOrder, operator, resetSchedule string, metadata map[string]interface{}, enableRanks bool) error {
	m.created = append(m.created, leaderboardCreate{id: id, authoritative: authoritative, sortOrder: sortOrder, operator: operator, resetSchedule: resetSchedule})
	return nil
}

func TestCreateLeaderboards(t *testing.T) {
	nk := &mockLeaderboardCreator{}
	if err := createLeaderboards(context.Background(), nk); err != nil {
		t.Fatalf("createLeaderboards: %v", err)
	}
	want := leaderboardCreate{id: LeaderboardWins, authoritative: true, sortOrder: "desc", operator: "incr"}
	if len(nk.created) != 1 || nk.created[0] != want {
		t.Fatalf("created = %+v, want %+v", nk.created, want)
	}
}

func TestRecordResults_WrapsError(t *testing.T) {
	boom := errors.New("boom")
	adapter := NewNakamaScoreboardAdapter(&mockLeaderboard{err: boom})

	err := adapter.RecordResults(context.Background(), []ports.GameResult{{UserID: "user-1", Rank: 1}})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped boom", err)
	}
}
