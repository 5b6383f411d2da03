package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"dutch/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// QuickMatchResponse is the payload returned to clients when requesting a lobby-capable match.
type QuickMatchResponse struct {
	MatchID string `json:"match_id"`
	IsNew   bool   `json:"is_new"`
}

// RegisterRPCs registers Nakama RPC endpoints.
func RegisterRPCs(initializer runtime.Initializer) error {
	return initializer.RegisterRpc(RpcQuickMatch, rpcQuickMatch)
}

// quickMatchQuery selects open Dutch tables still in the lobby.
var quickMatchQuery = fmt.Sprintf("+label.open:T label.game:%s label.phase:%s", GameName, PhaseLobby)

func rpcQuickMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, payload string) (string, error) {
	userID, _ := ctx.Value(runtime.RUNTIME_CTX_USER_ID).(string)
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	limit := 10
	authoritative := true

	minSize := 1
	maxSize := tableSeats(config.GetGameConfig(), env) - 1 // leave room for the caller

	matches, err := nk.MatchList(ctx, limit, authoritative, "", &minSize, &maxSize, quickMatchQuery)
	if err != nil {
		logger.Error("QuickMatch [User:%s]: MatchList error: %v", userID, err)
		return "", err
	}

	if len(matches) > 0 {
		logger.Info("QuickMatch [User:%s]: Found existing match %s", userID, matches[0].MatchId)
		return marshalQuickMatch(QuickMatchResponse{MatchID: matches[0].MatchId, IsNew: false})
	}

	// Create new match; seat/owner assignment happens in MatchJoin (server-authoritative).
	matchID, err := nk.MatchCreate(ctx, MatchNameDutch, map[string]interface{}{})
	if err != nil {
		logger.Error("QuickMatch [User:%s]: MatchCreate error: %v", userID, err)
		return "", err
	}

	logger.Info("QuickMatch [User:%s]: Created new match %s", userID, matchID)
	return marshalQuickMatch(QuickMatchResponse{MatchID: matchID, IsNew: true})
}

func marshalQuickMatch(resp QuickMatchResponse) (string, error) {
	b, err := json.Marshal(resp)
	if err != nil {
		return "", err
	}
	return string(b), nil
}
