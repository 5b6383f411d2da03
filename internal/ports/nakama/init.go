package nakama

import (
	"context"
	"database/sql"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs, leaderboards and match handlers for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)
	if err := loadGameConfig(env); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}

	if err := RegisterRPCs(initializer); err != nil {
		return err
	}

	if err := createLeaderboards(ctx, nk); err != nil {
		logger.Error("InitModule: Failed to create leaderboards: %v", err)
		return err
	}

	if err := initializer.RegisterMatch(MatchNameDutch, func(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
		return newMatchHandler(), nil
	}); err != nil {
		return err
	}

	logger.Info("Dutch Go module loaded.")
	return nil
}
