package nakama

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"dutch/internal/app"
	"dutch/internal/config"
	"dutch/internal/domain"
	"dutch/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
	"google.golang.org/protobuf/types/known/structpb"
)

const defaultConfigPath = "data/game_config.json"

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Seats      []string                    // user IDs by seat, empty string means seat is empty
	OwnerSeat  int                         // seat index of the match owner, -1 if none
	Tick       int64                       // current tick of the match
	Presences  map[string]runtime.Presence // user ID -> presence for targeted messaging
	Names      map[string]string           // user ID -> display name
	App        *app.Service                // Dutch app service with game logic
	Game       *domain.GameState           // current round, nil while in lobby
	GameSeats  []int                       // game player index -> seat index
	Scoreboard ports.ScoreboardPort        // records finished games
}

func (ms *MatchState) GetOpenSeatsCount() int {
	count := 0
	for _, seat := range ms.Seats {
		if seat == "" {
			count++
		}
	}
	return count
}

func (ms *MatchState) GetOccupiedSeatCount() int {
	return len(ms.Seats) - ms.GetOpenSeatsCount()
}

// Phase reports the lifecycle stage advertised in the label.
func (ms *MatchState) Phase() string {
	switch {
	case ms.Game == nil:
		return PhaseLobby
	case ms.Game.RoundEnded:
		return PhaseScored
	default:
		return PhasePlaying
	}
}

// seatOfUser returns the seat held by userID or -1.
func (ms *MatchState) seatOfUser(userID string) int {
	for i, seatUserID := range ms.Seats {
		if seatUserID == userID {
			return i
		}
	}
	return -1
}

// playerOfUser returns the game player index of userID or -1.
func (ms *MatchState) playerOfUser(userID string) int {
	seat := ms.seatOfUser(userID)
	for i, s := range ms.GameSeats {
		if s == seat && seat >= 0 {
			return i
		}
	}
	return -1
}

// seatOfPlayer maps a game player index back to its seat.
func (ms *MatchState) seatOfPlayer(player int) int {
	if player < 0 || player >= len(ms.GameSeats) {
		return -1
	}
	return ms.GameSeats[player]
}

// inGame reports whether userID holds a seat in the current game.
func (ms *MatchState) inGame(userID string) bool {
	return ms.Game != nil && ms.playerOfUser(userID) >= 0
}

// lowestAvailableSeat returns the first free seat index or -1 when full.
func lowestAvailableSeat(seats []string) int {
	for i, userID := range seats {
		if userID == "" {
			return i
		}
	}
	return -1
}

// findFirstConnectedSeat returns the first seat whose occupant is connected, or -1.
func findFirstConnectedSeat(seats []string, presences map[string]runtime.Presence) int {
	for i, userID := range seats {
		if userID == "" {
			continue
		}
		if _, ok := presences[userID]; ok {
			return i
		}
	}
	return -1
}

// loadGameConfig loads the config file named by the runtime env, or the default path.
func loadGameConfig(env map[string]string) error {
	path := defaultConfigPath
	if val, ok := env[EnvConfigPath]; ok && val != "" {
		path = val
	}
	return config.LoadGameConfig(path)
}

// tableSeats is the number of seats per table: the env override when valid,
// else the config value clamped to the deck's player limit.
func tableSeats(cfg *config.GameConfig, env map[string]string) int {
	if val, ok := env[EnvMaxSeats]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= app.MinPlayers && i <= app.MaxPlayers {
			return i
		}
	}
	return max(min(cfg.Seats(), app.MaxPlayers), app.MinPlayers)
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	if err := loadGameConfig(env); err != nil {
		logger.Warn("MatchInit: Could not load game config: %v", err)
	}
	cfg := config.GetGameConfig()

	seats := tableSeats(cfg, env)
	tickRate := cfg.Ticks()
	if val, ok := env[EnvTickRate]; ok {
		if i, err := strconv.Atoi(val); err == nil && i >= 1 && i <= 60 {
			tickRate = i
		}
	}

	state := &MatchState{
		Seats:     make([]string, seats),
		OwnerSeat: -1,
		Tick:      time.Now().Unix(),
		Presences: make(map[string]runtime.Presence),
		Names:     make(map[string]string),
		App:       app.NewService(nil, cfg.Rules()),
	}
	if nk != nil {
		state.Scoreboard = NewNakamaScoreboardAdapter(nk)
	}

	label, err := buildLabel(state)
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	return state, tickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	// Players of a running game may always come back.
	if matchState.seatOfUser(presence.GetUserId()) >= 0 {
		return state, true, ""
	}
	if matchState.Game != nil {
		return state, false, "match in progress"
	}
	if matchState.GetOpenSeatsCount() <= 0 {
		return state, false, "match full"
	}
	return state, true, ""
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		matchState.Presences[userID] = p
		matchState.Names[userID] = p.GetUsername()

		if matchState.seatOfUser(userID) >= 0 {
			logger.Debug("MatchJoin: User %s rejoined.", userID)
			continue
		}
		seat := lowestAvailableSeat(matchState.Seats)
		if seat < 0 {
			logger.Warn("MatchJoin: User %s joined but no seat was available.", userID)
			continue
		}
		matchState.Seats[seat] = userID
	}

	if matchState.OwnerSeat < 0 || matchState.Seats[matchState.OwnerSeat] == "" {
		matchState.OwnerSeat = findFirstConnectedSeat(matchState.Seats, matchState.Presences)
		if matchState.OwnerSeat >= 0 {
			logger.Debug("MatchJoin: Owner set to seat %d.", matchState.OwnerSeat)
		}
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

// MatchLeave is called when one or more players leave the match. Seats of
// players in a running game stay reserved so they can rejoin.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		userID := p.GetUserId()
		delete(matchState.Presences, userID)

		if matchState.inGame(userID) {
			logger.Debug("MatchLeave: User %s left mid-game, seat kept.", userID)
			continue
		}
		if seat := matchState.seatOfUser(userID); seat >= 0 {
			matchState.Seats[seat] = ""
			delete(matchState.Names, userID)
			logger.Debug("MatchLeave: User %s left, seat %d freed.", userID, seat)
		}
	}

	if len(matchState.Presences) == 0 {
		logger.Info("MatchLeave: Terminating match with nobody connected.")
		return nil
	}

	if matchState.OwnerSeat < 0 || !isConnected(matchState, matchState.OwnerSeat) {
		matchState.OwnerSeat = findFirstConnectedSeat(matchState.Seats, matchState.Presences)
		logger.Debug("MatchLeave: Owner set to seat %d.", matchState.OwnerSeat)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	mh.broadcastMatchState(matchState, dispatcher, logger)

	return matchState
}

func isConnected(ms *MatchState, seat int) bool {
	if seat < 0 || seat >= len(ms.Seats) || ms.Seats[seat] == "" {
		return false
	}
	_, ok := ms.Presences[ms.Seats[seat]]
	return ok
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartRound:
			mh.handleStartRound(ctx, matchState, dispatcher, logger, msg)
		case OpDraw:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, "Draw", func(actor int, req *structpb.Struct) ([]app.Event, error) {
				source, err := stringField(req, "source", string(domain.SourceDeck))
				if err != nil {
					return nil, err
				}
				return matchState.App.Draw(matchState.Game, actor, domain.DrawSource(source))
			})
		case OpExchange:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, "Exchange", func(actor int, req *structpb.Struct) ([]app.Event, error) {
				slot, err := intField(req, "slot", -1)
				if err != nil {
					return nil, err
				}
				return matchState.App.Exchange(matchState.Game, actor, slot)
			})
		case OpDiscard:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, "Discard", func(actor int, _ *structpb.Struct) ([]app.Event, error) {
				return matchState.App.Discard(matchState.Game, actor)
			})
		case OpPlaySpecial:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, "PlaySpecial", func(actor int, req *structpb.Struct) ([]app.Event, error) {
				slot, err := intField(req, "slot", -1)
				if err != nil {
					return nil, err
				}
				targetPlayer, err := intField(req, "target_player", domain.NoTarget)
				if err != nil {
					return nil, err
				}
				targetSlot, err := intField(req, "target_slot", domain.NoTarget)
				if err != nil {
					return nil, err
				}
				return matchState.App.PlaySpecial(matchState.Game, actor, slot, targetPlayer, targetSlot)
			})
		case OpCallDutch:
			mh.handleIntent(ctx, matchState, dispatcher, logger, msg, "CallDutch", func(actor int, _ *structpb.Struct) ([]app.Event, error) {
				return matchState.App.CallDutch(matchState.Game, actor)
			})
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	return matchState
}

func (mh *matchHandler) handleStartRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	senderSeat := state.seatOfUser(senderID)

	logger.Info("StartRound: Request received from %s (seat=%d, owner_seat=%d, occupied=%d)", senderID, senderSeat, state.OwnerSeat, state.GetOccupiedSeatCount())

	if senderSeat != state.OwnerSeat {
		logger.Warn("StartRound: User %s tried to start a round but is not owner (owner_seat=%d)", senderID, state.OwnerSeat)
		mh.sendError(state, dispatcher, logger, senderID, 403, "only the owner can start a round")
		return
	}

	var (
		game   *domain.GameState
		events []app.Event
		err    error
	)
	switch {
	case state.Game != nil && !state.Game.RoundEnded:
		err = app.ErrRoundInProgress
	case state.Game != nil && !domain.IsGameOver(state.Game):
		game, events, err = state.App.NextRound(state.Game)
	default:
		var names []string
		var seats []int
		for i, userID := range state.Seats {
			if userID == "" {
				continue
			}
			names = append(names, state.Names[userID])
			seats = append(seats, i)
		}
		game, events, err = state.App.StartRound(names)
		if err == nil {
			state.GameSeats = seats
		}
	}
	if err != nil {
		logger.Warn("StartRound: Failed to start round: %v", err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	state.Game = game
	mh.updateLabel(state, dispatcher, logger)
	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	logger.Info("StartRound: Round %s started with %d players.", game.RoundID, len(game.Players))
}

// handleIntent resolves the sender, decodes the request and applies a turn
// intent through the app service.
func (mh *matchHandler) handleIntent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData, name string, apply func(actor int, req *structpb.Struct) ([]app.Event, error)) {
	senderID := msg.GetUserId()

	if state.Game == nil {
		logger.Warn("%s: Game not started.", name)
		mh.sendError(state, dispatcher, logger, senderID, 400, "game not started")
		return
	}
	actor := state.playerOfUser(senderID)
	if actor < 0 {
		logger.Warn("%s: User %s is not seated in the game.", name, senderID)
		mh.sendError(state, dispatcher, logger, senderID, 403, app.ErrUnknownPlayer.Error())
		return
	}

	req, err := decodeRequest(msg.GetData())
	if err != nil {
		logger.Warn("%s: Invalid request from %s: %v", name, senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, "invalid request")
		return
	}

	events, err := apply(actor, req)
	if err != nil {
		logger.Warn("%s: User %s (player %d) refused: %v", name, senderID, actor, err)
		mh.sendError(state, dispatcher, logger, senderID, 400, err.Error())
		return
	}

	for _, ev := range events {
		mh.broadcastEvent(ctx, state, dispatcher, logger, ev)
	}
	if !state.Game.RoundEnded {
		return
	}
	if domain.IsGameOver(state.Game) {
		mh.returnToLobby(state, logger)
		mh.broadcastMatchState(state, dispatcher, logger)
	}
	mh.updateLabel(state, dispatcher, logger)
}

// returnToLobby drops a finished game. Seats of players who left during it
// are released and the table opens to newcomers again.
func (mh *matchHandler) returnToLobby(state *MatchState, logger runtime.Logger) {
	state.Game = nil
	state.GameSeats = nil

	for i, userID := range state.Seats {
		if userID == "" {
			continue
		}
		if _, ok := state.Presences[userID]; !ok {
			state.Seats[i] = ""
			delete(state.Names, userID)
			logger.Debug("Lobby: Released seat %d of departed user %s.", i, userID)
		}
	}
	if !isConnected(state, state.OwnerSeat) {
		state.OwnerSeat = findFirstConnectedSeat(state.Seats, state.Presences)
	}
	logger.Info("Lobby: Game over, table back in lobby with %d players.", state.GetOccupiedSeatCount())
}

// broadcastEvent handles the conversion and dispatching of app events to Nakama.
func (mh *matchHandler) broadcastEvent(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, fields, err := eventMessage(ev, state.seatOfPlayer)
	if err != nil {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	if ev.Kind == app.EventGameOver {
		mh.recordResults(ctx, state, logger, ev.Payload.(app.GameOverPayload))
	}

	bytes, err := encodeMessage(fields)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	// Determine recipients (default to broadcast)
	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, player := range ev.Recipients {
			seat := state.seatOfPlayer(player)
			if seat < 0 {
				continue
			}
			if p, ok := state.Presences[state.Seats[seat]]; ok {
				recipients = append(recipients, p)
			}
		}

		// Targeted events must never fall back to a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to broadcast event %v: %v", ev.Kind, err)
	}
}

func (mh *matchHandler) recordResults(ctx context.Context, state *MatchState, logger runtime.Logger, p app.GameOverPayload) {
	if state.Scoreboard == nil || len(p.Standings) == 0 {
		return
	}
	best := p.Standings[0].Score
	results := make([]ports.GameResult, 0, len(p.Standings))
	rank := 1
	for i, s := range p.Standings {
		if i > 0 && s.Score > p.Standings[i-1].Score {
			rank = i + 1
		}
		seat := state.seatOfPlayer(s.Player)
		if seat < 0 {
			continue
		}
		userID := state.Seats[seat]
		results = append(results, ports.GameResult{
			UserID:   userID,
			Username: state.Names[userID],
			Score:    s.Score,
			Rank:     rank,
			Metadata: map[string]interface{}{
				"match_id":   ctx.Value(runtime.RUNTIME_CTX_MATCH_ID),
				"best_score": best,
			},
		})
	}
	if err := state.Scoreboard.RecordResults(ctx, results); err != nil {
		logger.Error("Failed to record results: %v", err)
	}
}

func (mh *matchHandler) broadcastMatchState(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	bytes, err := encodeMessage(snapshotFields(state))
	if err != nil {
		logger.Error("Failed to marshal table snapshot: %v", err)
		return
	}
	if err := dispatcher.BroadcastMessage(OpTableSnapshot, bytes, nil, nil, true); err != nil {
		logger.Error("Failed to broadcast table snapshot: %v", err)
	}
}

// snapshotFields describes the table without revealing any hand.
func snapshotFields(state *MatchState) map[string]interface{} {
	seats := make([]interface{}, len(state.Seats))
	for i, userID := range state.Seats {
		_, connected := state.Presences[userID]
		seat := map[string]interface{}{
			"user_id":   userID,
			"name":      state.Names[userID],
			"connected": connected && userID != "",
			"player":    -1,
		}
		if state.Game != nil {
			for player, s := range state.GameSeats {
				if s != i {
					continue
				}
				pl := state.Game.Players[player]
				seat["player"] = player
				seat["cards"] = pl.FilledSlots()
				seat["score"] = pl.Score
			}
		}
		seats[i] = seat
	}

	fields := map[string]interface{}{
		"seats":      seats,
		"owner_seat": state.OwnerSeat,
		"tick":       fmt.Sprint(state.Tick),
		"phase":      state.Phase(),
	}
	if state.Game != nil {
		top, _ := state.Game.TopDiscard()
		fields["round_id"] = state.Game.RoundID
		fields["current_player"] = state.Game.CurrentPlayer
		fields["deck_size"] = len(state.Game.Deck)
		fields["discard_top"] = cardValue(top)
	}
	return fields
}

// sendError sends a game error message to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, code int, message string) {
	bytes, err := encodeMessage(map[string]interface{}{"code": code, "message": message})
	if err != nil {
		logger.Error("Failed to marshal game error: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpGameError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

// buildLabel renders the match label used by quick-match queries.
func buildLabel(state *MatchState) (string, error) {
	phase := state.Phase()
	bytes, err := encodeMessage(map[string]interface{}{
		"open":  phase == PhaseLobby && state.GetOpenSeatsCount() > 0,
		"game":  GameName,
		"phase": phase,
		"seats": state.GetOpenSeatsCount(),
	})
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := buildLabel(state)
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
	}
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d seconds grace", graceSeconds)
	return state
}

func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	return state, ""
}
