package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameDutch is the authoritative match handler name registered with Nakama.
	MatchNameDutch = "dutch_match"

	// GameName is advertised in match labels.
	GameName = "dutch"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartRound  int64 = 1
	OpDraw        int64 = 2
	OpExchange    int64 = 3
	OpDiscard     int64 = 4
	OpPlaySpecial int64 = 5
	OpCallDutch   int64 = 6

	// Server -> Client events
	OpTableSnapshot int64 = 100
	OpRoundStarted  int64 = 101
	OpCardDrawn     int64 = 102 // private when drawn from the deck
	OpCardExchanged int64 = 103
	OpCardDiscarded int64 = 104
	OpSpecialPlayed int64 = 105 // peeked card private to the actor
	OpTurnChanged   int64 = 106
	OpDutchCalled   int64 = 107
	OpRoundScored   int64 = 108
	OpGameOver      int64 = 109
	OpGameError     int64 = 110
)

// Table phases advertised in the match label.
const (
	PhaseLobby   = "lobby"
	PhasePlaying = "playing"
	PhaseScored  = "scored"
)

// Runtime env keys read in MatchInit.
const (
	EnvConfigPath = "dutch_config_path"
	EnvMaxSeats   = "dutch_max_seats"
	EnvTickRate   = "dutch_tick_rate"
)
