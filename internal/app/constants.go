package app

// MinPlayers is the smallest table a round can be dealt for.
const MinPlayers = 2

// MaxPlayers is bounded by the deck: twelve four-card hands plus the discard seed.
const MaxPlayers = 12
