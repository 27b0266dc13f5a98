package redis

// PlayerScore is one row of a game's live scoreboard.
type PlayerScore struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// Scoreboard is the cached live scoreboard for a game, refreshed after
// every scoring pass so clients can re-fetch it without hitting Postgres.
type Scoreboard struct {
	GameID string        `json:"game_id"`
	Round  int           `json:"round"`
	Scores []PlayerScore `json:"scores"`
}
