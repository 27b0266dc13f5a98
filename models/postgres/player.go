package postgres

/*
 * 'Player' is a per-game participant profile, distinct from the global
 * user account. One profile per (game, user) pair; the score only ever
 * grows within a game.
 */
type Player struct {
	ID       uint   `gorm:"primaryKey"`
	GameID   string `gorm:"size:50;not null;uniqueIndex:idx_players_game_user"`
	Username string `gorm:"size:50;not null;uniqueIndex:idx_players_game_user;index"`
	Score    int    `gorm:"default:0"`

	// Relationship with the game and the user's game profile
	Game        Game        `gorm:"foreignKey:GameID"`
	GameProfile GameProfile `gorm:"foreignKey:Username"`
	Answers     []Answer    `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE;"`
	Votes       []Vote      `gorm:"foreignKey:PlayerID;constraint:OnDelete:CASCADE;"`
}
