package postgres

import (
	"gorm.io/datatypes"
)

/*
 * 'GameProfile' defines the structure for a user's game profile. It is
 * referenced in User, Friendship, Game and Player
 */
type GameProfile struct {
	Username  string         `gorm:"primaryKey;size:50;not null"`
	UserStats datatypes.JSON `gorm:"type:jsonb;default:'{}'"`
	UserIcon  int            `gorm:"default:0"`
	IsInAGame bool           `gorm:"default:false"`

	Friendships1 []Friendship `gorm:"foreignKey:Username1"`
	Friendships2 []Friendship `gorm:"foreignKey:Username2"`
	HostedGames  []Game       `gorm:"foreignKey:HostUsername"`
	Players      []Player     `gorm:"foreignKey:Username"`
}

// ProfileStats is the shape persisted in the UserStats JSON column.
type ProfileStats struct {
	GamesPlayed int `json:"games_played"`
	GamesWon    int `json:"games_won"`
	TotalScore  int `json:"total_score"`
}
