package postgres

/*
 * 'Round' is one prompt cycle within a game. Round numbers are 1-based,
 * sequential and append-only per game; they are never reordered.
 */
type Round struct {
	ID          uint   `gorm:"primaryKey"`
	GameID      string `gorm:"size:50;not null;uniqueIndex:idx_rounds_game_number"`
	RoundNumber int    `gorm:"not null;uniqueIndex:idx_rounds_game_number"`
	PromptID    uint   `gorm:"not null"`
	IsCompleted bool   `gorm:"default:false"`

	// Relationships
	Game    Game     `gorm:"foreignKey:GameID"`
	Prompt  Prompt   `gorm:"foreignKey:PromptID"`
	Answers []Answer `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE;"`
	Votes   []Vote   `gorm:"foreignKey:RoundID;constraint:OnDelete:CASCADE;"`
}
