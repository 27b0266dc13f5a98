package postgres

/*
 * 'Answer' is one player's bluff for a round. At most one answer per
 * (player, round); a duplicate submission is rejected, never overwritten.
 */
type Answer struct {
	ID       uint   `gorm:"primaryKey"`
	RoundID  uint   `gorm:"not null;uniqueIndex:idx_answers_round_player"`
	PlayerID uint   `gorm:"not null;uniqueIndex:idx_answers_round_player"`
	Content  string `gorm:"size:100;not null"`

	// Relationships
	Round  Round  `gorm:"foreignKey:RoundID"`
	Player Player `gorm:"foreignKey:PlayerID"`
}
