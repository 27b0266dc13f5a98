package postgres

/*
 * 'Vote' is one player's pick during the voting phase. AnswerID is nil when
 * the player voted for the round's correct answer instead of a peer's bluff,
 * in which case IsRight is true. At most one vote per (player, round).
 */
type Vote struct {
	ID          uint  `gorm:"primaryKey"`
	RoundID     uint  `gorm:"not null;uniqueIndex:idx_votes_round_player"`
	PlayerID    uint  `gorm:"not null;uniqueIndex:idx_votes_round_player"`
	AnswerID    *uint `gorm:"default:null"`
	IsRight     bool  `gorm:"default:false"`
	RoundNumber int   `gorm:"not null"`

	// Relationships
	Round  Round   `gorm:"foreignKey:RoundID"`
	Player Player  `gorm:"foreignKey:PlayerID"`
	Answer *Answer `gorm:"foreignKey:AnswerID"`
}
