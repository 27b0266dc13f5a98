package postgres

/*
 * 'Prompt' is a single trivia prompt: the text shown to the players plus
 * the real answer the bluffs compete against.
 */
type Prompt struct {
	ID            uint   `gorm:"primaryKey"`
	TopicID       uint   `gorm:"not null;index"`
	Content       string `gorm:"type:text;not null"`
	CorrectAnswer string `gorm:"size:100;not null"`
	IsActive      bool   `gorm:"default:true;index"`

	Topic Topic `gorm:"foreignKey:TopicID"`
}
