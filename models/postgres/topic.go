package postgres

/*
 * 'Topic' groups prompts into a category the chooser can pick each round.
 */
type Topic struct {
	ID       uint   `gorm:"primaryKey"`
	Title    string `gorm:"size:100;not null;uniqueIndex"`
	IsActive bool   `gorm:"default:true;index"`

	Prompts []Prompt `gorm:"foreignKey:TopicID;constraint:OnDelete:CASCADE;"`
}
