package repository

import (
	models "fibbler/models/postgres"

	"gorm.io/gorm"
)

// PromptRepository is the topic/prompt content service: random topic
// shortlists for the chooser and a random active prompt per topic.
type PromptRepository struct {
	topics  *Repo[models.Topic]
	prompts *Repo[models.Prompt]
}

func NewPromptRepository(db *gorm.DB) *PromptRepository {
	return &PromptRepository{
		topics:  NewRepo[models.Topic](db),
		prompts: NewRepo[models.Prompt](db),
	}
}

// RandomTopics returns up to n active topics, uniformly shuffled by the
// database. Fewer than n topics is not an error; the shortlist shrinks.
func (r *PromptRepository) RandomTopics(n int) ([]models.Topic, error) {
	var topics []models.Topic
	err := r.topics.DB().
		Where("is_active = ?", true).
		Order("RANDOM()").
		Limit(n).
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

// RandomPrompt picks one active prompt of an active topic uniformly.
// Returns gorm.ErrRecordNotFound when the topic has no usable prompt.
func (r *PromptRepository) RandomPrompt(topicID uint) (*models.Prompt, error) {
	var prompt models.Prompt
	err := r.prompts.DB().
		Joins("JOIN topics ON topics.id = prompts.topic_id").
		Where("prompts.topic_id = ? AND prompts.is_active = ? AND topics.is_active = ?",
			topicID, true, true).
		Order("RANDOM()").
		Limit(1).
		Take(&prompt).Error
	if err != nil {
		return nil, err
	}
	return &prompt, nil
}

// ListActiveTopics returns every active topic, alphabetically.
func (r *PromptRepository) ListActiveTopics() ([]models.Topic, error) {
	var topics []models.Topic
	err := r.topics.DB().
		Where("is_active = ?", true).
		Order("title ASC").
		Find(&topics).Error
	if err != nil {
		return nil, err
	}
	return topics, nil
}

func (r *PromptRepository) CreateTopic(t *models.Topic) error {
	return r.topics.Create(t)
}

func (r *PromptRepository) CreatePrompt(p *models.Prompt) error {
	return r.prompts.Create(p)
}
