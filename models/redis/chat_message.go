package redis

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage represents a message in the game chat
type ChatMessage struct {
	ID        uuid.UUID `json:"id"`
	Message   string    `json:"message"`
	Username  string    `json:"username"`
	Timestamp time.Time `json:"timestamp"`
}
