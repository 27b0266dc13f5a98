package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	redis_models "fibbler/models/redis"
	redis_utils "fibbler/services/redis/utils"

	"github.com/redis/go-redis/v9"
)

// RedisClient handles Redis operations: chat history, player presence and
// the live scoreboard cache. Authoritative game state lives in Postgres;
// everything here is reconstructible.
type RedisClient struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisClient creates a new Redis client instance
func NewRedisClient(addr string, db int) *RedisClient {
	var client *redis.Client
	if addr != "localhost:6379" {
		log.Println("Connecting to remote Redis...")
		opt, err := redis.ParseURL(addr)
		if err != nil {
			panic("Error parsing Redis URL")
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: addr,
			DB:   db,
		})
	}
	return &RedisClient{
		client: client,
		ctx:    context.Background(),
	}
}

// AppendChatMessage pushes a message onto the game's chat history.
// Key format: "chat_history:{gameID}", capped at the last 200 messages,
// TTL 24 hours.
func (rc *RedisClient) AppendChatMessage(gameID string, msg *redis_models.ChatMessage) error {
	key := redis_utils.FormatChatHistoryKey(gameID)
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshaling chat message: %v", err)
	}
	pipe := rc.client.Pipeline()
	pipe.RPush(rc.ctx, key, data)
	pipe.LTrim(rc.ctx, key, -200, -1)
	pipe.Expire(rc.ctx, key, 24*time.Hour)
	_, err = pipe.Exec(rc.ctx)
	return err
}

// GetChatHistory returns the game's chat history, oldest first.
func (rc *RedisClient) GetChatHistory(gameID string) ([]redis_models.ChatMessage, error) {
	key := redis_utils.FormatChatHistoryKey(gameID)
	raw, err := rc.client.LRange(rc.ctx, key, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	messages := make([]redis_models.ChatMessage, 0, len(raw))
	for _, item := range raw {
		var msg redis_models.ChatMessage
		if err := json.Unmarshal([]byte(item), &msg); err != nil {
			return nil, fmt.Errorf("error unmarshaling chat message: %v", err)
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// SavePresence stores a participant's live connection state.
// Key format: "presence:{username}", TTL 24 hours.
func (rc *RedisClient) SavePresence(p *redis_models.PlayerPresence) error {
	key := redis_utils.FormatPresenceKey(p.Username)
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("error marshaling presence: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, 24*time.Hour).Err()
}

// GetPresence retrieves a participant's live connection state.
func (rc *RedisClient) GetPresence(username string) (*redis_models.PlayerPresence, error) {
	key := redis_utils.FormatPresenceKey(username)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var p redis_models.PlayerPresence
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("error unmarshaling presence: %v", err)
	}
	return &p, nil
}

// DeletePresence removes a participant's presence on disconnect.
func (rc *RedisClient) DeletePresence(username string) error {
	return rc.client.Del(rc.ctx, redis_utils.FormatPresenceKey(username)).Err()
}

// SaveScoreboard caches a game's live scoreboard after a scoring pass.
// Key format: "scoreboard:{gameID}", TTL 24 hours.
func (rc *RedisClient) SaveScoreboard(sb *redis_models.Scoreboard) error {
	key := redis_utils.FormatScoreboardKey(sb.GameID)
	data, err := json.Marshal(sb)
	if err != nil {
		return fmt.Errorf("error marshaling scoreboard: %v", err)
	}
	return rc.client.Set(rc.ctx, key, data, 24*time.Hour).Err()
}

// GetScoreboard returns the cached scoreboard for a game.
func (rc *RedisClient) GetScoreboard(gameID string) (*redis_models.Scoreboard, error) {
	key := redis_utils.FormatScoreboardKey(gameID)
	data, err := rc.client.Get(rc.ctx, key).Bytes()
	if err != nil {
		return nil, err
	}
	var sb redis_models.Scoreboard
	if err := json.Unmarshal(data, &sb); err != nil {
		return nil, fmt.Errorf("error unmarshaling scoreboard: %v", err)
	}
	return &sb, nil
}

// CleanupGameKeys removes every Redis key tied to a finished game.
func (rc *RedisClient) CleanupGameKeys(gameID string) error {
	keys := []string{
		redis_utils.FormatChatHistoryKey(gameID),
		redis_utils.FormatScoreboardKey(gameID),
	}
	for _, key := range keys {
		if err := rc.client.Del(rc.ctx, key).Err(); err != nil {
			return fmt.Errorf("failed to cleanup Redis key %s: %v", key, err)
		}
	}
	return nil
}
