package sync

import (
	"encoding/json"
	"fmt"

	models "fibbler/models/postgres"
	"fibbler/repository"
	redis "fibbler/services/redis"
)

// SyncManager folds a finished game's results into the players' persistent
// profiles and clears the game's Redis cache.
type SyncManager struct {
	redisClient *redis.RedisClient
	users       *repository.UserRepository
	games       *repository.GameStore
}

func NewSyncManager(redisClient *redis.RedisClient, users *repository.UserRepository,
	games *repository.GameStore) *SyncManager {
	return &SyncManager{
		redisClient: redisClient,
		users:       users,
		games:       games,
	}
}

// PersistGameResults updates each player's stats JSON with the outcome of
// the given game. Winners are every player holding the top score, so a tie
// counts a win for each. Call after the game reaches its terminal status.
func (sm *SyncManager) PersistGameResults(game *models.Game) error {
	topScore := 0
	for _, p := range game.Players {
		if p.Score > topScore {
			topScore = p.Score
		}
	}

	for _, p := range game.Players {
		profile, err := sm.users.ProfileOf(p.Username)
		if err != nil {
			return fmt.Errorf("error loading profile for %s: %v", p.Username, err)
		}

		var stats models.ProfileStats
		if len(profile.UserStats) > 0 {
			if err := json.Unmarshal(profile.UserStats, &stats); err != nil {
				return fmt.Errorf("error decoding stats for %s: %v", p.Username, err)
			}
		}

		stats.GamesPlayed++
		stats.TotalScore += p.Score
		if p.Score == topScore && topScore > 0 {
			stats.GamesWon++
		}

		data, err := json.Marshal(stats)
		if err != nil {
			return fmt.Errorf("error encoding stats for %s: %v", p.Username, err)
		}
		profile.UserStats = data
		profile.IsInAGame = false

		if err := sm.users.SaveProfile(profile); err != nil {
			return fmt.Errorf("error saving profile for %s: %v", p.Username, err)
		}
	}

	return nil
}

// CleanupGameData removes the game's chat history and scoreboard cache.
func (sm *SyncManager) CleanupGameData(gameID string) error {
	if err := sm.redisClient.CleanupGameKeys(gameID); err != nil {
		return fmt.Errorf("error cleaning Redis data for game %s: %v", gameID, err)
	}
	return nil
}

// ArchiveAbortedGame soft-deletes an aborted game so it drops out of the
// live listings while its rows survive for audit.
func (sm *SyncManager) ArchiveAbortedGame(game *models.Game) error {
	if game.Status != models.StatusAborted {
		return nil
	}
	if err := sm.games.SoftDeleteGame(game); err != nil {
		return fmt.Errorf("error archiving game %s: %v", game.ID, err)
	}
	return nil
}
