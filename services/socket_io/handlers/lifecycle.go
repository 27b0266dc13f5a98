package handlers

import (
	"log"
	"sort"

	models "fibbler/models/postgres"
	redis_models "fibbler/models/redis"
	"fibbler/services/notify"
	redis "fibbler/services/redis"
	"fibbler/sync"
)

// finalizeGame runs the bookkeeping owed once a game reaches a terminal
// status: fold results into player profiles, drop the game's Redis keys and
// publish the lifecycle notice. Failures are logged, never surfaced; the
// authoritative transition already happened.
func finalizeGame(g *models.Game, sm *sync.SyncManager, notifier *notify.Notifier) {
	if !g.IsTerminal() {
		return
	}

	if g.Status == models.StatusFinished {
		if err := sm.PersistGameResults(g); err != nil {
			log.Printf("[SYNC-ERROR] Persisting results of game %s: %v", g.ID, err)
		}
	}
	if err := sm.CleanupGameData(g.ID); err != nil {
		log.Printf("[SYNC-ERROR] Cleaning Redis for game %s: %v", g.ID, err)
	}
	if err := sm.ArchiveAbortedGame(g); err != nil {
		log.Printf("[SYNC-ERROR] Archiving game %s: %v", g.ID, err)
	}

	subject := notify.SubjectGameFinished
	if g.Status == models.StatusAborted {
		subject = notify.SubjectGameAborted
	}
	notifier.Publish(subject, notify.GameNotice{
		GameID: g.ID,
		Name:   g.Name,
		Host:   g.HostUsername,
	})
}

// refreshScoreboard rewrites the game's cached scoreboard after a scoring
// pass so REST reads stay off the Postgres aggregate.
func refreshScoreboard(redisClient *redis.RedisClient, g *models.Game) {
	ranked := make([]*models.Player, len(g.Players))
	copy(ranked, g.Players)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Username < ranked[j].Username
	})

	board := &redis_models.Scoreboard{
		GameID: g.ID,
		Round:  len(g.Rounds),
		Scores: make([]redis_models.PlayerScore, len(ranked)),
	}
	for i, p := range ranked {
		board.Scores[i] = redis_models.PlayerScore{Username: p.Username, Score: p.Score}
	}
	if err := redisClient.SaveScoreboard(board); err != nil {
		log.Printf("[SCOREBOARD-ERROR] Caching board of game %s: %v", g.ID, err)
	}
}
