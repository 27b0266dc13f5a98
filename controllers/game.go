package controllers

import (
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"

	game_constants "fibbler/constants/game"
	models "fibbler/models/postgres"
	redis_models "fibbler/models/redis"
	"fibbler/repository"
	game "fibbler/services/game"
	"fibbler/services/notify"
	redis "fibbler/services/redis"
	"fibbler/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func statusOf(err error) int {
	switch game.CodeOf(err) {
	case game.CodeNotFound:
		return http.StatusNotFound
	case game.CodeForbidden:
		return http.StatusForbidden
	case game.CodeConflict:
		return http.StatusConflict
	case game.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// @Summary Creates a new game
// @Description Creates a preparing game hosted by the authenticated user; the host is enrolled automatically
// @Tags game
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param name formData string true "Game name"
// @Param visibility formData string false "public, private or friends_only"
// @Param size formData integer false "Maximum number of players"
// @Param total_rounds formData integer false "Number of rounds"
// @Success 201 {object} object{game_id=string,message=string}
// @Failure 400 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/games [post]
// @Security ApiKeyAuth
func CreateGame(db *gorm.DB, gs *game.Service, notifier *notify.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		input := game.CreateGameInput{
			Name:        strings.TrimSpace(c.PostForm("name")),
			Visibility:  models.Visibility(c.DefaultPostForm("visibility", string(models.VisibilityPublic))),
			Size:        game_constants.DefaultGameSize,
			TotalRounds: game_constants.DefaultTotalRounds,
		}
		if raw := c.PostForm("size"); raw != "" {
			size, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid size"})
				return
			}
			input.Size = size
		}
		if raw := c.PostForm("total_rounds"); raw != "" {
			rounds, err := strconv.Atoi(raw)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid total_rounds"})
				return
			}
			input.TotalRounds = rounds
		}

		g, err := gs.CreateGame(input, user.ProfileUsername)
		if err != nil {
			c.JSON(statusOf(err), gin.H{"error": game.ClientMessage(err)})
			return
		}

		notifier.Publish(notify.SubjectGameCreated, notify.GameNotice{
			GameID: g.ID,
			Name:   g.Name,
			Host:   g.HostUsername,
		})
		log.Printf("[GAME] %s created game %s (%s)", user.ProfileUsername, g.ID, g.Name)
		c.JSON(http.StatusCreated, gin.H{
			"game_id": g.ID,
			"message": "Game created successfully",
		})
	}
}

// @Summary Gives info of a game
// @Description Given a game id, returns its settings, roster and progress
// @Tags game
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path string true "Id of the game wanted"
// @Success 200 {object} object{game_id=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/games/{game_id} [get]
// @Security ApiKeyAuth
func GetGameInfo(db *gorm.DB, gs *game.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}

		g, err := gs.GameByID(c.Param("game_id"))
		if err != nil {
			c.JSON(statusOf(err), gin.H{"error": game.ClientMessage(err)})
			return
		}

		players := make([]gin.H, len(g.Players))
		for i, p := range g.Players {
			players[i] = gin.H{
				"user_id":  p.ID,
				"username": p.Username,
				"score":    p.Score,
				"icon":     utils.UserIcon(db, p.Username),
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"game_id":       g.ID,
			"name":          g.Name,
			"host":          g.HostUsername,
			"status":        string(g.Status),
			"substate":      string(g.Substate),
			"visibility":    string(g.Visibility),
			"size":          g.Size,
			"total_rounds":  g.TotalRounds,
			"rounds_played": len(g.Rounds),
			"players":       players,
			"created_at":    g.CreatedAt,
		})
	}
}

// @Summary Lists games the user can join
// @Description Preparing games that are public, or friends-only when hosted by a friend
// @Tags game
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} object{game_id=string,name=string,host=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/games/joinable [get]
// @Security ApiKeyAuth
func ListJoinableGames(db *gorm.DB) gin.HandlerFunc {
	games := repository.NewGameStore(db)
	friendships := repository.NewFriendshipRepository(db)
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		friends, err := friendships.FriendsOf(user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friendships"})
			return
		}

		joinable, err := games.ListJoinable(friends)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching games"})
			return
		}

		list := make([]gin.H, len(joinable))
		for i, g := range joinable {
			list[i] = gin.H{
				"game_id":      g.ID,
				"name":         g.Name,
				"host":         g.HostUsername,
				"visibility":   string(g.Visibility),
				"players":      len(g.Players),
				"size":         g.Size,
				"total_rounds": g.TotalRounds,
			}
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary Lists the user's active games
// @Tags game
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} object{game_id=string,name=string,status=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/games/mine [get]
// @Security ApiKeyAuth
func ListMyGames(db *gorm.DB) gin.HandlerFunc {
	games := repository.NewGameStore(db)
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		mine, err := games.GamesOf(user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching games"})
			return
		}

		list := make([]gin.H, len(mine))
		for i, g := range mine {
			list[i] = gin.H{
				"game_id":  g.ID,
				"name":     g.Name,
				"host":     g.HostUsername,
				"status":   string(g.Status),
				"substate": string(g.Substate),
			}
		}
		c.JSON(http.StatusOK, list)
	}
}

// @Summary Returns a game's scoreboard
// @Description Players ranked by score, highest first; ties share rank order by username
// @Tags game
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path string true "Id of the game"
// @Success 200 {object} object{game_id=string,scores=array}
// @Failure 404 {object} object{error=string}
// @Router /auth/games/{game_id}/scoreboard [get]
// @Security ApiKeyAuth
func GetGameScoreboard(db *gorm.DB, gs *game.Service, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := authenticatedUser(c, db); !ok {
			return
		}
		gameID := c.Param("game_id")

		// Redis holds the board refreshed on the last scoring pass.
		if cached, err := redisClient.GetScoreboard(gameID); err == nil {
			c.JSON(http.StatusOK, gin.H{
				"game_id": cached.GameID,
				"round":   cached.Round,
				"scores":  cached.Scores,
			})
			return
		}

		g, err := gs.GameByID(gameID)
		if err != nil {
			c.JSON(statusOf(err), gin.H{"error": game.ClientMessage(err)})
			return
		}

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

		c.JSON(http.StatusOK, gin.H{
			"game_id": board.GameID,
			"round":   board.Round,
			"scores":  board.Scores,
		})
	}
}
