package controllers

import (
	"net/http"

	redis "fibbler/services/redis"
	"fibbler/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Returns a game's chat history
// @Description Stored messages of the game, oldest first. Players only.
// @Tags game
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param game_id path string true "Id of the game"
// @Success 200 {object} object{game_id=string,messages=array}
// @Failure 403 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Router /auth/games/{game_id}/chat [get]
// @Security ApiKeyAuth
func GetChatHistory(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}
		gameID := c.Param("game_id")

		if _, err := utils.CheckGameExists(db, gameID); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Game not found"})
			return
		}
		isPlayer, err := utils.IsPlayerInGame(db, gameID, user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
			return
		}
		if !isPlayer {
			c.JSON(http.StatusForbidden, gin.H{"error": "You are not a player of this game"})
			return
		}

		messages, err := redisClient.GetChatHistory(gameID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error loading chat history"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"game_id": gameID, "messages": messages})
	}
}
