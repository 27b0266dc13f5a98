package utils

import (
	"fmt"

	"fibbler/models/postgres"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
)

// ErrorHandler handles global errors
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
	}
}

// Function to check if a game exists
func CheckGameExists(db *gorm.DB, gameID string) (*postgres.Game, error) {
	var game postgres.Game
	result := db.Where("id = ?", gameID).First(&game)

	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("game not found")
		}
		return nil, result.Error
	}

	return &game, nil
}

func IsPlayerInGame(db *gorm.DB, gameID string, username string) (bool, error) {
	var count int64
	err := db.Model(&postgres.Player{}).
		Where("game_id = ? AND username = ?", gameID, username).
		Count(&count).Error

	if err != nil {
		return false, err
	}

	return count > 0, nil
}

// Returns the icon of the user
func UserIcon(db *gorm.DB, username string) int {
	var icon int
	err := db.Model(&postgres.GameProfile{}).
		Select("user_icon").
		Where("username = ?", username).
		Find(&icon).Error
	if err != nil {
		return 1
	}

	return icon
}
