package controllers

import (
	"net/http"
	"strings"

	models "fibbler/models/postgres"
	redis_models "fibbler/models/redis"
	"fibbler/repository"
	redis "fibbler/services/redis"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// @Summary Get a list of a user friends
// @Description Returns a list of the user's friends with their live presence
// @Tags friends
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Success 200 {array} object{username=string,icon=integer,status=string}
// @Failure 500 {object} object{error=string}
// @Router /auth/friends [get]
// @Security ApiKeyAuth
func ListFriends(db *gorm.DB, redisClient *redis.RedisClient) gin.HandlerFunc {
	friendships := repository.NewFriendshipRepository(db)
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		usernames, err := friendships.FriendsOf(user.ProfileUsername)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friendships"})
			return
		}

		var friends []models.GameProfile
		if len(usernames) > 0 {
			if err := db.Where("username IN (?)", usernames).Find(&friends).Error; err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching friends data"})
				return
			}
		}

		simplifiedFriends := make([]gin.H, len(friends))
		for i, friend := range friends {
			status := redis_models.StatusOffline
			if presence, err := redisClient.GetPresence(friend.Username); err == nil {
				status = presence.Status
			}
			simplifiedFriends[i] = gin.H{
				"username": friend.Username,
				"icon":     friend.UserIcon,
				"status":   string(status),
			}
		}
		c.JSON(http.StatusOK, simplifiedFriends)
	}
}

// @Summary Adds a friend
// @Description Creates a friendship between the authenticated user and the given username
// @Tags friends
// @Accept x-www-form-urlencoded
// @Produce json
// @Param Authorization header string true "Bearer JWT token"
// @Param username formData string true "Friend's username"
// @Success 201 {object} object{message=string}
// @Failure 400 {object} object{error=string}
// @Failure 404 {object} object{error=string}
// @Failure 409 {object} object{error=string}
// @Router /auth/friends [post]
// @Security ApiKeyAuth
func AddFriend(db *gorm.DB) gin.HandlerFunc {
	users := repository.NewUserRepository(db)
	friendships := repository.NewFriendshipRepository(db)
	return func(c *gin.Context) {
		user, ok := authenticatedUser(c, db)
		if !ok {
			return
		}

		friend := strings.TrimSpace(c.PostForm("username"))
		if friend == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Username is required"})
			return
		}
		if friend == user.ProfileUsername {
			c.JSON(http.StatusBadRequest, gin.H{"error": "You can't befriend yourself"})
			return
		}

		exists, err := users.UserExists(friend)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking user"})
			return
		}
		if !exists {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}

		already, err := friendships.AreFriends(user.ProfileUsername, friend)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error checking friendship"})
			return
		}
		if already {
			c.JSON(http.StatusConflict, gin.H{"error": "Already friends"})
			return
		}

		if err := friendships.AddFriendship(user.ProfileUsername, friend); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating friendship"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Friend added"})
	}
}
