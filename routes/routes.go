package routes

import (
	"fibbler/controllers"
	"fibbler/middleware"
	game "fibbler/services/game"
	"fibbler/services/notify"
	"fibbler/services/redis"
	utils "fibbler/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRoutes configures all API routes
func SetupRoutes(router *gin.Engine, db *gorm.DB, gs *game.Service,
	redisClient *redis.RedisClient, notifier *notify.Notifier) {
	// utils global
	router.Use(utils.ErrorHandler())

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// API routes group
	api := router.Group("/")

	api.GET("/ping", controllers.Ping)

	api.POST("/login", controllers.Login(db))

	api.POST("/signup", controllers.SignUp(db))

	api.GET("/topics", controllers.ListTopics(db))

	authentication := api.Group("/auth")
	authentication.Use(middleware.AuthRequired)
	{
		authentication.DELETE("/logout", controllers.Logout)

		authentication.GET("/me", controllers.GetProfile(db))

		authentication.PATCH("/icon", controllers.UpdateIcon(db))

		authentication.GET("/friends", controllers.ListFriends(db, redisClient))

		authentication.POST("/friends", controllers.AddFriend(db))

		authentication.POST("/games", controllers.CreateGame(db, gs, notifier))

		authentication.GET("/games/joinable", controllers.ListJoinableGames(db))

		authentication.GET("/games/mine", controllers.ListMyGames(db))

		authentication.GET("/games/:game_id", controllers.GetGameInfo(db, gs))

		authentication.GET("/games/:game_id/scoreboard", controllers.GetGameScoreboard(db, gs, redisClient))

		authentication.GET("/games/:game_id/chat", controllers.GetChatHistory(db, redisClient))

		authentication.POST("/topics", controllers.CreateTopic(db))

		authentication.POST("/topics/:topic_id/prompts", controllers.CreatePrompt(db))
	}
}
