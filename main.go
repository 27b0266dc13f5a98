package main

import (
	"log"
	"os"
	"strconv"
	"time"

	"fibbler/config"
	_ "fibbler/config/swagger"
	"fibbler/middleware"
	"fibbler/repository"
	"fibbler/routes"
	game "fibbler/services/game"
	"fibbler/services/notify"
	"fibbler/services/redis"
	"fibbler/services/socket_io"
	"fibbler/sync"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// @title Fibbler API
// @version 1.0
// @description Gin-Gonic server for the "Fibbler" bluff trivia API
// @BasePath /
func main() {
	godotenv.Load()
	log.Println("Setting up server...")

	if os.Getenv("PROD") == "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	gormDB, err := config.ConnectGORM()
	if err != nil {
		log.Fatalf("Error connecting to PostgreSQL: %v", err)
	}
	log.Println("GORM Connected")

	// Only migrate in development or during deployment
	if os.Getenv("MIGRATE_POSTGRES") == "true" {
		log.Println("Migrating PostgreSQL database...")
		if err := config.MigrateDatabase(gormDB); err != nil {
			log.Printf("Warning: Database migration failed: %v", err)
		} else {
			log.Println("Database migrated successfully")
		}
	}

	sqlDB, err := gormDB.DB()
	if err != nil {
		log.Fatalf("Error reading GORM PostgreSQL instance: %v", err)
	}
	defer sqlDB.Close()

	redisClient, err := config.ConnectRedis()
	if err != nil {
		log.Fatalf("Error connecting to Redis: %v", err)
	}
	log.Println("Connection to Redis successful")
	defer redis.CloseRedis(redisClient)

	notifier, err := notify.Connect(os.Getenv("NATS_URL"))
	if err != nil {
		log.Printf("Warning: NATS connection failed, notifications disabled: %v", err)
	}
	defer notifier.Close()

	gameStore := repository.NewGameStore(gormDB)
	users := repository.NewUserRepository(gormDB)
	friendships := repository.NewFriendshipRepository(gormDB)
	prompts := repository.NewPromptRepository(gormDB)
	gameService := game.NewService(gameStore, users, friendships, prompts)
	if secs, err := strconv.Atoi(os.Getenv("ANSWER_WINDOW_SECONDS")); err == nil && secs > 0 {
		gameService.AnswerWindow = time.Duration(secs) * time.Second
	}
	if secs, err := strconv.Atoi(os.Getenv("VOTE_WINDOW_SECONDS")); err == nil && secs > 0 {
		gameService.VoteWindow = time.Duration(secs) * time.Second
	}
	syncManager := sync.NewSyncManager(redisClient, users, gameStore)

	r := gin.Default()

	middleware.SetUpMiddleware(r)

	routes.SetupRoutes(r, gormDB, gameService, redisClient, notifier)

	sioServer := &socket_io.MySocketServer{}
	sioServer.Start(r, gormDB, gameService, redisClient, syncManager, notifier)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Error starting server: %v", err)
	}
}
