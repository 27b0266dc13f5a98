package handlers

import (
	"log"
	"time"

	redis_models "fibbler/models/redis"
	game "fibbler/services/game"
	redis "fibbler/services/redis"
	socketio_types "fibbler/services/socket_io/types"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleGameMessage relays a chat message to everyone in the game room and
// appends it to the game's Redis-backed history.
func HandleGameMessage(gs *game.Service, redisClient *redis.RedisClient,
	client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		text, ok := stringArg(client, args, 1, "message")
		if !ok {
			return
		}

		g, err := gs.GameByID(gameID)
		if err != nil {
			emitServiceError(client, err)
			return
		}
		if !gs.IsPlayer(g, username) {
			client.Emit("error", gin.H{
				"error": "You are not a player of this game",
				"code":  string(game.CodeForbidden),
			})
			return
		}

		msg := &redis_models.ChatMessage{
			ID:        uuid.New(),
			Message:   text,
			Username:  username,
			Timestamp: time.Now().UTC(),
		}
		if err := redisClient.AppendChatMessage(gameID, msg); err != nil {
			log.Printf("[CHAT-ERROR] Appending message in game %s: %v", gameID, err)
		}

		sio.Dispatch(gameID, []game.Event{{
			Name: game.EventGameMessage,
			Payload: gin.H{
				"id":        msg.ID.String(),
				"username":  username,
				"message":   text,
				"timestamp": msg.Timestamp,
			},
		}})
	}
}

// HandleGetChatHistory returns the stored chat history of a game to the
// requesting client, oldest first.
func HandleGetChatHistory(gs *game.Service, redisClient *redis.RedisClient,
	client *socket.Socket, username string) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}

		g, err := gs.GameByID(gameID)
		if err != nil {
			emitServiceError(client, err)
			return
		}
		if !gs.IsPlayer(g, username) {
			client.Emit("error", gin.H{
				"error": "You are not a player of this game",
				"code":  string(game.CodeForbidden),
			})
			return
		}

		history, err := redisClient.GetChatHistory(gameID)
		if err != nil {
			log.Printf("[CHAT-ERROR] Loading history of game %s: %v", gameID, err)
			client.Emit("error", gin.H{"error": "Error loading chat history", "code": string(game.CodeInternal)})
			return
		}
		client.Emit("chatHistory", gin.H{"gameId": gameID, "messages": history})
	}
}
