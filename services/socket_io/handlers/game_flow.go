package handlers

import (
	"log"

	game "fibbler/services/game"
	"fibbler/services/notify"
	socketio_types "fibbler/services/socket_io/types"
	"fibbler/sync"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// HandleStartGame kicks the game out of the preparing phase. Host only.
func HandleStartGame(gs *game.Service, client *socket.Socket,
	username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		log.Printf("[START] User %s starting game %s", username, gameID)

		_, events, err := gs.StartGame(gameID, username)
		if err != nil {
			log.Printf("[START-ERROR] Game %s: %v", gameID, err)
			emitServiceError(client, err)
			return
		}
		sio.Dispatch(gameID, events)
	}
}

// HandleChooseTopic opens a new round with the chooser's picked topic.
func HandleChooseTopic(gs *game.Service, client *socket.Socket,
	username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		topicID, ok := numberArg(client, args, 1, "topic id")
		if !ok {
			return
		}
		if topicID <= 0 {
			client.Emit("error", gin.H{"error": "Invalid topic id", "code": string(game.CodeValidation)})
			return
		}
		log.Printf("[TOPIC] User %s chose topic %d in game %s", username, topicID, gameID)

		g, err := gs.GameByID(gameID)
		if err != nil {
			emitServiceError(client, err)
			return
		}
		if g.ChooserUsername != username {
			client.Emit("error", gin.H{
				"error": "It is not your turn to choose a topic",
				"code":  string(game.CodeForbidden),
			})
			return
		}

		_, events, err := gs.AddRoundToGame(gameID, uint(topicID))
		if err != nil {
			log.Printf("[TOPIC-ERROR] Game %s: %v", gameID, err)
			emitServiceError(client, err)
			return
		}
		sio.Dispatch(gameID, events)
	}
}

// HandleEndGame closes out a game showing final results. Host only.
func HandleEndGame(gs *game.Service, client *socket.Socket, username string,
	sio *socketio_types.SocketServer, sm *sync.SyncManager,
	notifier *notify.Notifier) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		log.Printf("[END] User %s ending game %s", username, gameID)

		g, events, err := gs.EndGame(gameID, username)
		if err != nil {
			log.Printf("[END-ERROR] Game %s: %v", gameID, err)
			emitServiceError(client, err)
			return
		}
		sio.Dispatch(gameID, events)
		sio.DisbandRoom(gameID)
		finalizeGame(g, sm, notifier)
	}
}
