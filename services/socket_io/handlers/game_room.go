package handlers

import (
	"log"
	"strings"

	models "fibbler/models/postgres"
	"fibbler/repository"
	game "fibbler/services/game"
	"fibbler/services/notify"
	socketio_types "fibbler/services/socket_io/types"
	"fibbler/sync"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

func gameSummary(g *models.Game) gin.H {
	players := make([]gin.H, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, gin.H{
			"userId":   p.ID,
			"username": p.Username,
			"score":    p.Score,
		})
	}
	return gin.H{
		"gameId":      g.ID,
		"name":        g.Name,
		"host":        g.HostUsername,
		"status":      string(g.Status),
		"substate":    string(g.Substate),
		"visibility":  string(g.Visibility),
		"size":        g.Size,
		"totalRounds": g.TotalRounds,
		"players":     players,
	}
}

// HandleJoinGameRoom attaches the socket to a game's room, enrolling the
// user first unless they already hold a seat (the host after creating the
// game over REST, or a reconnecting player).
func HandleJoinGameRoom(gs *game.Service, users *repository.UserRepository,
	client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		log.Printf("[JOIN] User %s joining game %s, Socket ID: %s", username, gameID, client.Id())

		g, err := gs.GameByID(gameID)
		if err != nil {
			emitServiceError(client, err)
			return
		}

		if gs.IsPlayer(g, username) {
			// Already enrolled, just re-attach the socket.
			client.Join(socketio_types.GameRoom(gameID))
			client.Emit("gameJoined", gameSummary(g))
			log.Printf("[JOIN] %s re-attached to game %s", username, gameID)
			return
		}

		g, events, err := gs.JoinGame(gameID, username)
		if err != nil {
			emitServiceError(client, err)
			return
		}

		client.Join(socketio_types.GameRoom(gameID))
		client.Emit("gameJoined", gameSummary(g))
		sio.Dispatch(gameID, events)
		if err := users.SetInGameFlag(username, true); err != nil {
			log.Printf("[JOIN-ERROR] Flagging %s as in a game: %v", username, err)
		}
		log.Printf("[JOIN-SUCCESS] %s joined game %s (%d/%d players)",
			username, gameID, len(g.Players), g.Size)
	}
}

// HandleLeaveGameRoom removes the user from the game. Host departures may
// abort the whole game, in which case the room is disbanded.
func HandleLeaveGameRoom(gs *game.Service, users *repository.UserRepository,
	client *socket.Socket, username string,
	sio *socketio_types.SocketServer, sm *sync.SyncManager,
	notifier *notify.Notifier) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		log.Printf("[LEAVE] User %s leaving game %s", username, gameID)

		g, events, err := gs.LeaveGame(gameID, username)
		if err != nil {
			emitServiceError(client, err)
			return
		}

		sio.EvictFromRoom(gameID, username)
		sio.Dispatch(gameID, events)
		if err := users.SetInGameFlag(username, false); err != nil {
			log.Printf("[LEAVE-ERROR] Unflagging %s: %v", username, err)
		}
		if g.Status == models.StatusAborted {
			sio.DisbandRoom(gameID)
			finalizeGame(g, sm, notifier)
		}
		client.Emit("gameLeft", gin.H{"gameId": gameID})
	}
}

// HandleDisconnecting treats a dropped connection as leaving every game the
// socket was attached to. There is no grace period: the roster shrinks
// immediately and pending phases re-check completion.
func HandleDisconnecting(gs *game.Service, users *repository.UserRepository,
	client *socket.Socket, username string,
	sio *socketio_types.SocketServer, sm *sync.SyncManager,
	notifier *notify.Notifier) func(args ...interface{}) {
	return func(args ...interface{}) {
		log.Printf("[DISCONNECT] User %s disconnecting, Socket ID: %s", username, client.Id())

		for _, room := range client.Rooms().Keys() {
			gameID := strings.TrimPrefix(string(room), "game:")
			if gameID == string(room) {
				continue
			}
			g, events, err := gs.LeaveGame(gameID, username)
			if err != nil {
				log.Printf("[DISCONNECT-ERROR] Leaving game %s for %s: %v", gameID, username, err)
				continue
			}
			sio.Dispatch(gameID, events)
			if g.Status == models.StatusAborted {
				sio.DisbandRoom(gameID)
				finalizeGame(g, sm, notifier)
			}
		}

		if err := users.SetInGameFlag(username, false); err != nil {
			log.Printf("[DISCONNECT-ERROR] Unflagging %s: %v", username, err)
		}
		sio.RemoveConnection(username)
	}
}
