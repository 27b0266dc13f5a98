package socket_io

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	redis_models "fibbler/models/redis"
	"fibbler/repository"
	game "fibbler/services/game"
	"fibbler/services/notify"
	redis "fibbler/services/redis"
	"fibbler/services/socket_io/handlers"
	socketio_types "fibbler/services/socket_io/types"
	socketio_utils "fibbler/services/socket_io/utils"
	"fibbler/sync"

	"gorm.io/gorm"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io/v2/socket"
)

type MySocketServer socketio_types.SocketServer

// Start wires the socket.io server onto the router and registers every
// inbound game event. The server is also the game service's dispatcher, so
// timer-driven phase advances reach clients through the same fan-out.
func (sio *MySocketServer) Start(router *gin.Engine, db *gorm.DB, gs *game.Service,
	redisClient *redis.RedisClient, sm *sync.SyncManager, notifier *notify.Notifier) {
	c := socket.DefaultServerOptions()
	c.SetServeClient(true)
	// NOTE: higher ping interval and timeout to 1) reduce network load and 2) support slower networks
	c.SetPingInterval(5 * time.Second)
	c.SetPingTimeout(3 * time.Second)
	c.SetMaxHttpBufferSize(1000000)
	c.SetConnectTimeout(10 * time.Second)
	c.SetTransports(types.NewSet("polling", "websocket"))
	c.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	sio.UserConnections = make(map[string]*socket.Socket)

	sio.Sio_server = socket.NewServer(nil, nil)
	gs.SetDispatcher((*socketio_types.SocketServer)(sio))

	users := repository.NewUserRepository(db)

	sio.Sio_server.On("connection", func(clients ...interface{}) {
		client := clients[0].(*socket.Socket)

		success, username, _ := socketio_utils.VerifyUserConnection(client, db)
		if !success {
			return
		}

		(*socketio_types.SocketServer)(sio).AddConnection(username, client)
		fmt.Println("An individual just connected!: ", username)

		if err := redisClient.SavePresence(&redis_models.PlayerPresence{
			Username: username,
			Status:   redis_models.StatusOnline,
			LastPing: time.Now().Unix(),
			SocketID: string(client.Id()),
		}); err != nil {
			fmt.Println("Error saving presence:", err)
		}

		server := (*socketio_types.SocketServer)(sio)

		// Join the room of a game, enrolling the user when needed
		client.On("join_game_room", handlers.HandleJoinGameRoom(gs, users, client, username, server))

		// Leave a game voluntarily
		client.On("leave_game_room", handlers.HandleLeaveGameRoom(gs, users, client, username, server, sm, notifier))

		// Host starts the game
		client.On("start_game", handlers.HandleStartGame(gs, client, username, server))

		// The designated chooser picks this round's topic
		client.On("choose_topic", handlers.HandleChooseTopic(gs, client, username, server))

		// Submit a bluff answer for the current round
		client.On("submit_answer", handlers.HandleSubmitAnswer(gs, client, username, server))

		// Vote for an answer (or the truth) during the voting phase
		client.On("submit_vote", handlers.HandleSubmitVote(gs, redisClient, client, username, server))

		// Host closes a game standing at final results
		client.On("end_game", handlers.HandleEndGame(gs, client, username, server, sm, notifier))

		// In-game chat
		client.On("game_message", handlers.HandleGameMessage(gs, redisClient, client, username, server))
		client.On("get_chat_history", handlers.HandleGetChatHistory(gs, redisClient, client, username))

		// NOTE: will remove sio connection from map
		client.On("disconnecting", handlers.HandleDisconnecting(gs, users, client, username, server, sm, notifier))

		client.On("disconnect", func(...interface{}) {
			if err := redisClient.DeletePresence(username); err != nil {
				fmt.Println("Error deleting presence:", err)
			}
		})
	})

	router.POST("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))
	router.GET("/socket.io/*f", gin.WrapH(sio.Sio_server.ServeHandler(c)))

	SignalC := make(chan os.Signal, 1)

	signal.Notify(SignalC, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		for s := range SignalC {
			switch s {
			case syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT:
				sio.Sio_server.Close(nil)
				os.Exit(0)
			}
		}
	}()

	fmt.Println("Socket server started")
}
