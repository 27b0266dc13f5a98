package socketio_types

import (
	"log"
	"sync"

	game "fibbler/services/game"

	"github.com/zishang520/socket.io/v2/socket"
)

// SocketServer is a struct that contains the socket.io server and a map of
// socket connections. It is used to handle socket.io connections and to fan
// out game events to their rooms.
type SocketServer struct {
	Sio_server *socket.Server
	// Map to track username -> socket connections
	UserConnections map[string]*socket.Socket
	mutex           sync.RWMutex
}

func NewSocketServer() *SocketServer {
	return &SocketServer{
		UserConnections: make(map[string]*socket.Socket),
	}
}

// GameRoom is the socket.io room holding every connection of a game.
func GameRoom(gameID string) socket.Room {
	return socket.Room("game:" + gameID)
}

// Add methods to manage connections
func (s *SocketServer) AddConnection(username string, client *socket.Socket) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.UserConnections[username] = client
}

func (s *SocketServer) RemoveConnection(username string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	delete(s.UserConnections, username)
}

func (s *SocketServer) GetConnection(username string) (*socket.Socket, bool) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	client, exists := s.UserConnections[username]
	return client, exists
}

// Dispatch emits a batch of game events. Targeted events go straight to the
// recipient's socket; broadcast events go to the game's room, minus the
// excluded user's own socket when one is named. Satisfies the game service's
// Dispatcher so timer-driven advances reach clients through the same path as
// request-driven ones.
func (s *SocketServer) Dispatch(gameID string, events []game.Event) {
	for _, ev := range events {
		if ev.To != "" {
			client, ok := s.GetConnection(ev.To)
			if !ok {
				log.Printf("[DISPATCH] No connection for %s, dropping %s", ev.To, ev.Name)
				continue
			}
			client.Emit(ev.Name, ev.Payload)
			continue
		}

		op := s.Sio_server.To(GameRoom(gameID))
		if ev.Exclude != "" {
			if client, ok := s.GetConnection(ev.Exclude); ok {
				op = op.Except(socket.Room(client.Id()))
			}
		}
		op.Emit(ev.Name, ev.Payload)
	}
}

// EvictFromRoom pulls a user's socket out of a game room, e.g. after the
// user leaves or the game is aborted.
func (s *SocketServer) EvictFromRoom(gameID, username string) {
	if client, ok := s.GetConnection(username); ok {
		client.Leave(GameRoom(gameID))
	}
}

// DisbandRoom empties a game room after the game reaches a terminal state.
func (s *SocketServer) DisbandRoom(gameID string) {
	room := GameRoom(gameID)
	s.Sio_server.To(room).SocketsLeave(room)
}
