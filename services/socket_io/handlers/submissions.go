package handlers

import (
	"log"

	game_constants "fibbler/constants/game"
	game "fibbler/services/game"
	redis "fibbler/services/redis"
	socketio_types "fibbler/services/socket_io/types"

	"github.com/zishang520/socket.io/v2/socket"
)

// HandleSubmitAnswer records the player's bluff for the current round.
func HandleSubmitAnswer(gs *game.Service, client *socket.Socket,
	username string, sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		content, ok := stringArg(client, args, 1, "answer")
		if !ok {
			return
		}
		log.Printf("[ANSWER] User %s submitting answer in game %s", username, gameID)

		_, events, err := gs.SubmitAnswer(gameID, username, content)
		if err != nil {
			log.Printf("[ANSWER-ERROR] Game %s, user %s: %v", gameID, username, err)
			emitServiceError(client, err)
			return
		}
		sio.Dispatch(gameID, events)
	}
}

// HandleSubmitVote records the player's vote. Clients vote by answer id;
// the reserved sentinel id addresses the round's true answer.
func HandleSubmitVote(gs *game.Service, redisClient *redis.RedisClient,
	client *socket.Socket, username string,
	sio *socketio_types.SocketServer) func(args ...interface{}) {
	return func(args ...interface{}) {
		gameID, ok := stringArg(client, args, 0, "game id")
		if !ok {
			return
		}
		answerID, ok := numberArg(client, args, 1, "answer id")
		if !ok {
			return
		}
		log.Printf("[VOTE] User %s voting for answer %d in game %s", username, answerID, gameID)

		target := game.PeerAnswerTarget(uint(answerID))
		if answerID == int64(game_constants.CorrectAnswerWireID) {
			target = game.CorrectAnswerTarget()
		}

		g, events, err := gs.SubmitVote(gameID, username, target)
		if err != nil {
			log.Printf("[VOTE-ERROR] Game %s, user %s: %v", gameID, username, err)
			emitServiceError(client, err)
			return
		}
		sio.Dispatch(gameID, events)
		for _, ev := range events {
			if ev.Name == game.EventScoresUpdated || ev.Name == game.EventFinalResults {
				refreshScoreboard(redisClient, g)
				break
			}
		}
	}
}
