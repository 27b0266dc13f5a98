package handlers

import (
	game "fibbler/services/game"

	"github.com/gin-gonic/gin"
	"github.com/zishang520/socket.io/v2/socket"
)

// emitServiceError surfaces a game service failure to the calling client.
// Internal detail is already stripped by ClientMessage.
func emitServiceError(client *socket.Socket, err error) {
	client.Emit("error", gin.H{
		"error": game.ClientMessage(err),
		"code":  string(game.CodeOf(err)),
	})
}

// stringArg pulls a required string argument, emitting an error when absent.
func stringArg(client *socket.Socket, args []interface{}, i int, name string) (string, bool) {
	if len(args) <= i {
		client.Emit("error", gin.H{"error": "Missing argument: " + name, "code": string(game.CodeValidation)})
		return "", false
	}
	s, ok := args[i].(string)
	if !ok || s == "" {
		client.Emit("error", gin.H{"error": "Invalid argument: " + name, "code": string(game.CodeValidation)})
		return "", false
	}
	return s, true
}

// numberArg pulls a required numeric argument. JSON numbers arrive as
// float64; integers sent by some clients arrive as int64.
func numberArg(client *socket.Socket, args []interface{}, i int, name string) (int64, bool) {
	if len(args) <= i {
		client.Emit("error", gin.H{"error": "Missing argument: " + name, "code": string(game.CodeValidation)})
		return 0, false
	}
	switch v := args[i].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case int:
		return int64(v), true
	default:
		client.Emit("error", gin.H{"error": "Invalid argument: " + name, "code": string(game.CodeValidation)})
		return 0, false
	}
}
