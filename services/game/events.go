package game

// Event is one outbound effect produced by a state transition. The service
// never touches the transport: handlers translate inbound messages into
// service calls and dispatch the returned events afterwards. Delivery is
// best-effort and never affects the authoritative state.
type Event struct {
	// Name is the socket event emitted to clients.
	Name string
	// To addresses a single participant (point-to-point) when non-empty;
	// otherwise the event goes to the whole game room.
	To string
	// Exclude omits one participant from a room broadcast.
	Exclude string
	// Payload is the JSON-serializable event body.
	Payload map[string]interface{}
}

// Outbound event names.
const (
	EventPlayerJoined     = "playerJoined"
	EventPlayerLeft       = "playerLeft"
	EventHostChanged      = "hostChanged"
	EventGameStarted      = "gameStarted"
	EventChooseTopic      = "chooseTopic"
	EventPlayerIsChoosing = "PlayerIsChoosingTopic"
	EventAnswerPrompt     = "answerPrompt"
	EventAnswerSubmitted  = "answerSubmitted"
	EventAllAnswersIn     = "allAnswersSubmitted"
	EventVoteSubmitted    = "voteSubmitted"
	EventAllVotesIn       = "allVotesSubmitted"
	EventScoresUpdated    = "scoresUpdated"
	EventFinalResults     = "finalResults"
	EventGameEnded        = "gameEnded"
	EventGameAborted      = "gameAborted"
	EventGameMessage      = "gameMessage"
)

func broadcast(name string, payload map[string]interface{}) Event {
	return Event{Name: name, Payload: payload}
}

func broadcastExcept(name string, payload map[string]interface{}, exclude string) Event {
	return Event{Name: name, Payload: payload, Exclude: exclude}
}

func p2p(name string, to string, payload map[string]interface{}) Event {
	return Event{Name: name, To: to, Payload: payload}
}
