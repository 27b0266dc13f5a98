package game

import (
	models "fibbler/models/postgres"
)

// Store is the slice of the entity store the state machine consumes.
// GameByID must return the full aggregate: roster plus rounds with their
// prompt, answers and votes loaded.
type Store interface {
	GameByID(id string) (*models.Game, error)
	CreateGame(g *models.Game) error
	SaveGame(g *models.Game) error
	AddPlayer(p *models.Player) error
	RemovePlayer(gameID, username string) error
	AddRound(r *models.Round) error
	CompleteRound(r *models.Round) error
	AddAnswer(a *models.Answer) error
	AddVote(v *models.Vote) error
	AddPlayerScore(playerID uint, delta int) error
}

// UserDirectory resolves participant identities; authentication itself
// happens upstream.
type UserDirectory interface {
	UserExists(username string) (bool, error)
}

// FriendChecker answers the FRIENDS_ONLY visibility question.
type FriendChecker interface {
	AreFriends(a, b string) (bool, error)
}

// PromptProvider supplies topic shortlists and prompt content.
type PromptProvider interface {
	RandomTopics(n int) ([]models.Topic, error)
	RandomPrompt(topicID uint) (*models.Prompt, error)
}

// CreateGameInput carries the host-supplied game settings.
type CreateGameInput struct {
	Name        string
	Visibility  models.Visibility
	Size        int
	TotalRounds int
}

// VoteTarget is a tagged variant replacing the wire-level sentinel id:
// either the round's correct answer, or a peer's bluff by answer id.
type VoteTarget struct {
	Correct  bool
	AnswerID uint
}

// CorrectAnswerTarget votes for the round's true answer.
func CorrectAnswerTarget() VoteTarget {
	return VoteTarget{Correct: true}
}

// PeerAnswerTarget votes for a peer's submitted bluff.
func PeerAnswerTarget(answerID uint) VoteTarget {
	return VoteTarget{AnswerID: answerID}
}
