package game

import (
	"strings"
	"testing"

	game_constants "fibbler/constants/game"
	models "fibbler/models/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// answeringGame builds a started three-player game standing in the
// answering phase of round one.
func answeringGame(t *testing.T) (*Service, *models.Game) {
	t.Helper()
	svc, _, _, _ := newTestService()
	g, err := svc.CreateGame(CreateGameInput{Name: "round one", Size: 4, TotalRounds: 2}, "alice")
	require.NoError(t, err)
	_, _, err = svc.JoinGame(g.ID, "bob")
	require.NoError(t, err)
	_, _, err = svc.JoinGame(g.ID, "carol")
	require.NoError(t, err)
	_, _, err = svc.StartGame(g.ID, "alice")
	require.NoError(t, err)
	g, _, err = svc.AddRoundToGame(g.ID, 1)
	require.NoError(t, err)
	return svc, g
}

func answerIDOf(g *models.Game, username string) uint {
	round := g.CurrentRound()
	for _, p := range g.Players {
		if p.Username == username {
			for _, a := range round.Answers {
				if a.PlayerID == p.ID {
					return a.ID
				}
			}
		}
	}
	return 0
}

func TestSubmitAnswer(t *testing.T) {
	t.Run("records the bluff and announces the submitter", func(t *testing.T) {
		svc, g := answeringGame(t)
		g, events, err := svc.SubmitAnswer(g.ID, "bob", "Sydney")
		require.NoError(t, err)

		require.Len(t, g.CurrentRound().Answers, 1)
		assert.Equal(t, "Sydney", g.CurrentRound().Answers[0].Content)

		submitted := findEvent(events, EventAnswerSubmitted)
		require.NotNil(t, submitted)
		assert.Equal(t, "bob", submitted.Payload["username"])
		assert.Nil(t, findEvent(events, EventAllAnswersIn))
	})

	t.Run("non-players may not answer", func(t *testing.T) {
		svc, g := answeringGame(t)
		_, _, err := svc.SubmitAnswer(g.ID, "dave", "Sydney")
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("bounds the answer length", func(t *testing.T) {
		svc, g := answeringGame(t)
		_, _, err := svc.SubmitAnswer(g.ID, "bob", "x")
		assert.Equal(t, CodeValidation, CodeOf(err))

		_, _, err = svc.SubmitAnswer(g.ID, "bob", strings.Repeat("y", 101))
		assert.Equal(t, CodeValidation, CodeOf(err))

		_, _, err = svc.SubmitAnswer(g.ID, "bob", "  x  ")
		assert.Equal(t, CodeValidation, CodeOf(err), "trimmed length is what counts")
	})

	t.Run("rejects the correct answer case-insensitively", func(t *testing.T) {
		svc, g := answeringGame(t)
		_, _, err := svc.SubmitAnswer(g.ID, "bob", "cAnBeRrA")
		assert.Equal(t, CodeValidation, CodeOf(err))
	})

	t.Run("rejects a second answer", func(t *testing.T) {
		svc, g := answeringGame(t)
		_, _, err := svc.SubmitAnswer(g.ID, "bob", "Sydney")
		require.NoError(t, err)
		_, _, err = svc.SubmitAnswer(g.ID, "bob", "Perth")
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("conflicts outside the answering phase", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "idle", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)
		_, _, err = svc.SubmitAnswer(g.ID, "alice", "Sydney")
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("the last roster answer opens voting with shuffled answers", func(t *testing.T) {
		svc, g := answeringGame(t)
		_, _, err := svc.SubmitAnswer(g.ID, "alice", "Sydney")
		require.NoError(t, err)
		_, _, err = svc.SubmitAnswer(g.ID, "bob", "Melbourne")
		require.NoError(t, err)
		g, events, err := svc.SubmitAnswer(g.ID, "carol", "Perth")
		require.NoError(t, err)

		assert.Equal(t, models.SubstateVoting, g.Substate)
		done := findEvent(events, EventAllAnswersIn)
		require.NotNil(t, done)
		assert.Equal(t, game_constants.CorrectAnswerWireID, done.Payload["correctAnswerId"])

		answers := done.Payload["userAnswers"].([]map[string]interface{})
		require.Len(t, answers, 4, "three bluffs plus the truth")
		var sawTruth bool
		for _, a := range answers {
			if a["answerId"] == game_constants.CorrectAnswerWireID {
				sawTruth = true
				assert.Equal(t, "Canberra", a["content"])
			}
		}
		assert.True(t, sawTruth)
	})
}

func TestSubmitVote(t *testing.T) {
	votingGame := func(t *testing.T) (*Service, *models.Game) {
		svc, g := answeringGame(t)
		_, _, err := svc.SubmitAnswer(g.ID, "alice", "Sydney")
		require.NoError(t, err)
		_, _, err = svc.SubmitAnswer(g.ID, "bob", "Melbourne")
		require.NoError(t, err)
		g, _, err = svc.SubmitAnswer(g.ID, "carol", "Perth")
		require.NoError(t, err)
		require.Equal(t, models.SubstateVoting, g.Substate)
		return svc, g
	}

	t.Run("accepts a vote for a peer's bluff", func(t *testing.T) {
		svc, g := votingGame(t)
		g, events, err := svc.SubmitVote(g.ID, "alice", PeerAnswerTarget(answerIDOf(g, "bob")))
		require.NoError(t, err)

		round := g.CurrentRound()
		require.Len(t, round.Votes, 1)
		assert.False(t, round.Votes[0].IsRight)
		require.NotNil(t, round.Votes[0].AnswerID)

		voted := findEvent(events, EventVoteSubmitted)
		require.NotNil(t, voted)
		assert.Equal(t, "alice", voted.Payload["username"])
	})

	t.Run("accepts a vote for the correct answer", func(t *testing.T) {
		svc, g := votingGame(t)
		g, _, err := svc.SubmitVote(g.ID, "alice", CorrectAnswerTarget())
		require.NoError(t, err)

		round := g.CurrentRound()
		require.Len(t, round.Votes, 1)
		assert.True(t, round.Votes[0].IsRight)
		assert.Nil(t, round.Votes[0].AnswerID)
	})

	t.Run("rejects voting for your own answer", func(t *testing.T) {
		svc, g := votingGame(t)
		_, _, err := svc.SubmitVote(g.ID, "alice", PeerAnswerTarget(answerIDOf(g, "alice")))
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("rejects an unknown answer id", func(t *testing.T) {
		svc, g := votingGame(t)
		_, _, err := svc.SubmitVote(g.ID, "alice", PeerAnswerTarget(9999))
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("rejects a second vote", func(t *testing.T) {
		svc, g := votingGame(t)
		_, _, err := svc.SubmitVote(g.ID, "alice", CorrectAnswerTarget())
		require.NoError(t, err)
		_, _, err = svc.SubmitVote(g.ID, "alice", CorrectAnswerTarget())
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("conflicts outside the voting phase", func(t *testing.T) {
		svc, g := answeringGame(t)
		_, _, err := svc.SubmitVote(g.ID, "alice", CorrectAnswerTarget())
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("the last vote scores the round and starts the next choice", func(t *testing.T) {
		svc, g := votingGame(t)

		// alice is fooled by bob, bob finds the truth, carol is fooled by bob.
		_, _, err := svc.SubmitVote(g.ID, "alice", PeerAnswerTarget(answerIDOf(g, "bob")))
		require.NoError(t, err)
		_, _, err = svc.SubmitVote(g.ID, "bob", CorrectAnswerTarget())
		require.NoError(t, err)
		g, events, err := svc.SubmitVote(g.ID, "carol", PeerAnswerTarget(answerIDOf(g, "bob")))
		require.NoError(t, err)

		assert.NotNil(t, findEvent(events, EventAllVotesIn))
		assert.NotNil(t, findEvent(events, EventScoresUpdated))
		assert.NotNil(t, findEvent(events, EventChooseTopic), "round 1 of 2, next cycle begins")
		assert.Equal(t, models.SubstateChoosingTopic, g.Substate)
		assert.True(t, g.CurrentRound().IsCompleted)

		// bob: two votes received (20) plus a right vote (20).
		scores := map[string]int{}
		for _, p := range g.Players {
			scores[p.Username] = p.Score
		}
		assert.Equal(t, 2*game_constants.PointsPerVoteReceived+game_constants.PointsForRightVote, scores["bob"])
		assert.Equal(t, 0, scores["alice"])
		assert.Equal(t, 0, scores["carol"])
	})
}

func TestFullGameToFinalResults(t *testing.T) {
	svc, _, _, _ := newTestService()
	g, err := svc.CreateGame(CreateGameInput{Name: "duel", Size: 2, TotalRounds: 1}, "alice")
	require.NoError(t, err)
	_, _, err = svc.JoinGame(g.ID, "bob")
	require.NoError(t, err)
	_, _, err = svc.StartGame(g.ID, "alice")
	require.NoError(t, err)
	_, _, err = svc.AddRoundToGame(g.ID, 2)
	require.NoError(t, err)

	_, _, err = svc.SubmitAnswer(g.ID, "alice", "sing in the shower")
	require.NoError(t, err)
	g, _, err = svc.SubmitAnswer(g.ID, "bob", "own a single guinea pig")
	require.NoError(t, err)
	require.Equal(t, models.SubstateVoting, g.Substate)

	_, _, err = svc.SubmitVote(g.ID, "alice", PeerAnswerTarget(answerIDOf(g, "bob")))
	require.NoError(t, err)
	g, events, err := svc.SubmitVote(g.ID, "bob", CorrectAnswerTarget())
	require.NoError(t, err)

	assert.Equal(t, models.StatusFinalResults, g.Status)
	final := findEvent(events, EventFinalResults)
	require.NotNil(t, final)

	// bob got alice's vote (10) and voted right (20); scoreboard leads with him.
	scores := final.Payload["finalScores"].([]map[string]interface{})
	require.Len(t, scores, 2)
	assert.Equal(t, "bob", scores[0]["username"])
	assert.Equal(t, 30, scores[0]["score"])
	assert.Equal(t, "alice", scores[1]["username"])
	assert.Equal(t, 0, scores[1]["score"])

	g, events, err = svc.EndGame(g.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinished, g.Status)
	assert.Equal(t, models.SubstateNA, g.Substate)
	assert.NotNil(t, findEvent(events, EventGameEnded))
}

type captureDispatcher struct {
	gameID string
	events []Event
}

func (c *captureDispatcher) Dispatch(gameID string, events []Event) {
	c.gameID = gameID
	c.events = append(c.events, events...)
}

func TestForceAdvance(t *testing.T) {
	t.Run("an expired answer window moves the round to voting", func(t *testing.T) {
		svc, g := answeringGame(t)
		sink := &captureDispatcher{}
		svc.SetDispatcher(sink)

		_, _, err := svc.SubmitAnswer(g.ID, "alice", "Sydney")
		require.NoError(t, err)

		svc.forceAdvance(g.ID, models.SubstateGivingAnswer, 1)

		g, err = svc.GameByID(g.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubstateVoting, g.Substate)
		assert.Equal(t, g.ID, sink.gameID)
		assert.NotNil(t, findEvent(sink.events, EventAllAnswersIn))
	})

	t.Run("a stale expiry is a no-op", func(t *testing.T) {
		svc, g := answeringGame(t)
		sink := &captureDispatcher{}
		svc.SetDispatcher(sink)

		// The window was armed for a round that has since moved on.
		svc.forceAdvance(g.ID, models.SubstateVoting, 1)

		g, err := svc.GameByID(g.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubstateGivingAnswer, g.Substate)
		assert.Empty(t, sink.events)
	})

	t.Run("an expired vote window scores only the cast votes", func(t *testing.T) {
		svc, g := answeringGame(t)
		sink := &captureDispatcher{}
		svc.SetDispatcher(sink)

		_, _, err := svc.SubmitAnswer(g.ID, "alice", "Sydney")
		require.NoError(t, err)
		_, _, err = svc.SubmitAnswer(g.ID, "bob", "Melbourne")
		require.NoError(t, err)
		g, _, err = svc.SubmitAnswer(g.ID, "carol", "Perth")
		require.NoError(t, err)

		_, _, err = svc.SubmitVote(g.ID, "alice", CorrectAnswerTarget())
		require.NoError(t, err)

		svc.forceAdvance(g.ID, models.SubstateVoting, 1)

		g, err = svc.GameByID(g.ID)
		require.NoError(t, err)
		assert.Equal(t, models.SubstateChoosingTopic, g.Substate)
		assert.NotNil(t, findEvent(sink.events, EventAllVotesIn))

		scores := map[string]int{}
		for _, p := range g.Players {
			scores[p.Username] = p.Score
		}
		assert.Equal(t, game_constants.PointsForRightVote, scores["alice"])
		assert.Equal(t, 0, scores["bob"])
		assert.Equal(t, 0, scores["carol"])
	})
}
