package game

import (
	"fmt"
	"testing"

	models "fibbler/models/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fakeStore keeps aggregates in memory. The service mutates the aggregate
// it loaded, so GameByID hands back the stored pointer directly.
type fakeStore struct {
	games  map[string]*models.Game
	nextID uint
	seq    int
}

func newFakeStore() *fakeStore {
	return &fakeStore{games: make(map[string]*models.Game)}
}

func (f *fakeStore) GameByID(id string) (*models.Game, error) {
	g, ok := f.games[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return g, nil
}

func (f *fakeStore) CreateGame(g *models.Game) error {
	if g.ID == "" {
		f.seq++
		g.ID = fmt.Sprintf("GAME%02d", f.seq)
	}
	f.games[g.ID] = g
	return nil
}

func (f *fakeStore) SaveGame(g *models.Game) error { return nil }

func (f *fakeStore) AddPlayer(p *models.Player) error {
	f.nextID++
	p.ID = f.nextID
	return nil
}

func (f *fakeStore) RemovePlayer(gameID, username string) error { return nil }

func (f *fakeStore) AddRound(r *models.Round) error {
	f.nextID++
	r.ID = f.nextID
	return nil
}

func (f *fakeStore) CompleteRound(r *models.Round) error { return nil }

func (f *fakeStore) AddAnswer(a *models.Answer) error {
	f.nextID++
	a.ID = f.nextID
	return nil
}

func (f *fakeStore) AddVote(v *models.Vote) error {
	f.nextID++
	v.ID = f.nextID
	return nil
}

func (f *fakeStore) AddPlayerScore(playerID uint, delta int) error { return nil }

type fakeUsers struct{ known map[string]bool }

func (f *fakeUsers) UserExists(username string) (bool, error) {
	return f.known[username], nil
}

type fakeFriends struct{ pairs map[string]bool }

func (f *fakeFriends) AreFriends(a, b string) (bool, error) {
	return f.pairs[a+"|"+b] || f.pairs[b+"|"+a], nil
}

type fakePrompts struct {
	topics []models.Topic
	// prompt returned for any topic id present here
	prompts map[uint]*models.Prompt
}

func (f *fakePrompts) RandomTopics(n int) ([]models.Topic, error) {
	if n > len(f.topics) {
		n = len(f.topics)
	}
	return f.topics[:n], nil
}

func (f *fakePrompts) RandomPrompt(topicID uint) (*models.Prompt, error) {
	p, ok := f.prompts[topicID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func newTestService() (*Service, *fakeStore, *fakeUsers, *fakeFriends) {
	store := newFakeStore()
	users := &fakeUsers{known: map[string]bool{
		"alice": true, "bob": true, "carol": true, "dave": true,
	}}
	friends := &fakeFriends{pairs: map[string]bool{}}
	prompts := &fakePrompts{
		topics: []models.Topic{
			{ID: 1, Title: "World capitals", IsActive: true},
			{ID: 2, Title: "Weird laws", IsActive: true},
		},
		prompts: map[uint]*models.Prompt{
			1: {ID: 11, TopicID: 1, Content: "The capital of Australia is ____", CorrectAnswer: "Canberra", IsActive: true},
			2: {ID: 22, TopicID: 2, Content: "In Switzerland it is illegal to ____ after 10pm", CorrectAnswer: "flush the toilet", IsActive: true},
		},
	}
	svc := NewService(store, users, friends, prompts)
	// Deterministic chooser/shuffle picks for assertions.
	svc.intn = func(n int) int { return 0 }
	return svc, store, users, friends
}

func findEvent(events []Event, name string) *Event {
	for i := range events {
		if events[i].Name == name {
			return &events[i]
		}
	}
	return nil
}

func TestCreateGame(t *testing.T) {
	t.Run("creates a preparing game with the host enrolled", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "friday night", Size: 4, TotalRounds: 3}, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.StatusPreparing, g.Status)
		assert.Equal(t, models.SubstateNA, g.Substate)
		assert.Equal(t, "alice", g.HostUsername)
		require.Len(t, g.Players, 1)
		assert.Equal(t, "alice", g.Players[0].Username)
	})

	t.Run("rejects unknown host", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.CreateGame(CreateGameInput{Name: "x y", Size: 4, TotalRounds: 3}, "mallory")
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("validates settings", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, err := svc.CreateGame(CreateGameInput{Name: "  ", Size: 4, TotalRounds: 3}, "alice")
		assert.Equal(t, CodeValidation, CodeOf(err))

		_, err = svc.CreateGame(CreateGameInput{Name: "g", Size: 0, TotalRounds: 3}, "alice")
		assert.Equal(t, CodeValidation, CodeOf(err))

		_, err = svc.CreateGame(CreateGameInput{Name: "g", Size: 4, TotalRounds: 99}, "alice")
		assert.Equal(t, CodeValidation, CodeOf(err))

		_, err = svc.CreateGame(CreateGameInput{Name: "g", Size: 4, TotalRounds: 3, Visibility: "secret"}, "alice")
		assert.Equal(t, CodeValidation, CodeOf(err))
	})

	t.Run("defaults empty visibility to public", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "g", Size: 4, TotalRounds: 3}, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.VisibilityPublic, g.Visibility)
	})
}

func TestJoinGame(t *testing.T) {
	newGame := func(t *testing.T, svc *Service, visibility models.Visibility, size int) *models.Game {
		g, err := svc.CreateGame(CreateGameInput{
			Name: "join tests", Visibility: visibility, Size: size, TotalRounds: 3,
		}, "alice")
		require.NoError(t, err)
		return g
	}

	t.Run("joins a public preparing game", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g := newGame(t, svc, models.VisibilityPublic, 4)

		g, events, err := svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		assert.Len(t, g.Players, 2)
		joined := findEvent(events, EventPlayerJoined)
		require.NotNil(t, joined)
		assert.Equal(t, "bob", joined.Payload["username"])
		assert.Empty(t, joined.To)
	})

	t.Run("rejects duplicate join", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g := newGame(t, svc, models.VisibilityPublic, 4)
		_, _, err := svc.JoinGame(g.ID, "alice")
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("rejects join on a full game", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g := newGame(t, svc, models.VisibilityPublic, 2)
		_, _, err := svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "carol")
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("rejects join once the game started", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g := newGame(t, svc, models.VisibilityPublic, 4)
		_, _, err := svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.StartGame(g.ID, "alice")
		require.NoError(t, err)

		_, _, err = svc.JoinGame(g.ID, "carol")
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("private games admit nobody", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g := newGame(t, svc, models.VisibilityPrivate, 4)
		_, _, err := svc.JoinGame(g.ID, "bob")
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("friends-only games admit only the host's friends", func(t *testing.T) {
		svc, _, _, friends := newTestService()
		g := newGame(t, svc, models.VisibilityFriendsOnly, 4)

		_, _, err := svc.JoinGame(g.ID, "bob")
		assert.Equal(t, CodeForbidden, CodeOf(err))

		friends.pairs["bob|alice"] = true
		_, _, err = svc.JoinGame(g.ID, "bob")
		assert.NoError(t, err)
	})

	t.Run("unknown user is not found", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g := newGame(t, svc, models.VisibilityPublic, 4)
		_, _, err := svc.JoinGame(g.ID, "mallory")
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("unknown game is not found", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		_, _, err := svc.JoinGame("NOPE", "bob")
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})
}

func TestStartGame(t *testing.T) {
	setup := func(t *testing.T) (*Service, *models.Game) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "start tests", Size: 4, TotalRounds: 2}, "alice")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		return svc, g
	}

	t.Run("host starts the game and the first topic choice begins", func(t *testing.T) {
		svc, g := setup(t)
		g, events, err := svc.StartGame(g.ID, "alice")
		require.NoError(t, err)

		assert.Equal(t, models.StatusInProgress, g.Status)
		assert.Equal(t, models.SubstateChoosingTopic, g.Substate)
		// intn pinned to 0 picks the first roster entry.
		assert.Equal(t, "alice", g.ChooserUsername)

		started := findEvent(events, EventGameStarted)
		require.NotNil(t, started)
		assert.ElementsMatch(t, []string{"alice", "bob"}, started.Payload["players"])

		choose := findEvent(events, EventChooseTopic)
		require.NotNil(t, choose)
		assert.Equal(t, "alice", choose.To)

		choosing := findEvent(events, EventPlayerIsChoosing)
		require.NotNil(t, choosing)
		assert.Equal(t, "alice", choosing.Exclude)
		assert.Equal(t, "alice", choosing.Payload["username"])
	})

	t.Run("only the host may start", func(t *testing.T) {
		svc, g := setup(t)
		_, _, err := svc.StartGame(g.ID, "bob")
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("needs at least two players", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "solo", Size: 4, TotalRounds: 2}, "alice")
		require.NoError(t, err)
		_, _, err = svc.StartGame(g.ID, "alice")
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})

	t.Run("starting twice conflicts", func(t *testing.T) {
		svc, g := setup(t)
		_, _, err := svc.StartGame(g.ID, "alice")
		require.NoError(t, err)
		_, _, err = svc.StartGame(g.ID, "alice")
		assert.Equal(t, CodeConflict, CodeOf(err))
	})
}

func TestAddRoundToGame(t *testing.T) {
	started := func(t *testing.T) (*Service, *models.Game) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "rounds", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.StartGame(g.ID, "alice")
		require.NoError(t, err)
		return svc, g
	}

	t.Run("opens the answering phase with the prompt", func(t *testing.T) {
		svc, g := started(t)
		g, events, err := svc.AddRoundToGame(g.ID, 1)
		require.NoError(t, err)

		assert.Equal(t, models.SubstateGivingAnswer, g.Substate)
		require.Len(t, g.Rounds, 1)
		assert.Equal(t, 1, g.Rounds[0].RoundNumber)

		prompt := findEvent(events, EventAnswerPrompt)
		require.NotNil(t, prompt)
		assert.Equal(t, "The capital of Australia is ____", prompt.Payload["prompt"])
	})

	t.Run("rejects a topic without prompts", func(t *testing.T) {
		svc, g := started(t)
		_, _, err := svc.AddRoundToGame(g.ID, 77)
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("conflicts outside the topic-choice phase", func(t *testing.T) {
		svc, g := started(t)
		_, _, err := svc.AddRoundToGame(g.ID, 1)
		require.NoError(t, err)
		_, _, err = svc.AddRoundToGame(g.ID, 1)
		assert.Equal(t, CodeConflict, CodeOf(err))
	})
}

func TestSwitchState(t *testing.T) {
	svc, _, _, _ := newTestService()
	g, err := svc.CreateGame(CreateGameInput{Name: "switch", Size: 4, TotalRounds: 1}, "alice")
	require.NoError(t, err)

	t.Run("swaps when the expected value matches", func(t *testing.T) {
		got, err := svc.SwitchState(g.ID, models.StatusPreparing, models.StatusAborted)
		require.NoError(t, err)
		assert.Equal(t, models.StatusAborted, got.Status)
	})

	t.Run("conflicts when the expected value is stale", func(t *testing.T) {
		_, err := svc.SwitchState(g.ID, models.StatusPreparing, models.StatusInProgress)
		assert.Equal(t, CodeConflict, CodeOf(err))
	})
}

func TestSwitchSubstate(t *testing.T) {
	svc, _, _, _ := newTestService()
	g, err := svc.CreateGame(CreateGameInput{Name: "substate", Size: 4, TotalRounds: 1}, "alice")
	require.NoError(t, err)

	got, err := svc.SwitchSubstate(g.ID, models.SubstateNA, models.SubstateChoosingTopic)
	require.NoError(t, err)
	assert.Equal(t, models.SubstateChoosingTopic, got.Substate)

	_, err = svc.SwitchSubstate(g.ID, models.SubstateNA, models.SubstateVoting)
	assert.Equal(t, CodeConflict, CodeOf(err))
}

func TestLeaveGame(t *testing.T) {
	t.Run("host leaving a preparing game hands off to the next player", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "leave", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "carol")
		require.NoError(t, err)

		g, events, err := svc.LeaveGame(g.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, "bob", g.HostUsername)
		assert.Equal(t, models.StatusPreparing, g.Status)

		changed := findEvent(events, EventHostChanged)
		require.NotNil(t, changed)
		assert.Equal(t, "bob", changed.Payload["username"])
		assert.Nil(t, findEvent(events, EventGameAborted))
	})

	t.Run("host leaving an empty preparing game aborts it", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "leave", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)

		g, events, err := svc.LeaveGame(g.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.StatusAborted, g.Status)
		assert.NotNil(t, findEvent(events, EventGameAborted))
	})

	t.Run("host leaving mid-game aborts it", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "leave", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.StartGame(g.ID, "alice")
		require.NoError(t, err)

		g, events, err := svc.LeaveGame(g.ID, "alice")
		require.NoError(t, err)
		assert.Equal(t, models.StatusAborted, g.Status)
		assert.Equal(t, models.SubstateNA, g.Substate)
		assert.NotNil(t, findEvent(events, EventGameAborted))
	})

	t.Run("non-host leaving is just a roster shrink", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "leave", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)

		g, events, err := svc.LeaveGame(g.ID, "bob")
		require.NoError(t, err)
		assert.Len(t, g.Players, 1)
		assert.Equal(t, "alice", g.HostUsername)
		left := findEvent(events, EventPlayerLeft)
		require.NotNil(t, left)
		assert.Equal(t, "bob", left.Payload["username"])
	})

	t.Run("leaving twice is not found", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "leave", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.LeaveGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.LeaveGame(g.ID, "bob")
		assert.Equal(t, CodeNotFound, CodeOf(err))
	})

	t.Run("a leave during answering completes the phase for the rest", func(t *testing.T) {
		svc, _, _, _ := newTestService()
		g, err := svc.CreateGame(CreateGameInput{Name: "leave", Size: 4, TotalRounds: 1}, "alice")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "bob")
		require.NoError(t, err)
		_, _, err = svc.JoinGame(g.ID, "carol")
		require.NoError(t, err)
		_, _, err = svc.StartGame(g.ID, "alice")
		require.NoError(t, err)
		_, _, err = svc.AddRoundToGame(g.ID, 1)
		require.NoError(t, err)

		_, _, err = svc.SubmitAnswer(g.ID, "alice", "Sydney")
		require.NoError(t, err)
		_, _, err = svc.SubmitAnswer(g.ID, "bob", "Melbourne")
		require.NoError(t, err)

		// carol never answered; her leave makes the roster complete.
		g, events, err := svc.LeaveGame(g.ID, "carol")
		require.NoError(t, err)
		assert.Equal(t, models.SubstateVoting, g.Substate)
		assert.NotNil(t, findEvent(events, EventAllAnswersIn))
	})
}

func TestEndGame(t *testing.T) {
	svc, _, _, _ := newTestService()
	g, err := svc.CreateGame(CreateGameInput{Name: "end", Size: 4, TotalRounds: 1}, "alice")
	require.NoError(t, err)
	_, _, err = svc.JoinGame(g.ID, "bob")
	require.NoError(t, err)

	t.Run("conflicts before final results", func(t *testing.T) {
		_, _, err := svc.EndGame(g.ID, "alice")
		assert.Equal(t, CodeConflict, CodeOf(err))
	})

	t.Run("only the host may end", func(t *testing.T) {
		_, _, err := svc.EndGame(g.ID, "bob")
		assert.Equal(t, CodeForbidden, CodeOf(err))
	})
}
