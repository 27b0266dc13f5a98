package game

import (
	"log"

	game_constants "fibbler/constants/game"
	models "fibbler/models/postgres"

	"gorm.io/gorm"
)

// StartGame moves a preparing game into progress and kicks off the first
// topic-choice cycle. Host only, roster of at least two.
func (s *Service) StartGame(gameID, username string) (*models.Game, []Event, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.HostUsername != username {
		return nil, nil, errForbidden("user %s is not the host of game %s", username, gameID)
	}
	if g.Status != models.StatusPreparing {
		return nil, nil, errConflict("game %s has already been started", gameID)
	}
	if len(g.Players) < game_constants.MinPlayersToStart {
		return nil, nil, errForbidden("cannot start a game with fewer than %d players",
			game_constants.MinPlayersToStart)
	}

	g.Status = models.StatusInProgress
	g.Substate = models.SubstateChoosingTopic

	events := []Event{broadcast(EventGameStarted, map[string]interface{}{
		"gameId":      g.ID,
		"name":        g.Name,
		"totalRounds": g.TotalRounds,
		"players":     usernames(g.Players),
	})}

	chooseEvents, err := s.beginTopicChoice(g)
	if err != nil {
		return nil, nil, err
	}
	events = append(events, chooseEvents...)

	if err := s.store.SaveGame(g); err != nil {
		return nil, nil, errInternal(err)
	}

	log.Printf("[START] Game %s started by %s with %d players", gameID, username, len(g.Players))
	return g, events, nil
}

// beginTopicChoice selects a chooser uniformly over the current roster and
// produces the point-to-point shortlist event plus the broadcast to the
// rest of the room. Caller holds the game lock and persists the game.
func (s *Service) beginTopicChoice(g *models.Game) ([]Event, error) {
	chooser := g.Players[s.intn(len(g.Players))]
	g.ChooserUsername = chooser.Username

	topics, err := s.prompts.RandomTopics(game_constants.TopicChoicesPerRound)
	if err != nil {
		return nil, errInternal(err)
	}
	shortlist := make([]map[string]interface{}, 0, len(topics))
	for _, t := range topics {
		shortlist = append(shortlist, map[string]interface{}{
			"topicId": t.ID,
			"title":   t.Title,
		})
	}

	return []Event{
		p2p(EventChooseTopic, chooser.Username, map[string]interface{}{
			"topics": shortlist,
		}),
		broadcastExcept(EventPlayerIsChoosing, map[string]interface{}{
			"playerId": chooser.ID,
			"username": chooser.Username,
		}, chooser.Username),
	}, nil
}

// AddRoundToGame creates the next round from the chosen topic and opens
// the answering phase. Exceeding the round budget is an internal invariant
// violation, not a normal client path.
func (s *Service) AddRoundToGame(gameID string, topicID uint) (*models.Game, []Event, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.Status != models.StatusInProgress {
		return nil, nil, errConflict("game %s is not in progress", gameID)
	}
	if g.Substate != models.SubstateChoosingTopic {
		return nil, nil, errConflict("game %s is not choosing a topic", gameID)
	}
	if len(g.Rounds) >= g.TotalRounds {
		return nil, nil, errForbidden("game %s already played all %d rounds", gameID, g.TotalRounds)
	}

	prompt, err := s.prompts.RandomPrompt(topicID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil, errNotFound("no active prompt found for topic %d", topicID)
		}
		return nil, nil, errInternal(err)
	}

	round := &models.Round{
		GameID:      g.ID,
		RoundNumber: len(g.Rounds) + 1,
		PromptID:    prompt.ID,
		Prompt:      *prompt,
	}
	if err := s.store.AddRound(round); err != nil {
		return nil, nil, errInternal(err)
	}
	g.Rounds = append(g.Rounds, round)
	g.Substate = models.SubstateGivingAnswer
	if err := s.store.SaveGame(g); err != nil {
		return nil, nil, errInternal(err)
	}

	s.startSubmissionTimer(g.ID, models.SubstateGivingAnswer, round.RoundNumber, s.AnswerWindow)

	log.Printf("[ROUND] Game %s round %d opened (topic %d, prompt %d)",
		gameID, round.RoundNumber, topicID, prompt.ID)
	events := []Event{broadcast(EventAnswerPrompt, map[string]interface{}{
		"roundId":     round.ID,
		"roundNumber": round.RoundNumber,
		"prompt":      prompt.Content,
	})}
	return g, events, nil
}

func usernames(players []*models.Player) []string {
	names := make([]string, 0, len(players))
	for _, p := range players {
		names = append(names, p.Username)
	}
	return names
}
