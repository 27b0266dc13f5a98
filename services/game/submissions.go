package game

import (
	"log"
	"sort"
	"strings"

	game_constants "fibbler/constants/game"
	models "fibbler/models/postgres"
)

// SubmitAnswer records a player's bluff for the current round and advances
// the phase once every player in the roster has answered.
func (s *Service) SubmitAnswer(gameID, username, content string) (*models.Game, []Event, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, nil, err
	}
	player := findPlayer(g, username)
	if player == nil {
		return nil, nil, errForbidden("user %s is not a player in game %s", username, gameID)
	}
	if g.Status != models.StatusInProgress || g.Substate != models.SubstateGivingAnswer {
		return nil, nil, errConflict("game %s is not accepting answers", gameID)
	}
	round := g.CurrentRound()
	if round == nil {
		return nil, nil, errConflict("game %s has no active round", gameID)
	}

	content = strings.TrimSpace(content)
	if len(content) < game_constants.MinAnswerLength || len(content) > game_constants.MaxAnswerLength {
		return nil, nil, errValidation("answer must be between %d and %d characters",
			game_constants.MinAnswerLength, game_constants.MaxAnswerLength)
	}
	if strings.EqualFold(content, strings.TrimSpace(round.Prompt.CorrectAnswer)) {
		return nil, nil, errValidation("that is the correct answer, choose different wording")
	}
	for _, a := range round.Answers {
		if a.PlayerID == player.ID {
			return nil, nil, errConflict("user %s already answered round %d", username, round.RoundNumber)
		}
	}

	answer := &models.Answer{
		RoundID:  round.ID,
		PlayerID: player.ID,
		Content:  content,
	}
	if err := s.store.AddAnswer(answer); err != nil {
		return nil, nil, errInternal(err)
	}
	round.Answers = append(round.Answers, *answer)

	log.Printf("[ANSWER] %s answered round %d of game %s (%d/%d)",
		username, round.RoundNumber, gameID, countRosterAnswers(g, round), len(g.Players))
	events := []Event{broadcast(EventAnswerSubmitted, map[string]interface{}{
		"userId":   player.ID,
		"username": username,
	})}

	more, err := s.maybeFinishAnswering(g, false)
	if err != nil {
		return nil, nil, err
	}
	return g, append(events, more...), nil
}

// countRosterAnswers counts answers for the round that belong to players
// still on the roster, so a mid-round leave cannot wedge the phase.
func countRosterAnswers(g *models.Game, round *models.Round) int {
	n := 0
	for _, a := range round.Answers {
		for _, p := range g.Players {
			if a.PlayerID == p.ID {
				n++
				break
			}
		}
	}
	return n
}

func countRosterVotes(g *models.Game, round *models.Round) int {
	n := 0
	for _, v := range round.Votes {
		for _, p := range g.Players {
			if v.PlayerID == p.ID {
				n++
				break
			}
		}
	}
	return n
}

// maybeFinishAnswering advances GIVING_ANSWER → VOTING when every player
// on the current roster has answered (or unconditionally when forced by a
// submission-window expiry). Caller holds the game lock.
func (s *Service) maybeFinishAnswering(g *models.Game, force bool) ([]Event, error) {
	if g.Status != models.StatusInProgress || g.Substate != models.SubstateGivingAnswer {
		return nil, nil
	}
	round := g.CurrentRound()
	if round == nil {
		return nil, nil
	}
	if !force && countRosterAnswers(g, round) < len(g.Players) {
		return nil, nil
	}

	g.Substate = models.SubstateVoting
	if err := s.store.SaveGame(g); err != nil {
		return nil, errInternal(err)
	}
	s.cancelSubmissionTimer(g.ID)
	s.startSubmissionTimer(g.ID, models.SubstateVoting, round.RoundNumber, s.VoteWindow)

	// Shuffled so the broadcast order does not leak answer ownership. The
	// correct answer travels under the reserved wire id.
	answers := make([]map[string]interface{}, 0, len(round.Answers)+1)
	for _, a := range round.Answers {
		answers = append(answers, map[string]interface{}{
			"answerId": a.ID,
			"content":  a.Content,
		})
	}
	answers = append(answers, map[string]interface{}{
		"answerId": game_constants.CorrectAnswerWireID,
		"content":  round.Prompt.CorrectAnswer,
	})
	for i := len(answers) - 1; i > 0; i-- {
		j := s.intn(i + 1)
		answers[i], answers[j] = answers[j], answers[i]
	}

	log.Printf("[ANSWERS-DONE] Game %s round %d moved to voting (forced=%v)",
		g.ID, round.RoundNumber, force)
	return []Event{broadcast(EventAllAnswersIn, map[string]interface{}{
		"roundId":         round.ID,
		"userAnswers":     answers,
		"correctAnswerId": game_constants.CorrectAnswerWireID,
	})}, nil
}

// SubmitVote records a player's vote for the current round. The target is
// either the correct answer or a peer's bluff; voting for one's own answer
// is rejected.
func (s *Service) SubmitVote(gameID, username string, target VoteTarget) (*models.Game, []Event, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, nil, err
	}
	player := findPlayer(g, username)
	if player == nil {
		return nil, nil, errForbidden("user %s is not a player in game %s", username, gameID)
	}
	if g.Status != models.StatusInProgress || g.Substate != models.SubstateVoting {
		return nil, nil, errConflict("game %s is not accepting votes", gameID)
	}
	round := g.CurrentRound()
	if round == nil {
		return nil, nil, errConflict("game %s has no active round", gameID)
	}
	for _, v := range round.Votes {
		if v.PlayerID == player.ID {
			return nil, nil, errConflict("user %s already voted in round %d", username, round.RoundNumber)
		}
	}

	vote := &models.Vote{
		RoundID:     round.ID,
		PlayerID:    player.ID,
		RoundNumber: round.RoundNumber,
	}
	if target.Correct {
		vote.IsRight = true
	} else {
		var voted *models.Answer
		for i := range round.Answers {
			if round.Answers[i].ID == target.AnswerID {
				voted = &round.Answers[i]
				break
			}
		}
		if voted == nil {
			return nil, nil, errNotFound("answer %d not found in round %d", target.AnswerID, round.RoundNumber)
		}
		if voted.PlayerID == player.ID {
			return nil, nil, errForbidden("user %s cannot vote for their own answer", username)
		}
		vote.AnswerID = &voted.ID
	}

	if err := s.store.AddVote(vote); err != nil {
		return nil, nil, errInternal(err)
	}
	round.Votes = append(round.Votes, *vote)

	log.Printf("[VOTE] %s voted in round %d of game %s (%d/%d)",
		username, round.RoundNumber, gameID, countRosterVotes(g, round), len(g.Players))
	events := []Event{broadcast(EventVoteSubmitted, map[string]interface{}{
		"userId":   player.ID,
		"username": username,
	})}

	more, err := s.maybeFinishVoting(g, false)
	if err != nil {
		return nil, nil, err
	}
	return g, append(events, more...), nil
}

// maybeFinishVoting closes VOTING once every player voted (or when forced),
// scores the round, and either starts the next topic-choice cycle or ends
// the round phase of the game with final results. Caller holds the lock.
func (s *Service) maybeFinishVoting(g *models.Game, force bool) ([]Event, error) {
	if g.Status != models.StatusInProgress || g.Substate != models.SubstateVoting {
		return nil, nil
	}
	round := g.CurrentRound()
	if round == nil {
		return nil, nil
	}
	if !force && countRosterVotes(g, round) < len(g.Players) {
		return nil, nil
	}

	s.cancelSubmissionTimer(g.ID)
	g.Substate = models.SubstateShowingResults

	// Full tally: vote target answer id plus the answer owner's id, or
	// nulls for correct-answer votes.
	tally := make([]map[string]interface{}, 0, len(round.Votes))
	for _, v := range round.Votes {
		entry := map[string]interface{}{
			"voterId": v.PlayerID,
			"isRight": v.IsRight,
		}
		if v.AnswerID != nil {
			entry["answerId"] = *v.AnswerID
			if owner := answerOwner(round, *v.AnswerID); owner != 0 {
				entry["answerOwnerId"] = owner
			}
		} else {
			entry["answerId"] = nil
			entry["answerOwnerId"] = nil
		}
		tally = append(tally, entry)
	}
	events := []Event{broadcast(EventAllVotesIn, map[string]interface{}{
		"roundId":     round.ID,
		"roundNumber": round.RoundNumber,
		"votes":       tally,
	})}

	if err := s.scoreRound(g, round); err != nil {
		return nil, err
	}
	round.IsCompleted = true
	if err := s.store.CompleteRound(round); err != nil {
		return nil, errInternal(err)
	}

	events = append(events, broadcast(EventScoresUpdated, map[string]interface{}{
		"roundNumber":  round.RoundNumber,
		"playerScores": scoreboard(g),
	}))

	if round.RoundNumber < g.TotalRounds {
		g.Substate = models.SubstateChoosingTopic
		chooseEvents, err := s.beginTopicChoice(g)
		if err != nil {
			return nil, err
		}
		if err := s.store.SaveGame(g); err != nil {
			return nil, errInternal(err)
		}
		log.Printf("[VOTES-DONE] Game %s round %d scored, next topic choice begins",
			g.ID, round.RoundNumber)
		return append(events, chooseEvents...), nil
	}

	g.Status = models.StatusFinalResults
	if err := s.store.SaveGame(g); err != nil {
		return nil, errInternal(err)
	}
	log.Printf("[VOTES-DONE] Game %s finished its last round, final results", g.ID)
	return append(events, broadcast(EventFinalResults, map[string]interface{}{
		"finalScores": scoreboard(g),
	})), nil
}

// scoreRound applies the round's score deltas:
// 10 points per vote received on the player's answer from other players,
// plus 20 when the player's own vote targeted the correct answer.
func (s *Service) scoreRound(g *models.Game, round *models.Round) error {
	deltas := make(map[uint]int, len(g.Players))
	for _, v := range round.Votes {
		if v.AnswerID != nil {
			if owner := answerOwner(round, *v.AnswerID); owner != 0 && owner != v.PlayerID {
				deltas[owner] += game_constants.PointsPerVoteReceived
			}
		}
		if v.IsRight {
			deltas[v.PlayerID] += game_constants.PointsForRightVote
		}
	}

	for _, p := range g.Players {
		delta := deltas[p.ID]
		if delta == 0 {
			continue
		}
		if err := s.store.AddPlayerScore(p.ID, delta); err != nil {
			return errInternal(err)
		}
		p.Score += delta
	}
	return nil
}

func answerOwner(round *models.Round, answerID uint) uint {
	for _, a := range round.Answers {
		if a.ID == answerID {
			return a.PlayerID
		}
	}
	return 0
}

// scoreboard returns the roster's scores sorted highest first, username
// ascending on ties.
func scoreboard(g *models.Game) []map[string]interface{} {
	players := make([]*models.Player, len(g.Players))
	copy(players, g.Players)
	sort.Slice(players, func(i, j int) bool {
		if players[i].Score != players[j].Score {
			return players[i].Score > players[j].Score
		}
		return players[i].Username < players[j].Username
	})
	scores := make([]map[string]interface{}, 0, len(players))
	for _, p := range players {
		scores = append(scores, map[string]interface{}{
			"username": p.Username,
			"score":    p.Score,
		})
	}
	return scores
}

// EndGame is the host's explicit close after final results: FINISHED is
// terminal and the room is evicted by the gateway.
func (s *Service) EndGame(gameID, username string) (*models.Game, []Event, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, nil, err
	}
	if g.HostUsername != username {
		return nil, nil, errForbidden("user %s is not the host of game %s", username, gameID)
	}
	if g.Status != models.StatusFinalResults {
		return nil, nil, errConflict("game %s is not showing final results", gameID)
	}

	g.Status = models.StatusFinished
	g.Substate = models.SubstateNA
	if err := s.store.SaveGame(g); err != nil {
		return nil, nil, errInternal(err)
	}
	s.cancelSubmissionTimer(g.ID)
	s.locks.forget(g.ID)

	log.Printf("[END] Game %s finished by host %s", gameID, username)
	events := []Event{broadcast(EventGameEnded, map[string]interface{}{
		"gameId":      g.ID,
		"finalScores": scoreboard(g),
	})}
	return g, events, nil
}
