package game

import (
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	game_constants "fibbler/constants/game"
	models "fibbler/models/postgres"

	"gorm.io/gorm"
)

// Service owns the authoritative lifecycle of every live game: phase
// transitions, roster mutation, round creation, submission collection and
// scoring. All mutations on one game id run under that game's lock.
type Service struct {
	store   Store
	users   UserDirectory
	friends FriendChecker
	prompts PromptProvider

	locks *keyedLocks

	// Submission windows. Zero disables the timer for that phase.
	AnswerWindow time.Duration
	VoteWindow   time.Duration

	timers     map[string]*time.Timer
	timersMu   sync.RWMutex
	dispatcher Dispatcher

	// intn is rand.Intn unless a test injects a deterministic pick.
	intn func(n int) int
}

func NewService(store Store, users UserDirectory, friends FriendChecker, prompts PromptProvider) *Service {
	return &Service{
		store:   store,
		users:   users,
		friends: friends,
		prompts: prompts,
		locks:   newKeyedLocks(),
		timers:  make(map[string]*time.Timer),
		intn:    rand.Intn,
	}
}

// loadGame fetches the aggregate, mapping missing rows to NotFound.
func (s *Service) loadGame(gameID string) (*models.Game, error) {
	g, err := s.store.GameByID(gameID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errNotFound("game %s not found", gameID)
		}
		return nil, errInternal(err)
	}
	if g == nil {
		return nil, errNotFound("game %s not found", gameID)
	}
	return g, nil
}

func findPlayer(g *models.Game, username string) *models.Player {
	for _, p := range g.Players {
		if p.Username == username {
			return p
		}
	}
	return nil
}

// CreateGame validates the host and settings and creates a new game with
// the host auto-enrolled as its first player.
func (s *Service) CreateGame(input CreateGameInput, hostUsername string) (*models.Game, error) {
	ok, err := s.users.UserExists(hostUsername)
	if err != nil {
		return nil, errInternal(err)
	}
	if !ok {
		return nil, errNotFound("user %s not found", hostUsername)
	}

	if strings.TrimSpace(input.Name) == "" {
		return nil, errValidation("game name is required")
	}
	if input.Size < 1 || input.Size > game_constants.MaxGameSize {
		return nil, errValidation("size must be between 1 and %d", game_constants.MaxGameSize)
	}
	if input.TotalRounds < 1 || input.TotalRounds > game_constants.MaxTotalRounds {
		return nil, errValidation("total rounds must be between 1 and %d", game_constants.MaxTotalRounds)
	}
	switch input.Visibility {
	case models.VisibilityPublic, models.VisibilityPrivate, models.VisibilityFriendsOnly:
	case "":
		input.Visibility = models.VisibilityPublic
	default:
		return nil, errValidation("unknown visibility %q", input.Visibility)
	}

	g := &models.Game{
		Name:         strings.TrimSpace(input.Name),
		Status:       models.StatusPreparing,
		Substate:     models.SubstateNA,
		Visibility:   input.Visibility,
		Size:         input.Size,
		TotalRounds:  input.TotalRounds,
		HostUsername: hostUsername,
	}
	if err := s.store.CreateGame(g); err != nil {
		return nil, errInternal(err)
	}

	host := &models.Player{GameID: g.ID, Username: hostUsername}
	if err := s.store.AddPlayer(host); err != nil {
		return nil, errInternal(err)
	}
	g.Players = append(g.Players, host)

	log.Printf("[GAME-CREATE] Game %s created by %s (size=%d rounds=%d)",
		g.ID, hostUsername, g.Size, g.TotalRounds)
	return g, nil
}

// JoinGame appends a player profile to a preparing game, enforcing
// capacity, duplicate-join and visibility rules.
func (s *Service) JoinGame(gameID, username string) (*models.Game, []Event, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.users.UserExists(username)
	if err != nil {
		return nil, nil, errInternal(err)
	}
	if !ok {
		return nil, nil, errNotFound("user %s not found", username)
	}

	if g.Status != models.StatusPreparing {
		return nil, nil, errForbidden("game %s is not in a joinable state", gameID)
	}
	if findPlayer(g, username) != nil {
		return nil, nil, errConflict("user %s is already in the game", username)
	}
	if len(g.Players) >= g.Size {
		return nil, nil, errForbidden("game %s is full", gameID)
	}

	switch g.Visibility {
	case models.VisibilityPrivate:
		if username != g.HostUsername {
			return nil, nil, errForbidden("game %s is private", gameID)
		}
	case models.VisibilityFriendsOnly:
		isFriend, err := s.friends.AreFriends(username, g.HostUsername)
		if err != nil {
			return nil, nil, errInternal(err)
		}
		if !isFriend {
			return nil, nil, errForbidden("user %s is not a friend of the game host", username)
		}
	}

	p := &models.Player{GameID: g.ID, Username: username}
	if err := s.store.AddPlayer(p); err != nil {
		return nil, nil, errInternal(err)
	}
	g.Players = append(g.Players, p)

	log.Printf("[JOIN] %s joined game %s (%d/%d players)", username, gameID, len(g.Players), g.Size)
	events := []Event{broadcast(EventPlayerJoined, map[string]interface{}{
		"username": username,
	})}
	return g, events, nil
}

// LeaveGame removes a player from the roster. Decision table when the
// leaver is the host: abort unless the game is still preparing and at
// least one other player remains, in which case the first remaining
// player in roster order becomes the new host.
func (s *Service) LeaveGame(gameID, username string) (*models.Game, []Event, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, nil, err
	}

	leaving := findPlayer(g, username)
	if leaving == nil {
		return nil, nil, errNotFound("user %s has no player profile in game %s", username, gameID)
	}

	if err := s.store.RemovePlayer(gameID, username); err != nil {
		return nil, nil, errInternal(err)
	}
	remaining := make([]*models.Player, 0, len(g.Players)-1)
	for _, p := range g.Players {
		if p.Username != username {
			remaining = append(remaining, p)
		}
	}
	g.Players = remaining

	events := []Event{broadcast(EventPlayerLeft, map[string]interface{}{
		"userId":   leaving.ID,
		"username": username,
	})}

	if username == g.HostUsername {
		if g.Status != models.StatusPreparing || len(g.Players) == 0 {
			return s.abortLocked(g, events)
		}
		// Deterministic tie-break: first remaining player in roster order.
		g.HostUsername = g.Players[0].Username
		if err := s.store.SaveGame(g); err != nil {
			return nil, nil, errInternal(err)
		}
		log.Printf("[LEAVE] Host %s left game %s, host reassigned to %s",
			username, gameID, g.HostUsername)
		events = append(events, broadcast(EventHostChanged, map[string]interface{}{
			"username": g.HostUsername,
		}))
		return g, events, nil
	}

	// A non-host leave can complete a pending submission phase: everyone
	// still in the roster may already have submitted.
	if g.Status == models.StatusInProgress {
		switch g.Substate {
		case models.SubstateGivingAnswer:
			more, err := s.maybeFinishAnswering(g, false)
			if err != nil {
				return nil, nil, err
			}
			events = append(events, more...)
		case models.SubstateVoting:
			more, err := s.maybeFinishVoting(g, false)
			if err != nil {
				return nil, nil, err
			}
			events = append(events, more...)
		}
	}

	log.Printf("[LEAVE] %s left game %s (%d players remain)", username, gameID, len(g.Players))
	return g, events, nil
}

// abortLocked marks the game aborted. Caller holds the game lock.
func (s *Service) abortLocked(g *models.Game, events []Event) (*models.Game, []Event, error) {
	g.Status = models.StatusAborted
	g.Substate = models.SubstateNA
	if err := s.store.SaveGame(g); err != nil {
		return nil, nil, errInternal(err)
	}
	s.cancelSubmissionTimer(g.ID)
	s.locks.forget(g.ID)
	log.Printf("[ABORT] Game %s aborted", g.ID)
	events = append(events, broadcast(EventGameAborted, map[string]interface{}{
		"gameId": g.ID,
	}))
	return g, events, nil
}

// SwitchState is the guarded status transition helper: the caller supplies
// the value it believes is current, and the swap fails with Conflict when
// the actual state moved underneath it.
func (s *Service) SwitchState(gameID string, expected, desired models.GameStatus) (*models.Game, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	if g.Status != expected {
		return nil, errConflict("game %s is in state %s, expected %s", gameID, g.Status, expected)
	}
	g.Status = desired
	if err := s.store.SaveGame(g); err != nil {
		return nil, errInternal(err)
	}
	return g, nil
}

// SwitchSubstate is the guarded substate counterpart of SwitchState.
func (s *Service) SwitchSubstate(gameID string, expected, desired models.GameSubstate) (*models.Game, error) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		return nil, err
	}
	if g.Substate != expected {
		return nil, errConflict("game %s is in substate %s, expected %s", gameID, g.Substate, expected)
	}
	g.Substate = desired
	if err := s.store.SaveGame(g); err != nil {
		return nil, errInternal(err)
	}
	return g, nil
}

// GameByID exposes a read-only aggregate load for gateways/controllers.
func (s *Service) GameByID(gameID string) (*models.Game, error) {
	return s.loadGame(gameID)
}

// IsPlayer reports whether username holds a player profile in the game.
func (s *Service) IsPlayer(g *models.Game, username string) bool {
	return findPlayer(g, username) != nil
}
