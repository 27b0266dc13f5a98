package game

import (
	"log"
	"time"

	models "fibbler/models/postgres"
)

// Dispatcher delivers events produced outside a request path, i.e. by a
// submission-window expiry. The gateway registers itself here at startup.
type Dispatcher interface {
	Dispatch(gameID string, events []Event)
}

// SetDispatcher wires the outbound event sink for timer-driven advances.
func (s *Service) SetDispatcher(d Dispatcher) {
	s.dispatcher = d
}

// startSubmissionTimer arms the window for the given phase of the given
// round. On expiry the phase advances exactly as if the missing players
// had submitted, so stragglers never block the rest of the room.
func (s *Service) startSubmissionTimer(gameID string, phase models.GameSubstate, roundNumber int, window time.Duration) {
	if window <= 0 {
		return
	}
	s.timersMu.Lock()
	if existing, ok := s.timers[gameID]; ok {
		existing.Stop()
	}
	s.timers[gameID] = time.AfterFunc(window, func() {
		s.forceAdvance(gameID, phase, roundNumber)
	})
	s.timersMu.Unlock()
}

func (s *Service) cancelSubmissionTimer(gameID string) {
	s.timersMu.Lock()
	defer s.timersMu.Unlock()
	if timer, ok := s.timers[gameID]; ok {
		timer.Stop()
		delete(s.timers, gameID)
	}
}

// forceAdvance runs the completion path for an expired window. The phase
// and round number are re-checked under the game lock: if the game moved
// on before the timer fired, this is a no-op.
func (s *Service) forceAdvance(gameID string, phase models.GameSubstate, roundNumber int) {
	unlock := s.locks.lock(gameID)
	defer unlock()

	g, err := s.loadGame(gameID)
	if err != nil {
		log.Printf("[TIMEOUT-ERROR] Game %s vanished before window expiry: %v", gameID, err)
		return
	}
	round := g.CurrentRound()
	if g.Status != models.StatusInProgress || g.Substate != phase ||
		round == nil || round.RoundNumber != roundNumber {
		return
	}

	log.Printf("[TIMEOUT] Game %s round %d %s window expired, forcing advance",
		gameID, roundNumber, phase)

	var events []Event
	switch phase {
	case models.SubstateGivingAnswer:
		events, err = s.maybeFinishAnswering(g, true)
	case models.SubstateVoting:
		events, err = s.maybeFinishVoting(g, true)
	}
	if err != nil {
		log.Printf("[TIMEOUT-ERROR] Game %s forced advance failed: %v", gameID, err)
		return
	}
	if s.dispatcher != nil && len(events) > 0 {
		s.dispatcher.Dispatch(gameID, events)
	}
}
