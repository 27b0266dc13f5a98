package game_constants

import "math"

const MinPlayersToStart = 2
const MaxGameSize = 10
const MaxTotalRounds = 10
const DefaultGameSize = 3
const DefaultTotalRounds = 3

// Answer content bounds (characters)
const MinAnswerLength = 2
const MaxAnswerLength = 100

// Scoring
const (
	PointsPerVoteReceived = 10 // per vote another player casts on your bluff
	PointsForRightVote    = 20 // for voting the correct answer yourself
)

// Topic shortlist size offered to the chooser each round
const TopicChoicesPerRound = 5

// CorrectAnswerWireID is the reserved answer id used on the wire to mark
// the correct answer among the shuffled bluffs. It never exists in the
// database; internally votes carry an explicit correct-answer flag instead.
const CorrectAnswerWireID = math.MaxInt32
