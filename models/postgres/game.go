package postgres

import (
	"math/rand"
	"time"

	"gorm.io/gorm"
)

// GameStatus is the coarse lifecycle state of a game.
type GameStatus string

const (
	StatusPreparing    GameStatus = "preparing"
	StatusInProgress   GameStatus = "in_progress"
	StatusAborted      GameStatus = "aborted"
	StatusFinalResults GameStatus = "final_results"
	StatusFinished     GameStatus = "finished"
)

// GameSubstate is the fine-grained phase within an in-progress round cycle.
type GameSubstate string

const (
	SubstateNA             GameSubstate = "n/a"
	SubstateChoosingTopic  GameSubstate = "choosing_topic"
	SubstateGivingAnswer   GameSubstate = "giving_answer"
	SubstateVoting         GameSubstate = "voting"
	SubstateShowingResults GameSubstate = "showing_results"
)

// Visibility controls who may join a game while it is preparing.
type Visibility string

const (
	VisibilityPublic      Visibility = "public"
	VisibilityPrivate     Visibility = "private"
	VisibilityFriendsOnly Visibility = "friends_only"
)

/*
 * 'Game' is the root aggregate of a bluff-trivia match: lifecycle status,
 * round-cycle substate, visibility, host and the player roster. Rounds,
 * players, answers and votes are lifetime-bound to it. Games are only ever
 * soft-deleted.
 */
type Game struct {
	ID              string         `gorm:"primaryKey;size:50;not null"`
	Name            string         `gorm:"size:100;not null;uniqueIndex"`
	Status          GameStatus     `gorm:"size:20;default:'preparing';index:idx_games_status"`
	Substate        GameSubstate   `gorm:"size:20;default:'n/a'"`
	Visibility      Visibility     `gorm:"size:20;default:'public';index:idx_games_visibility"`
	Size            int            `gorm:"default:3"`
	TotalRounds     int            `gorm:"default:3"`
	HostUsername    string         `gorm:"size:50;index:idx_games_host"`
	ChooserUsername string         `gorm:"size:50"`
	CreatedAt       time.Time      `gorm:"default:CURRENT_TIMESTAMP"`
	DeletedAt       gorm.DeletedAt `gorm:"index"`

	// Relationships
	Host    GameProfile `gorm:"foreignKey:HostUsername"`
	Players []*Player   `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Rounds  []*Round    `gorm:"foreignKey:GameID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// Random game id generation
const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func generateGameID(length int) string {
	b := make([]byte, length)
	for i := range b {
		b[i] = charset[rand.Intn(len(charset))]
	}
	return string(b)
}

// Ensure the id is truly unique before inserting a new game.
func (g *Game) BeforeCreate(tx *gorm.DB) (err error) {
	if g.ID != "" {
		return nil
	}
	for {
		newID := generateGameID(6)
		var existing Game
		if err := tx.Unscoped().Where("id = ?", newID).First(&existing).Error; err != nil {
			if err == gorm.ErrRecordNotFound {
				g.ID = newID
				return nil
			}
			return err
		}
		// Otherwise, loop again to generate a new unique ID
	}
}

// CurrentRound returns the last (highest numbered) round, or nil while no
// round has been created yet.
func (g *Game) CurrentRound() *Round {
	if len(g.Rounds) == 0 {
		return nil
	}
	return g.Rounds[len(g.Rounds)-1]
}

// IsTerminal reports whether the game reached a state it can never leave.
func (g *Game) IsTerminal() bool {
	return g.Status == StatusAborted || g.Status == StatusFinished
}
