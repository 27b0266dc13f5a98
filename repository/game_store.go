package repository

import (
	models "fibbler/models/postgres"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameStore is the gorm-backed entity store behind the game service. It
// composes the generic repos instead of inheriting from them; the service
// only ever sees the narrow interface it declares itself.
type GameStore struct {
	db      *gorm.DB
	games   *Repo[models.Game]
	players *Repo[models.Player]
	rounds  *Repo[models.Round]
	answers *Repo[models.Answer]
	votes   *Repo[models.Vote]
}

func NewGameStore(db *gorm.DB) *GameStore {
	return &GameStore{
		db:      db,
		games:   NewRepo[models.Game](db),
		players: NewRepo[models.Player](db),
		rounds:  NewRepo[models.Round](db),
		answers: NewRepo[models.Answer](db),
		votes:   NewRepo[models.Vote](db),
	}
}

// GameByID loads the full aggregate: roster plus rounds with prompt,
// answers and votes, rounds ordered by round number.
func (s *GameStore) GameByID(id string) (*models.Game, error) {
	var g models.Game
	err := s.db.
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("players.id ASC") }).
		Preload("Rounds", func(db *gorm.DB) *gorm.DB { return db.Order("rounds.round_number ASC") }).
		Preload("Rounds.Prompt").
		Preload("Rounds.Answers").
		Preload("Rounds.Votes").
		First(&g, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *GameStore) CreateGame(g *models.Game) error {
	return s.db.Omit(clause.Associations).Create(g).Error
}

// SaveGame persists the game row only; children are written through their
// own Add* operations.
func (s *GameStore) SaveGame(g *models.Game) error {
	return s.db.Omit(clause.Associations).Save(g).Error
}

func (s *GameStore) AddPlayer(p *models.Player) error {
	return s.db.Omit(clause.Associations).Create(p).Error
}

func (s *GameStore) RemovePlayer(gameID, username string) error {
	return s.db.Where("game_id = ? AND username = ?", gameID, username).
		Delete(&models.Player{}).Error
}

func (s *GameStore) AddRound(r *models.Round) error {
	return s.db.Omit(clause.Associations).Create(r).Error
}

func (s *GameStore) CompleteRound(r *models.Round) error {
	return s.db.Model(&models.Round{}).Where("id = ?", r.ID).
		Update("is_completed", true).Error
}

func (s *GameStore) AddAnswer(a *models.Answer) error {
	return s.db.Omit(clause.Associations).Create(a).Error
}

func (s *GameStore) AddVote(v *models.Vote) error {
	return s.db.Omit(clause.Associations).Create(v).Error
}

// AddPlayerScore applies an additive score update in the database, never
// a read-modify-write of the column.
func (s *GameStore) AddPlayerScore(playerID uint, delta int) error {
	return s.db.Model(&models.Player{}).Where("id = ?", playerID).
		UpdateColumn("score", gorm.Expr("score + ?", delta)).Error
}

// ListJoinable returns preparing games the given user could join: public
// ones plus friends-only games hosted by one of their friends.
func (s *GameStore) ListJoinable(friends []string) ([]models.Game, error) {
	var games []models.Game
	q := s.db.Preload("Players").Where("status = ?", models.StatusPreparing)
	if len(friends) > 0 {
		q = q.Where("visibility = ? OR (visibility = ? AND host_username IN ?)",
			models.VisibilityPublic, models.VisibilityFriendsOnly, friends)
	} else {
		q = q.Where("visibility = ?", models.VisibilityPublic)
	}
	if err := q.Order("created_at DESC").Find(&games).Error; err != nil {
		return nil, err
	}
	return games, nil
}

// GamesOf returns the games a user currently has a player profile in,
// newest first. Used to resolve "current game" on disconnect.
func (s *GameStore) GamesOf(username string) ([]models.Game, error) {
	var games []models.Game
	err := s.db.
		Joins("JOIN players ON players.game_id = games.id").
		Where("players.username = ?", username).
		Where("games.status IN ?", []models.GameStatus{
			models.StatusPreparing, models.StatusInProgress, models.StatusFinalResults,
		}).
		Order("games.created_at DESC").
		Find(&games).Error
	if err != nil {
		return nil, err
	}
	return games, nil
}

// SoftDeleteGame hides a terminal game; the row and its children survive
// for audit, cascaded out of every live query by the deleted_at filter.
func (s *GameStore) SoftDeleteGame(g *models.Game) error {
	return s.games.SoftDelete(g)
}
