package repository

import (
	models "fibbler/models/postgres"

	"gorm.io/gorm"
)

// UserRepository resolves account identities for auth and the game service.
type UserRepository struct {
	users    *Repo[models.User]
	profiles *Repo[models.GameProfile]
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{
		users:    NewRepo[models.User](db),
		profiles: NewRepo[models.GameProfile](db),
	}
}

func (r *UserRepository) FindByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.users.DB().Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.users.DB().Where("profile_username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// UserExists satisfies the game service's UserDirectory.
func (r *UserRepository) UserExists(username string) (bool, error) {
	var count int64
	err := r.users.DB().Model(&models.User{}).
		Where("profile_username = ?", username).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CreateWithProfile inserts the profile row first so the user's FK holds.
func (r *UserRepository) CreateWithProfile(user *models.User) error {
	return r.users.DB().Transaction(func(tx *gorm.DB) error {
		profile := models.GameProfile{Username: user.ProfileUsername}
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		return tx.Omit("GameProfile").Create(user).Error
	})
}

func (r *UserRepository) ProfileOf(username string) (*models.GameProfile, error) {
	var profile models.GameProfile
	if err := r.profiles.DB().Where("username = ?", username).First(&profile).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *UserRepository) SaveProfile(profile *models.GameProfile) error {
	return r.profiles.Update(profile)
}

// SetInGameFlag flips the profile's in-a-game marker without touching the
// rest of the row.
func (r *UserRepository) SetInGameFlag(username string, inGame bool) error {
	return r.profiles.DB().Model(&models.GameProfile{}).
		Where("username = ?", username).
		UpdateColumn("is_in_a_game", inGame).Error
}
