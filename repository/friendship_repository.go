package repository

import (
	models "fibbler/models/postgres"

	"gorm.io/gorm"
)

// FriendshipRepository answers friendship questions; the FRIENDS_ONLY
// visibility rule of the game service runs through it.
type FriendshipRepository struct {
	friendships *Repo[models.Friendship]
}

func NewFriendshipRepository(db *gorm.DB) *FriendshipRepository {
	return &FriendshipRepository{friendships: NewRepo[models.Friendship](db)}
}

// AreFriends checks both orderings of the pair.
func (r *FriendshipRepository) AreFriends(a, b string) (bool, error) {
	var count int64
	err := r.friendships.DB().Model(&models.Friendship{}).
		Where("(username1 = ? AND username2 = ?) OR (username1 = ? AND username2 = ?)", a, b, b, a).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// FriendsOf lists the usernames friended with the given user.
func (r *FriendshipRepository) FriendsOf(username string) ([]string, error) {
	rows, err := r.friendships.FindBy("username1 = ? OR username2 = ?", username, username)
	if err != nil {
		return nil, err
	}
	friends := make([]string, 0, len(rows))
	for _, f := range rows {
		if f.Username1 == username {
			friends = append(friends, f.Username2)
		} else {
			friends = append(friends, f.Username1)
		}
	}
	return friends, nil
}

func (r *FriendshipRepository) AddFriendship(a, b string) error {
	return r.friendships.Create(&models.Friendship{Username1: a, Username2: b})
}
