package repository

import (
	"gorm.io/gorm"
)

// Repo is a generic data-access object holding a typed table handle. It
// exposes only the operations the services actually consume; anything
// fancier belongs in a typed repository composing it.
type Repo[T any] struct {
	db *gorm.DB
}

func NewRepo[T any](db *gorm.DB) *Repo[T] {
	return &Repo[T]{db: db}
}

func (r *Repo[T]) FindByID(id interface{}) (*T, error) {
	var entity T
	if err := r.db.First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

// FindBy runs a simple filtered query, e.g. FindBy("status = ?", "preparing").
func (r *Repo[T]) FindBy(query interface{}, args ...interface{}) ([]T, error) {
	var entities []T
	if err := r.db.Where(query, args...).Find(&entities).Error; err != nil {
		return nil, err
	}
	return entities, nil
}

func (r *Repo[T]) Create(entity *T) error {
	return r.db.Create(entity).Error
}

func (r *Repo[T]) Update(entity *T) error {
	return r.db.Save(entity).Error
}

// SoftDelete marks the row deleted when the model carries gorm.DeletedAt,
// and hard-deletes otherwise.
func (r *Repo[T]) SoftDelete(entity *T) error {
	return r.db.Delete(entity).Error
}

// DB exposes the handle for typed repositories composing this one.
func (r *Repo[T]) DB() *gorm.DB {
	return r.db
}
