package repository

import (
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"chathdi/internal/model"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// EnsureExists records a user the first time a token for their subject is
// seen. Identity itself is owned by the external provider.
func (r *UserRepository) EnsureExists(id, email string) error {
	user := model.User{ID: id, Email: email}
	err := r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("ensure user failed: %w", err)
	}
	return nil
}
