package dao

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"barberbot/model"
)

// UserDAO handles user-related database operations.
type UserDAO struct {
	db *gorm.DB
}

func NewUserDAO(db *gorm.DB) *UserDAO {
	return &UserDAO{db: db}
}

func (d *UserDAO) Create(user *model.User) error {
	if err := d.db.Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (d *UserDAO) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := d.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}
	return &user, nil
}

func (d *UserDAO) Exists(username, email string) bool {
	var count int64
	if err := d.db.Model(&model.User{}).
		Where("username = ? OR email = ?", username, email).
		Count(&count).Error; err != nil {
		return false
	}
	return count > 0
}
