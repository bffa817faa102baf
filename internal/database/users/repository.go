// Package users provides database operations for user management.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByUsername("alice")
package users

import (
	"gorm.io/gorm"

	"github.com/mrlokans/hillman/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a user. A taken username surfaces as gorm.ErrDuplicatedKey.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Omit("ReadingBook").Create(user).Error
}

// GetUserByUsername retrieves a user by username.
func (r *Repository) GetUserByUsername(username string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("username = ?", username).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Exists reports whether a user with the given username is stored.
func (r *Repository) Exists(username string) (bool, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Where("username = ?", username).Count(&count).Error
	return count > 0, err
}

// ListUsers returns every user ordered by username.
func (r *Repository) ListUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("username ASC").Find(&users).Error
	return users, err
}

// CountUsers returns the number of stored users.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}

// DeleteUser removes a user and returns the number of rows deleted.
func (r *Repository) DeleteUser(username string) (int64, error) {
	result := r.db.Where("username = ?", username).Delete(&entities.User{})
	return result.RowsAffected, result.Error
}

// SetReading points the user's currently-reading field at title, or clears it when title is nil.
func (r *Repository) SetReading(username string, title *string) (int64, error) {
	result := r.db.Model(&entities.User{}).Where("username = ?", username).Update("reading", title)
	return result.RowsAffected, result.Error
}

// ClearAllReading nulls the currently-reading field of every user.
func (r *Repository) ClearAllReading() (int64, error) {
	result := r.db.Model(&entities.User{}).Where("reading IS NOT NULL").Update("reading", nil)
	return result.RowsAffected, result.Error
}
