// Package updates provides database operations for timeline entries.
//
// # Usage
//
//	repo := updates.NewRepository(db)
//	page, err := repo.ListRecent(30, pagination.Cursor{})
package updates

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/hillman/internal/entities"
	"github.com/mrlokans/hillman/internal/utils/pagination"
)

// Repository handles all timeline database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new updates repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUpdate appends a timeline entry. Referenced user and book rows are not touched.
func (r *Repository) CreateUpdate(update *entities.Update) error {
	return r.db.Omit(clause.Associations).Create(update).Error
}

// GetUpdateByID retrieves a single entry.
func (r *Repository) GetUpdateByID(id uint) (*entities.Update, error) {
	var update entities.Update
	err := r.db.First(&update, id).Error
	if err != nil {
		return nil, err
	}
	return &update, nil
}

// ListRecent returns up to limit entries, newest first, strictly after the
// cursor position. A zero cursor starts from the newest entry.
func (r *Repository) ListRecent(limit int, after pagination.Cursor) ([]entities.Update, error) {
	var updates []entities.Update

	query := r.db.Model(&entities.Update{})
	if !after.IsZero() {
		ts := after.Time()
		query = query.Where("timestamp < ? OR (timestamp = ? AND id < ?)", ts, ts, after.UpdateID)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	err := query.Order("timestamp DESC, id DESC").Find(&updates).Error
	return updates, err
}

// ListByAuthor returns one user's entries, newest first.
func (r *Repository) ListByAuthor(username string) ([]entities.Update, error) {
	var updates []entities.Update
	err := r.db.Where("author_username = ?", username).
		Order("timestamp DESC, id DESC").
		Find(&updates).Error
	return updates, err
}

// DeleteUpdate removes one entry and returns the number of rows deleted.
func (r *Repository) DeleteUpdate(id uint) (int64, error) {
	result := r.db.Delete(&entities.Update{}, id)
	return result.RowsAffected, result.Error
}

// DeleteByAuthor removes every entry written by username.
func (r *Repository) DeleteByAuthor(username string) (int64, error) {
	result := r.db.Where("author_username = ?", username).Delete(&entities.Update{})
	return result.RowsAffected, result.Error
}

// DeleteAllUpdates empties the timeline.
func (r *Repository) DeleteAllUpdates() (int64, error) {
	result := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Update{})
	return result.RowsAffected, result.Error
}
