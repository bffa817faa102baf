// Package books provides database operations for the shared book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByTitle("Dune")
package books

import (
	"gorm.io/gorm"

	"github.com/mrlokans/hillman/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a book. A taken title surfaces as gorm.ErrDuplicatedKey.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetBookByTitle retrieves a book by its title.
func (r *Repository) GetBookByTitle(title string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Where("title = ?", title).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks returns the whole catalog ordered by title.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("title ASC").Find(&books).Error
	return books, err
}

// GetBooksByGenre returns books of a genre, best rated first, leaving out excludeTitle.
func (r *Repository) GetBooksByGenre(genre, excludeTitle string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("genre = ? AND title <> ?", genre, excludeTitle).
		Order("rating DESC, title ASC").
		Find(&books).Error
	return books, err
}

// CompareAndSetRating writes a new aggregate only if num_ratings still equals
// expectedCount. It returns false when another review got there first.
func (r *Repository) CompareAndSetRating(title string, expectedCount int, rating float64, count int) (bool, error) {
	result := r.db.Model(&entities.Book{}).
		Where("title = ? AND num_ratings = ?", title, expectedCount).
		Updates(map[string]any{
			"rating":      rating,
			"num_ratings": count,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// DeleteAllBooks removes every book and returns how many were deleted.
func (r *Repository) DeleteAllBooks() (int64, error) {
	result := r.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&entities.Book{})
	return result.RowsAffected, result.Error
}

// CountBooks returns the size of the catalog.
func (r *Repository) CountBooks() (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Count(&count).Error
	return count, err
}
