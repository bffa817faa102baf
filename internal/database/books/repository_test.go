package books

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/hillman/internal/database"
	"github.com/mrlokans/hillman/internal/entities"
)

func setupTestDB(t *testing.T) *Repository {
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "books.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.DB)
}

func seed(t *testing.T, repo *Repository, books ...entities.Book) {
	t.Helper()
	for i := range books {
		require.NoError(t, repo.CreateBook(&books[i]))
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo, entities.Book{Title: "Dune", Author: "Frank Herbert", Genre: "scifi", Image: "dune.jpg"})

	book, err := repo.GetBookByTitle("Dune")
	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", book.Author)
	assert.Zero(t, book.Rating)
	assert.Zero(t, book.NumRatings)
	assert.False(t, book.HasRatings())
}

func TestRepository_CreateBook_Duplicate(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo, entities.Book{Title: "Dune"})

	err := repo.CreateBook(&entities.Book{Title: "Dune", Author: "Someone Else"})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)

	book, err := repo.GetBookByTitle("Dune")
	require.NoError(t, err)
	assert.Empty(t, book.Author, "existing row must not be overwritten")
}

func TestRepository_GetBookByTitle_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	_, err := repo.GetBookByTitle("Nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetBooksByGenre(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo,
		entities.Book{Title: "A", Genre: "X", Rating: 9, NumRatings: 1},
		entities.Book{Title: "B", Genre: "X", Rating: 7, NumRatings: 1},
		entities.Book{Title: "D", Genre: "X", Rating: 8, NumRatings: 1},
		entities.Book{Title: "C", Genre: "Y", Rating: 10, NumRatings: 1},
	)

	books, err := repo.GetBooksByGenre("X", "A")
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "D", books[0].Title)
	assert.Equal(t, "B", books[1].Title)
}

func TestRepository_CompareAndSetRating(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo, entities.Book{Title: "Dune"})

	ok, err := repo.CompareAndSetRating("Dune", 0, 8, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	// Stale expected count loses.
	ok, err = repo.CompareAndSetRating("Dune", 0, 6, 1)
	require.NoError(t, err)
	assert.False(t, ok)

	book, err := repo.GetBookByTitle("Dune")
	require.NoError(t, err)
	assert.Equal(t, 8.0, book.Rating)
	assert.Equal(t, 1, book.NumRatings)
}

func TestRepository_DeleteAllBooks(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo, entities.Book{Title: "A"}, entities.Book{Title: "B"})

	n, err := repo.DeleteAllBooks()
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := repo.CountBooks()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRepository_GetAllBooks_Ordered(t *testing.T) {
	repo := setupTestDB(t)
	seed(t, repo, entities.Book{Title: "Zen"}, entities.Book{Title: "Anathem"})

	books, err := repo.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "Anathem", books[0].Title)
}
