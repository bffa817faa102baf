package bulkload

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/database"
	"github.com/mrlokans/hillman/internal/entities"
)

// countingHasher records how often it was asked to hash.
type countingHasher struct {
	calls int
}

func (h *countingHasher) Hash(password string) (string, error) {
	h.calls++
	return "hashed:" + password, nil
}

func setupLoader(t *testing.T) (*Loader, *gorm.DB, *countingHasher) {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "bulk.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	hasher := &countingHasher{}
	return NewLoader(db.DB, hasher.Hash, "p"), db.DB, hasher
}

func TestLoader_LoadUsers(t *testing.T) {
	loader, db, hasher := setupLoader(t)

	result, err := loader.LoadUsers(strings.NewReader("alice\nbob|extra\n\n|nobody\nalice\n"))
	require.NoError(t, err)

	assert.Equal(t, KindUsers, result.Kind)
	assert.Equal(t, 2, result.Created)
	require.Equal(t, 2, result.Failed())
	assert.Equal(t, 4, result.Errors[0].Line)
	assert.True(t, apperrors.Is(result.Errors[0], apperrors.KindValidation))
	assert.Equal(t, 5, result.Errors[1].Line)
	assert.True(t, apperrors.Is(result.Errors[1], apperrors.KindConflict))
	assert.Equal(t, 1, hasher.calls)

	var users []entities.User
	require.NoError(t, db.Order("username").Find(&users).Error)
	require.Len(t, users, 2)
	for _, u := range users {
		assert.Equal(t, entities.UserRoleMember, u.Role)
		assert.Equal(t, "hashed:p", u.PasswordHash)
		assert.Nil(t, u.Reading)
	}
}

func TestLoader_LoadUsers_EmptyInputSkipsHashing(t *testing.T) {
	loader, _, hasher := setupLoader(t)

	result, err := loader.LoadUsers(strings.NewReader("\n\n"))
	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Zero(t, hasher.calls)
}

func TestLoader_LoadUsers_HashFailure(t *testing.T) {
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "bulk.db"), logger.Silent)
	require.NoError(t, err)
	defer db.Close()

	failing := func(string) (string, error) { return "", errors.New("boom") }
	_, err = NewLoader(db.DB, failing, "p").LoadUsers(strings.NewReader("alice\n"))
	require.Error(t, err)
}

func TestLoader_LoadBooks(t *testing.T) {
	loader, db, _ := setupLoader(t)

	input := strings.Join([]string{
		"Dune|Frank Herbert|scifi|https://img.example/dune.jpg",
		"Emma|Jane Austen|classic",
		"Neuromancer|William Gibson|scifi|",
		"Dune|Someone Else|fantasy|x",
	}, "\n")

	result, err := loader.LoadBooks(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Created)
	require.Equal(t, 2, result.Failed())
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Equal(t, "Emma|Jane Austen|classic", result.Errors[0].Text)
	assert.True(t, apperrors.Is(result.Errors[1], apperrors.KindConflict))

	var dune entities.Book
	require.NoError(t, db.First(&dune, "title = ?", "Dune").Error)
	assert.Equal(t, "Frank Herbert", dune.Author)
	assert.Zero(t, dune.Rating)
	assert.Zero(t, dune.NumRatings)

	var count int64
	require.NoError(t, db.Model(&entities.Book{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestLoader_LoadFile(t *testing.T) {
	loader, _, _ := setupLoader(t)

	path := filepath.Join(t.TempDir(), "books.txt")
	require.NoError(t, os.WriteFile(path, []byte("Dune|Frank Herbert|scifi|img\n"), 0o600))

	result, err := loader.LoadFile(KindBooks, path)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)

	_, err = loader.LoadFile(KindBooks, filepath.Join(t.TempDir(), "missing.txt"))
	require.Error(t, err)

	_, err = loader.Load(Kind("authors"), strings.NewReader("x"))
	assert.True(t, apperrors.Is(err, apperrors.KindValidation))
}
