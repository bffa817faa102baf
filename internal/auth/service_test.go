package auth

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/database"
	"github.com/mrlokans/hillman/internal/entities"
)

func setupTestDB(t *testing.T) *database.Database {
	t.Helper()
	db, err := database.NewSQLite(filepath.Join(t.TempDir(), "auth.db"), logger.Silent)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	db := setupTestDB(t)
	return NewService(db.DB, config.Auth{BcryptCost: bcrypt.MinCost}), db.DB
}

func TestService_CreateUser(t *testing.T) {
	svc, _ := newTestService(t)

	tests := []struct {
		name     string
		username string
		password string
		role     entities.UserRole
		wantKind apperrors.Kind
		wantMsg  string
	}{
		{name: "valid member", username: "alice", password: "p", role: entities.UserRoleMember},
		{name: "role defaults to member", username: "bob", password: "p"},
		{name: "missing username", username: "", password: "p", wantKind: apperrors.KindValidation, wantMsg: MsgUsernameRequired},
		{name: "blank username", username: "   ", password: "p", wantKind: apperrors.KindValidation, wantMsg: MsgUsernameRequired},
		{name: "missing password", username: "carol", password: "", wantKind: apperrors.KindValidation, wantMsg: MsgPasswordRequired},
		{name: "username too long", username: strings.Repeat("x", 25), password: "p", wantKind: apperrors.KindValidation, wantMsg: MsgUsernameTooLong},
		{name: "username at limit", username: strings.Repeat("y", 24), password: "p"},
		{name: "unknown role", username: "dave", password: "p", role: "owner", wantKind: apperrors.KindValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := svc.CreateUser(tt.username, tt.password, tt.role)
			if tt.wantKind != "" {
				require.Error(t, err)
				assert.Equal(t, tt.wantKind, apperrors.KindOf(err))
				if tt.wantMsg != "" {
					assert.Equal(t, tt.wantMsg, apperrors.Message(err))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.username, user.Username)
			assert.NotEqual(t, tt.password, user.PasswordHash)
			assert.True(t, user.Role.Valid())
		})
	}
}

func TestService_CreateUser_DuplicateIsConflict(t *testing.T) {
	svc, db := newTestService(t)

	_, err := svc.CreateUser("alice", "first", entities.UserRoleMember)
	require.NoError(t, err)

	_, err = svc.CreateUser("alice", "second", entities.UserRoleAdmin)
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict))
	assert.Equal(t, MsgUserExists, apperrors.Message(err))

	// The original row is untouched.
	var stored entities.User
	require.NoError(t, db.First(&stored, "username = ?", "alice").Error)
	assert.Equal(t, entities.UserRoleMember, stored.Role)
	assert.NoError(t, CheckPassword("first", stored.PasswordHash))
}

func TestService_CreateUser_NormalizesUsername(t *testing.T) {
	svc, _ := newTestService(t)

	user, err := svc.CreateUser("  alice\t", "p", entities.UserRoleMember)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.CreateUser("alice ", "p", entities.UserRoleMember)
	assert.True(t, apperrors.Is(err, apperrors.KindConflict), "padded name is the same account")

	authed, err := svc.Authenticate(" alice ", "p")
	require.NoError(t, err)
	assert.Equal(t, "alice", authed.Username)
}

func TestService_Authenticate(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateUser("alice", "secret", entities.UserRoleMember)
	require.NoError(t, err)

	t.Run("round trip", func(t *testing.T) {
		user, err := svc.Authenticate("alice", "secret")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate("alice", "nope")
		require.Error(t, err)
		assert.Equal(t, apperrors.KindAuth, apperrors.KindOf(err))
		assert.ErrorIs(t, err, apperrors.ErrWrongSecret)
		assert.Equal(t, "invalid password", err.Error())
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.Authenticate("mallory", "secret")
		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrUnknownIdentity)
	})

	t.Run("empty fields", func(t *testing.T) {
		_, err := svc.Authenticate("", "secret")
		assert.Equal(t, MsgUsernameRequired, apperrors.Message(err))

		_, err = svc.Authenticate("alice", "")
		assert.Equal(t, MsgPasswordRequired, apperrors.Message(err))
	})
}

func TestService_GetUser(t *testing.T) {
	svc, _ := newTestService(t)
	_, err := svc.CreateUser("alice", "secret", entities.UserRoleMember)
	require.NoError(t, err)

	user, err := svc.GetUser("alice")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)

	_, err = svc.GetUser("ghost")
	assert.True(t, apperrors.Is(err, apperrors.KindNotFound))
}

func TestService_EnsureAdmin(t *testing.T) {
	svc, _ := newTestService(t)

	has, err := svc.HasUsers()
	require.NoError(t, err)
	assert.False(t, has)

	created, err := svc.EnsureAdmin("admin", "admin")
	require.NoError(t, err)
	assert.True(t, created)

	created, err = svc.EnsureAdmin("admin", "other")
	require.NoError(t, err)
	assert.False(t, created)

	user, err := svc.Authenticate("admin", "admin")
	require.NoError(t, err)
	assert.True(t, user.IsAdmin())

	has, err = svc.HasUsers()
	require.NoError(t, err)
	assert.True(t, has)
}
