package auth

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/database/users"
	"github.com/mrlokans/hillman/internal/entities"
	"github.com/mrlokans/hillman/internal/utils"
)

// User-facing validation messages.
const (
	MsgUsernameRequired = "You have to enter a username"
	MsgPasswordRequired = "You have to enter a password"
	MsgUsernameTooLong  = "Username must be at most 24 characters"
	MsgPasswordTooLong  = "Password must be at most 72 bytes"
	MsgUserExists       = "User already exists"
)

// Service handles credentials and user creation.
type Service struct {
	users  *users.Repository
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		users:  users.NewRepository(db),
		config: cfg,
	}
}

// CreateUser validates the credentials, hashes the password and stores a new user.
// A taken username is a conflict; existing rows are never overwritten.
func (s *Service) CreateUser(username, password string, role entities.UserRole) (*entities.User, error) {
	username = utils.NormalizeField(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}
	if role == "" {
		role = entities.UserRoleMember
	}
	if !role.Valid() {
		return nil, apperrors.Validation(fmt.Sprintf("Unknown role %q", role))
	}

	exists, err := s.users.Exists(username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if exists {
		return nil, apperrors.Conflict(MsgUserExists)
	}

	passwordHash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
	}
	if err := s.users.CreateUser(user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.Conflict(MsgUserExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate validates credentials and returns the user.
func (s *Service) Authenticate(username, password string) (*entities.User, error) {
	username = utils.NormalizeField(username)
	if username == "" {
		return nil, apperrors.Validation(MsgUsernameRequired)
	}
	if password == "" {
		return nil, apperrors.Validation(MsgPasswordRequired)
	}

	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.UnknownIdentity()
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			return nil, apperrors.WrongSecret()
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return user, nil
}

// GetUser returns the stored user or a not-found error.
func (s *Service) GetUser(username string) (*entities.User, error) {
	user, err := s.users.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", username)
		}
		return nil, err
	}
	return user, nil
}

// EnsureAdmin creates the privileged account unless a user with that name already
// exists. It reports whether a row was inserted.
func (s *Service) EnsureAdmin(username, password string) (bool, error) {
	_, err := s.CreateUser(username, password, entities.UserRoleAdmin)
	if apperrors.Is(err, apperrors.KindConflict) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers() (bool, error) {
	count, err := s.users.CountUsers()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func validateCredentials(username, password string) error {
	if username == "" {
		return apperrors.Validation(MsgUsernameRequired)
	}
	if utf8.RuneCountInString(username) > entities.MaxUsernameLength {
		return apperrors.Validation(MsgUsernameTooLong)
	}
	if password == "" {
		return apperrors.Validation(MsgPasswordRequired)
	}
	if len(password) > MaxPasswordLength {
		return apperrors.Validation(MsgPasswordTooLong)
	}
	return nil
}

// HashPassword hashes password with the configured bcrypt cost.
func (s *Service) HashPassword(password string) (string, error) {
	return HashPassword(password, s.config.BcryptCost)
}
