package bulkload

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/database/books"
	"github.com/mrlokans/hillman/internal/database/users"
	"github.com/mrlokans/hillman/internal/entities"
)

// PasswordHasher produces the stored digest for a plaintext password.
type PasswordHasher func(password string) (string, error)

// LineError ties a rejected record to its line number.
type LineError struct {
	Line int    `json:"line"`
	Text string `json:"text"`
	Err  error  `json:"-"`
}

func (e LineError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e LineError) Unwrap() error {
	return e.Err
}

// Result summarises one load.
type Result struct {
	Kind    Kind        `json:"kind"`
	Created int         `json:"created"`
	Errors  []LineError `json:"errors,omitempty"`
}

// Failed returns the number of rejected lines.
func (r *Result) Failed() int {
	return len(r.Errors)
}

// Loader inserts parsed records one line at a time.
type Loader struct {
	db              *gorm.DB
	hash            PasswordHasher
	defaultPassword string
}

// NewLoader creates a loader. Every bulk-loaded user gets defaultPassword,
// hashed once per load with hash.
func NewLoader(db *gorm.DB, hash PasswordHasher, defaultPassword string) *Loader {
	return &Loader{db: db, hash: hash, defaultPassword: defaultPassword}
}

// LoadFile opens path and loads it as kind.
func (l *Loader) LoadFile(kind Kind, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	return l.Load(kind, f)
}

// Load reads every record from r and inserts it as kind.
func (l *Loader) Load(kind Kind, r io.Reader) (*Result, error) {
	switch kind {
	case KindUsers:
		return l.LoadUsers(r)
	case KindBooks:
		return l.LoadBooks(r)
	default:
		return nil, apperrors.Validation(fmt.Sprintf("unknown record kind %q", kind))
	}
}

// LoadUsers inserts one member per line with the default password.
func (l *Loader) LoadUsers(r io.Reader) (*Result, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: KindUsers}
	if len(lines) == 0 {
		return result, nil
	}

	passwordHash, err := l.hash(l.defaultPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash default password: %w", err)
	}

	repo := users.NewRepository(l.db)
	for _, line := range lines {
		username, err := ParseUser(line.Text)
		if err != nil {
			result.reject(line, err)
			continue
		}

		user := &entities.User{
			Username:     username,
			PasswordHash: passwordHash,
			Role:         entities.UserRoleMember,
		}
		if err := repo.CreateUser(user); err != nil {
			if err := insertError(err, "user", username); err != nil {
				result.reject(line, err)
				continue
			}
		}
		result.Created++
	}

	log.Printf("[bulkload] users: %d created, %d rejected", result.Created, result.Failed())
	return result, nil
}

// LoadBooks inserts one unrated book per line.
func (l *Loader) LoadBooks(r io.Reader) (*Result, error) {
	lines, err := ReadLines(r)
	if err != nil {
		return nil, err
	}

	result := &Result{Kind: KindBooks}
	repo := books.NewRepository(l.db)
	for _, line := range lines {
		book, err := ParseBook(line.Text)
		if err != nil {
			result.reject(line, err)
			continue
		}

		if err := repo.CreateBook(book); err != nil {
			if err := insertError(err, "book", book.Title); err != nil {
				result.reject(line, err)
				continue
			}
		}
		result.Created++
	}

	log.Printf("[bulkload] books: %d created, %d rejected", result.Created, result.Failed())
	return result, nil
}

func (r *Result) reject(line Line, err error) {
	r.Errors = append(r.Errors, LineError{Line: line.Number, Text: line.Text, Err: err})
}

// insertError maps an insert failure to the per-line error reported to callers.
func insertError(err error, resource, key string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict(fmt.Sprintf("%s already exists: %s", resource, key))
	}
	return fmt.Errorf("failed to insert %s %q: %w", resource, key, err)
}
