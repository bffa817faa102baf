// Package reading implements the catalog, timeline and review operations.
//
// Every mutation runs in one gorm transaction with repositories bound to the
// transaction handle. Repository errors are translated to apperrors kinds here
// so controllers never see gorm sentinels.
package reading

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/config"
	"github.com/mrlokans/hillman/internal/database"
	"github.com/mrlokans/hillman/internal/database/books"
	"github.com/mrlokans/hillman/internal/database/updates"
	"github.com/mrlokans/hillman/internal/database/users"
	"github.com/mrlokans/hillman/internal/entities"
	"github.com/mrlokans/hillman/internal/utils/pagination"
)

// User-facing notices.
const (
	NoticeStartReading   = "Start reading a book to get more recommendations"
	NoticeSomethingWrong = "Something went wrong"
	MsgSelfRemoval       = "You cannot remove your own account"
	MsgConcurrentReview  = "Another review was submitted at the same time, please try again"
	MsgInvalidCursor     = "Invalid timeline cursor"
)

// Service owns the domain rules for books, users' reading state and the timeline.
type Service struct {
	db        *gorm.DB
	now       func() time.Time
	ratingMin int
	ratingMax int
	pageSize  int
}

type Option func(*Service)

// WithClock replaces the time source used to stamp timeline entries.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a reading service. Zero config values fall back to the
// package defaults.
func NewService(db *gorm.DB, cfg config.Reading, opts ...Option) *Service {
	s := &Service{
		db:        db,
		now:       time.Now,
		ratingMin: cfg.RatingMin,
		ratingMax: cfg.RatingMax,
		pageSize:  cfg.TimelinePageSize,
	}
	if s.ratingMin <= 0 {
		s.ratingMin = config.DefaultRatingMin
	}
	if s.ratingMax < s.ratingMin {
		s.ratingMax = config.DefaultRatingMax
	}
	if s.pageSize <= 0 {
		s.pageSize = config.DefaultTimelinePageSize
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RatingBounds returns the inclusive range accepted by SubmitReview.
func (s *Service) RatingBounds() (int, int) {
	return s.ratingMin, s.ratingMax
}

// RatingPrompt is the validation message for a missing or out-of-range rating.
func (s *Service) RatingPrompt() string {
	return fmt.Sprintf("Please give this book a rating from %d - %d", s.ratingMin, s.ratingMax)
}

// timestamp is millisecond precision so it round-trips through a timeline cursor.
func (s *Service) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

// ListBooks returns the catalog ordered by title.
func (s *Service) ListBooks() ([]entities.Book, error) {
	list, err := books.NewRepository(s.db).GetAllBooks()
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return list, nil
}

// GetBook returns one book by title.
func (s *Service) GetBook(title string) (*entities.Book, error) {
	return findBook(books.NewRepository(s.db), title)
}

// ListUsers returns every account ordered by username.
func (s *Service) ListUsers() ([]entities.User, error) {
	list, err := users.NewRepository(s.db).ListUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return list, nil
}

// BeginReading marks title as the user's current book and posts a reading entry.
func (s *Service) BeginReading(username, title string) (*entities.Update, error) {
	var update *entities.Update

	err := s.db.Transaction(func(tx *gorm.DB) error {
		userRepo := users.NewRepository(tx)
		if _, err := findUser(userRepo, username); err != nil {
			return err
		}
		book, err := findBook(books.NewRepository(tx), title)
		if err != nil {
			return err
		}

		if _, err := userRepo.SetReading(username, &book.Title); err != nil {
			return fmt.Errorf("failed to set current book: %w", err)
		}

		update = &entities.Update{
			Type:           entities.UpdateTypeReading,
			AuthorUsername: username,
			BookTitle:      book.Title,
			Timestamp:      s.timestamp(),
		}
		if err := updates.NewRepository(tx).CreateUpdate(update); err != nil {
			return fmt.Errorf("failed to create update: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return update, nil
}

// SubmitReview records a rating with optional text and folds the rating into
// the book's average. A rating written concurrently by another review is
// reported as a conflict rather than overwritten.
func (s *Service) SubmitReview(username, title string, rating *int, content string) (*entities.Update, error) {
	if rating == nil || *rating < s.ratingMin || *rating > s.ratingMax {
		return nil, apperrors.Validation(s.RatingPrompt())
	}

	var update *entities.Update

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := findUser(users.NewRepository(tx), username); err != nil {
			return err
		}
		bookRepo := books.NewRepository(tx)
		book, err := findBook(bookRepo, title)
		if err != nil {
			return err
		}

		mean, count := NextRating(book.Rating, book.NumRatings, *rating)
		swapped, err := bookRepo.CompareAndSetRating(book.Title, book.NumRatings, mean, count)
		if err != nil {
			return fmt.Errorf("failed to update rating: %w", err)
		}
		if !swapped {
			return apperrors.Conflict(MsgConcurrentReview)
		}

		value := *rating
		update = &entities.Update{
			Type:           entities.UpdateTypeReview,
			AuthorUsername: username,
			BookTitle:      book.Title,
			Rating:         &value,
			Timestamp:      s.timestamp(),
		}
		if text := strings.TrimSpace(content); text != "" {
			update.Content = &text
		}
		if err := updates.NewRepository(tx).CreateUpdate(update); err != nil {
			return fmt.Errorf("failed to create update: %w", err)
		}
		return nil
	})
	if database.IsBusy(err) {
		return nil, apperrors.New(apperrors.KindConflict, MsgConcurrentReview, err)
	}
	if err != nil {
		return nil, err
	}
	return update, nil
}

// Recommendation is the result of RecommendBooks. Notice is set, and Books
// empty, when no recommendation could be made.
type Recommendation struct {
	Books  []entities.Book `json:"books"`
	Notice string          `json:"notice,omitempty"`
}

// RecommendBooks suggests books sharing the genre of the user's current book,
// best rated first, without the current book itself.
func (s *Service) RecommendBooks(username string) (*Recommendation, error) {
	user, err := findUser(users.NewRepository(s.db), username)
	if err != nil {
		return nil, err
	}
	if !user.IsReading() {
		return &Recommendation{Books: []entities.Book{}, Notice: NoticeStartReading}, nil
	}

	bookRepo := books.NewRepository(s.db)
	current, err := bookRepo.GetBookByTitle(*user.Reading)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &Recommendation{Books: []entities.Book{}, Notice: NoticeSomethingWrong}, nil
		}
		return nil, fmt.Errorf("failed to load current book: %w", err)
	}
	if current.Genre == "" {
		return &Recommendation{Books: []entities.Book{}, Notice: NoticeSomethingWrong}, nil
	}

	list, err := bookRepo.GetBooksByGenre(current.Genre, current.Title)
	if err != nil {
		return nil, fmt.Errorf("failed to list books by genre: %w", err)
	}
	return &Recommendation{Books: list}, nil
}

// TimelinePage is one page of the feed. NextCursor is empty on the last page.
type TimelinePage struct {
	Updates    []entities.Update `json:"updates"`
	NextCursor string            `json:"next_cursor"`
}

// ListTimeline returns up to limit entries, newest first, starting after the
// position encoded in cursor. A limit of zero uses the configured page size.
func (s *Service) ListTimeline(limit int, cursor string) (*TimelinePage, error) {
	if limit <= 0 {
		limit = s.pageSize
	}
	after, err := pagination.Decode(cursor)
	if err != nil {
		return nil, apperrors.New(apperrors.KindValidation, MsgInvalidCursor, err)
	}

	// One extra row tells whether another page exists.
	rows, err := updates.NewRepository(s.db).ListRecent(limit+1, after)
	if err != nil {
		return nil, fmt.Errorf("failed to list timeline: %w", err)
	}

	page := &TimelinePage{Updates: rows}
	if len(rows) > limit {
		page.Updates = rows[:limit]
		last := page.Updates[limit-1]
		next, err := pagination.Encode(pagination.After(last.Timestamp, last.ID))
		if err != nil {
			return nil, err
		}
		page.NextCursor = next
	}
	return page, nil
}

// AdminRemoveUser deletes an account together with its timeline entries and
// returns how many entries went with it. Admins cannot remove themselves.
func (s *Service) AdminRemoveUser(actor, username string) (int64, error) {
	if actor == username {
		return 0, apperrors.Validation(MsgSelfRemoval)
	}

	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		n, err := updates.NewRepository(tx).DeleteByAuthor(username)
		if err != nil {
			return fmt.Errorf("failed to delete updates: %w", err)
		}
		deleted, err := users.NewRepository(tx).DeleteUser(username)
		if err != nil {
			return fmt.Errorf("failed to delete user: %w", err)
		}
		if deleted == 0 {
			return apperrors.NotFound("user", username)
		}
		removed = n
		return nil
	})
	return removed, err
}

// RemoveUpdate deletes one timeline entry. Book ratings are left as they are.
func (s *Service) RemoveUpdate(id uint) error {
	deleted, err := updates.NewRepository(s.db).DeleteUpdate(id)
	if err != nil {
		return fmt.Errorf("failed to delete update: %w", err)
	}
	if deleted == 0 {
		return apperrors.NotFound("update", strconv.FormatUint(uint64(id), 10))
	}
	return nil
}

// ClearBooks empties the catalog. Users stop reading, every timeline entry is
// removed since each one references a book, and then the books are deleted.
func (s *Service) ClearBooks() (int64, error) {
	var removed int64
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if _, err := users.NewRepository(tx).ClearAllReading(); err != nil {
			return fmt.Errorf("failed to clear current books: %w", err)
		}
		if _, err := updates.NewRepository(tx).DeleteAllUpdates(); err != nil {
			return fmt.Errorf("failed to delete updates: %w", err)
		}
		n, err := books.NewRepository(tx).DeleteAllBooks()
		if err != nil {
			return fmt.Errorf("failed to delete books: %w", err)
		}
		removed = n
		return nil
	})
	return removed, err
}

func findUser(repo *users.Repository, username string) (*entities.User, error) {
	user, err := repo.GetUserByUsername(username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("user", username)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

func findBook(repo *books.Repository, title string) (*entities.Book, error) {
	book, err := repo.GetBookByTitle(title)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("book", title)
		}
		return nil, fmt.Errorf("failed to load book: %w", err)
	}
	return book, nil
}
