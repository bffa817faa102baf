package http

import (
	"context"
	"io"

	"github.com/mrlokans/hillman/internal/bulkload"
	"github.com/mrlokans/hillman/internal/entities"
	"github.com/mrlokans/hillman/internal/reading"
)

// Each controller depends only on the operations it calls. reading.Service,
// auth.Service and bulkload.Loader satisfy these in production; tests use fakes.

// Catalog serves the member book pages.
type Catalog interface {
	ListBooks() ([]entities.Book, error)
	GetBook(title string) (*entities.Book, error)
	RecommendBooks(username string) (*reading.Recommendation, error)
	BeginReading(username, title string) (*entities.Update, error)
	SubmitReview(username, title string, rating *int, content string) (*entities.Update, error)
	RatingBounds() (int, int)
}

// Timeline pages through the activity feed.
type Timeline interface {
	ListTimeline(limit int, cursor string) (*reading.TimelinePage, error)
}

// Administration holds the privileged operations.
type Administration interface {
	ListUsers() ([]entities.User, error)
	ListBooks() ([]entities.Book, error)
	AdminRemoveUser(actor, username string) (int64, error)
	RemoveUpdate(id uint) error
	ClearBooks() (int64, error)
}

// ReadingService is everything the member and admin pages need from the
// domain layer.
type ReadingService interface {
	Catalog
	Timeline
	Administration
}

// UserCreator creates accounts with an explicit role.
type UserCreator interface {
	CreateUser(username, password string, role entities.UserRole) (*entities.User, error)
}

// BulkLoader seeds users or books from pipe-delimited records.
type BulkLoader interface {
	Load(kind bulkload.Kind, r io.Reader) (*bulkload.Result, error)
	LoadFile(kind bulkload.Kind, path string) (*bulkload.Result, error)
}

// AuditLog records privileged actions.
type AuditLog interface {
	LogAdmin(actor, action, subject, description string, err error)
	LogBulkLoad(actor, kind, source string, created, failed int, err error)
}

// MaintenanceRunner triggers a maintenance job outside its schedule.
type MaintenanceRunner interface {
	RunNow(ctx context.Context) error
}

// Pinger checks that the database answers.
type Pinger interface {
	Ping() error
}
