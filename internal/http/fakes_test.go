package http

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/hillman/internal/apperrors"
	"github.com/mrlokans/hillman/internal/auth"
	"github.com/mrlokans/hillman/internal/bulkload"
	"github.com/mrlokans/hillman/internal/entities"
	"github.com/mrlokans/hillman/internal/reading"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// fakeReading is an in-memory ReadingService. err, when set, is returned by
// every operation.
type fakeReading struct {
	books   []entities.Book
	users   []entities.User
	rec     *reading.Recommendation
	page    *reading.TimelinePage
	err     error
	calls   []string
	removed map[string]int64

	lastRating  *int
	lastContent string
	lastCursor  string
	lastLimit   int
}

func (f *fakeReading) record(call string) error {
	f.calls = append(f.calls, call)
	return f.err
}

func (f *fakeReading) ListBooks() ([]entities.Book, error) {
	if err := f.record("ListBooks"); err != nil {
		return nil, err
	}
	return f.books, nil
}

func (f *fakeReading) GetBook(title string) (*entities.Book, error) {
	if err := f.record("GetBook " + title); err != nil {
		return nil, err
	}
	for i := range f.books {
		if f.books[i].Title == title {
			return &f.books[i], nil
		}
	}
	return nil, apperrors.NotFound("book", title)
}

func (f *fakeReading) RecommendBooks(username string) (*reading.Recommendation, error) {
	if err := f.record("RecommendBooks " + username); err != nil {
		return nil, err
	}
	return f.rec, nil
}

func (f *fakeReading) BeginReading(username, title string) (*entities.Update, error) {
	if err := f.record("BeginReading " + username + " " + title); err != nil {
		return nil, err
	}
	if _, err := f.GetBook(title); err != nil {
		return nil, err
	}
	return &entities.Update{ID: 1, Type: entities.UpdateTypeReading, AuthorUsername: username, BookTitle: title}, nil
}

func (f *fakeReading) SubmitReview(username, title string, rating *int, content string) (*entities.Update, error) {
	f.lastRating = rating
	f.lastContent = content
	if err := f.record("SubmitReview " + username + " " + title); err != nil {
		return nil, err
	}
	if rating == nil || *rating < 1 || *rating > 10 {
		return nil, apperrors.Validation("Please give this book a rating from 1 - 10")
	}
	return &entities.Update{ID: 2, Type: entities.UpdateTypeReview, AuthorUsername: username, BookTitle: title, Rating: rating}, nil
}

func (f *fakeReading) RatingBounds() (int, int) {
	return 1, 10
}

func (f *fakeReading) ListTimeline(limit int, cursor string) (*reading.TimelinePage, error) {
	f.lastLimit = limit
	f.lastCursor = cursor
	if err := f.record("ListTimeline"); err != nil {
		return nil, err
	}
	return f.page, nil
}

func (f *fakeReading) ListUsers() ([]entities.User, error) {
	if err := f.record("ListUsers"); err != nil {
		return nil, err
	}
	return f.users, nil
}

func (f *fakeReading) AdminRemoveUser(actor, username string) (int64, error) {
	if err := f.record("AdminRemoveUser " + actor + " " + username); err != nil {
		return 0, err
	}
	n, ok := f.removed[username]
	if !ok {
		return 0, apperrors.NotFound("user", username)
	}
	return n, nil
}

func (f *fakeReading) RemoveUpdate(id uint) error {
	return f.record("RemoveUpdate")
}

func (f *fakeReading) ClearBooks() (int64, error) {
	if err := f.record("ClearBooks"); err != nil {
		return 0, err
	}
	return int64(len(f.books)), nil
}

type fakeUserCreator struct {
	created []entities.User
	err     error
}

func (f *fakeUserCreator) CreateUser(username, password string, role entities.UserRole) (*entities.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	if role == "" {
		role = entities.UserRoleMember
	}
	user := entities.User{Username: username, Role: role}
	f.created = append(f.created, user)
	return &user, nil
}

type fakeLoader struct {
	kind   bulkload.Kind
	path   string
	body   string
	result *bulkload.Result
	err    error
}

func (f *fakeLoader) Load(kind bulkload.Kind, r io.Reader) (*bulkload.Result, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.kind = kind
	f.body = string(data)
	return f.result, f.err
}

func (f *fakeLoader) LoadFile(kind bulkload.Kind, path string) (*bulkload.Result, error) {
	f.kind = kind
	f.path = path
	return f.result, f.err
}

type auditRecord struct {
	actor, action, subject string
	err                    error
}

type fakeAudit struct {
	records []auditRecord
}

func (f *fakeAudit) LogAdmin(actor, action, subject, description string, err error) {
	f.records = append(f.records, auditRecord{actor: actor, action: action, subject: subject, err: err})
}

func (f *fakeAudit) LogBulkLoad(actor, kind, source string, created, failed int, err error) {
	f.records = append(f.records, auditRecord{actor: actor, action: "load_" + kind, subject: source, err: err})
}

// fakeFlasher keeps flashes in memory instead of a session.
type fakeFlasher struct {
	pending []string
}

func (f *fakeFlasher) AddFlash(_ *http.Request, message string) {
	f.pending = append(f.pending, message)
}

func (f *fakeFlasher) PopFlashes(_ *http.Request) []string {
	out := f.pending
	f.pending = nil
	return out
}

// withUser stands in for auth.Middleware.Handler.
func withUser(user *entities.User) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(auth.ContextKeyUser, user)
		c.Set(auth.ContextKeyUsername, user.Username)
		c.Next()
	}
}

func newJSONRequest(method, path string, form string) *http.Request {
	var req *http.Request
	if form != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(form))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("Accept", "application/json")
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}
