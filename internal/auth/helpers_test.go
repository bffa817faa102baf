package auth

import (
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/hillman/internal/config"
)

var testAuthConfig = config.Auth{
	SessionLifetime:       time.Hour,
	BcryptCost:            bcrypt.MinCost,
	MaxLoginAttempts:      3,
	RateLimitWindow:       time.Minute,
	LockoutDuration:       time.Minute,
	RegisterRatePerMinute: 60,
	RegisterBurst:         10,
}

// testStack wires the auth package the way the HTTP router does.
type testStack struct {
	router   *gin.Engine
	service  *Service
	sessions *SessionManager
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := setupTestDB(t)

	svc := NewService(db.DB, testAuthConfig)
	sm, err := NewSessionManager(db, testAuthConfig)
	require.NoError(t, err)
	mw := NewMiddleware(svc, sm)

	router := gin.New()
	router.Use(sm.SessionLoadSave(), mw.Handler())

	ac := NewAuthController(svc, sm, "", testAuthConfig, nil)
	t.Cleanup(ac.Stop)
	ac.RegisterRoutes(router)

	member := router.Group("/", mw.RequireUser())
	member.GET("/timeline", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"username": GetUsername(c),
			"flashes":  sm.PopFlashes(c.Request),
		})
	})

	admin := router.Group("/", mw.RequireAdmin())
	admin.GET("/manage", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": CurrentUser(c).Username})
	})

	return &testStack{router: router, service: svc, sessions: sm}
}

// browser carries cookies between requests like a real client.
type browser struct {
	t      *testing.T
	router *gin.Engine
	jar    *cookiejar.Jar
	json   bool
}

var testBaseURL, _ = url.Parse("http://hillman.test/")

func newBrowser(t *testing.T, router *gin.Engine) *browser {
	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	return &browser{t: t, router: router, jar: jar}
}

func (b *browser) do(method, path string, form url.Values) *httptest.ResponseRecorder {
	b.t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if b.json {
		req.Header.Set("Accept", "application/json")
	}
	for _, c := range b.jar.Cookies(testBaseURL) {
		req.AddCookie(c)
	}

	rr := httptest.NewRecorder()
	b.router.ServeHTTP(rr, req)
	b.jar.SetCookies(testBaseURL, rr.Result().Cookies())
	return rr
}

func (b *browser) get(path string) *httptest.ResponseRecorder {
	return b.do(http.MethodGet, path, nil)
}

func (b *browser) post(path string, form url.Values) *httptest.ResponseRecorder {
	if form == nil {
		form = url.Values{}
	}
	return b.do(http.MethodPost, path, form)
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}
