package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront-api/auth"
	"github.com/junaidrashid-git/storefront-api/ratelimit"
	"github.com/junaidrashid-git/storefront-api/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	m.Run()
}

func get(r http.Handler, path string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	db := testutil.NewDB(t)
	user := testutil.CreateUser(t, db, "ada@example.com")
	tokens := auth.NewTokens(db, "secret", time.Hour)
	token, err := tokens.Issue(context.Background(), user.ID)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", RequireAuth(tokens), func(c *gin.Context) {
		id, _ := auth.UserID(c)
		c.JSON(http.StatusOK, gin.H{"id": id})
	})

	w := get(r, "/me", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.JSONEq(t, `{"ok":false,"message":"Unauthenticated."}`, w.Body.String())

	w = get(r, "/me", http.Header{"Authorization": {"Token " + token}})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", http.Header{"Authorization": {"Bearer not-a-token"}})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(r, "/me", http.Header{"Authorization": {"Bearer " + token}})
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"id":`+jsonNumber(user.ID)+`}`, w.Body.String())

	require.NoError(t, tokens.RevokeAll(context.Background(), user.ID))
	w = get(r, "/me", http.Header{"Authorization": {"Bearer " + token}})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func jsonNumber(v uint) string {
	b, _ := json.Marshal(v)
	return string(b)
}

func TestRateLimit(t *testing.T) {
	l := ratelimit.NewMemory(ratelimit.Config{Name: "auth", Limit: 2, Window: time.Hour})
	r := gin.New()
	r.GET("/ping", RateLimit(l, ByClientIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	require.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)

	w := get(r, "/ping", nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.JSONEq(t, `{"ok":false,"message":"Too Many Requests"}`, w.Body.String())
}

func TestRateLimitByUser(t *testing.T) {
	l := ratelimit.NewMemory(ratelimit.Config{Name: "api", Limit: 1, Window: time.Hour})
	r := gin.New()
	r.GET("/ping", func(c *gin.Context) {
		if c.GetHeader("X-User") == "2" {
			auth.SetUserID(c, 2)
		} else {
			auth.SetUserID(c, 1)
		}
	}, RateLimit(l, ByUser), func(c *gin.Context) { c.Status(http.StatusOK) })

	require.Equal(t, http.StatusOK, get(r, "/ping", nil).Code)
	require.Equal(t, http.StatusTooManyRequests, get(r, "/ping", nil).Code)
	require.Equal(t, http.StatusOK, get(r, "/ping", http.Header{"X-User": {"2"}}).Code)
}

type failingLimiter struct{}

func (failingLimiter) Allow(context.Context, string) (bool, error) {
	return false, context.DeadlineExceeded
}

func TestRateLimitBackendError(t *testing.T) {
	r := gin.New()
	r.GET("/ping", RateLimit(failingLimiter{}, ByClientIP), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := get(r, "/ping", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"ok":false,"message":"Internal server error"}`, w.Body.String())
}

func TestRequestLoggerAndRecovery(t *testing.T) {
	var buf bytes.Buffer
	base := zerolog.New(&buf)

	r := gin.New()
	r.Use(RequestLogger(base), Recovery())
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/boom", func(c *gin.Context) { panic("boom") })

	w := get(r, "/ok", http.Header{RequestIDHeader: {"req-1"}})
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "req-1", w.Header().Get(RequestIDHeader))
	require.Contains(t, buf.String(), `"request_id":"req-1"`)
	require.Contains(t, buf.String(), `"status":200`)

	buf.Reset()
	w = get(r, "/boom", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"ok":false,"message":"Internal server error"}`, w.Body.String())
	require.NotEmpty(t, w.Header().Get(RequestIDHeader))
	require.Contains(t, buf.String(), "panic recovered")
	require.Contains(t, buf.String(), `"status":500`)
}
