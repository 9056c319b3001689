package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jury-dashboard/models"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testSecret = []byte("test-admin-secret")

func echoAdmin() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		a, ok := AdminFromContext(r.Context())
		if !ok {
			http.Error(w, "no admin", http.StatusInternalServerError)
			return
		}
		w.Write([]byte(a.Username + "/" + a.Role + "/" + a.ID))
	})
}

func TestAdminAuthRejectsAnonymous(t *testing.T) {
	store := sessions.NewCookieStore([]byte("session-secret"))
	h := AdminAuth(store, testSecret)(echoAdmin())

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		req := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}
}

func TestAdminAuthBearerToken(t *testing.T) {
	store := sessions.NewCookieStore([]byte("session-secret"))
	h := AdminAuth(store, testSecret)(echoAdmin())

	token, err := IssueAdminToken(models.AdminAccount{ID: 7, Username: "ada", Role: "admin"}, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada/admin/7", rec.Body.String())
}

func TestAdminAuthRejectsNonAdminToken(t *testing.T) {
	token, err := IssueAdminToken(models.AdminAccount{ID: 1, Username: "judge", Role: "judge"}, testSecret, time.Hour)
	require.NoError(t, err)

	_, err = ValidateAdminToken(token, testSecret)
	assert.Error(t, err)

	expired, err := IssueAdminToken(models.AdminAccount{ID: 1, Username: "ada", Role: "admin"}, testSecret, -time.Minute)
	require.NoError(t, err)
	_, err = ValidateAdminToken(expired, testSecret)
	assert.Error(t, err)
}

func TestAdminAuthSession(t *testing.T) {
	store := sessions.NewCookieStore([]byte("session-secret"))

	login := httptest.NewRecorder()
	loginReq := httptest.NewRequest(http.MethodPost, "/admin/login", nil)
	session, _ := store.Get(loginReq, AdminSessionName)
	session.Values["authenticated"] = true
	session.Values["admin_id"] = 3
	session.Values["username"] = "grace"
	session.Values["role"] = "super_admin"
	require.NoError(t, session.Save(loginReq, login))

	req := httptest.NewRequest(http.MethodGet, "/admin/projects", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	AdminAuth(store, testSecret)(echoAdmin()).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "grace/super_admin/3", rec.Body.String())
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	h := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "10.0.0.2:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRateLimiterForgetsIdleClients(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.allow("10.0.0.1"))
	assert.False(t, rl.allow("10.0.0.1"))
	assert.True(t, rl.allow("10.0.0.2"))
	assert.Len(t, rl.clients, 2)

	now = now.Add(limiterIdleTTL + time.Second)
	assert.True(t, rl.allow("10.0.0.3"))
	assert.Len(t, rl.clients, 1)
	assert.Contains(t, rl.clients, "10.0.0.3")
}

func TestLoggerRecordsStatus(t *testing.T) {
	h := Logger(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}
