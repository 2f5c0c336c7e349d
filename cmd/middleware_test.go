package main

import (
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rentaBack/internal/session"
)

func TestRateLimiterPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.True(t, rl.allow("10.0.0.1", now))
	assert.True(t, rl.allow("10.0.0.1", now))
	assert.False(t, rl.allow("10.0.0.1", now))
	assert.True(t, rl.allow("10.0.0.2", now))
	assert.True(t, rl.allow("10.0.0.1", now.Add(time.Second)))

	assert.Equal(t, 0, rl.Cleanup(now.Add(time.Minute)))
	assert.Equal(t, 2, rl.Cleanup(now.Add(time.Hour)))
}

func TestRateLimiterHandler(t *testing.T) {
	rl := NewRateLimiter(1, 1)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/webhooks/wompi", nil)
		r.RemoteAddr = "192.0.2.1:5555"
		h.ServeHTTP(rec, r)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func testApp() *application {
	return &application{
		errorLog: log.New(io.Discard, "", 0),
		infoLog:  log.New(io.Discard, "", 0),
		sessions: session.NewProvider("secret", ""),
	}
}

func TestAuthenticateMiddleware(t *testing.T) {
	app := testApp()
	var got session.Session
	var seen bool
	h := app.authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, seen = session.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/properties", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, seen)

	claims := &session.Claims{}
	claims.Subject = "user-1"
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/properties", nil)
	r.Header.Set("Authorization", "Bearer "+token)
	h.ServeHTTP(httptest.NewRecorder(), r)
	assert.True(t, seen)
	assert.Equal(t, "user-1", got.UserID)

	r = httptest.NewRequest(http.MethodGet, "/properties", nil)
	r.Header.Set("Authorization", "Bearer garbage")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireAdminMiddleware(t *testing.T) {
	app := testApp()
	h := app.requireAdmin(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/kyc", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	r := httptest.NewRequest(http.MethodGet, "/admin/kyc", nil)
	r = r.WithContext(session.NewContext(r.Context(), session.Session{UserID: "u1", Role: "user"}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRecoverPanic(t *testing.T) {
	app := testApp()
	h := app.recoverPanic(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
