package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comparecarts/internal/auth"
	"comparecarts/internal/cache"
	"comparecarts/internal/config"
	"comparecarts/internal/db"
	"comparecarts/internal/handler"
	"comparecarts/internal/metrics"
	"comparecarts/internal/repository"
	"comparecarts/internal/service"
)

// newApp assembles the full server over in-memory sqlite and miniredis.
func newApp(t *testing.T, health HealthCheck) *echo.Echo {
	t.Helper()
	gormDB, err := db.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB, false))

	mr := miniredis.RunT(t)
	c := cache.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = c.Close() })

	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	m := metrics.New()
	log := zap.NewNop()

	users := repository.NewUserRepository(gormDB)
	reviews := repository.NewReviewRepository(gormDB)
	authService := service.NewAuthService(users, tokens, c, m, log, time.Minute)
	reviewService := service.NewReviewService(reviews, users, c, m, log, time.Minute)

	if health == nil {
		health = func(ctx context.Context) error { return db.Ping(ctx, gormDB) }
	}

	e := echo.New()
	cfg := &config.Config{CORSAllowedOrigins: []string{"*"}}
	Register(e, cfg, log, m, tokens, health,
		handler.NewAuthHandler(authService),
		handler.NewReviewHandler(reviewService),
	)
	return e
}

func call(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRouter_ReviewFlow(t *testing.T) {
	e := newApp(t, nil)

	rec := call(e, http.MethodPost, "/api/auth/signup", `{"name":"Ann","email":"Ann@X.com","password":"pw"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var signup handler.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &signup))
	assert.Equal(t, "ann@x.com", signup.User.Email)
	assert.Zero(t, signup.User.Credits)

	review := `{"productName":"Pixel 8","category":"Mobiles","rating":4.5,"title":"Solid","body":"Good camera"}`
	rec = call(e, http.MethodPost, "/api/reviews", review, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = call(e, http.MethodPost, "/api/reviews", review, signup.Token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created service.CreateReviewResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, service.CreditsPerReview, created.User.Credits)
	assert.Equal(t, signup.User.ID, created.Review.UserID)

	rec = call(e, http.MethodGet, "/api/reviews", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), created.Review.ID.String())

	rec = call(e, http.MethodGet, "/api/auth/me", "", signup.Token)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"credits":10`)

	rec = call(e, http.MethodPost, "/api/auth/login", `{"email":"ann@x.com","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid email or password","code":"UNAUTHORIZED"}`, rec.Body.String())
}

func TestRouter_AmbientEndpoints(t *testing.T) {
	e := newApp(t, nil)

	rec := call(e, http.MethodGet, "/", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CompareCarts backend is running", rec.Body.String())

	rec = call(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	call(e, http.MethodGet, "/api/reviews", "", "")
	rec = call(e, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",path="/api/reviews",status="200"} 1`)

	rec = call(e, http.MethodGet, "/api/unknown", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Not Found","code":"NOT_FOUND"}`, rec.Body.String())
}

func TestRouter_HealthFailure(t *testing.T) {
	e := newApp(t, func(ctx context.Context) error { return errors.New("db gone") })

	rec := call(e, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestRouter_CORS(t *testing.T) {
	e := newApp(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/reviews", nil)
	req.Header.Set(echo.HeaderOrigin, "http://localhost:3000")
	req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodPost)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
}
