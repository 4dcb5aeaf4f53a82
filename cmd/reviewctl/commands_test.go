package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"comparecarts/internal/auth"
	"comparecarts/internal/config"
	"comparecarts/internal/db"
	"comparecarts/internal/handler"
	"comparecarts/internal/metrics"
	"comparecarts/internal/repository"
	"comparecarts/internal/router"
	"comparecarts/internal/service"
)

func newTestServer(t *testing.T) string {
	t.Helper()
	gormDB, err := db.Open("sqlite", ":memory:", nil)
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB, false))

	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)
	users := repository.NewUserRepository(gormDB)
	reviews := repository.NewReviewRepository(gormDB)

	e := echo.New()
	router.Register(e, &config.Config{CORSAllowedOrigins: []string{"*"}}, zap.NewNop(), metrics.New(), tokens,
		func(ctx context.Context) error { return db.Ping(ctx, gormDB) },
		handler.NewAuthHandler(service.NewAuthService(users, tokens, nil, nil, nil, time.Minute)),
		handler.NewReviewHandler(service.NewReviewService(reviews, users, nil, nil, nil, time.Minute)),
	)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv.URL + "/api"
}

type cli struct {
	api     string
	session string
}

func (c cli) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--api", c.api, "--session", c.session}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestReviewctl_Flow(t *testing.T) {
	c := cli{api: newTestServer(t), session: filepath.Join(t.TempDir(), "session.json")}

	_, err := c.run(t, "post", "--product", "Pixel 8")
	require.Error(t, err)
	assert.Equal(t, "not logged in", userMessage(err))

	out, err := c.run(t, "signup", "--name", "Ann", "--email", "ann@x.com", "--password", "pw")
	require.NoError(t, err)
	assert.Contains(t, out, "Signup successful. Welcome, Ann (0 credits)")

	_, err = c.run(t, "post", "--product", "Pixel 8", "-c", "Mobiles", "--title", "Solid", "--body", "Good")
	require.Error(t, err)
	assert.Equal(t, "Missing required fields", userMessage(err))

	out, err = c.run(t, "post", "--product", "Pixel 8", "-c", "Mobiles", "--rating", "4.5",
		"--title", "Solid", "--body", "Good camera", "--months", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "You now have 10 credits")
	assert.Contains(t, out, "1 reviews, average rating 4.5")

	out, err = c.run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "10 credits")

	out, err = c.run(t, "reviews", "--search", "CAMERA")
	require.NoError(t, err)
	assert.Contains(t, out, "4.5 (high)")

	out, err = c.run(t, "reviews", "-c", "Laptops")
	require.NoError(t, err)
	assert.Contains(t, out, "No reviews found")

	_, err = c.run(t, "logout")
	require.NoError(t, err)
	_, err = c.run(t, "whoami")
	assert.Equal(t, "not logged in", userMessage(err))

	_, err = c.run(t, "login", "--email", "ann@x.com", "--password", "wrong")
	assert.Equal(t, "Invalid email or password", userMessage(err))
}

func TestReviewctl_Categories(t *testing.T) {
	c := cli{api: "http://127.0.0.1:1/api", session: filepath.Join(t.TempDir(), "session.json")}

	out, err := c.run(t, "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "Home Appliances\n")
}

func TestReviewctl_Unavailable(t *testing.T) {
	c := cli{api: "http://127.0.0.1:1/api", session: filepath.Join(t.TempDir(), "session.json")}

	_, err := c.run(t, "reviews")
	require.Error(t, err)
	assert.Equal(t, "Something went wrong. Please try again.", userMessage(err))
}
