package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"comparecarts/internal/model"
)

func newTestAPI(t *testing.T) *httptest.Server {
	t.Helper()
	userID := uuid.New()

	e := echo.New()
	e.POST("/api/auth/login", func(c echo.Context) error {
		var body map[string]string
		if err := c.Bind(&body); err != nil {
			return err
		}
		if body["password"] != "pw" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "Invalid email or password", "code": "UNAUTHORIZED"})
		}
		return c.JSON(http.StatusOK, AuthResponse{
			Message: "Login successful",
			Token:   "tok",
			User:    model.UserView{ID: userID, Email: body["email"]},
		})
	})
	e.GET("/api/auth/me", func(c echo.Context) error {
		if c.Request().Header.Get(echo.HeaderAuthorization) != "Bearer tok" {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "No token provided"})
		}
		return c.JSON(http.StatusOK, model.UserView{ID: userID, Credits: 20})
	})
	e.GET("/api/reviews", func(c echo.Context) error {
		return c.JSON(http.StatusOK, []model.Review{{Title: "newest"}, {Title: "older"}})
	})
	e.POST("/api/reviews", func(c echo.Context) error {
		var in ReviewInput
		if err := c.Bind(&in); err != nil {
			return err
		}
		if in.Rating == nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Missing required fields"})
		}
		return c.JSON(http.StatusCreated, CreatedReview{
			Review: model.Review{Title: in.Title, Rating: *in.Rating},
			User:   model.UserView{ID: userID, Credits: 10},
		})
	})
	e.GET("/api/broken", func(c echo.Context) error {
		return c.String(http.StatusBadGateway, "<html>bad gateway</html>")
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_LoginAndMe(t *testing.T) {
	srv := newTestAPI(t)
	c := New(srv.URL+"/api", "")
	ctx := context.Background()

	auth, err := c.Login(ctx, "ann@x.com", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", auth.Token)
	assert.Equal(t, "ann@x.com", auth.User.Email)

	_, err = c.Me(ctx)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	c.SetToken(auth.Token)
	me, err := c.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, 20, me.Credits)
}

func TestClient_APIErrorMessage(t *testing.T) {
	srv := newTestAPI(t)
	c := New(srv.URL+"/api", "")

	_, err := c.Login(context.Background(), "ann@x.com", "wrong")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Invalid email or password", apiErr.Error())
}

func TestClient_Reviews(t *testing.T) {
	srv := newTestAPI(t)
	c := New(srv.URL+"/api", "tok")
	ctx := context.Background()

	list, err := c.ListReviews(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "newest", list[0].Title)

	rating := 4.5
	created, err := c.CreateReview(ctx, ReviewInput{ProductName: "Pixel 8", Category: "Mobiles", Rating: &rating, Title: "t", Body: "b"})
	require.NoError(t, err)
	assert.Equal(t, 4.5, created.Review.Rating)
	assert.Equal(t, 10, created.User.Credits)

	_, err = c.CreateReview(ctx, ReviewInput{Title: "t"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Missing required fields", apiErr.Message)
}

func TestClient_Unavailable(t *testing.T) {
	srv := newTestAPI(t)

	var out json.RawMessage
	c := New(srv.URL+"/api", "")
	err := c.do(context.Background(), http.MethodGet, "/broken", nil, &out, false)
	assert.ErrorIs(t, err, ErrUnavailable)

	srv.Close()
	_, err = c.ListReviews(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
