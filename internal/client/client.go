// Package client is a typed HTTP client for the CompareCarts API.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"comparecarts/internal/model"
)

// ErrUnavailable is returned when the API could not be reached or sent an
// unreadable response.
var ErrUnavailable = errors.New("Something went wrong. Please try again.")

// APIError is a non-2xx response carrying the server's message.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

type errorBody struct {
	Error string `json:"error"`
}

// AuthResponse is returned by Signup and Login.
type AuthResponse struct {
	Message string         `json:"message"`
	Token   string         `json:"token"`
	User    model.UserView `json:"user"`
}

// ReviewInput is the body of a review submission.
type ReviewInput struct {
	ProductName    string   `json:"productName"`
	Category       string   `json:"category"`
	Rating         *float64 `json:"rating,omitempty"`
	Title          string   `json:"title"`
	Body           string   `json:"body"`
	Pros           string   `json:"pros,omitempty"`
	Cons           string   `json:"cons,omitempty"`
	PurchaseSource string   `json:"purchaseSource,omitempty"`
	MonthsUsed     *int     `json:"monthsUsed,omitempty"`
	ProductURL     string   `json:"productUrl,omitempty"`
}

// CreatedReview is returned by CreateReview.
type CreatedReview struct {
	Review model.Review   `json:"review"`
	User   model.UserView `json:"user"`
}

// Client talks to the API rooted at baseURL (e.g. http://localhost:5000/api).
type Client struct {
	http  *resty.Client
	token string
}

// New creates a client. An empty token means anonymous requests.
func New(baseURL, token string) *Client {
	return &Client{
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(15 * time.Second).
			SetHeader("Accept", "application/json"),
		token: token,
	}
}

// SetToken switches the bearer token used for protected calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

func (c *Client) Signup(ctx context.Context, name, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, resty.MethodPost, "/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, resty.MethodPost, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &out, false)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Me returns the live profile of the token holder.
func (c *Client) Me(ctx context.Context) (*model.UserView, error) {
	var out model.UserView
	if err := c.do(ctx, resty.MethodGet, "/auth/me", nil, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListReviews fetches every review, newest first.
func (c *Client) ListReviews(ctx context.Context) ([]model.Review, error) {
	out := make([]model.Review, 0)
	if err := c.do(ctx, resty.MethodGet, "/reviews", nil, &out, false); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) CreateReview(ctx context.Context, in ReviewInput) (*CreatedReview, error) {
	var out CreatedReview
	if err := c.do(ctx, resty.MethodPost, "/reviews", in, &out, true); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, authed bool) error {
	req := c.http.R().
		SetContext(ctx).
		SetResult(out).
		SetError(&errorBody{})
	if body != nil {
		req.SetBody(body)
	}
	if authed && c.token != "" {
		req.SetAuthToken(c.token)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		return fmt.Errorf("%w (%v)", ErrUnavailable, err)
	}
	if resp.IsError() {
		eb, _ := resp.Error().(*errorBody)
		if eb == nil || eb.Error == "" {
			return ErrUnavailable
		}
		return &APIError{Status: resp.StatusCode(), Message: eb.Error}
	}
	if !resp.IsSuccess() {
		return ErrUnavailable
	}
	return nil
}
