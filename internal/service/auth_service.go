package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"comparecarts/internal/auth"
	"comparecarts/internal/cache"
	apperrors "comparecarts/internal/errors"
	"comparecarts/internal/metrics"
	"comparecarts/internal/model"
	"comparecarts/internal/repository"
	"comparecarts/internal/validation"
)

const bcryptCost = 10

// MaxPasswordBytes is the longest password bcrypt accepts.
const MaxPasswordBytes = 72

// Messages shown to API clients.
const (
	MsgSignupFieldsRequired = "All fields are required"
	MsgLoginFieldsRequired  = "Email and password required"
	MsgEmailTaken           = "Email already registered"
	MsgInvalidCredentials   = "Invalid email or password"
	MsgUserNotFound         = "User not found"
	MsgPasswordTooLong      = "Password must be at most 72 bytes"
)

// SignupInput is the payload of a signup request.
type SignupInput struct {
	Name     string `json:"name" validate:"notblank"`
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank,maxbytes=72"`
}

// LoginInput is the payload of a login request.
type LoginInput struct {
	Email    string `json:"email" validate:"notblank"`
	Password string `json:"password" validate:"notblank"`
}

// AuthResult is returned by a successful signup or login.
type AuthResult struct {
	Token string         `json:"token"`
	User  model.UserView `json:"user"`
}

// AuthService handles authentication operations.
type AuthService interface {
	Signup(ctx context.Context, in SignupInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	Profile(ctx context.Context, userID uuid.UUID) (*model.UserView, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     *auth.TokenService
	cache      *cache.Client
	metrics    *metrics.Metrics
	log        *zap.Logger
	validate   *validator.Validate
	profileTTL time.Duration
}

// NewAuthService creates a new authentication service. cache and m may be nil.
func NewAuthService(
	users repository.UserRepository,
	tokens *auth.TokenService,
	cache *cache.Client,
	m *metrics.Metrics,
	log *zap.Logger,
	profileTTL time.Duration,
) AuthService {
	if log == nil {
		log = zap.NewNop()
	}
	return &authService{
		users:      users,
		tokens:     tokens,
		cache:      cache,
		metrics:    m,
		log:        log,
		validate:   validation.New(),
		profileTTL: profileTTL,
	}
}

// Signup registers a user with a hashed password and returns a fresh token.
func (s *authService) Signup(ctx context.Context, in SignupInput) (result *AuthResult, err error) {
	defer func() { s.metrics.AuthAttempt("signup", err == nil) }()

	if err := s.validate.Struct(in); err != nil {
		if _, tag, _ := validation.FirstFailure(err); tag == "maxbytes" && !validation.IsMissing(err) {
			return nil, apperrors.Validation(MsgPasswordTooLong)
		}
		return nil, apperrors.Validation(MsgSignupFieldsRequired)
	}
	email := model.NormalizeEmail(in.Email)

	existing, err := s.users.FindByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, apperrors.Conflict(MsgEmailTaken)
	}
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		s.log.Error("signup: check email", zap.Error(err))
		return nil, apperrors.Internal(err, "Signup failed")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, apperrors.Internal(err, "Signup failed")
	}

	user := &model.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// The unique index still catches a concurrent signup for the same email.
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.Conflict(MsgEmailTaken)
		}
		s.log.Error("signup: create user", zap.Error(err))
		return nil, apperrors.Internal(err, "Signup failed")
	}

	return s.issue(user, "Signup failed")
}

// Login checks credentials. Unknown email and wrong password are reported identically.
func (s *authService) Login(ctx context.Context, in LoginInput) (result *AuthResult, err error) {
	defer func() { s.metrics.AuthAttempt("login", err == nil) }()

	if err := s.validate.Struct(in); err != nil {
		return nil, apperrors.Validation(MsgLoginFieldsRequired)
	}

	user, err := s.users.FindByEmail(ctx, model.NormalizeEmail(in.Email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Unauthorized(MsgInvalidCredentials)
		}
		s.log.Error("login: find user", zap.Error(err))
		return nil, apperrors.Internal(err, "Login failed")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		return nil, apperrors.Unauthorized(MsgInvalidCredentials)
	}

	return s.issue(user, "Login failed")
}

// Profile returns the current state of a user, which may differ from the token's claims.
func (s *authService) Profile(ctx context.Context, userID uuid.UUID) (*model.UserView, error) {
	var cached model.UserView
	if s.cache.GetJSON(ctx, cache.ProfileKey(userID), &cached) {
		return &cached, nil
	}
	gen, cacheable := s.cache.Generation(ctx, cache.ProfileKey(userID))

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFound(MsgUserNotFound)
		}
		s.log.Error("profile: find user", zap.Stringer("user_id", userID), zap.Error(err))
		return nil, apperrors.Internal(err, "Failed to load profile")
	}

	view := user.View()
	if cacheable {
		s.cache.SetJSONIfGeneration(ctx, cache.ProfileKey(userID), gen, view, s.profileTTL)
	}
	return &view, nil
}

func (s *authService) issue(user *model.User, failure string) (*AuthResult, error) {
	token, err := s.tokens.Issue(user.ID, user.Email, user.Name)
	if err != nil {
		s.log.Error("issue token", zap.Stringer("user_id", user.ID), zap.Error(err))
		return nil, apperrors.Internal(err, failure)
	}
	return &AuthResult{Token: token, User: user.View()}, nil
}
