package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"

	"comparecarts/internal/auth"
	"comparecarts/internal/cache"
	"comparecarts/internal/config"
	"comparecarts/internal/db"
	apperrors "comparecarts/internal/errors"
	"comparecarts/internal/logger"
	"comparecarts/internal/repository"
	"comparecarts/internal/service"
)

//go:embed fixtures.json
var fixturesJSON []byte

// Fixture is the demo data set.
type Fixture struct {
	Users []SeedUser `json:"users"`
}

// SeedUser is a demo account and the reviews it posts.
type SeedUser struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Password string       `json:"password"`
	Reviews  []SeedReview `json:"reviews"`
}

// SeedReview mirrors the review submission body.
type SeedReview struct {
	ProductName    string  `json:"productName"`
	Category       string  `json:"category"`
	Rating         float64 `json:"rating"`
	Title          string  `json:"title"`
	Body           string  `json:"body"`
	Pros           string  `json:"pros"`
	Cons           string  `json:"cons"`
	PurchaseSource string  `json:"purchaseSource"`
	MonthsUsed     *int    `json:"monthsUsed"`
	ProductURL     string  `json:"productUrl"`
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return fmt.Errorf("database init: %w", err)
	}
	log.Info("connected to database", zap.String("driver", cfg.DBDriver))

	if err := db.Migrate(gormDB, cfg.ResetDB); err != nil {
		return err
	}

	var fixture Fixture
	if err := json.Unmarshal(fixturesJSON, &fixture); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	// Share the server's cache so seeded reviews invalidate its cached lists.
	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer func() { _ = cacheClient.Close() }()
	if err := cacheClient.Ping(context.Background()); err != nil {
		log.Warn("redis unreachable, cached review lists may lag until they expire",
			zap.String("addr", cfg.RedisAddr), zap.Error(err))
	}

	tokens, err := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	if err != nil {
		return err
	}
	users := repository.NewUserRepository(gormDB)
	reviews := repository.NewReviewRepository(gormDB)
	s := &seeder{
		auth:    service.NewAuthService(users, tokens, cacheClient, nil, log, cfg.ProfileCacheTTL),
		reviews: service.NewReviewService(reviews, users, cacheClient, nil, log, cfg.ReviewCacheTTL),
		tokens:  tokens,
		log:     log,
	}

	stats, err := s.Seed(context.Background(), fixture)
	if err != nil {
		return err
	}
	log.Info("seed completed",
		zap.Int("users_created", stats.UsersCreated),
		zap.Int("users_existing", stats.UsersExisting),
		zap.Int("reviews_created", stats.ReviewsCreated),
	)
	return nil
}

// Stats counts what a seed run did.
type Stats struct {
	UsersCreated   int
	UsersExisting  int
	ReviewsCreated int
}

type seeder struct {
	auth    service.AuthService
	reviews service.ReviewService
	tokens  *auth.TokenService
	log     *zap.Logger
}

// Seed replays the fixture through the services. Reviews are posted only for
// users created by this run, so running it twice adds nothing.
func (s *seeder) Seed(ctx context.Context, fixture Fixture) (Stats, error) {
	var stats Stats
	for _, u := range fixture.Users {
		result, err := s.auth.Signup(ctx, service.SignupInput{Name: u.Name, Email: u.Email, Password: u.Password})
		if errors.Is(err, apperrors.ErrConflict) {
			if _, err := s.auth.Login(ctx, service.LoginInput{Email: u.Email, Password: u.Password}); err != nil {
				return stats, fmt.Errorf("login %s: %w", u.Email, err)
			}
			s.log.Info("user already seeded", zap.String("email", u.Email))
			stats.UsersExisting++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("signup %s: %w", u.Email, err)
		}
		stats.UsersCreated++

		claims, err := s.tokens.Verify(result.Token)
		if err != nil {
			return stats, err
		}
		for _, r := range u.Reviews {
			rating := r.Rating
			if _, err := s.reviews.Create(ctx, claims, service.CreateReviewInput{
				ProductName:    r.ProductName,
				Category:       r.Category,
				Rating:         &rating,
				Title:          r.Title,
				Body:           r.Body,
				Pros:           r.Pros,
				Cons:           r.Cons,
				PurchaseSource: r.PurchaseSource,
				MonthsUsed:     r.MonthsUsed,
				ProductURL:     r.ProductURL,
			}); err != nil {
				return stats, fmt.Errorf("review %q by %s: %w", r.Title, u.Email, err)
			}
			stats.ReviewsCreated++
		}
	}
	return stats, nil
}
