package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"comparecarts/internal/auth"
	"comparecarts/internal/cache"
	apperrors "comparecarts/internal/errors"
	"comparecarts/internal/metrics"
	"comparecarts/internal/model"
	"comparecarts/internal/repository"
	"comparecarts/internal/validation"
)

// CreditsPerReview is the reward granted to the author of every stored review.
const CreditsPerReview = 10

const (
	MsgMissingReviewFields = "Missing required fields"
	MsgUnknownCategory     = "Unknown category"
	MsgRatingOutOfRange    = "Rating must be between 1 and 5"
	MsgNegativeMonthsUsed  = "Months used cannot be negative"
	MsgPostReviewFailed    = "Failed to post review"
	MsgFetchReviewsFailed  = "Failed to fetch reviews"
)

// CreateReviewInput is the client payload for a new review. Author identity
// is never part of it.
type CreateReviewInput struct {
	ProductName    string   `validate:"notblank"`
	Category       string   `validate:"notblank,category"`
	Rating         *float64 `validate:"required,gte=1,lte=5"`
	Title          string   `validate:"notblank"`
	Body           string   `validate:"notblank"`
	Pros           string
	Cons           string
	PurchaseSource string
	MonthsUsed     *int `validate:"omitempty,gte=0"`
	ProductURL     string
}

// CreateReviewResult carries the stored review and the author's updated balance.
type CreateReviewResult struct {
	Review model.Review   `json:"review"`
	User   model.UserView `json:"user"`
}

// ReviewService handles review submission and listing.
type ReviewService interface {
	List(ctx context.Context) ([]model.Review, error)
	Create(ctx context.Context, claims *auth.Claims, in CreateReviewInput) (*CreateReviewResult, error)
}

type reviewService struct {
	reviews  repository.ReviewRepository
	users    repository.UserRepository
	cache    *cache.Client
	metrics  *metrics.Metrics
	log      *zap.Logger
	validate *validator.Validate
	listTTL  time.Duration
}

// NewReviewService creates a new review service. cache and m may be nil.
func NewReviewService(
	reviews repository.ReviewRepository,
	users repository.UserRepository,
	cache *cache.Client,
	m *metrics.Metrics,
	log *zap.Logger,
	listTTL time.Duration,
) ReviewService {
	if log == nil {
		log = zap.NewNop()
	}
	return &reviewService{
		reviews:  reviews,
		users:    users,
		cache:    cache,
		metrics:  m,
		log:      log,
		validate: validation.New(),
		listTTL:  listTTL,
	}
}

// List returns all reviews, newest first.
func (s *reviewService) List(ctx context.Context) ([]model.Review, error) {
	var cached []model.Review
	if s.cache.GetJSON(ctx, cache.ReviewsKey, &cached) && cached != nil {
		return cached, nil
	}
	gen, cacheable := s.cache.Generation(ctx, cache.ReviewsKey)

	reviews, err := s.reviews.ListNewestFirst(ctx)
	if err != nil {
		s.log.Error("list reviews", zap.Error(err))
		return nil, apperrors.Internal(err, MsgFetchReviewsFailed)
	}
	if cacheable {
		s.cache.SetJSONIfGeneration(ctx, cache.ReviewsKey, gen, reviews, s.listTTL)
	}
	return reviews, nil
}

// Create stores a review authored by the token holder and grants the author
// CreditsPerReview. The two writes are sequential, not transactional: if the
// grant fails the review stays and the failure is logged.
func (s *reviewService) Create(ctx context.Context, claims *auth.Claims, in CreateReviewInput) (*CreateReviewResult, error) {
	if claims == nil {
		return nil, apperrors.Unauthorized(auth.MsgNoToken)
	}
	if err := s.validateInput(in); err != nil {
		return nil, err
	}

	review := &model.Review{
		UserID:         claims.UserID,
		UserName:       claims.Name,
		ProductName:    strings.TrimSpace(in.ProductName),
		Category:       model.Category(in.Category),
		Rating:         *in.Rating,
		Title:          strings.TrimSpace(in.Title),
		Body:           strings.TrimSpace(in.Body),
		Pros:           strings.TrimSpace(in.Pros),
		Cons:           strings.TrimSpace(in.Cons),
		PurchaseSource: strings.TrimSpace(in.PurchaseSource),
		MonthsUsed:     in.MonthsUsed,
		ProductURL:     strings.TrimSpace(in.ProductURL),
	}
	if err := s.reviews.Create(ctx, review); err != nil {
		s.log.Error("create review", zap.Stringer("user_id", claims.UserID), zap.Error(err))
		return nil, apperrors.Internal(err, MsgPostReviewFailed)
	}
	s.cache.Invalidate(ctx, cache.ReviewsKey)
	s.metrics.ReviewCreated(string(review.Category))

	user, err := s.users.IncrementCredits(ctx, claims.UserID, CreditsPerReview)
	if err != nil {
		s.metrics.CreditGrantFailed()
		s.log.Error("review stored without credit grant",
			zap.Stringer("review_id", review.ID),
			zap.Stringer("user_id", claims.UserID),
			zap.Error(err),
		)
		return nil, apperrors.Internal(err, MsgPostReviewFailed)
	}
	s.cache.Invalidate(ctx, cache.ProfileKey(claims.UserID))
	s.metrics.CreditsGranted(CreditsPerReview)

	return &CreateReviewResult{Review: *review, User: user.View()}, nil
}

func (s *reviewService) validateInput(in CreateReviewInput) error {
	err := s.validate.Struct(in)
	if err == nil {
		return nil
	}
	if validation.IsMissing(err) {
		return apperrors.Validation(MsgMissingReviewFields)
	}
	field, _, _ := validation.FirstFailure(err)
	switch field {
	case "Category":
		return apperrors.Validation(MsgUnknownCategory)
	case "Rating":
		return apperrors.Validation(MsgRatingOutOfRange)
	case "MonthsUsed":
		return apperrors.Validation(MsgNegativeMonthsUsed)
	default:
		return apperrors.Validation(MsgMissingReviewFields)
	}
}
