package repository

import (
	"context"

	"gorm.io/gorm"

	"comparecarts/internal/model"
)

// ReviewRepository is the review store. Reviews are append-only.
type ReviewRepository interface {
	Create(ctx context.Context, review *model.Review) error
	ListNewestFirst(ctx context.Context) ([]model.Review, error)
}

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new review repository.
func NewReviewRepository(db *gorm.DB) ReviewRepository {
	return &reviewRepository{db: db}
}

// Create creates a new review record.
func (r *reviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db.WithContext(ctx).Create(review).Error
}

// ListNewestFirst returns every review, most recent first.
func (r *reviewRepository) ListNewestFirst(ctx context.Context) ([]model.Review, error) {
	reviews := make([]model.Review, 0)
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Find(&reviews).Error; err != nil {
		return nil, err
	}
	return reviews, nil
}
