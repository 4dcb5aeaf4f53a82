package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"comparecarts/internal/auth"
	apperrors "comparecarts/internal/errors"
	"comparecarts/internal/service"
)

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviewService service.ReviewService
}

// NewReviewHandler creates a new review handler.
func NewReviewHandler(reviewService service.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService}
}

// CreateReviewRequest represents a review submission. Author fields are
// taken from the token, not the body.
type CreateReviewRequest struct {
	ProductName    string `json:"productName" example:"Pixel 8"`
	Category       string `json:"category" example:"Mobiles"`
	Rating         Number `json:"rating" swaggertype:"number" example:"4.5"`
	Title          string `json:"title" example:"Great camera"`
	Body           string `json:"body" example:"Two months in and still happy."`
	Pros           string `json:"pros,omitempty"`
	Cons           string `json:"cons,omitempty"`
	PurchaseSource string `json:"purchaseSource,omitempty" example:"Amazon"`
	MonthsUsed     Number `json:"monthsUsed,omitempty" swaggertype:"integer" example:"2"`
	ProductURL     string `json:"productUrl,omitempty"`
}

// ListReviews godoc
// @Summary List reviews
// @Description Every review, newest first.
// @Tags reviews
// @Produce json
// @Success 200 {array} model.Review
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews [get]
func (h *ReviewHandler) ListReviews(c echo.Context) error {
	reviews, err := h.reviewService.List(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, reviews)
}

// CreateReview godoc
// @Summary Post a review
// @Description Stores the review and grants the author 10 credits.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review data"
// @Success 201 {object} service.CreateReviewResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	claims, ok := auth.ClaimsFromContext(c)
	if !ok {
		return apperrors.Unauthorized(auth.MsgNoToken)
	}

	var req CreateReviewRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}

	monthsUsed, ok := req.MonthsUsed.Int()
	if !ok {
		return apperrors.Validation("Months used must be a whole number")
	}

	result, err := h.reviewService.Create(c.Request().Context(), claims, service.CreateReviewInput{
		ProductName:    req.ProductName,
		Category:       req.Category,
		Rating:         req.Rating.Float(),
		Title:          req.Title,
		Body:           req.Body,
		Pros:           req.Pros,
		Cons:           req.Cons,
		PurchaseSource: req.PurchaseSource,
		MonthsUsed:     monthsUsed,
		ProductURL:     req.ProductURL,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, result)
}
