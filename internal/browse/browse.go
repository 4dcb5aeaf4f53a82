// Package browse filters a fetched review list the way the browse page does:
// a category selector and a free-text search, combined with AND, evaluated
// locally over the full dataset.
package browse

import (
	"strings"

	"github.com/shopspring/decimal"

	"comparecarts/internal/model"
)

// AllCategories is the selector value that matches every category.
const AllCategories = "All"

// Query is the user's current filter selection.
type Query struct {
	Search   string
	Category string
}

// View is the filtered result and its summary.
type View struct {
	Reviews       []model.Review
	Total         int
	AverageRating float64
}

// Apply returns the reviews matching q, in input order. The input
// slice is never modified.
func Apply(reviews []model.Review, q Query) View {
	needle := strings.ToLower(strings.TrimSpace(q.Search))
	category := strings.TrimSpace(q.Category)

	out := make([]model.Review, 0, len(reviews))
	var sum float64
	for _, r := range reviews {
		if !matchesCategory(r, category) || !matchesSearch(r, needle) {
			continue
		}
		out = append(out, r)
		sum += r.Rating
	}

	view := View{Reviews: out, Total: len(out)}
	if len(out) > 0 {
		view.AverageRating = sum / float64(len(out))
	}
	return view
}

func matchesCategory(r model.Review, category string) bool {
	return category == "" || category == AllCategories || string(r.Category) == category
}

func matchesSearch(r model.Review, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.ProductName), needle) ||
		strings.Contains(strings.ToLower(r.Title), needle) ||
		strings.Contains(strings.ToLower(r.Body), needle)
}

// AverageDisplay renders the average with one decimal place, e.g. "4.3".
func (v View) AverageDisplay() string {
	return decimal.NewFromFloat(v.AverageRating).StringFixed(1)
}

// FilterOptions lists the category selector values, "All" first.
func FilterOptions() []string {
	cats := model.Categories()
	out := make([]string, 0, len(cats)+1)
	out = append(out, AllCategories)
	for _, c := range cats {
		out = append(out, string(c))
	}
	return out
}

// Tier is the colour band of a rating badge.
type Tier string

const (
	TierHigh Tier = "high"
	TierMid  Tier = "mid"
	TierLow  Tier = "low"
)

// RatingTier bands a rating: 4.5 and up is high, 3.5 and up is mid.
func RatingTier(rating float64) Tier {
	switch {
	case rating >= 4.5:
		return TierHigh
	case rating >= 3.5:
		return TierMid
	default:
		return TierLow
	}
}
