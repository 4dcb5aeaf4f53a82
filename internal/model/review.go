package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Category is the product category a review is filed under.
type Category string

const (
	CategoryMobiles        Category = "Mobiles"
	CategoryLaptops        Category = "Laptops"
	CategoryEarphones      Category = "Earphones"
	CategoryHeadphones     Category = "Headphones"
	CategoryAccessories    Category = "Accessories"
	CategoryHomeAppliances Category = "Home Appliances"
	CategoryOther          Category = "Other"
)

var categories = []Category{
	CategoryMobiles,
	CategoryLaptops,
	CategoryEarphones,
	CategoryHeadphones,
	CategoryAccessories,
	CategoryHomeAppliances,
	CategoryOther,
}

// Categories returns every category in display order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// ParseCategory reports whether s names a known category.
func ParseCategory(s string) (Category, bool) {
	for _, c := range categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

const (
	// MinRating and MaxRating bound a review's score.
	MinRating = 1.0
	MaxRating = 5.0
)

// Review is a user's write-up of a product. Reviews are never updated after creation.
type Review struct {
	ID             uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID         uuid.UUID `json:"userId" gorm:"type:char(36);not null;index"`
	UserName       string    `json:"userName" gorm:"size:255"`
	ProductName    string    `json:"productName" gorm:"size:255;not null"`
	Category       Category  `json:"category" gorm:"type:varchar(50);not null;index"`
	Rating         float64   `json:"rating" gorm:"not null"`
	Title          string    `json:"title" gorm:"size:255;not null"`
	Body           string    `json:"body" gorm:"type:text;not null"`
	Pros           string    `json:"pros,omitempty" gorm:"type:text"`
	Cons           string    `json:"cons,omitempty" gorm:"type:text"`
	PurchaseSource string    `json:"purchaseSource,omitempty" gorm:"size:255"`
	MonthsUsed     *int      `json:"monthsUsed,omitempty"`
	ProductURL     string    `json:"productUrl,omitempty" gorm:"size:2048"`
	CreatedAt      time.Time `json:"createdAt" gorm:"precision:6;index"`
	UpdatedAt      time.Time `json:"updatedAt" gorm:"precision:6"`
}

// BeforeCreate assigns a time-ordered UUIDv7, so id order follows insertion
// order when creation timestamps tie.
func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID != uuid.Nil {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}
