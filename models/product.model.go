package models

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Review is a single user's rating of a product
type Review struct {
	UserID    primitive.ObjectID `bson:"user" json:"user"`
	Name      string             `bson:"name" json:"name"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}

// Product represents an item in the catalog
type Product struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID       primitive.ObjectID `bson:"user_id" json:"user_id"`
	Name         string             `bson:"name" json:"name"`
	Image        string             `bson:"image" json:"image"`
	Brand        string             `bson:"brand" json:"brand"`
	Category     string             `bson:"category" json:"category"`
	Description  string             `bson:"description" json:"description"`
	Price        decimal.Decimal    `bson:"price" json:"price"`
	CountInStock int                `bson:"count_in_stock" json:"count_in_stock"`
	Rating       float64            `bson:"rating" json:"rating"`
	NumReviews   int                `bson:"num_reviews" json:"num_reviews"`
	Reviews      []Review           `bson:"reviews" json:"reviews"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// HasReviewFrom reports whether the user already reviewed this product.
func (p *Product) HasReviewFrom(userID primitive.ObjectID) bool {
	for _, r := range p.Reviews {
		if r.UserID == userID {
			return true
		}
	}
	return false
}

// AddReview appends a review and recomputes NumReviews and Rating.
// One review per user; a second one is rejected before any mutation.
// The document store applies the same rule in a single conditional write.
func (p *Product) AddReview(r Review) error {
	if p.HasReviewFrom(r.UserID) {
		return ValidationError("product already reviewed")
	}
	p.Reviews = append(p.Reviews, r)
	p.RecomputeRating()
	return nil
}

// RecomputeRating sets NumReviews to the review count and Rating to the
// arithmetic mean of review ratings. Repositories call it on every product
// they read so the derived fields always follow the stored reviews.
func (p *Product) RecomputeRating() {
	p.NumReviews = len(p.Reviews)
	if p.NumReviews == 0 {
		p.Rating = 0
		return
	}
	sum := 0
	for _, r := range p.Reviews {
		sum += r.Rating
	}
	p.Rating = float64(sum) / float64(p.NumReviews)
}
