package domain

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// Rating bounds, inclusive.
const (
	MinRating = 1
	MaxRating = 5
)

func ratingRangeError() error {
	return apperrors.Validation("rating", "rating must be between 1 and 5")
}

// Review represents a product review submitted by a customer. Build one with
// NewReview; CreatedAt is set there and never changes afterwards.
type Review struct {
	ID         string    `json:"id"`
	ProductID  string    `json:"product_id"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Rating     int       `json:"rating"`
	Comment    string    `json:"comment"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewReviewParams are the inputs to NewReview.
type NewReviewParams struct {
	ProductID  string
	AuthorID   string
	AuthorName string
	Rating     int
	Comment    string
}

// NewReview returns a review stamped with the current UTC time. The rating is
// the only field checked; author and comment are stored exactly as given.
func NewReview(p NewReviewParams) (*Review, error) {
	if err := ValidateRating(p.Rating); err != nil {
		return nil, err
	}

	return &Review{
		ID:         uuid.New().String(),
		ProductID:  p.ProductID,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Rating:     p.Rating,
		Comment:    p.Comment,
		CreatedAt:  time.Now().UTC(),
	}, nil
}

// ValidateRating checks that rating is within [MinRating, MaxRating].
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return ratingRangeError()
	}
	return nil
}

// ParseRating parses a rating as sent by a client. Only whole numbers in
// range are accepted; "4.5" and "abc" are rejected.
func ParseRating(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, ratingRangeError()
	}
	if err := ValidateRating(n); err != nil {
		return 0, err
	}
	return n, nil
}

// ReviewSummary contains aggregate review statistics for a product.
type ReviewSummary struct {
	ProductID     string  `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	TotalCount    int     `json:"total_count"`
}

// NewReviewSummary builds a summary from a rating sum and count, rounding the
// average to one decimal.
func NewReviewSummary(productID string, ratingSum, count int) ReviewSummary {
	s := ReviewSummary{ProductID: productID, TotalCount: count}
	if count > 0 {
		s.AverageRating = math.Round(float64(ratingSum)/float64(count)*10) / 10
	}
	return s
}
