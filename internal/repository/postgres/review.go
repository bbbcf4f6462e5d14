package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

const reviewColumns = `id, product_id, author_id, author_name, rating, comment, created_at`

// ReviewRepository implements review persistence using PostgreSQL.
type ReviewRepository struct {
	db database.DBTX
}

// NewReviewRepository creates a PostgreSQL-backed review repository.
func NewReviewRepository(db database.DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create inserts a review.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) (err error) {
	const query = `
		INSERT INTO reviews (` + reviewColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	ctx, end := database.TraceQuery(ctx, "CreateReview", query)
	defer func() { end(err) }()

	_, err = r.db.Exec(ctx, query,
		review.ID,
		review.ProductID,
		review.AuthorID,
		review.AuthorName,
		review.Rating,
		review.Comment,
		review.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetByID returns a review or a NotFound error.
func (r *ReviewRepository) GetByID(ctx context.Context, id string) (_ *domain.Review, err error) {
	const query = `SELECT ` + reviewColumns + ` FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "GetReview", query)
	defer func() { end(err) }()

	var rv domain.Review
	err = r.db.QueryRow(ctx, query, id).Scan(
		&rv.ID, &rv.ProductID, &rv.AuthorID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("review", id)
	}
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return &rv, nil
}

// Delete removes a review, returning NotFound when it does not exist.
func (r *ReviewRepository) Delete(ctx context.Context, id string) (err error) {
	const query = `DELETE FROM reviews WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "DeleteReview", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete review %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("review", id)
	}
	return nil
}

// ListByProductID returns one page of a product's reviews, newest first, and
// the total number of reviews for the product.
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID string, page pagination.Params) (_ []domain.Review, _ int, err error) {
	const query = `
		SELECT ` + reviewColumns + `, count(*) OVER() AS total_count
		FROM reviews
		WHERE product_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3`

	ctx, end := database.TraceQuery(ctx, "ListReviews", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, productID, page.PerPage, page.Offset())
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	reviews := []domain.Review{}
	total := 0
	for rows.Next() {
		var rv domain.Review
		if err = rows.Scan(
			&rv.ID, &rv.ProductID, &rv.AuthorID, &rv.AuthorName, &rv.Rating, &rv.Comment, &rv.CreatedAt,
			&total,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}
		reviews = append(reviews, rv)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}
	rows.Close()

	// A page past the end has no rows to carry the window count.
	if len(reviews) == 0 && page.Offset() > 0 {
		const countQuery = `SELECT COUNT(*) FROM reviews WHERE product_id = $1`
		if err = r.db.QueryRow(ctx, countQuery, productID).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count reviews: %w", err)
		}
	}
	return reviews, total, nil
}

// Summary aggregates a product's ratings.
func (r *ReviewRepository) Summary(ctx context.Context, productID string) (_ domain.ReviewSummary, err error) {
	const query = `SELECT COALESCE(SUM(rating), 0), COUNT(*) FROM reviews WHERE product_id = $1`

	ctx, end := database.TraceQuery(ctx, "ReviewSummary", query)
	defer func() { end(err) }()

	var sum, count int
	if err = r.db.QueryRow(ctx, query, productID).Scan(&sum, &count); err != nil {
		return domain.ReviewSummary{}, fmt.Errorf("review summary: %w", err)
	}
	return domain.NewReviewSummary(productID, sum, count), nil
}
