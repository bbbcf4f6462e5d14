package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ReviewService implements the business logic for product reviews.
type ReviewService struct {
	repo   repository.ReviewRepository
	cache  repository.SummaryCache
	events event.Publisher
	logger *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(
	repo repository.ReviewRepository,
	cache repository.SummaryCache,
	events event.Publisher,
	logger *slog.Logger,
) *ReviewService {
	return &ReviewService{
		repo:   repo,
		cache:  cache,
		events: events,
		logger: logger,
	}
}

// CreateReviewInput holds the client-supplied part of a new review.
type CreateReviewInput struct {
	ProductID  string
	Rating     int
	Comment    string
	AuthorName string
}

// ReviewList is one page of a product's reviews plus its overall summary.
type ReviewList struct {
	pagination.Result[domain.Review]
	Summary domain.ReviewSummary `json:"summary"`
}

// CreateReview records a review written by author. The author ID always comes
// from the verified identity; a blank display name falls back to its email.
// Surrounding whitespace is trimmed from the comment and display name.
func (s *ReviewService) CreateReview(ctx context.Context, author auth.Identity, in CreateReviewInput) (*domain.Review, error) {
	if author.Subject == "" {
		return nil, apperrors.Unauthorized("authentication required")
	}
	if strings.TrimSpace(in.ProductID) == "" {
		return nil, apperrors.Validation("product_id", "product id is required")
	}

	name := strings.TrimSpace(in.AuthorName)
	if name == "" {
		name = author.Email
	}

	review, err := domain.NewReview(domain.NewReviewParams{
		ProductID:  in.ProductID,
		AuthorID:   author.Subject,
		AuthorName: name,
		Rating:     in.Rating,
		Comment:    strings.TrimSpace(in.Comment),
	})
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, review); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}

	s.invalidateSummary(ctx, review.ProductID)

	if err := s.events.PublishReviewCreated(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.created event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review created",
		slog.String("review_id", review.ID),
		slog.String("product_id", review.ProductID),
		slog.Int("rating", review.Rating),
	)
	return review, nil
}

// ListReviews returns one page of a product's reviews, newest first, with
// the product's rating summary.
func (s *ReviewService) ListReviews(ctx context.Context, productID string, page pagination.Params) (*ReviewList, error) {
	reviews, total, err := s.repo.ListByProductID(ctx, productID, page)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	summary, err := s.summary(ctx, productID)
	if err != nil {
		return nil, err
	}

	return &ReviewList{
		Result:  pagination.NewResult(reviews, total, page),
		Summary: summary,
	}, nil
}

// DeleteReview removes a review. Used for moderation.
func (s *ReviewService) DeleteReview(ctx context.Context, id string) error {
	review, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateSummary(ctx, review.ProductID)

	if err := s.events.PublishReviewDeleted(ctx, review); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.deleted event",
			slog.String("review_id", id),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review deleted",
		slog.String("review_id", id),
		slog.String("product_id", review.ProductID),
	)
	return nil
}

// summary reads through the cache. Cache failures are logged and the
// database answers instead.
func (s *ReviewService) summary(ctx context.Context, productID string) (domain.ReviewSummary, error) {
	cached, err := s.cache.Get(ctx, productID)
	if err != nil {
		s.logger.WarnContext(ctx, "review summary cache read failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	if cached != nil {
		return *cached, nil
	}

	summary, err := s.repo.Summary(ctx, productID)
	if err != nil {
		return domain.ReviewSummary{}, fmt.Errorf("review summary: %w", err)
	}

	if err := s.cache.Set(ctx, summary); err != nil {
		s.logger.WarnContext(ctx, "review summary cache write failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	return summary, nil
}

// A failed invalidation leaves a stale summary until the TTL expires.
func (s *ReviewService) invalidateSummary(ctx context.Context, productID string) {
	if err := s.cache.Invalidate(ctx, productID); err != nil {
		s.logger.WarnContext(ctx, "review summary cache invalidation failed",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
}
