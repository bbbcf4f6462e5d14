package repository

import (
	"context"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/pagination"
)

// ReviewRepository persists product reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	Delete(ctx context.Context, id string) error
	ListByProductID(ctx context.Context, productID string, page pagination.Params) ([]domain.Review, int, error)
	Summary(ctx context.Context, productID string) (domain.ReviewSummary, error)
}

// SummaryCache caches per-product review summaries. Get returns (nil, nil)
// on a miss.
type SummaryCache interface {
	Get(ctx context.Context, productID string) (*domain.ReviewSummary, error)
	Set(ctx context.Context, summary domain.ReviewSummary) error
	Invalidate(ctx context.Context, productID string) error
}

// ImageRepository persists product image metadata.
type ImageRepository interface {
	// CreateBatch stores all images or none.
	CreateBatch(ctx context.Context, images []domain.ProductImage) error
	ListByProductID(ctx context.Context, productID string) ([]domain.ProductImage, error)
}
