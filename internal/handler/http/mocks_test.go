package http

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/pkg/pagination"
)

// Ensure interfaces are satisfied at compile time.
var (
	_ repository.ReviewRepository = (*mockReviewRepository)(nil)
	_ repository.SummaryCache     = (*mockSummaryCache)(nil)
	_ repository.ImageRepository  = (*mockImageRepository)(nil)
	_ event.Publisher             = (*mockPublisher)(nil)
)

type mockReviewRepository struct {
	mock.Mock
}

func (m *mockReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockReviewRepository) GetByID(ctx context.Context, id string) (*domain.Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Review), args.Error(1)
}

func (m *mockReviewRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockReviewRepository) ListByProductID(ctx context.Context, productID string, page pagination.Params) ([]domain.Review, int, error) {
	args := m.Called(ctx, productID, page)
	return args.Get(0).([]domain.Review), args.Int(1), args.Error(2)
}

func (m *mockReviewRepository) Summary(ctx context.Context, productID string) (domain.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).(domain.ReviewSummary), args.Error(1)
}

type mockSummaryCache struct {
	mock.Mock
}

func (m *mockSummaryCache) Get(ctx context.Context, productID string) (*domain.ReviewSummary, error) {
	args := m.Called(ctx, productID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ReviewSummary), args.Error(1)
}

func (m *mockSummaryCache) Set(ctx context.Context, summary domain.ReviewSummary) error {
	return m.Called(ctx, summary).Error(0)
}

func (m *mockSummaryCache) Invalidate(ctx context.Context, productID string) error {
	return m.Called(ctx, productID).Error(0)
}

type mockImageRepository struct {
	mock.Mock
}

func (m *mockImageRepository) CreateBatch(ctx context.Context, images []domain.ProductImage) error {
	return m.Called(ctx, images).Error(0)
}

func (m *mockImageRepository) ListByProductID(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	args := m.Called(ctx, productID)
	return args.Get(0).([]domain.ProductImage), args.Error(1)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockPublisher) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	return m.Called(ctx, review).Error(0)
}

func (m *mockPublisher) PublishMediaUploaded(ctx context.Context, images []domain.ProductImage) error {
	return m.Called(ctx, images).Error(0)
}
