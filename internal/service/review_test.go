package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	apperrors "github.com/utafrali/storefront/pkg/errors"
	"github.com/utafrali/storefront/pkg/logger"
	"github.com/utafrali/storefront/pkg/pagination"
)

var customer = auth.Identity{Subject: "user-1", Email: "ada@example.com", Role: auth.RoleCustomer}

type reviewFixture struct {
	repo   *mockReviewRepository
	cache  *mockSummaryCache
	events *mockPublisher
	svc    *ReviewService
}

func newReviewFixture() *reviewFixture {
	f := &reviewFixture{
		repo:   new(mockReviewRepository),
		cache:  new(mockSummaryCache),
		events: new(mockPublisher),
	}
	f.svc = NewReviewService(f.repo, f.cache, f.events, logger.Discard())
	return f
}

func (f *reviewFixture) assertExpectations(t *testing.T) {
	f.repo.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.events.AssertExpectations(t)
}

func TestCreateReview_Success(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)
	f.cache.On("Invalidate", ctx, "prod-1").Return(nil)
	f.events.On("PublishReviewCreated", ctx, mock.AnythingOfType("*domain.Review")).Return(nil)

	before := time.Now().UTC()
	review, err := f.svc.CreateReview(ctx, customer, CreateReviewInput{
		ProductID:  "prod-1",
		Rating:     5,
		Comment:    "  Lovely  ",
		AuthorName: "Ada L.",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, review.ID)
	assert.Equal(t, "prod-1", review.ProductID)
	assert.Equal(t, "user-1", review.AuthorID)
	assert.Equal(t, "Ada L.", review.AuthorName)
	assert.Equal(t, 5, review.Rating)
	assert.Equal(t, "Lovely", review.Comment)
	assert.False(t, review.CreatedAt.Before(before))
	f.assertExpectations(t)
}

func TestCreateReview_AuthorNameFallsBackToEmail(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.MatchedBy(func(r *domain.Review) bool {
		return r.AuthorName == "ada@example.com"
	})).Return(nil)
	f.cache.On("Invalidate", ctx, "prod-1").Return(nil)
	f.events.On("PublishReviewCreated", ctx, mock.Anything).Return(nil)

	_, err := f.svc.CreateReview(ctx, customer, CreateReviewInput{ProductID: "prod-1", Rating: 3, AuthorName: "   "})
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestCreateReview_InvalidRating(t *testing.T) {
	for _, rating := range []int{0, 6, -1, 100} {
		f := newReviewFixture()

		_, err := f.svc.CreateReview(context.Background(), customer, CreateReviewInput{ProductID: "prod-1", Rating: rating})

		require.Error(t, err)
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		var appErr *apperrors.AppError
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, "rating", appErr.Field)
		f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	}
}

func TestCreateReview_RequiresProductAndSubject(t *testing.T) {
	f := newReviewFixture()

	_, err := f.svc.CreateReview(context.Background(), customer, CreateReviewInput{Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)

	_, err = f.svc.CreateReview(context.Background(), auth.Identity{}, CreateReviewInput{ProductID: "p", Rating: 4})
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCreateReview_RepositoryError(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.Anything).Return(errors.New("db down"))

	_, err := f.svc.CreateReview(ctx, customer, CreateReviewInput{ProductID: "prod-1", Rating: 4})
	assert.ErrorContains(t, err, "create review")
	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishReviewCreated", mock.Anything, mock.Anything)
}

func TestCreateReview_SideEffectFailuresAreLogged(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.Anything).Return(nil)
	f.cache.On("Invalidate", ctx, "prod-1").Return(errors.New("redis down"))
	f.events.On("PublishReviewCreated", ctx, mock.Anything).Return(errors.New("kafka down"))

	review, err := f.svc.CreateReview(ctx, customer, CreateReviewInput{ProductID: "prod-1", Rating: 2})
	require.NoError(t, err)
	assert.NotNil(t, review)
	f.assertExpectations(t)
}

func TestListReviews_CacheHit(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	page := pagination.Params{Page: 1, PerPage: 2}
	reviews := []domain.Review{{ID: "a"}, {ID: "b"}}
	cached := &domain.ReviewSummary{ProductID: "prod-1", AverageRating: 4.5, TotalCount: 3}

	f.repo.On("ListByProductID", ctx, "prod-1", page).Return(reviews, 3, nil)
	f.cache.On("Get", ctx, "prod-1").Return(cached, nil)

	list, err := f.svc.ListReviews(ctx, "prod-1", page)
	require.NoError(t, err)
	assert.Equal(t, reviews, list.Data)
	assert.Equal(t, 3, list.TotalCount)
	assert.Equal(t, 2, list.TotalPages)
	assert.True(t, list.HasNext)
	assert.Equal(t, *cached, list.Summary)
	f.repo.AssertNotCalled(t, "Summary", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestListReviews_CacheMissPopulates(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	page := pagination.Params{Page: 1, PerPage: 20}
	summary := domain.ReviewSummary{ProductID: "prod-1", AverageRating: 3, TotalCount: 1}

	f.repo.On("ListByProductID", ctx, "prod-1", page).Return([]domain.Review{{ID: "a"}}, 1, nil)
	f.cache.On("Get", ctx, "prod-1").Return(nil, nil)
	f.repo.On("Summary", ctx, "prod-1").Return(summary, nil)
	f.cache.On("Set", ctx, summary).Return(nil)

	list, err := f.svc.ListReviews(ctx, "prod-1", page)
	require.NoError(t, err)
	assert.Equal(t, summary, list.Summary)
	f.assertExpectations(t)
}

func TestListReviews_CacheErrorFallsBackToDatabase(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	page := pagination.Params{Page: 1, PerPage: 20}
	summary := domain.ReviewSummary{ProductID: "prod-1"}

	f.repo.On("ListByProductID", ctx, "prod-1", page).Return([]domain.Review{}, 0, nil)
	f.cache.On("Get", ctx, "prod-1").Return(nil, errors.New("redis down"))
	f.repo.On("Summary", ctx, "prod-1").Return(summary, nil)
	f.cache.On("Set", ctx, summary).Return(errors.New("redis down"))

	list, err := f.svc.ListReviews(ctx, "prod-1", page)
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.Equal(t, summary, list.Summary)
	f.assertExpectations(t)
}

func TestListReviews_RepositoryError(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	page := pagination.Params{Page: 1, PerPage: 20}

	f.repo.On("ListByProductID", ctx, "prod-1", page).Return(nil, 0, errors.New("db down"))

	_, err := f.svc.ListReviews(ctx, "prod-1", page)
	assert.ErrorContains(t, err, "list reviews")
}

func TestDeleteReview_Success(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()
	existing := &domain.Review{ID: "rev-1", ProductID: "prod-1"}

	f.repo.On("GetByID", ctx, "rev-1").Return(existing, nil)
	f.repo.On("Delete", ctx, "rev-1").Return(nil)
	f.cache.On("Invalidate", ctx, "prod-1").Return(nil)
	f.events.On("PublishReviewDeleted", ctx, existing).Return(nil)

	require.NoError(t, f.svc.DeleteReview(ctx, "rev-1"))
	f.assertExpectations(t)
}

func TestDeleteReview_NotFound(t *testing.T) {
	f := newReviewFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("review", "missing"))

	err := f.svc.DeleteReview(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "PublishReviewDeleted", mock.Anything, mock.Anything)
}
