package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/storefront/internal/domain"
)

func sampleImage(id string) domain.ProductImage {
	return domain.ProductImage{
		ID:           id,
		ProductID:    "prod-1",
		UploadedBy:   "admin-1",
		Key:          domain.ImageKey("prod-1", id),
		URL:          "http://cdn/products/prod-1/" + id,
		OriginalName: id + ".png",
		ContentType:  "image/png",
		Size:         1024,
		CreatedAt:    now,
	}
}

func imageArgs(img domain.ProductImage) []any {
	return []any{img.ID, img.ProductID, img.UploadedBy, img.Key, img.URL, img.OriginalName, img.ContentType, img.Size, img.CreatedAt}
}

func TestImageRepository_CreateBatch(t *testing.T) {
	mock := newMock(t)
	repo := NewImageRepository(mock)
	a, b := sampleImage("img-a"), sampleImage("img-b")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO product_images").WithArgs(imageArgs(a)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO product_images").WithArgs(imageArgs(b)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateBatch(context.Background(), []domain.ProductImage{a, b}))
}

func TestImageRepository_CreateBatch_RollsBack(t *testing.T) {
	mock := newMock(t)
	repo := NewImageRepository(mock)
	a, b := sampleImage("img-a"), sampleImage("img-b")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO product_images").WithArgs(imageArgs(a)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO product_images").WithArgs(imageArgs(b)...).WillReturnError(errors.New("duplicate key"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []domain.ProductImage{a, b})
	assert.ErrorContains(t, err, "img-b")
}

func TestImageRepository_ListByProductID(t *testing.T) {
	mock := newMock(t)
	repo := NewImageRepository(mock)
	img := sampleImage("img-a")

	mock.ExpectQuery("SELECT (.+) FROM product_images").WithArgs("prod-1").
		WillReturnRows(pgxmock.NewRows([]string{"id", "product_id", "uploaded_by", "storage_key", "url", "original_name", "content_type", "size_bytes", "created_at"}).
			AddRow(imageArgs(img)...))

	images, err := repo.ListByProductID(context.Background(), "prod-1")
	require.NoError(t, err)
	assert.Equal(t, []domain.ProductImage{img}, images)
}
