package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/pkg/database"
)

// ImageRepository implements product image persistence using PostgreSQL.
type ImageRepository struct {
	db database.DBTX
}

// NewImageRepository creates a PostgreSQL-backed image repository.
func NewImageRepository(db database.DBTX) *ImageRepository {
	return &ImageRepository{db: db}
}

const insertImage = `
	INSERT INTO product_images (id, product_id, uploaded_by, storage_key, url, original_name, content_type, size_bytes, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// CreateBatch inserts images in one transaction.
func (r *ImageRepository) CreateBatch(ctx context.Context, images []domain.ProductImage) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProductImages", insertImage)
	defer func() { end(err) }()

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin image insert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	for _, img := range images {
		if _, err = tx.Exec(ctx, insertImage,
			img.ID,
			img.ProductID,
			img.UploadedBy,
			img.Key,
			img.URL,
			img.OriginalName,
			img.ContentType,
			img.Size,
			img.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert product image %s: %w", img.ID, err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit image insert: %w", err)
	}
	return nil
}

// ListByProductID returns a product's images in upload order.
func (r *ImageRepository) ListByProductID(ctx context.Context, productID string) (_ []domain.ProductImage, err error) {
	const query = `
		SELECT id, product_id, uploaded_by, storage_key, url, original_name, content_type, size_bytes, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY created_at, id`

	ctx, end := database.TraceQuery(ctx, "ListProductImages", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	defer rows.Close()

	images := []domain.ProductImage{}
	for rows.Next() {
		var img domain.ProductImage
		if err = rows.Scan(
			&img.ID, &img.ProductID, &img.UploadedBy, &img.Key, &img.URL,
			&img.OriginalName, &img.ContentType, &img.Size, &img.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, img)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product images: %w", err)
	}
	return images, nil
}
