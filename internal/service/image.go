package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/utafrali/storefront/internal/auth"
	"github.com/utafrali/storefront/internal/domain"
	"github.com/utafrali/storefront/internal/event"
	"github.com/utafrali/storefront/internal/repository"
	"github.com/utafrali/storefront/internal/storage"
	"github.com/utafrali/storefront/internal/upload"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

// safeIDPattern matches only alphanumeric characters, hyphens, and underscores.
// Product IDs become part of storage keys.
var safeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// ImageService stores product images accepted by the upload guard.
type ImageService struct {
	repo    repository.ImageRepository
	storage storage.Storage
	events  event.Publisher
	logger  *slog.Logger
}

// NewImageService creates a new image service.
func NewImageService(
	repo repository.ImageRepository,
	store storage.Storage,
	events event.Publisher,
	logger *slog.Logger,
) *ImageService {
	return &ImageService{
		repo:    repo,
		storage: store,
		events:  events,
		logger:  logger,
	}
}

// SaveProductImages stores every file in payload and records them against the
// product. Either all files are stored and recorded or none are.
func (s *ImageService) SaveProductImages(ctx context.Context, uploader auth.Identity, productID string, payload *upload.Payload) ([]domain.ProductImage, error) {
	if !safeIDPattern.MatchString(productID) {
		return nil, apperrors.Validation("product_id", "product id contains invalid characters")
	}
	if payload == nil || len(payload.Files) == 0 {
		return nil, apperrors.InvalidInput("at least one file is required")
	}

	now := time.Now().UTC()
	images := make([]domain.ProductImage, 0, len(payload.Files))
	for _, f := range payload.Files {
		id := uuid.New().String()
		key := domain.ImageKey(productID, id)

		res, err := s.storage.Upload(ctx, &storage.UploadInput{
			Key:         key,
			ContentType: f.ContentType,
			Size:        f.Size,
			Data:        f.Reader(),
		})
		if err != nil {
			s.removeStored(ctx, images)
			return nil, fmt.Errorf("upload %q to storage: %w", f.Name, err)
		}

		images = append(images, domain.ProductImage{
			ID:           id,
			ProductID:    productID,
			UploadedBy:   uploader.Subject,
			Key:          res.Key,
			URL:          res.URL,
			OriginalName: f.Name,
			ContentType:  f.ContentType,
			Size:         f.Size,
			CreatedAt:    now,
		})
	}

	if err := s.repo.CreateBatch(ctx, images); err != nil {
		s.removeStored(ctx, images)
		return nil, fmt.Errorf("record product images: %w", err)
	}

	if err := s.events.PublishMediaUploaded(ctx, images); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish media.uploaded event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "product images stored",
		slog.String("product_id", productID),
		slog.Int("count", len(images)),
		slog.Int64("bytes", payload.TotalSize()),
	)
	return images, nil
}

// ListProductImages returns a product's images in upload order.
func (s *ImageService) ListProductImages(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	images, err := s.repo.ListByProductID(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("list product images: %w", err)
	}
	return images, nil
}

// removeStored deletes already stored files. It runs even if ctx was
// cancelled mid-request.
func (s *ImageService) removeStored(ctx context.Context, images []domain.ProductImage) {
	ctx = context.WithoutCancel(ctx)
	for _, img := range images {
		if err := s.storage.Delete(ctx, img.Key); err != nil {
			s.logger.ErrorContext(ctx, "failed to clean up stored image",
				slog.String("key", img.Key),
				slog.String("error", err.Error()),
			)
		}
	}
}
