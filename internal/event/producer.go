package event

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/utafrali/storefront/internal/domain"
	pkgkafka "github.com/utafrali/storefront/pkg/kafka"
	"github.com/utafrali/storefront/pkg/logger"
)

// Event types carried in the envelope.
const (
	TypeReviewCreated = "storefront.review.created"
	TypeReviewDeleted = "storefront.review.deleted"
	TypeMediaUploaded = "storefront.media.uploaded"
)

// Aggregate types.
const (
	AggregateReview  = "review"
	AggregateProduct = "product"
)

// Source identifies events emitted by this service.
const Source = "storefront"

// ReviewCreatedData is the payload of a review.created event.
type ReviewCreatedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
	AuthorID  string `json:"author_id"`
	Rating    int    `json:"rating"`
}

// ReviewDeletedData is the payload of a review.deleted event.
type ReviewDeletedData struct {
	ID        string `json:"id"`
	ProductID string `json:"product_id"`
}

// MediaUploadedData is the payload of a media.uploaded event. One event covers
// every image stored by a single upload request.
type MediaUploadedData struct {
	ProductID  string   `json:"product_id"`
	UploadedBy string   `json:"uploaded_by"`
	ImageIDs   []string `json:"image_ids"`
	URLs       []string `json:"urls"`
}

// Publisher emits domain events. Publishing is best effort; callers log
// failures instead of failing the request.
type Publisher interface {
	PublishReviewCreated(ctx context.Context, review *domain.Review) error
	PublishReviewDeleted(ctx context.Context, review *domain.Review) error
	PublishMediaUploaded(ctx context.Context, images []domain.ProductImage) error
}

// EventPublisher is the part of *pkgkafka.Producer used here.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event *pkgkafka.Event) error
}

// Topics names the Kafka topic for each aggregate.
type Topics struct {
	Reviews string
	Media   string
}

// DefaultPublishTimeout bounds how long one publish may hold up a request.
const DefaultPublishTimeout = 2 * time.Second

// Producer publishes storefront events to Kafka.
type Producer struct {
	kafka   EventPublisher
	topics  Topics
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Producer.
type Option func(*Producer)

// WithPublishTimeout overrides DefaultPublishTimeout. Non-positive values are
// ignored.
func WithPublishTimeout(d time.Duration) Option {
	return func(p *Producer) {
		if d > 0 {
			p.timeout = d
		}
	}
}

// NewProducer creates an event producer.
func NewProducer(kafka EventPublisher, topics Topics, logger *slog.Logger, opts ...Option) *Producer {
	p := &Producer{kafka: kafka, topics: topics, timeout: DefaultPublishTimeout, logger: logger}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// PublishReviewCreated publishes a review.created event.
func (p *Producer) PublishReviewCreated(ctx context.Context, review *domain.Review) error {
	data := ReviewCreatedData{
		ID:        review.ID,
		ProductID: review.ProductID,
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
	}
	return p.publish(ctx, p.topics.Reviews, TypeReviewCreated, review.ProductID, AggregateReview, data)
}

// PublishReviewDeleted publishes a review.deleted event.
func (p *Producer) PublishReviewDeleted(ctx context.Context, review *domain.Review) error {
	data := ReviewDeletedData{ID: review.ID, ProductID: review.ProductID}
	return p.publish(ctx, p.topics.Reviews, TypeReviewDeleted, review.ProductID, AggregateReview, data)
}

// PublishMediaUploaded publishes a media.uploaded event for images that all
// belong to one product. An empty batch publishes nothing.
func (p *Producer) PublishMediaUploaded(ctx context.Context, images []domain.ProductImage) error {
	if len(images) == 0 {
		return nil
	}
	data := MediaUploadedData{
		ProductID:  images[0].ProductID,
		UploadedBy: images[0].UploadedBy,
		ImageIDs:   make([]string, 0, len(images)),
		URLs:       make([]string, 0, len(images)),
	}
	for _, img := range images {
		data.ImageIDs = append(data.ImageIDs, img.ID)
		data.URLs = append(data.URLs, img.URL)
	}
	return p.publish(ctx, p.topics.Media, TypeMediaUploaded, data.ProductID, AggregateProduct, data)
}

// Events are keyed by product so that all events for one product stay in
// partition order. The publish outlives a cancelled request but never runs
// longer than p.timeout.
func (p *Producer) publish(ctx context.Context, topic, eventType, productID, aggregateType string, data any) error {
	evt, err := pkgkafka.NewEvent(eventType, productID, aggregateType, Source, data)
	if err != nil {
		return fmt.Errorf("create %s event: %w", eventType, err)
	}
	if id := logger.CorrelationIDFromContext(ctx); id != "" {
		evt.WithCorrelationID(id)
	}
	if userID := logger.UserIDFromContext(ctx); userID != "" {
		evt.WithMetadata("user_id", userID)
	}

	pubCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()

	if err := p.kafka.Publish(pubCtx, topic, evt); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	p.logger.DebugContext(ctx, "published event",
		slog.String("event_type", eventType),
		slog.String("product_id", productID),
	)
	return nil
}
