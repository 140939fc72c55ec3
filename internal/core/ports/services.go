package ports

import (
	"context"
	"io"
	"time"

	"github.com/samirrijal/safetyfan/internal/core/domain"
)

// EventPublisher publishes domain events to a message broker.
type EventPublisher interface {
	PublishFanComputed(ctx context.Context, event *domain.FanComputedEvent) error
	PublishFanArchived(ctx context.Context, event *domain.FanArchivedEvent) error
}

// EventSubscriber subscribes to domain events from a message broker.
type EventSubscriber interface {
	SubscribeFanComputed(ctx context.Context, handler func(ctx context.Context, event *domain.FanComputedEvent) error) error
}

// CacheService provides read-through caching.
type CacheService interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttlSeconds int) error
	Delete(ctx context.Context, key string) error
}

// WeatherProvider returns current surface weather at a point.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (*domain.WeatherObservation, error)
}

// ArtifactStore keeps exported fan files in object storage.
type ArtifactStore interface {
	Put(ctx context.Context, key, contentType string, r io.Reader, size int64) error
	Remove(ctx context.Context, key string) error
	PresignedURL(ctx context.Context, key string, expires time.Duration) (string, error)
}
