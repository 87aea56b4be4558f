package storage

import (
	"context"
	"time"

	"github.com/sony/gobreaker"

	"baddelli/pkg/logger"
)

// Uploader is satisfied by CloudStorageClient.
type Uploader interface {
	Store(ctx context.Context, ownerID string, data []byte) (string, error)
}

type BreakerSettings struct {
	MaxFailures uint32
	OpenTimeout time.Duration
}

// BreakerStore stops calling the bucket after MaxFailures consecutive upload
// errors and lets a single trial request through once OpenTimeout has passed.
type BreakerStore struct {
	next Uploader
	cb   *gobreaker.CircuitBreaker
}

func NewBreakerStore(next Uploader, settings BreakerSettings) *BreakerStore {
	if settings.MaxFailures == 0 {
		settings.MaxFailures = 5
	}
	if settings.OpenTimeout <= 0 {
		settings.OpenTimeout = 30 * time.Second
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "image-storage",
		MaxRequests: 1,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	})

	return &BreakerStore{next: next, cb: cb}
}

func (b *BreakerStore) Store(ctx context.Context, ownerID string, data []byte) (string, error) {
	url, err := b.cb.Execute(func() (interface{}, error) {
		return b.next.Store(ctx, ownerID, data)
	})
	if err != nil {
		return "", err
	}
	return url.(string), nil
}
