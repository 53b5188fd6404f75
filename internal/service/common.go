package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/crew-travel-service/internal/events"
)

// statsCacheTTL bounds how stale cached dashboard counts may be.
const statsCacheTTL = 60 * time.Second

// Cache is the subset of the Redis wrapper the services rely on.
type Cache interface {
	GetJSON(ctx context.Context, key string, dest any) error
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = dispatcher.Publish(ctx, event)
}
