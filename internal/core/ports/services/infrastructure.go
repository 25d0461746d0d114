package services

import (
	"context"
	"io"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// BlobStorage stores receipt contents by key.
type BlobStorage interface {
	Put(ctx context.Context, key, contentType string, r io.Reader) error
	Delete(ctx context.Context, key string) error
	// URL returns a URL that serves key for at least ttl.
	URL(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// Mailer delivers outbound email.
type Mailer interface {
	Send(ctx context.Context, email domain.Email) error
}

// EventTracker records product analytics events. Implementations must not block.
type EventTracker interface {
	Track(distinctID, event string, properties map[string]any)
}
