package ports

import (
	"context"
	"time"
)

// UnlockFunc is a function that releases a lock.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker defines the interface for concurrency control across replicas.
// Writers of the same service hold the lock between validating and saving a document.
type DistributedLocker interface {
	// Lock attempts to acquire a lock for the given key (e.g., service ID).
	// It blocks until the lock is acquired or the context is canceled.
	// The TTL bounds how long a crashed holder can keep the lock.
	// Returns an UnlockFunc that MUST be called to release the lock.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
