package memory

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/formflow/pkg/ports"
)

// Locker implements ports.DistributedLocker within a single process.
// The TTL is ignored: locks are released by their holder only.
type Locker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewLocker creates a new in-process locker.
func NewLocker() *Locker {
	return &Locker{slots: make(map[string]chan struct{})}
}

func (l *Locker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

// Lock blocks until the key is free or ctx is done.
func (l *Locker) Lock(ctx context.Context, key string, _ time.Duration) (ports.UnlockFunc, error) {
	s := l.slot(key)
	select {
	case s <- struct{}{}:
		var once sync.Once
		return func(context.Context) error {
			once.Do(func() { <-s })
			return nil
		}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
