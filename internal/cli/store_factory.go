package cli

import (
	"context"
	"fmt"

	"github.com/aretw0/formflow/pkg/adapters/loam"
	"github.com/aretw0/formflow/pkg/adapters/memory"
	"github.com/aretw0/formflow/pkg/adapters/redis"
	"github.com/aretw0/formflow/pkg/ports"
)

// Backend bundles a document store with the locker that guards writes to it.
type Backend struct {
	Store  ports.DocumentStore
	Locker ports.DistributedLocker
	Close  func() error
}

// OpenStore builds the backend named by cfg.Store.
// Redis is pinged so that a bad address fails at startup rather than on first request.
func OpenStore(ctx context.Context, cfg Config) (*Backend, error) {
	switch cfg.Store {
	case "", StoreMemory:
		return &Backend{
			Store:  memory.NewStore(),
			Locker: memory.NewLocker(),
			Close:  func() error { return nil },
		}, nil

	case StoreRedis:
		store := redis.New(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := store.Client().Ping(ctx).Err(); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("redis at %s is not reachable: %w", cfg.RedisAddr, err)
		}
		return &Backend{
			Store:  store,
			Locker: redis.NewLocker(store.Client(), redis.DefaultPrefix),
			Close:  store.Close,
		}, nil

	case StoreLoam:
		store, err := loam.Open(cfg.DataDir)
		if err != nil {
			return nil, err
		}
		return &Backend{
			Store:  store,
			Locker: memory.NewLocker(),
			Close:  func() error { return nil },
		}, nil

	default:
		return nil, fmt.Errorf("unknown store %q (supported: %s, %s, %s)", cfg.Store, StoreMemory, StoreRedis, StoreLoam)
	}
}
