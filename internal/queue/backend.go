package queue

import (
	"context"
	"fmt"
	"time"

	fiberredis "github.com/gofiber/storage/redis/v3"
)

// Backend is the Redis connection shared by the queue and the result store.
type Backend struct {
	Storage *fiberredis.Storage
	Queue   *Queue
	Results *ResultStore
}

// Open connects to Redis at redisURL.
func Open(redisURL string, resultTTL time.Duration) (b *Backend, err error) {
	// The storage constructor panics when the initial ping fails.
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("failed to connect to redis: %v", r)
		}
	}()

	storage := fiberredis.New(fiberredis.Config{
		URL:   redisURL,
		Reset: false,
	})

	return &Backend{
		Storage: storage,
		Queue:   New(storage.Conn()),
		Results: NewResultStore(storage, resultTTL),
	}, nil
}

// Ping checks the Redis connection.
func (b *Backend) Ping(ctx context.Context) error {
	return b.Queue.Ping(ctx)
}

// Close releases the Redis connection pool.
func (b *Backend) Close() error {
	return b.Storage.Close()
}
