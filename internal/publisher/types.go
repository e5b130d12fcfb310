package publisher

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type (
	// Client is the subset of the Redis client the publisher uses.
	Client interface {
		Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
		Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	}
	Metrics interface {
		ObservePublish(err error)
	}
)
