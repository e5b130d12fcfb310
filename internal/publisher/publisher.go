// Package publisher pushes reconciled snapshots to Redis for other services.
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/view"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	// Channel receives every published snapshot.
	Channel = "beaverfarm:snapshots"

	keyPrefix      = "beaverfarm:snapshot:"
	defaultTTL     = 10 * time.Minute
	defaultTimeout = 2 * time.Second
)

// Opts configures the Publisher.
type Opts struct {
	TTL      time.Duration
	Timeout  time.Duration
	Decimals int32
}

// Publisher stores the latest snapshot of each account under a key and announces it on Channel.
type Publisher struct {
	client  Client
	metrics Metrics
	opts    Opts
	logger  *zap.Logger
}

// NewPublisher constructs a Publisher.
func NewPublisher(client Client, metrics Metrics, opts Opts, logger *zap.Logger) *Publisher {
	if opts.TTL <= 0 {
		opts.TTL = defaultTTL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Publisher{
		client:  client,
		metrics: metrics,
		opts:    opts,
		logger:  logger.Named("publisher"),
	}
}

// NewRedisClient opens a go-redis client and checks it with PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// Key returns the Redis key holding the latest snapshot of account.
func Key(account model.Account) string {
	return keyPrefix + account.String()
}

// Name identifies the observer in logs and metrics.
func (p *Publisher) Name() string {
	return "redis"
}

// OnSnapshot writes the snapshot under its account key and publishes it.
func (p *Publisher) OnSnapshot(ctx context.Context, snapshot model.AccountSnapshot) (err error) {
	defer func() {
		p.metrics.ObservePublish(err)
	}()

	payload, err := json.Marshal(view.NewSnapshot(snapshot, p.opts.Decimals))
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	if err = p.client.Set(ctx, Key(snapshot.Account), payload, p.opts.TTL).Err(); err != nil {
		return fmt.Errorf("set snapshot: %w", err)
	}
	if err = p.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish snapshot: %w", err)
	}

	p.logger.Debug("snapshot published",
		zap.String("account", snapshot.Account.String()),
		zap.String("reconciliation_id", snapshot.ReconciliationID.String()),
	)
	return nil
}
