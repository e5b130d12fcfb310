// Package history records reconciled snapshots in batches.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/repository/clickhouse"
	"github.com/goodnatureofminers/beaverfarm-backend/pkg/batcher"
	"go.uber.org/zap"
)

// ErrQueueFull is returned when a snapshot cannot be queued without blocking the session.
var ErrQueueFull = errors.New("history queue full")

const (
	defaultFlushSize     = 256
	defaultFlushInterval = 2 * time.Second
	defaultFlushRPS      = 10
)

// Opts configures the Recorder.
type Opts struct {
	FlushSize     int
	FlushInterval time.Duration
	FlushRPS      int
}

func (o Opts) withDefaults() Opts {
	if o.FlushSize <= 0 {
		o.FlushSize = defaultFlushSize
	}
	if o.FlushInterval <= 0 {
		o.FlushInterval = defaultFlushInterval
	}
	if o.FlushRPS <= 0 {
		o.FlushRPS = defaultFlushRPS
	}
	return o
}

// Recorder is a snapshot observer that writes history rows in size or interval triggered batches.
type Recorder struct {
	writer  Writer
	logger  *zap.Logger
	batcher *batcher.Batcher[model.AccountSnapshot]
}

// NewRecorder constructs a Recorder. Call Start before registering it with sessions.
func NewRecorder(writer Writer, opts Opts, logger *zap.Logger) *Recorder {
	opts = opts.withDefaults()
	r := &Recorder{writer: writer, logger: logger.Named("history")}
	r.batcher = batcher.New(r.logger, r.flush, opts.FlushSize, opts.FlushInterval, opts.FlushRPS)
	return r
}

func (r *Recorder) flush(ctx context.Context, snapshots []model.AccountSnapshot) error {
	err := r.writer.InsertSnapshots(ctx, snapshots)
	if errors.Is(err, clickhouse.ErrPartialWrite) {
		ids := make([]string, 0, len(snapshots))
		for _, s := range snapshots {
			ids = append(ids, s.ReconciliationID.String())
		}
		r.logger.Warn("snapshot units stored without snapshot rows",
			zap.Strings("reconciliation_ids", ids),
			zap.Error(err),
		)
	}
	return err
}

// Name identifies the observer in logs and metrics.
func (r *Recorder) Name() string {
	return "history"
}

// OnSnapshot queues a copy of snapshot for the next batch.
func (r *Recorder) OnSnapshot(_ context.Context, snapshot model.AccountSnapshot) error {
	ok, err := r.batcher.TryAdd(snapshot.Clone())
	if err != nil {
		return err
	}
	if !ok {
		return ErrQueueFull
	}
	return nil
}

// Start begins flushing in the background until ctx is done or Stop is called.
func (r *Recorder) Start(ctx context.Context) {
	r.batcher.Start(ctx)
}

// Stop flushes queued snapshots and waits for the last batch.
func (r *Recorder) Stop() {
	r.batcher.Stop()
}
