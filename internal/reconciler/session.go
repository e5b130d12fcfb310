// Package reconciler keeps each connected account's reward snapshot in step with the contracts.
package reconciler

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/amount"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/clock"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/reward"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	// ErrSessionStopped is returned when a result arrives after the session was stopped.
	ErrSessionStopped = errors.New("session stopped")
	// ErrStaleResult is returned when a claim reset happened while a reconciliation was in flight.
	ErrStaleResult = errors.New("stale reconciliation result")
	// ErrInFlight is returned by Reconcile when a pass of the same kind is already running.
	ErrInFlight = errors.New("reconciliation already in flight")
)

type passState struct {
	inFlight atomic.Bool
	pending  atomic.Bool
}

// Session owns the snapshot of one account and the timers that refresh it.
type Session struct {
	account   model.Account
	cfg       Config
	registry  RegistryBuilder
	reader    RewardReader
	observers []Observer
	metrics   Metrics
	logger    *zap.Logger
	sleep     func(ctx context.Context, d time.Duration) error
	now       func() time.Time

	snapshot atomic.Pointer[model.AccountSnapshot]
	// epoch changes on every claim reset; results of passes started in an older epoch are dropped.
	epoch atomic.Uint64

	// mu serializes snapshot swaps and guards stopped.
	mu      sync.Mutex
	stopped bool
	started bool

	slow passState
	fast passState

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	notifyMu     sync.Mutex
	lastNotified time.Time

	watchMu     sync.Mutex
	watchers    map[uint64]chan model.LiveEstimate
	nextWatcher uint64
}

// NewSession constructs a stopped session holding an empty snapshot.
func NewSession(
	account model.Account,
	cfg Config,
	registry RegistryBuilder,
	reader RewardReader,
	observers []Observer,
	metrics Metrics,
	logger *zap.Logger,
) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		account:   account,
		cfg:       cfg.withDefaults(),
		registry:  registry,
		reader:    reader,
		observers: observers,
		metrics:   metrics,
		logger:    logger.With(zap.String("account", account.String())),
		sleep:     clock.SleepWithContext,
		now:       time.Now,
		ctx:       ctx,
		cancel:    cancel,
		watchers:  map[uint64]chan model.LiveEstimate{},
	}
	initial := model.NewEmptySnapshot(account, s.now())
	s.snapshot.Store(&initial)
	return s
}

// Account returns the account the session belongs to.
func (s *Session) Account() model.Account {
	return s.account
}

// Start launches the timer loop and an initial slow reconciliation.
func (s *Session) Start() {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	s.spawn(s.run)
	s.RequestSlow(false)
}

// Stop cancels timers and in-flight passes and waits for them to return.
// Results that arrive afterwards are discarded.
func (s *Session) Stop() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	s.mu.Unlock()

	s.cancel()
	s.closeWatchers()
	s.wg.Wait()
}

// Snapshot returns a deep copy of the current snapshot.
func (s *Session) Snapshot() model.AccountSnapshot {
	return s.snapshot.Load().Clone()
}

// LiveEstimate projects the current snapshot to now.
func (s *Session) LiveEstimate(now time.Time) model.LiveEstimate {
	return reward.Interpolate(*s.snapshot.Load(), now, s.cfg.Decimals)
}

// RequestSlow schedules a slow reconciliation unless one is in flight.
// With rerun set, a request that hits an in-flight pass makes that pass run once more when it ends.
func (s *Session) RequestSlow(rerun bool) bool {
	return s.trigger(model.ReconcileSlow, &s.slow, rerun)
}

// RequestFast schedules a fast reconciliation unless one is in flight.
func (s *Session) RequestFast() bool {
	return s.trigger(model.ReconcileFast, &s.fast, false)
}

// Reconcile runs one pass of the given kind synchronously.
func (s *Session) Reconcile(ctx context.Context, kind model.ReconcileKind) error {
	state, err := s.state(kind)
	if err != nil {
		return err
	}
	if !state.inFlight.CompareAndSwap(false, true) {
		s.metrics.ObserveSkipped(kind)
		return ErrInFlight
	}
	defer state.inFlight.Store(false)
	return s.pass(ctx, kind)
}

// ClaimConfirmed zeroes the aggregate and every unit's pending reward and restarts interpolation from now.
func (s *Session) ClaimConfirmed(ctx context.Context) error {
	s.mu.Lock()
	epoch := s.epoch.Add(1)
	s.mu.Unlock()

	return s.swap(ctx, model.ReconcileClaim, epoch, func(current model.AccountSnapshot) model.AccountSnapshot {
		next := current
		next.Units = reward.Apportion(current.Units, new(big.Int))
		next.AggregatePending = new(big.Int)
		return next
	})
}

// WriteConfirmed refreshes the registry right away and once more after the propagation delay.
func (s *Session) WriteConfirmed() {
	s.RequestSlow(true)
	s.spawn(func() {
		if err := s.sleep(s.ctx, s.cfg.PropagationDelay); err != nil {
			return
		}
		s.RequestSlow(true)
	})
}

// Watch streams live estimates every redisplay tick until ctx is done or the session stops.
// Slow receivers miss ticks rather than blocking the session.
func (s *Session) Watch(ctx context.Context) <-chan model.LiveEstimate {
	ch := make(chan model.LiveEstimate, s.cfg.WatchBuffer)
	ch <- s.LiveEstimate(s.now())

	s.watchMu.Lock()
	if s.isStopped() {
		s.watchMu.Unlock()
		close(ch)
		return ch
	}
	id := s.nextWatcher
	s.nextWatcher++
	s.watchers[id] = ch
	s.watchMu.Unlock()
	s.metrics.AddWatchers(1)

	context.AfterFunc(ctx, func() {
		s.unwatch(id)
	})
	return ch
}

func (s *Session) run() {
	slow := time.NewTicker(s.cfg.SlowInterval)
	defer slow.Stop()
	fast := time.NewTicker(s.cfg.FastInterval)
	defer fast.Stop()
	redisplay := time.NewTicker(s.cfg.RedisplayInterval)
	defer redisplay.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-slow.C:
			s.RequestSlow(false)
		case <-fast.C:
			s.RequestFast()
		case now := <-redisplay.C:
			s.broadcast(s.LiveEstimate(now))
		}
	}
}

func (s *Session) trigger(kind model.ReconcileKind, state *passState, rerun bool) bool {
	if !state.inFlight.CompareAndSwap(false, true) {
		if rerun {
			state.pending.Store(true)
		}
		s.metrics.ObserveSkipped(kind)
		return false
	}

	ok := s.spawn(func() {
		for {
			_ = s.pass(s.ctx, kind)
			state.inFlight.Store(false)
			if !state.pending.Swap(false) || !state.inFlight.CompareAndSwap(false, true) {
				return
			}
		}
	})
	if !ok {
		state.inFlight.Store(false)
	}
	return ok
}

func (s *Session) pass(ctx context.Context, kind model.ReconcileKind) error {
	started := time.Now()
	epoch := s.epoch.Load()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.PassTimeout)
	defer cancel()
	stop := context.AfterFunc(s.ctx, cancel)
	defer stop()

	var err error
	switch kind {
	case model.ReconcileSlow:
		err = s.reconcileSlow(ctx, epoch)
	case model.ReconcileFast:
		err = s.reconcileFast(ctx, epoch)
	default:
		err = fmt.Errorf("unsupported reconciliation kind %q", kind)
	}

	switch {
	case errors.Is(err, ErrSessionStopped), errors.Is(err, ErrStaleResult):
		s.logger.Debug("reconciliation result discarded", zap.String("kind", string(kind)), zap.Error(err))
		s.metrics.ObserveSkipped(kind)
	case err != nil:
		s.logger.Warn("reconciliation failed", zap.String("kind", string(kind)), zap.Error(err))
		s.metrics.ObservePass(kind, err, started)
	default:
		s.metrics.ObservePass(kind, nil, started)
	}
	return err
}

// reconcileSlow rebuilds the registry and reads balances and the aggregate. A failed balance
// read keeps the previous balance; any other failure leaves the snapshot untouched.
func (s *Session) reconcileSlow(ctx context.Context, epoch uint64) error {
	units, err := s.registry.Build(ctx, s.account)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}
	aggregate, err := s.readPending(ctx)
	if err != nil {
		return err
	}
	payment := s.readBalance(ctx, "payment", s.cfg.PaymentToken)
	rewardBalance := s.readBalance(ctx, "reward", s.cfg.RewardToken)

	return s.swap(ctx, model.ReconcileSlow, epoch, func(current model.AccountSnapshot) model.AccountSnapshot {
		next := current
		next.Units = reward.Apportion(units, aggregate)
		next.AggregatePending = aggregate
		if payment != nil {
			next.PaymentBalance = payment
		}
		if rewardBalance != nil {
			next.RewardBalance = rewardBalance
		}
		return next
	})
}

// reconcileFast re-reads the aggregate and apportions it over the units current at swap time.
func (s *Session) reconcileFast(ctx context.Context, epoch uint64) error {
	aggregate, err := s.readPending(ctx)
	if err != nil {
		return err
	}
	return s.swap(ctx, model.ReconcileFast, epoch, func(current model.AccountSnapshot) model.AccountSnapshot {
		next := current
		next.Units = reward.Apportion(current.Units, aggregate)
		next.AggregatePending = aggregate
		return next
	})
}

func (s *Session) readPending(ctx context.Context) (*big.Int, error) {
	raw, err := s.reader.PendingRewards(ctx, s.account)
	if err != nil {
		return nil, fmt.Errorf("read pending rewards: %w", err)
	}
	return amount.Normalize(raw), nil
}

func (s *Session) readBalance(ctx context.Context, name, token string) *big.Int {
	if token == "" {
		return nil
	}
	raw, err := s.reader.TokenBalance(ctx, token, s.account)
	if err != nil {
		s.logger.Warn("read token balance failed", zap.String("token", name), zap.Error(err))
		return nil
	}
	return amount.Normalize(raw)
}

// swap replaces the snapshot with build(current). It is the only writer of the snapshot.
func (s *Session) swap(
	ctx context.Context,
	kind model.ReconcileKind,
	epoch uint64,
	build func(current model.AccountSnapshot) model.AccountSnapshot,
) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return ErrSessionStopped
	}
	if s.epoch.Load() != epoch {
		s.mu.Unlock()
		return ErrStaleResult
	}
	current := s.snapshot.Load()
	next := build(*current)
	next.Account = s.account
	next.Kind = kind
	next.ReconciliationID = uuid.New()
	next.TakenAt = clock.StrictlyAfter(current.TakenAt, s.now())
	s.snapshot.Store(&next)
	s.mu.Unlock()

	if remainder := reward.Loss(next.Units, next.AggregatePending); remainder.IsUint64() {
		s.metrics.ObserveApportionRemainder(remainder.Uint64())
	}
	s.logger.Debug("snapshot replaced",
		zap.String("kind", string(kind)),
		zap.Stringer("reconciliation_id", next.ReconciliationID),
		zap.Int("units", len(next.Units)),
		zap.Stringer("aggregate_pending", next.AggregatePending),
	)
	s.notify(ctx, next)
	return nil
}

// notify hands the snapshot to observers, skipping snapshots older than one already delivered.
func (s *Session) notify(ctx context.Context, snapshot model.AccountSnapshot) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if !snapshot.TakenAt.After(s.lastNotified) {
		return
	}
	s.lastNotified = snapshot.TakenAt

	for _, o := range s.observers {
		if err := o.OnSnapshot(ctx, snapshot.Clone()); err != nil {
			s.logger.Warn("snapshot observer failed", zap.String("observer", o.Name()), zap.Error(err))
			s.metrics.ObserveObserverError(o.Name())
		}
	}
}

func (s *Session) state(kind model.ReconcileKind) (*passState, error) {
	switch kind {
	case model.ReconcileSlow:
		return &s.slow, nil
	case model.ReconcileFast:
		return &s.fast, nil
	default:
		return nil, fmt.Errorf("unsupported reconciliation kind %q", kind)
	}
}

// spawn runs fn on a tracked goroutine unless the session is stopped.
func (s *Session) spawn(fn func()) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		fn()
	}()
	return true
}

func (s *Session) isStopped() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stopped
}

func (s *Session) broadcast(estimate model.LiveEstimate) {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()
	for _, ch := range s.watchers {
		select {
		case ch <- estimate:
		default:
		}
	}
}

func (s *Session) unwatch(id uint64) {
	s.watchMu.Lock()
	ch, ok := s.watchers[id]
	if ok {
		delete(s.watchers, id)
		close(ch)
	}
	s.watchMu.Unlock()
	if ok {
		s.metrics.AddWatchers(-1)
	}
}

func (s *Session) closeWatchers() {
	s.watchMu.Lock()
	n := len(s.watchers)
	for id, ch := range s.watchers {
		delete(s.watchers, id)
		close(ch)
	}
	s.watchMu.Unlock()
	if n > 0 {
		s.metrics.AddWatchers(-n)
	}
}
