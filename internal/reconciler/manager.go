package reconciler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/puzpuzpuz/xsync/v4"
	"go.uber.org/zap"
)

var (
	// ErrUnknownAccount is returned for accounts without a session.
	ErrUnknownAccount = errors.New("unknown account")
	// ErrAlreadyConnected is returned when connecting an account twice.
	ErrAlreadyConnected = errors.New("account already connected")
	// ErrClosed is returned after the manager was closed.
	ErrClosed = errors.New("reconciler closed")
)

// Manager keeps one Session per connected account.
type Manager struct {
	cfg       Config
	registry  RegistryBuilder
	reader    RewardReader
	observers []Observer
	metrics   Metrics
	logger    *zap.Logger

	sessions *xsync.Map[model.Account, *Session]
	pool     pond.Pool
	closed   atomic.Bool
}

// NewManager constructs a Manager.
func NewManager(
	cfg Config,
	registry RegistryBuilder,
	reader RewardReader,
	observers []Observer,
	metrics Metrics,
	logger *zap.Logger,
) *Manager {
	cfg = cfg.withDefaults()
	return &Manager{
		cfg:       cfg,
		registry:  registry,
		reader:    reader,
		observers: observers,
		metrics:   metrics,
		logger:    logger.Named("reconciler"),
		sessions:  xsync.NewMap[model.Account, *Session](),
		pool:      pond.NewPool(cfg.TriggerWorkers),
	}
}

// Connect starts a session for account and returns its initial snapshot.
func (m *Manager) Connect(_ context.Context, account model.Account) (model.AccountSnapshot, error) {
	if m.closed.Load() {
		return model.AccountSnapshot{}, ErrClosed
	}
	account, err := model.ParseAccount(account.String())
	if err != nil {
		return model.AccountSnapshot{}, err
	}

	session := NewSession(account, m.cfg, m.registry, m.reader, m.observers, m.metrics, m.logger)
	if _, loaded := m.sessions.LoadOrStore(account, session); loaded {
		return model.AccountSnapshot{}, fmt.Errorf("%w: %s", ErrAlreadyConnected, account)
	}
	// Close may have ranged over the sessions before this one was stored.
	if m.closed.Load() {
		m.sessions.Delete(account)
		session.Stop()
		return model.AccountSnapshot{}, ErrClosed
	}
	session.Start()
	m.metrics.SetSessions(m.sessions.Size())
	m.logger.Info("account connected", zap.String("account", account.String()))
	return session.Snapshot(), nil
}

// Disconnect stops the session of account. In-flight results are discarded.
func (m *Manager) Disconnect(account model.Account) error {
	session, ok := m.sessions.LoadAndDelete(canonical(account))
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}
	session.Stop()
	m.metrics.SetSessions(m.sessions.Size())
	m.logger.Info("account disconnected", zap.String("account", session.Account().String()))
	return nil
}

// AccountSnapshot returns the latest locally held snapshot without any I/O.
func (m *Manager) AccountSnapshot(account model.Account) (model.AccountSnapshot, error) {
	session, err := m.session(account)
	if err != nil {
		return model.AccountSnapshot{}, err
	}
	return session.Snapshot(), nil
}

// LiveEstimate projects the latest snapshot of account to now.
func (m *Manager) LiveEstimate(account model.Account, now time.Time) (model.LiveEstimate, error) {
	session, err := m.session(account)
	if err != nil {
		return model.LiveEstimate{}, err
	}
	return session.LiveEstimate(now), nil
}

// RequestReconciliation schedules a pass without waiting for it. Requests made while a pass of
// the same kind is in flight are dropped.
func (m *Manager) RequestReconciliation(account model.Account, kind model.ReconcileKind) error {
	if m.closed.Load() {
		return ErrClosed
	}
	session, err := m.session(account)
	if err != nil {
		return err
	}
	if _, err := session.state(kind); err != nil {
		return err
	}
	m.pool.Submit(func() {
		if kind == model.ReconcileFast {
			session.RequestFast()
			return
		}
		session.RequestSlow(false)
	})
	return nil
}

// NotifyClaimConfirmed resets the pending rewards of account to zero.
func (m *Manager) NotifyClaimConfirmed(ctx context.Context, account model.Account) error {
	session, err := m.session(account)
	if err != nil {
		return err
	}
	return session.ClaimConfirmed(ctx)
}

// NotifyPurchaseConfirmed refreshes the registry of account after a stake.
func (m *Manager) NotifyPurchaseConfirmed(account model.Account) error {
	return m.writeConfirmed(account)
}

// NotifyUpgradeConfirmed refreshes the registry of account after an upgrade.
func (m *Manager) NotifyUpgradeConfirmed(account model.Account) error {
	return m.writeConfirmed(account)
}

// Watch streams live estimates of account until ctx is done or the account disconnects.
func (m *Manager) Watch(ctx context.Context, account model.Account) (<-chan model.LiveEstimate, error) {
	session, err := m.session(account)
	if err != nil {
		return nil, err
	}
	return session.Watch(ctx), nil
}

// Accounts lists connected accounts in ascending order.
func (m *Manager) Accounts() []model.Account {
	accounts := make([]model.Account, 0, m.sessions.Size())
	m.sessions.Range(func(account model.Account, _ *Session) bool {
		accounts = append(accounts, account)
		return true
	})
	sort.Slice(accounts, func(i, j int) bool { return accounts[i] < accounts[j] })
	return accounts
}

// Serving reports whether the manager accepts connections.
func (m *Manager) Serving() bool {
	return !m.closed.Load()
}

// Close stops every session and the trigger pool.
func (m *Manager) Close() {
	if !m.closed.CompareAndSwap(false, true) {
		return
	}
	m.pool.StopAndWait()
	m.sessions.Range(func(account model.Account, session *Session) bool {
		m.sessions.Delete(account)
		session.Stop()
		return true
	})
	m.metrics.SetSessions(0)
}

func (m *Manager) writeConfirmed(account model.Account) error {
	session, err := m.session(account)
	if err != nil {
		return err
	}
	session.WriteConfirmed()
	return nil
}

func (m *Manager) session(account model.Account) (*Session, error) {
	session, ok := m.sessions.Load(canonical(account))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAccount, account)
	}
	return session, nil
}

func canonical(account model.Account) model.Account {
	if a, err := model.ParseAccount(account.String()); err == nil {
		return a
	}
	return account
}
