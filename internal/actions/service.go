// Package actions submits claim, stake and upgrade transactions and reports confirmations to the reconciler.
package actions

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/gateway"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
)

var (
	// ErrWriteFailed wraps a rejected or failed transaction. No local state changes in that case.
	ErrWriteFailed = errors.New("write failed")
	// ErrInvalidRequest reports arguments that cannot be encoded as a transaction.
	ErrInvalidRequest = errors.New("invalid request")
)

// lowMask selects the low 128-bit limb of a u256.
var lowMask = new(uint256.Int).Sub(new(uint256.Int).Lsh(uint256.NewInt(1), 128), uint256.NewInt(1))

// Service builds ordered call batches for the write API.
type Service struct {
	executor    Executor
	notifier    Notifier
	metrics     Metrics
	contracts   gateway.Contracts
	entryPoints gateway.EntryPoints
	logger      *zap.Logger
}

// NewService constructs a Service.
func NewService(
	executor Executor,
	notifier Notifier,
	metrics Metrics,
	contracts gateway.Contracts,
	entryPoints gateway.EntryPoints,
	logger *zap.Logger,
) *Service {
	return &Service{
		executor:    executor,
		notifier:    notifier,
		metrics:     metrics,
		contracts:   contracts,
		entryPoints: entryPoints,
		logger:      logger.Named("actions"),
	}
}

// Claim claims every pending reward of account. Pending rewards are zeroed only after the transaction is accepted.
func (s *Service) Claim(ctx context.Context, account model.Account) (string, error) {
	calls := []gateway.Call{{
		ContractAddress: s.contracts.Game,
		EntryPoint:      s.entryPoints.Claim,
		Calldata:        []string{},
	}}
	hash, err := s.submit(ctx, "claim", account, calls)
	if err != nil {
		return "", err
	}
	if err := s.notifier.NotifyClaimConfirmed(ctx, account); err != nil {
		s.logger.Warn("claim confirmation not applied", zap.String("account", account.String()), zap.Error(err))
	}
	return hash, nil
}

// Stake approves price on the payment token and buys a unit of the given type in one transaction.
func (s *Service) Stake(ctx context.Context, account model.Account, unitType model.UnitType, price *big.Int) (string, error) {
	if !unitType.Valid() {
		return "", fmt.Errorf("%w: unit type %d", ErrInvalidRequest, unitType)
	}
	approve, err := s.approve(s.contracts.PaymentToken, price)
	if err != nil {
		return "", err
	}
	calls := []gateway.Call{approve, {
		ContractAddress: s.contracts.Game,
		EntryPoint:      s.entryPoints.Stake,
		Calldata:        []string{gateway.Felt(uint64(unitType))},
	}}
	hash, err := s.submit(ctx, "stake", account, calls)
	if err != nil {
		return "", err
	}
	if err := s.notifier.NotifyPurchaseConfirmed(account); err != nil {
		s.logger.Warn("purchase confirmation not applied", zap.String("account", account.String()), zap.Error(err))
	}
	return hash, nil
}

// Upgrade approves cost on the reward token and upgrades unitID in one transaction.
func (s *Service) Upgrade(ctx context.Context, account model.Account, unitID uint64, cost *big.Int) (string, error) {
	if unitID == 0 {
		return "", fmt.Errorf("%w: unit id must be positive", ErrInvalidRequest)
	}
	approve, err := s.approve(s.contracts.RewardToken, cost)
	if err != nil {
		return "", err
	}
	calls := []gateway.Call{approve, {
		ContractAddress: s.contracts.Game,
		EntryPoint:      s.entryPoints.Upgrade,
		Calldata:        []string{gateway.Felt(unitID)},
	}}
	hash, err := s.submit(ctx, "upgrade", account, calls)
	if err != nil {
		return "", err
	}
	if err := s.notifier.NotifyUpgradeConfirmed(account); err != nil {
		s.logger.Warn("upgrade confirmation not applied", zap.String("account", account.String()), zap.Error(err))
	}
	return hash, nil
}

func (s *Service) submit(ctx context.Context, action string, account model.Account, calls []gateway.Call) (hash string, err error) {
	started := time.Now()
	defer func() {
		s.metrics.ObserveAction(action, err, started)
	}()

	hash, err = s.executor.Execute(ctx, account, calls)
	if err != nil {
		s.logger.Warn("transaction failed",
			zap.String("action", action),
			zap.String("account", account.String()),
			zap.Error(err),
		)
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, action, err)
	}
	s.logger.Info("transaction accepted",
		zap.String("action", action),
		zap.String("account", account.String()),
		zap.String("transaction_hash", hash),
	)
	return hash, nil
}

// approve builds approve(spender=game, amount) with the amount split into low and high felts.
func (s *Service) approve(token string, amount *big.Int) (gateway.Call, error) {
	low, high, err := splitU256(amount)
	if err != nil {
		return gateway.Call{}, err
	}
	return gateway.Call{
		ContractAddress: token,
		EntryPoint:      s.entryPoints.Approve,
		Calldata:        []string{s.contracts.Game, low, high},
	}, nil
}

func splitU256(amount *big.Int) (string, string, error) {
	if amount == nil || amount.Sign() <= 0 {
		return "", "", fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}
	v, overflow := uint256.FromBig(amount)
	if overflow {
		return "", "", fmt.Errorf("%w: amount exceeds 256 bits", ErrInvalidRequest)
	}
	low := new(uint256.Int).And(v, lowMask)
	high := new(uint256.Int).Rsh(v, 128)
	return low.Hex(), high.Hex(), nil
}
