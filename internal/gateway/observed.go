package gateway

import (
	"context"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

// ObservedReader wraps a ReadAPI with per-operation metrics.
type ObservedReader struct {
	reader     ReadAPI
	rpcMetrics RPCMetrics
}

// NewObservedReader constructs an instrumented ReadAPI.
func NewObservedReader(reader ReadAPI, rpcMetrics RPCMetrics) *ObservedReader {
	return &ObservedReader{reader: reader, rpcMetrics: rpcMetrics}
}

// TokenBalance reads a token balance.
func (r *ObservedReader) TokenBalance(ctx context.Context, token string, account model.Account) (res any, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("token_balance", err, started)
	}()
	return r.reader.TokenBalance(ctx, token, account)
}

// OwnedUnits reads the owned unit ids.
func (r *ObservedReader) OwnedUnits(ctx context.Context, account model.Account) (res any, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("owned_units", err, started)
	}()
	return r.reader.OwnedUnits(ctx, account)
}

// UnitDetails reads one unit.
func (r *ObservedReader) UnitDetails(ctx context.Context, account model.Account, id uint64) (res any, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("unit_details", err, started)
	}()
	return r.reader.UnitDetails(ctx, account, id)
}

// PendingRewards reads the aggregate pending reward.
func (r *ObservedReader) PendingRewards(ctx context.Context, account model.Account) (res any, err error) {
	started := time.Now()
	defer func() {
		r.rpcMetrics.Observe("pending_rewards", err, started)
	}()
	return r.reader.PendingRewards(ctx, account)
}

// ObservedExecutor wraps an Executor with metrics.
type ObservedExecutor struct {
	executor   Executor
	rpcMetrics RPCMetrics
}

// NewObservedExecutor constructs an instrumented Executor.
func NewObservedExecutor(executor Executor, rpcMetrics RPCMetrics) *ObservedExecutor {
	return &ObservedExecutor{executor: executor, rpcMetrics: rpcMetrics}
}

// Execute submits a call batch.
func (e *ObservedExecutor) Execute(ctx context.Context, account model.Account, calls []Call) (hash string, err error) {
	started := time.Now()
	defer func() {
		e.rpcMetrics.Observe("execute", err, started)
	}()
	return e.executor.Execute(ctx, account, calls)
}
