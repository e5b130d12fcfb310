package transport

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"context"
	"math/big"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/repository/clickhouse"
)

type (
	Reconciler interface {
		Connect(ctx context.Context, account model.Account) (model.AccountSnapshot, error)
		Disconnect(account model.Account) error
		AccountSnapshot(account model.Account) (model.AccountSnapshot, error)
		LiveEstimate(account model.Account, now time.Time) (model.LiveEstimate, error)
		RequestReconciliation(account model.Account, kind model.ReconcileKind) error
		Watch(ctx context.Context, account model.Account) (<-chan model.LiveEstimate, error)
		Serving() bool
	}
	Actions interface {
		Claim(ctx context.Context, account model.Account) (string, error)
		Stake(ctx context.Context, account model.Account, unitType model.UnitType, price *big.Int) (string, error)
		Upgrade(ctx context.Context, account model.Account, unitID uint64, cost *big.Int) (string, error)
	}
	History interface {
		SnapshotHistory(ctx context.Context, account model.Account, limit int) ([]clickhouse.HistoryEntry, error)
	}
)
