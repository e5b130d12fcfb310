package reconciler

import (
	"context"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	RegistryBuilder interface {
		Build(ctx context.Context, account model.Account) ([]model.Unit, error)
	}
	RewardReader interface {
		PendingRewards(ctx context.Context, account model.Account) (any, error)
		TokenBalance(ctx context.Context, token string, account model.Account) (any, error)
	}
	// Observer receives every snapshot a session publishes, in TakenAt order.
	Observer interface {
		Name() string
		OnSnapshot(ctx context.Context, snapshot model.AccountSnapshot) error
	}
	Metrics interface {
		ObservePass(kind model.ReconcileKind, err error, started time.Time)
		ObserveSkipped(kind model.ReconcileKind)
		ObserveApportionRemainder(remainder uint64)
		ObserveObserverError(observer string)
		SetSessions(n int)
		AddWatchers(delta int)
	}
)
