package actions

import (
	"context"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/gateway"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Executor interface {
		Execute(ctx context.Context, account model.Account, calls []gateway.Call) (string, error)
	}
	Notifier interface {
		NotifyClaimConfirmed(ctx context.Context, account model.Account) error
		NotifyPurchaseConfirmed(account model.Account) error
		NotifyUpgradeConfirmed(account model.Account) error
	}
	Metrics interface {
		ObserveAction(action string, err error, started time.Time)
	}
)
