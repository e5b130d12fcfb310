package registry

import (
	"context"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

type (
	Reader interface {
		OwnedUnits(ctx context.Context, account model.Account) (any, error)
		UnitDetails(ctx context.Context, account model.Account, id uint64) (any, error)
	}
	Metrics interface {
		ObserveBuild(err error, units int, started time.Time)
		ObserveUnitOutcome(outcome string)
	}
)
