package history

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"context"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

type (
	Writer interface {
		InsertSnapshots(ctx context.Context, snapshots []model.AccountSnapshot) error
	}
)
