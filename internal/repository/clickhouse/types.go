package clickhouse

//go:generate mockgen -source=$GOFILE -destination=mocks_test.go -package=$GOPACKAGE

import (
	"context"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

type (
	// Conn is the subset of the driver connection the repository uses.
	Conn interface {
		PrepareBatch(ctx context.Context, query string) (Batch, error)
		Query(ctx context.Context, query string, args ...any) (Rows, error)
		Close() error
	}
	Batch interface {
		Append(v ...any) error
		Send() error
		Abort() error
	}
	Rows interface {
		Next() bool
		Scan(dest ...any) error
		Err() error
		Close() error
	}
	Metrics interface {
		Observe(operation string, rows int, err error, started time.Time)
	}
	// SnapshotWriter persists snapshots for the history recorder.
	SnapshotWriter interface {
		InsertSnapshots(ctx context.Context, snapshots []model.AccountSnapshot) error
	}
)
