package clickhouse

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/google/uuid"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

const snapshotHistoryQuery = `
SELECT
	reconciliation_id,
	kind,
	taken_at,
	aggregate_pending,
	payment_balance,
	reward_balance,
	unit_count,
	total_hourly_rate
FROM reward_snapshots
WHERE account = ?
ORDER BY taken_at DESC
LIMIT ?`

// HistoryEntry is one stored snapshot without its unit rows.
type HistoryEntry struct {
	Account          model.Account
	ReconciliationID uuid.UUID
	Kind             model.ReconcileKind
	TakenAt          time.Time
	AggregatePending *big.Int
	PaymentBalance   *big.Int
	RewardBalance    *big.Int
	UnitCount        uint32
	TotalHourlyRate  uint64
}

// SnapshotHistory returns the latest stored snapshots of account, newest first.
// A non-positive limit falls back to the default; limits are capped.
func (r *Repository) SnapshotHistory(ctx context.Context, account model.Account, limit int) (entries []HistoryEntry, err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("snapshot_history", len(entries), err, start)
	}()

	rows, err := r.conn.Query(ctx, snapshotHistoryQuery, account.String(), uint64(historyLimit(limit)))
	if err != nil {
		return nil, fmt.Errorf("query snapshot history: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close rows: %w", closeErr)
		}
	}()

	entries = make([]HistoryEntry, 0)
	for rows.Next() {
		var (
			kind  string
			entry = HistoryEntry{
				Account:          account,
				AggregatePending: new(big.Int),
				PaymentBalance:   new(big.Int),
				RewardBalance:    new(big.Int),
			}
		)
		if err = rows.Scan(
			&entry.ReconciliationID,
			&kind,
			&entry.TakenAt,
			entry.AggregatePending,
			entry.PaymentBalance,
			entry.RewardBalance,
			&entry.UnitCount,
			&entry.TotalHourlyRate,
		); err != nil {
			return nil, fmt.Errorf("scan snapshot history: %w", err)
		}
		entry.Kind = model.ReconcileKind(kind)
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot history: %w", err)
	}

	return entries, nil
}

func historyLimit(limit int) int {
	switch {
	case limit <= 0:
		return defaultHistoryLimit
	case limit > maxHistoryLimit:
		return maxHistoryLimit
	default:
		return limit
	}
}
