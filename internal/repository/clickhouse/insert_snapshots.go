package clickhouse

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

const insertSnapshotsQuery = `
INSERT INTO reward_snapshots (
	account,
	reconciliation_id,
	kind,
	taken_at,
	aggregate_pending,
	payment_balance,
	reward_balance,
	unit_count,
	total_hourly_rate
) VALUES`

const insertSnapshotUnitsQuery = `
INSERT INTO reward_snapshot_units (
	account,
	reconciliation_id,
	taken_at,
	unit_id,
	unit_type,
	level,
	hourly_rate,
	pending_reward,
	last_claim_time
) VALUES`

// ErrPartialWrite reports unit rows stored without their snapshot rows. History reads snapshot rows
// only, so the orphaned unit rows stay hidden.
var ErrPartialWrite = errors.New("snapshot units stored without snapshot rows")

// InsertSnapshots stores snapshot rows and their unit rows in ClickHouse. Unit rows go first so a
// snapshot row is never visible without its units.
func (r *Repository) InsertSnapshots(ctx context.Context, snapshots []model.AccountSnapshot) (err error) {
	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_snapshots", len(snapshots), err, start)
	}()

	if len(snapshots) == 0 {
		return nil
	}

	unitsStored, err := r.insertSnapshotUnits(ctx, snapshots)
	if err != nil {
		return err
	}
	if err = r.insertSnapshotRows(ctx, snapshots); err != nil {
		if unitsStored {
			return fmt.Errorf("%w: %w", ErrPartialWrite, err)
		}
		return err
	}
	return nil
}

func (r *Repository) insertSnapshotRows(ctx context.Context, snapshots []model.AccountSnapshot) error {
	batch, err := r.conn.PrepareBatch(ctx, insertSnapshotsQuery)
	if err != nil {
		return fmt.Errorf("prepare snapshots batch: %w", err)
	}

	for _, s := range snapshots {
		if err := batch.Append(
			s.Account.String(),
			s.ReconciliationID,
			string(s.Kind),
			s.TakenAt,
			orZero(s.AggregatePending),
			orZero(s.PaymentBalance),
			orZero(s.RewardBalance),
			uint32(len(s.Units)),
			s.TotalHourlyRate(),
		); err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append snapshot: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert snapshots: %w", err)
	}
	return nil
}

// insertSnapshotUnits reports whether any unit rows were stored.
func (r *Repository) insertSnapshotUnits(ctx context.Context, snapshots []model.AccountSnapshot) (stored bool, err error) {
	rows := 0
	for _, s := range snapshots {
		rows += len(s.Units)
	}
	if rows == 0 {
		return false, nil
	}

	start := time.Now()
	defer func() {
		r.metrics.Observe("insert_snapshot_units", rows, err, start)
	}()

	units, err := r.conn.PrepareBatch(ctx, insertSnapshotUnitsQuery)
	if err != nil {
		return false, fmt.Errorf("prepare snapshot units batch: %w", err)
	}

	for _, s := range snapshots {
		for _, u := range s.Units {
			if err = units.Append(
				s.Account.String(),
				s.ReconciliationID,
				s.TakenAt,
				u.ID,
				uint8(u.Type),
				u.Level,
				u.HourlyRate,
				new(big.Int).Set(u.Pending()),
				u.LastClaimTime,
			); err != nil {
				_ = units.Abort()
				return false, fmt.Errorf("append snapshot unit: %w", err)
			}
		}
	}

	if err = units.Send(); err != nil {
		return false, fmt.Errorf("insert snapshot units: %w", err)
	}
	return true, nil
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
