package reward

import (
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/amount"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/rate"
	"github.com/shopspring/decimal"
)

var nanosPerSecond = decimal.NewFromInt(int64(time.Second))

// Elapsed returns now - takenAt in seconds, clamped at zero.
func Elapsed(takenAt, now time.Time) decimal.Decimal {
	d := now.Sub(takenAt)
	if d <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(int64(d)).Div(nanosPerSecond)
}

// Interpolate projects the snapshot's pending rewards to now, in whole tokens.
// It never modifies the snapshot.
func Interpolate(snapshot model.AccountSnapshot, now time.Time, decimals int32) model.LiveEstimate {
	elapsed := Elapsed(snapshot.TakenAt, now)

	perUnit := make([]model.UnitEstimate, 0, len(snapshot.Units))
	increments := decimal.Zero
	for _, u := range snapshot.Units {
		inc := rate.PerSecond(u.HourlyRate).Mul(elapsed)
		increments = increments.Add(inc)
		perUnit = append(perUnit, model.UnitEstimate{
			ID:         u.ID,
			HourlyRate: u.HourlyRate,
			Pending:    amount.ToDecimal(u.PendingReward, decimals).Add(inc),
		})
	}

	return model.LiveEstimate{
		Account:   snapshot.Account,
		PerUnit:   perUnit,
		Aggregate: amount.ToDecimal(snapshot.AggregatePending, decimals).Add(increments),
		AsOf:      now,
		BasedOn:   snapshot.TakenAt,
	}
}
