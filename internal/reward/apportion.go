// Package reward splits an account's aggregate pending reward across its units and projects it forward in time.
package reward

import (
	"math/big"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
)

// Apportion returns copies of units with PendingReward set to floor(aggregate * rate / totalRate).
//
// The floor split may leave up to len(units)-1 base units of the aggregate unassigned.
// That remainder is intentionally not redistributed.
func Apportion(units []model.Unit, aggregate *big.Int) []model.Unit {
	out := make([]model.Unit, len(units))
	total := new(big.Int)
	for _, u := range units {
		total.Add(total, new(big.Int).SetUint64(u.HourlyRate))
	}

	for i, u := range units {
		c := u.Clone()
		c.PendingReward = share(aggregate, u.HourlyRate, total)
		out[i] = c
	}
	return out
}

func share(aggregate *big.Int, hourly uint64, totalRate *big.Int) *big.Int {
	if aggregate == nil || aggregate.Sign() <= 0 || totalRate.Sign() == 0 {
		return new(big.Int)
	}
	v := new(big.Int).Mul(aggregate, new(big.Int).SetUint64(hourly))
	return v.Quo(v, totalRate)
}

// Loss returns how much of aggregate the apportioned units leave unassigned.
func Loss(units []model.Unit, aggregate *big.Int) *big.Int {
	sum := new(big.Int)
	for _, u := range units {
		sum.Add(sum, u.Pending())
	}
	if aggregate == nil {
		return sum.Neg(sum)
	}
	return sum.Sub(aggregate, sum)
}
