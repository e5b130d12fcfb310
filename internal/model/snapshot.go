package model

import (
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReconcileKind describes what produced a snapshot.
type ReconcileKind string

var (
	// ReconcileInitial marks the empty snapshot a session starts with.
	ReconcileInitial ReconcileKind = "initial"
	// ReconcileSlow marks a full registry reconciliation.
	ReconcileSlow ReconcileKind = "slow"
	// ReconcileFast marks an aggregate-only reconciliation.
	ReconcileFast ReconcileKind = "fast"
	// ReconcileClaim marks the reset after a confirmed claim.
	ReconcileClaim ReconcileKind = "claim"
)

// ParseReconcileKind accepts the kinds that can be requested on demand.
func ParseReconcileKind(s string) (ReconcileKind, error) {
	switch ReconcileKind(s) {
	case ReconcileSlow:
		return ReconcileSlow, nil
	case ReconcileFast:
		return ReconcileFast, nil
	default:
		return "", fmt.Errorf("unknown reconciliation kind %q", s)
	}
}

// AccountSnapshot is the authoritative reward state of an account at TakenAt.
type AccountSnapshot struct {
	Account          Account
	Units            []Unit
	AggregatePending *big.Int
	PaymentBalance   *big.Int
	RewardBalance    *big.Int
	TakenAt          time.Time
	ReconciliationID uuid.UUID
	Kind             ReconcileKind
}

// NewEmptySnapshot returns the snapshot a session holds before its first reconciliation.
func NewEmptySnapshot(account Account, now time.Time) AccountSnapshot {
	return AccountSnapshot{
		Account:          account,
		Units:            []Unit{},
		AggregatePending: new(big.Int),
		PaymentBalance:   new(big.Int),
		RewardBalance:    new(big.Int),
		TakenAt:          now,
		ReconciliationID: uuid.New(),
		Kind:             ReconcileInitial,
	}
}

// Clone deep-copies the snapshot.
func (s AccountSnapshot) Clone() AccountSnapshot {
	c := s
	c.Units = make([]Unit, len(s.Units))
	for i, u := range s.Units {
		c.Units[i] = u.Clone()
	}
	c.AggregatePending = cloneBig(s.AggregatePending)
	c.PaymentBalance = cloneBig(s.PaymentBalance)
	c.RewardBalance = cloneBig(s.RewardBalance)
	return c
}

// Unit looks a unit up by id.
func (s AccountSnapshot) Unit(id uint64) (Unit, bool) {
	for _, u := range s.Units {
		if u.ID == id {
			return u, true
		}
	}
	return Unit{}, false
}

// PendingSum adds up the per-unit pending rewards.
func (s AccountSnapshot) PendingSum() *big.Int {
	sum := new(big.Int)
	for _, u := range s.Units {
		sum.Add(sum, u.Pending())
	}
	return sum
}

// TotalHourlyRate adds up the per-unit hourly rates.
func (s AccountSnapshot) TotalHourlyRate() uint64 {
	var total uint64
	for _, u := range s.Units {
		total += u.HourlyRate
	}
	return total
}

// UnitEstimate is the live pending reward of one unit, in whole tokens.
type UnitEstimate struct {
	ID         uint64
	HourlyRate uint64
	Pending    decimal.Decimal
}

// LiveEstimate is a read-only projection of a snapshot forward in time.
type LiveEstimate struct {
	Account   Account
	PerUnit   []UnitEstimate
	Aggregate decimal.Decimal
	AsOf      time.Time
	BasedOn   time.Time
}

func cloneBig(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(v)
}
