// Package view renders snapshots and live estimates as JSON documents.
package view

import (
	"math/big"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/amount"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/shopspring/decimal"
)

// Amount carries a token amount in base units and in whole tokens.
type Amount struct {
	Raw     string `json:"raw,omitempty"`
	Value   string `json:"value"`
	Compact string `json:"compact"`
	Full    string `json:"full"`
}

type Unit struct {
	ID            uint64    `json:"id"`
	Type          string    `json:"type"`
	Level         uint8     `json:"level"`
	Owner         string    `json:"owner"`
	HourlyRate    uint64    `json:"hourly_rate"`
	PendingReward Amount    `json:"pending_reward"`
	LastClaimTime time.Time `json:"last_claim_time"`
}

type Snapshot struct {
	Account          string    `json:"account"`
	ReconciliationID string    `json:"reconciliation_id"`
	Kind             string    `json:"kind"`
	TakenAt          time.Time `json:"taken_at"`
	Units            []Unit    `json:"units"`
	AggregatePending Amount    `json:"aggregate_pending"`
	PaymentBalance   Amount    `json:"payment_balance"`
	RewardBalance    Amount    `json:"reward_balance"`
	TotalHourlyRate  uint64    `json:"total_hourly_rate"`
}

type UnitEstimate struct {
	ID         uint64 `json:"id"`
	HourlyRate uint64 `json:"hourly_rate"`
	Pending    Amount `json:"pending"`
}

type LiveEstimate struct {
	Account   string         `json:"account"`
	PerUnit   []UnitEstimate `json:"per_unit"`
	Aggregate Amount         `json:"aggregate"`
	AsOf      time.Time      `json:"as_of"`
	BasedOn   time.Time      `json:"based_on"`
}

// NewAmount renders a base-unit amount scaled by decimals.
func NewAmount(v *big.Int, decimals int32) Amount {
	if v == nil {
		v = new(big.Int)
	}
	a := NewDecimalAmount(amount.ToDecimal(v, decimals))
	a.Raw = v.String()
	return a
}

// NewDecimalAmount renders an amount already expressed in whole tokens.
func NewDecimalAmount(d decimal.Decimal) Amount {
	return Amount{
		Value:   d.String(),
		Compact: amount.Compact(d),
		Full:    amount.Full(d),
	}
}

// NewSnapshot renders s with amounts scaled by decimals.
func NewSnapshot(s model.AccountSnapshot, decimals int32) Snapshot {
	units := make([]Unit, 0, len(s.Units))
	for _, u := range s.Units {
		units = append(units, Unit{
			ID:            u.ID,
			Type:          u.Type.String(),
			Level:         u.Level,
			Owner:         u.Owner.String(),
			HourlyRate:    u.HourlyRate,
			PendingReward: NewAmount(u.Pending(), decimals),
			LastClaimTime: u.LastClaimTime,
		})
	}
	return Snapshot{
		Account:          s.Account.String(),
		ReconciliationID: s.ReconciliationID.String(),
		Kind:             string(s.Kind),
		TakenAt:          s.TakenAt,
		Units:            units,
		AggregatePending: NewAmount(s.AggregatePending, decimals),
		PaymentBalance:   NewAmount(s.PaymentBalance, decimals),
		RewardBalance:    NewAmount(s.RewardBalance, decimals),
		TotalHourlyRate:  s.TotalHourlyRate(),
	}
}

func NewLiveEstimate(e model.LiveEstimate) LiveEstimate {
	perUnit := make([]UnitEstimate, 0, len(e.PerUnit))
	for _, u := range e.PerUnit {
		perUnit = append(perUnit, UnitEstimate{
			ID:         u.ID,
			HourlyRate: u.HourlyRate,
			Pending:    NewDecimalAmount(u.Pending),
		})
	}
	return LiveEstimate{
		Account:   e.Account.String(),
		PerUnit:   perUnit,
		Aggregate: NewDecimalAmount(e.Aggregate),
		AsOf:      e.AsOf,
		BasedOn:   e.BasedOn,
	}
}
