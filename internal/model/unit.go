package model

import (
	"math/big"
	"time"
)

// UnitType is the beaver kind, encoded on chain as an ordinal.
type UnitType uint8

const (
	// UnitBasic is the entry beaver type.
	UnitBasic UnitType = iota
	// UnitAdvanced is the mid tier beaver type.
	UnitAdvanced
	// UnitElite is the top tier beaver type.
	UnitElite
)

// Level bounds for a beaver.
const (
	MinLevel uint8 = 1
	MaxLevel uint8 = 5
)

// Valid reports whether the ordinal is a known unit type.
func (t UnitType) Valid() bool {
	return t <= UnitElite
}

func (t UnitType) String() string {
	switch t {
	case UnitBasic:
		return "basic"
	case UnitAdvanced:
		return "advanced"
	case UnitElite:
		return "elite"
	default:
		return "unknown"
	}
}

// ValidLevel reports whether level is inside [MinLevel, MaxLevel].
func ValidLevel(level uint8) bool {
	return level >= MinLevel && level <= MaxLevel
}

// Unit is a beaver owned by an account.
type Unit struct {
	ID            uint64
	Type          UnitType
	Level         uint8
	Owner         Account
	LastClaimTime time.Time
	// HourlyRate is derived from Type and Level.
	HourlyRate uint64
	// PendingReward is the apportioned share of the aggregate pending reward, in base units.
	PendingReward *big.Int
}

// Clone returns a copy that shares no mutable state with u.
func (u Unit) Clone() Unit {
	c := u
	if u.PendingReward != nil {
		c.PendingReward = new(big.Int).Set(u.PendingReward)
	}
	return c
}

// Pending returns PendingReward, treating nil as zero.
func (u Unit) Pending() *big.Int {
	if u.PendingReward == nil {
		return new(big.Int)
	}
	return u.PendingReward
}
