// Package rate maps a beaver's type and level to its hourly reward rate.
package rate

import (
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/shopspring/decimal"
)

// multiplierScale is the denominator of the level multiplier table.
const multiplierScale = 1000

var baseRates = map[model.UnitType]uint64{
	model.UnitBasic:    300,
	model.UnitAdvanced: 750,
	model.UnitElite:    2250,
}

// levelMultipliers mirrors the contract table. Level 5 is 5062, not 1.5^4*1000.
var levelMultipliers = [...]uint64{1000, 1500, 2250, 3375, 5062}

var secondsPerHour = decimal.NewFromInt(3600)

// BaseRate returns the level 1 hourly rate of a type; unknown types fall back to Basic.
func BaseRate(t model.UnitType) uint64 {
	if r, ok := baseRates[t]; ok {
		return r
	}
	return baseRates[model.UnitBasic]
}

// LevelMultiplier returns the multiplier of a level scaled by 1000; unknown levels fall back to level 1.
func LevelMultiplier(level uint8) uint64 {
	if !model.ValidLevel(level) {
		return levelMultipliers[0]
	}
	return levelMultipliers[level-1]
}

// Hourly returns floor(base * multiplier / 1000) tokens per hour.
func Hourly(t model.UnitType, level uint8) uint64 {
	return BaseRate(t) * LevelMultiplier(level) / multiplierScale
}

// PerSecond converts an hourly rate into an exact per-second decimal.
func PerSecond(hourly uint64) decimal.Decimal {
	return decimal.NewFromUint64(hourly).Div(secondsPerHour)
}

// TotalHourly sums the hourly rate of every unit.
func TotalHourly(units []model.Unit) uint64 {
	var total uint64
	for _, u := range units {
		total += u.HourlyRate
	}
	return total
}

// Apply recomputes HourlyRate for every unit in place.
func Apply(units []model.Unit) {
	for i := range units {
		units[i].HourlyRate = Hourly(units[i].Type, units[i].Level)
	}
}
