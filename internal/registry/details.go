package registry

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/goodnatureofminers/beaverfarm-backend/internal/amount"
	"github.com/goodnatureofminers/beaverfarm-backend/internal/model"
	"github.com/goodnatureofminers/beaverfarm-backend/pkg/safe"
)

// ErrMalformedUnit is returned when a unit detail response cannot describe a valid unit.
var ErrMalformedUnit = errors.New("malformed unit details")

var (
	typeKeys      = []string{"type", "beaver_type", "unit_type"}
	levelKeys     = []string{"level", "lvl"}
	lastClaimKeys = []string{"last_claim_time", "lastClaimTime", "last_claim"}
	ownerKeys     = []string{"owner", "owner_address"}
)

type detailFields struct {
	// id is only set by the positional shape, where it anchors the field order.
	id        any
	unitType  any
	level     any
	lastClaim any
	owner     any
}

// ParseDetails converts a unit detail response into a unit with the given id.
// Accepted shapes are a record keyed by field name (with aliases) and a positional
// sequence [id, type, level, last_claim_time, owner] in contract struct order. A positional
// id that differs from the requested one is malformed. HourlyRate is left for the caller.
func ParseDetails(id uint64, raw any) (model.Unit, error) {
	fields, err := extractFields(raw)
	if err != nil {
		return model.Unit{}, err
	}
	if fields.id != nil {
		got, err := safe.BigUint64(amount.Normalize(fields.id))
		if err != nil || got != id {
			return model.Unit{}, fmt.Errorf("%w: unit %d reported as %v", ErrMalformedUnit, id, fields.id)
		}
	}

	unitType, ok := smallUint(fields.unitType)
	if !ok || !model.UnitType(unitType).Valid() {
		return model.Unit{}, fmt.Errorf("%w: unit %d type %v", ErrMalformedUnit, id, fields.unitType)
	}
	level, ok := smallUint(fields.level)
	if !ok || !model.ValidLevel(level) {
		return model.Unit{}, fmt.Errorf("%w: unit %d level %v", ErrMalformedUnit, id, fields.level)
	}
	owner, err := parseOwner(fields.owner)
	if err != nil {
		return model.Unit{}, fmt.Errorf("%w: unit %d owner: %w", ErrMalformedUnit, id, err)
	}

	return model.Unit{
		ID:            id,
		Type:          model.UnitType(unitType),
		Level:         level,
		Owner:         owner,
		LastClaimTime: unixTime(fields.lastClaim),
		PendingReward: new(big.Int),
	}, nil
}

func extractFields(raw any) (detailFields, error) {
	switch v := raw.(type) {
	case map[string]any:
		return detailFields{
			unitType:  lookup(v, typeKeys),
			level:     lookup(v, levelKeys),
			lastClaim: lookup(v, lastClaimKeys),
			owner:     lookup(v, ownerKeys),
		}, nil
	case []any:
		if len(v) == 1 {
			return extractFields(v[0])
		}
		var f detailFields
		values := []*any{&f.id, &f.unitType, &f.level, &f.lastClaim, &f.owner}
		for i := 0; i < len(values) && i < len(v); i++ {
			*values[i] = v[i]
		}
		return f, nil
	default:
		return detailFields{}, fmt.Errorf("%w: unsupported shape %T", ErrMalformedUnit, raw)
	}
}

func lookup(record map[string]any, keys []string) any {
	for _, k := range keys {
		if v, ok := record[k]; ok {
			return v
		}
	}
	return nil
}

func smallUint(raw any) (uint8, bool) {
	if raw == nil {
		return 0, false
	}
	v, err := safe.BigUint8(amount.Normalize(raw))
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseOwner(raw any) (model.Account, error) {
	switch v := raw.(type) {
	case nil:
		return "", errors.New("missing")
	case string:
		return model.ParseAccount(v)
	default:
		return model.AccountFromBig(amount.Normalize(v))
	}
}

func unixTime(raw any) time.Time {
	if raw == nil {
		return time.Time{}
	}
	secs, err := safe.BigInt64(amount.Normalize(raw))
	if err != nil {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}
