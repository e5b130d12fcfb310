package amount

import (
	"math/big"
	"slices"
)

// MaxUnitID is the exclusive upper bound for a plausible unit id.
const MaxUnitID = 1_000_000

var maxUnitID = big.NewInt(MaxUnitID)

// NormalizeIDs converts an owned-ids response into a sorted, duplicate-free id list.
// Sequences contribute every element; a record contributes its first sequence field in
// sorted key order, or every value when it has none; scalars contribute themselves.
// Ids outside the open range (0, MaxUnitID) are dropped.
func NormalizeIDs(raw any) []uint64 {
	candidates := idCandidates(raw)

	seen := make(map[uint64]struct{}, len(candidates))
	ids := make([]uint64, 0, len(candidates))
	for _, c := range candidates {
		if c.Sign() <= 0 || c.Cmp(maxUnitID) >= 0 {
			continue
		}
		id := c.Uint64()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func idCandidates(raw any) []*big.Int {
	if raw == nil {
		return nil
	}
	if items, ok := asSequence(raw); ok {
		out := make([]*big.Int, 0, len(items))
		for _, item := range items {
			out = append(out, Normalize(item))
		}
		return out
	}
	if record, ok := asRecord(raw); ok {
		keys := sortedKeys(record)
		for _, k := range keys {
			if _, isSeq := asSequence(record[k]); isSeq {
				return idCandidates(record[k])
			}
		}
		out := make([]*big.Int, 0, len(keys))
		for _, k := range keys {
			out = append(out, Normalize(record[k]))
		}
		return out
	}
	return []*big.Int{Normalize(raw)}
}
