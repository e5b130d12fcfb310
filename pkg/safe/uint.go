// Package safe provides helpers for safe numeric conversions with overflow checks.
package safe

import (
	"fmt"
	"math"
	"math/big"
)

// BigUint64 converts a big integer to uint64, rejecting nil, negative and oversized values.
func BigUint64(v *big.Int) (uint64, error) {
	if v == nil {
		return 0, fmt.Errorf("nil value")
	}
	if v.Sign() < 0 || !v.IsUint64() {
		return 0, fmt.Errorf("value %s out of uint64 range", v.String())
	}
	return v.Uint64(), nil
}

// BigUint8 converts a big integer to uint8 with range validation.
func BigUint8(v *big.Int) (uint8, error) {
	u, err := BigUint64(v)
	if err != nil {
		return 0, err
	}
	if u > math.MaxUint8 {
		return 0, fmt.Errorf("value %d out of uint8 range", u)
	}
	return uint8(u), nil
}

// BigInt64 converts a big integer to int64, rejecting nil, negative and oversized values.
func BigInt64(v *big.Int) (int64, error) {
	if v == nil {
		return 0, fmt.Errorf("nil value")
	}
	if v.Sign() < 0 || !v.IsInt64() {
		return 0, fmt.Errorf("value %s out of int64 range", v.String())
	}
	return v.Int64(), nil
}
