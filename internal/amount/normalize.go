// Package amount converts loosely shaped contract responses into exact integers and formats token amounts.
package amount

import (
	"encoding/json"
	"math"
	"math/big"
	"reflect"
	"sort"
	"strings"
	"unicode"

	"github.com/holiman/uint256"
	"github.com/shopspring/decimal"
)

// maxDepth bounds recursion into nested records and sequences.
const maxDepth = 16

// limbShift is the bit width of the low limb in a low/high pair.
const limbShift = 128

// Normalize converts a raw response value into a non-negative integer.
//
// Recognized shapes, in precedence order:
//  1. record with "balance": the field, normalized recursively
//  2. record with "low" and "high": low + high<<128
//  3. sequence of two or more: v[0] + v[1]<<128
//  4. sequence of one: the element, normalized recursively
//  5. any other record: the first integer-like value in sorted key order
//  6. string: decimal, 0x-hex, bare hex or decimal-point text, separators stripped
//  7. integers of any width, json.Number, big and uint256 integers, finite floats
//
// Anything else, and every negative or malformed value, normalizes to zero.
// The result is never nil and never aliases the input.
func Normalize(raw any) *big.Int {
	return normalize(raw, 0)
}

func normalize(raw any, depth int) *big.Int {
	if depth > maxDepth {
		return new(big.Int)
	}
	if record, ok := asRecord(raw); ok {
		return normalizeRecord(record, depth)
	}
	if items, ok := asSequence(raw); ok {
		return normalizeSequence(items, depth)
	}
	if v, ok := scalar(raw); ok {
		return v
	}
	if rv := reflect.ValueOf(raw); rv.Kind() == reflect.Pointer && !rv.IsNil() {
		return normalize(rv.Elem().Interface(), depth+1)
	}
	return new(big.Int)
}

func normalizeRecord(record map[string]any, depth int) *big.Int {
	if balance, ok := record["balance"]; ok {
		return normalize(balance, depth+1)
	}
	low, hasLow := record["low"]
	high, hasHigh := record["high"]
	if hasLow && hasHigh {
		return combineLimbs(normalize(low, depth+1), normalize(high, depth+1))
	}
	for _, key := range sortedKeys(record) {
		if v, ok := scalar(record[key]); ok {
			return v
		}
	}
	return new(big.Int)
}

func normalizeSequence(items []any, depth int) *big.Int {
	switch len(items) {
	case 0:
		return new(big.Int)
	case 1:
		return normalize(items[0], depth+1)
	default:
		return combineLimbs(normalize(items[0], depth+1), normalize(items[1], depth+1))
	}
}

func combineLimbs(low, high *big.Int) *big.Int {
	v := new(big.Int).Lsh(high, limbShift)
	return v.Add(v, low)
}

// scalar recognizes values that are integers on their own: native numbers, numeric strings and big integers.
// Negative values are not recognized.
func scalar(raw any) (*big.Int, bool) {
	switch v := raw.(type) {
	case nil, bool:
		return nil, false
	case string:
		return parseString(v)
	case json.Number:
		return parseString(string(v))
	case *big.Int:
		if v == nil || v.Sign() < 0 {
			return nil, false
		}
		return new(big.Int).Set(v), true
	case big.Int:
		if v.Sign() < 0 {
			return nil, false
		}
		return new(big.Int).Set(&v), true
	case *uint256.Int:
		if v == nil {
			return nil, false
		}
		return v.ToBig(), true
	case uint256.Int:
		return v.ToBig(), true
	case int:
		return fromInt64(int64(v))
	case int8:
		return fromInt64(int64(v))
	case int16:
		return fromInt64(int64(v))
	case int32:
		return fromInt64(int64(v))
	case int64:
		return fromInt64(v)
	case uint:
		return new(big.Int).SetUint64(uint64(v)), true
	case uint8:
		return new(big.Int).SetUint64(uint64(v)), true
	case uint16:
		return new(big.Int).SetUint64(uint64(v)), true
	case uint32:
		return new(big.Int).SetUint64(uint64(v)), true
	case uint64:
		return new(big.Int).SetUint64(v), true
	case float32:
		return fromFloat(float64(v))
	case float64:
		return fromFloat(v)
	default:
		return nil, false
	}
}

func fromInt64(v int64) (*big.Int, bool) {
	if v < 0 {
		return nil, false
	}
	return big.NewInt(v), true
}

func fromFloat(v float64) (*big.Int, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, false
	}
	i, _ := new(big.Float).SetFloat64(math.Trunc(v)).Int(nil)
	return i, true
}

func parseString(s string) (*big.Int, bool) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || r == '_' || unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	if cleaned == "" {
		return nil, false
	}

	if strings.HasPrefix(cleaned, "0x") || strings.HasPrefix(cleaned, "0X") {
		return parseHex(cleaned[2:])
	}
	if isDigits(cleaned) {
		v, ok := new(big.Int).SetString(cleaned, 10)
		return v, ok
	}
	if isHex(cleaned) {
		return parseHex(cleaned)
	}

	d, err := decimal.NewFromString(cleaned)
	if err != nil || d.IsNegative() {
		return nil, false
	}
	return d.BigInt(), true
}

func parseHex(digits string) (*big.Int, bool) {
	if !isHex(digits) {
		return nil, false
	}
	return new(big.Int).SetString(digits, 16)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func isHex(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')) {
			return false
		}
	}
	return true
}

// asRecord views string-keyed maps of any element type as a record.
func asRecord(raw any) (map[string]any, bool) {
	if m, ok := raw.(map[string]any); ok {
		return m, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
		return nil, false
	}
	m := make(map[string]any, rv.Len())
	iter := rv.MapRange()
	for iter.Next() {
		m[iter.Key().String()] = iter.Value().Interface()
	}
	return m, true
}

// asSequence views slices and arrays of any element type as a sequence.
func asSequence(raw any) ([]any, bool) {
	if items, ok := raw.([]any); ok {
		return items, true
	}
	rv := reflect.ValueOf(raw)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, true
}

func sortedKeys(record map[string]any) []string {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
