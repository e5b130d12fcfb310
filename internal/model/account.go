// Package model defines domain models for beaver reward reconciliation.
package model

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// ErrInvalidAccount is returned when an account identifier cannot be parsed.
var ErrInvalidAccount = errors.New("invalid account")

// Account is a player address in canonical form: lowercase 0x-prefixed hex without leading zeros.
type Account string

// ParseAccount parses a hex address in any case and with any zero padding.
func ParseAccount(s string) (Account, error) {
	digits := strings.TrimSpace(s)
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		digits = digits[2:]
	}
	if digits == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccount, s)
	}
	for _, r := range digits {
		if !isHexDigit(r) {
			return "", fmt.Errorf("%w: %q", ErrInvalidAccount, s)
		}
	}
	v, ok := new(big.Int).SetString(digits, 16)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidAccount, s)
	}
	return AccountFromBig(v)
}

// AccountFromBig converts a numeric felt into an account.
func AccountFromBig(v *big.Int) (Account, error) {
	if v == nil || v.Sign() < 0 {
		return "", fmt.Errorf("%w: negative or missing value", ErrInvalidAccount)
	}
	if v.BitLen() > 256 {
		return "", fmt.Errorf("%w: value exceeds 256 bits", ErrInvalidAccount)
	}
	return Account(hexutil.EncodeBig(v)), nil
}

// MustParseAccount is ParseAccount for constants and tests.
func MustParseAccount(s string) Account {
	a, err := ParseAccount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// String returns the canonical textual form.
func (a Account) String() string {
	return string(a)
}

// Equal compares two accounts after normalization.
func (a Account) Equal(other Account) bool {
	x, errX := ParseAccount(string(a))
	y, errY := ParseAccount(string(other))
	if errX != nil || errY != nil {
		return false
	}
	return x == y
}

// Hash returns the 32-byte left-padded representation used in call data.
func (a Account) Hash() common.Hash {
	if a == "" {
		return common.Hash{}
	}
	v, err := hexutil.DecodeBig(string(a))
	if err != nil {
		return common.Hash{}
	}
	return common.BigToHash(v)
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}
