package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

var ErrInvalidAmount = errors.New("invalid amount")

// FormatAmount renders base units as a decimal string with the mint's
// decimals, e.g. 1500000 with 6 decimals is "1.5".
func FormatAmount(amount uint64, decimals uint8) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(amount), -int32(decimals)).String()
}

// ParseAmount converts a decimal string to base units. Fractions finer than
// the mint's decimals are rejected rather than rounded.
func ParseAmount(s string, decimals uint8) (uint64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %v", ErrInvalidAmount, s, err)
	}
	if d.IsNegative() {
		return 0, fmt.Errorf("%w: %q is negative", ErrInvalidAmount, s)
	}
	base := d.Shift(int32(decimals))
	if !base.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more than %d decimals", ErrInvalidAmount, s, decimals)
	}
	v := base.BigInt()
	if !v.IsUint64() {
		return 0, fmt.Errorf("%w: %q overflows", ErrOverflow, s)
	}
	return v.Uint64(), nil
}
