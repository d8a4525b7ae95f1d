package domain

import (
	"fmt"
	"math/big"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// WeiPerEther is the number of smallest units in one whole coin.
var WeiPerEther = decimal.New(1, 18)

// MaxAmount is the largest representable amount, 2^256-1.
var MaxAmount = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1)), 0)

// maxAmountDigits is the number of decimal digits in MaxAmount.
const maxAmountDigits = 78

// ParseAmount parses a base-10 string of smallest currency units.
// Fractional, malformed and out-of-range values are rejected; the sign is not checked here.
func ParseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", apperrors.ErrValidation, s)
	}
	if err := checkAmount("amount", d); err != nil {
		return decimal.Zero, err
	}
	if d.Sign() == 0 {
		return decimal.Zero, nil
	}
	return d, nil
}

// CheckAmount reports whether d is a whole number of smallest units within ±MaxAmount.
func CheckAmount(d decimal.Decimal) error {
	return checkAmount("amount", d)
}

// checkAmount bounds the magnitude before anything rescales d.
func checkAmount(field string, d decimal.Decimal) error {
	if d.Sign() == 0 {
		return nil
	}
	if int64(d.NumDigits())+int64(d.Exponent()) > maxAmountDigits {
		return fmt.Errorf("%w: %s exceeds the maximum of 2^256-1", apperrors.ErrValidation, field)
	}
	if !d.IsInteger() {
		return fmt.Errorf("%w: %s must be a whole number of smallest units", apperrors.ErrValidation, field)
	}
	if d.Abs().Cmp(MaxAmount) > 0 {
		return fmt.Errorf("%w: %s exceeds the maximum of 2^256-1", apperrors.ErrValidation, field)
	}
	return nil
}

// EtherToWei converts a whole-coin amount to smallest units. Used by tests and seed data.
func EtherToWei(ether int64) decimal.Decimal {
	return decimal.NewFromInt(ether).Mul(WeiPerEther)
}

// validateUint checks the unsigned-integer rule applied to goals and expense amounts.
func validateUint(field string, d decimal.Decimal) error {
	if err := checkAmount(field, d); err != nil {
		return err
	}
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must not be negative", apperrors.ErrValidation, field)
	}
	return nil
}

// validatePositive checks that a transfer amount is a positive whole number.
func validatePositive(msg string, d decimal.Decimal) error {
	if err := checkAmount("amount", d); err != nil {
		return err
	}
	if !d.IsPositive() {
		return fmt.Errorf("%w: %s", apperrors.ErrValidation, msg)
	}
	return nil
}
