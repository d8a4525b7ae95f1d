package utils

import (
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// FormatWeiAsEther renders a wei amount as whole coins without losing precision.
// Example: 1500000000000000000 returns "1.5"
func FormatWeiAsEther(wei decimal.Decimal) string {
	return wei.Shift(-18).String()
}

// ParseEtherToWei converts a decimal string of whole coins into wei.
// Anything finer than one wei or above domain.MaxAmount is rejected.
func ParseEtherToWei(ether string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(ether)
	if err != nil {
		return decimal.Zero, err
	}
	wei := d.Mul(domain.WeiPerEther)
	if err := domain.CheckAmount(wei); err != nil {
		return decimal.Zero, err
	}
	return wei, nil
}
