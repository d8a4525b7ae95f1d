package domain_test

import (
	"testing"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestParseAddress_Checksum(t *testing.T) {
	// reference vectors from EIP-55
	vectors := []string{
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359",
		"0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB",
		"0xD1220A0cf47c7B9Be7A2E6BA89F429762e7b9aDb",
	}
	for _, want := range vectors {
		t.Run(want, func(t *testing.T) {
			lower := "0x" + toLower(want[2:])
			got, err := domain.ParseAddress(lower)
			assert.NoError(t, err)
			assert.Equal(t, want, got.String())
		})
	}
}

func TestParseAddress_Invalid(t *testing.T) {
	inputs := []string{
		"",
		"0x123",
		"5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0xZZAeb6053F3E94C9b9A09f33669435E7Ef1BeAed",
		"0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed00",
	}
	for _, in := range inputs {
		_, err := domain.ParseAddress(in)
		assert.ErrorIs(t, err, apperrors.ErrValidation, "input %q", in)
	}
}

func TestParseAddress_SameAccountDifferentCase(t *testing.T) {
	a := domain.MustParseAddress("0x5AAEB6053F3E94C9B9A09F33669435E7EF1BEAED")
	b := domain.MustParseAddress("0x5aaeb6053f3e94c9b9a09f33669435e7ef1beaed")

	assert.Equal(t, a, b)
}

func toLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + 32
		}
	}
	return string(b)
}
