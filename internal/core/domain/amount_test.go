package domain_test

import (
	"testing"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decimalFromString(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	require.NoError(t, err)
	return d
}

const (
	maxUint256  = "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	overUint256 = "115792089237316195423570985008687907853269984665640564039457584007913129639936"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "ten ether in wei", input: "10000000000000000000", want: "10000000000000000000"},
		{name: "beyond uint64", input: "340282366920938463463374607431768211456", want: "340282366920938463463374607431768211456"},
		{name: "zero", input: "0", want: "0"},
		{name: "negative parses", input: "-1", want: "-1"},
		{name: "uint256 max", input: maxUint256, want: maxUint256},
		{name: "uint256 max in exponent form", input: "1157920892373161954235709850086879078532699846656405640394575840079131296399350e-1", want: maxUint256},
		{name: "zero with huge exponent", input: "0e-20000000", want: "0"},
		{name: "uint256 overflow", input: overUint256, wantErr: true},
		{name: "negative overflow", input: "-" + overUint256, wantErr: true},
		{name: "exponent above range", input: "1e100", wantErr: true},
		{name: "huge exponent", input: "1e20000000", wantErr: true},
		{name: "tiny exponent", input: "1e-20000000", wantErr: true},
		{name: "fraction", input: "0.5", wantErr: true},
		{name: "garbage", input: "ten", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseAmount(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestMaxAmount(t *testing.T) {
	assert.Equal(t, maxUint256, domain.MaxAmount.String())
	assert.NoError(t, domain.CheckAmount(domain.MaxAmount))
	assert.ErrorIs(t, domain.CheckAmount(domain.MaxAmount.Add(decimal.NewFromInt(1))), apperrors.ErrValidation)
}

func TestEtherToWei(t *testing.T) {
	assert.Equal(t, "10000000000000000000", domain.EtherToWei(10).String())
}
