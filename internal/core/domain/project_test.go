package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	beneficiary = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")
	stranger    = domain.MustParseAddress("0xdbF03B407c01E7cD3CBea99509d93f8DDDC8C6FB")
)

func newTestProject(t *testing.T) *domain.Project {
	t.Helper()
	p, err := domain.NewProject("Clean Water", "Wells for villages", beneficiary, domain.EtherToWei(10), time.Now())
	require.NoError(t, err)
	return p
}

func TestNewProject(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		pname   string
		benef   domain.Address
		goal    decimal.Decimal
		wantErr error
	}{
		{name: "valid", pname: "Test Project", benef: beneficiary, goal: domain.EtherToWei(10)},
		{name: "zero goal accepted", pname: "Test Project", benef: beneficiary, goal: decimal.Zero},
		{name: "missing name", pname: "  ", benef: beneficiary, goal: decimal.Zero, wantErr: apperrors.ErrValidation},
		{name: "missing beneficiary", pname: "Test Project", goal: decimal.Zero, wantErr: apperrors.ErrValidation},
		{name: "negative goal", pname: "Test Project", benef: beneficiary, goal: decimal.NewFromInt(-1), wantErr: apperrors.ErrValidation},
		{name: "fractional goal", pname: "Test Project", benef: beneficiary, goal: decimal.RequireFromString("1.5"), wantErr: apperrors.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := domain.NewProject(tt.pname, "desc", tt.benef, tt.goal, now)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, p)
				return
			}
			require.NoError(t, err)
			assert.True(t, p.IsActive)
			assert.True(t, p.TotalDonated.IsZero())
			assert.True(t, p.WithdrawnAmount.IsZero())
			assert.Equal(t, now, p.CreatedAt)
		})
	}
}

func TestProject_Donate(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.Donate(domain.EtherToWei(1), time.Now()))
	require.NoError(t, p.Donate(domain.EtherToWei(2), time.Now()))
	assert.True(t, domain.EtherToWei(3).Equal(p.TotalDonated))

	err := p.Donate(decimal.Zero, time.Now())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.Contains(t, err.Error(), "donation amount must be greater than 0")

	assert.ErrorIs(t, p.Donate(decimal.NewFromInt(-5), time.Now()), apperrors.ErrValidation)

	p.ToggleStatus(time.Now())
	err = p.Donate(domain.EtherToWei(1), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrState)
	assert.True(t, domain.EtherToWei(3).Equal(p.TotalDonated), "rejected donations must not change the total")
}

func TestProject_DonateBeyondGoal(t *testing.T) {
	p := newTestProject(t)

	require.NoError(t, p.Donate(domain.EtherToWei(25), time.Now()))
	assert.True(t, p.TotalDonated.GreaterThan(p.FundraisingGoal))
}

func TestProject_Withdraw(t *testing.T) {
	p := newTestProject(t)
	require.NoError(t, p.Donate(domain.EtherToWei(5), time.Now()))

	tests := []struct {
		name    string
		caller  domain.Address
		amount  decimal.Decimal
		wantErr error
	}{
		{name: "non-beneficiary", caller: stranger, amount: domain.EtherToWei(1), wantErr: apperrors.ErrUnauthorized},
		{name: "non-beneficiary zero amount", caller: stranger, amount: decimal.Zero, wantErr: apperrors.ErrUnauthorized},
		{name: "zero amount", caller: beneficiary, amount: decimal.Zero, wantErr: apperrors.ErrValidation},
		{name: "exceeds available", caller: beneficiary, amount: domain.EtherToWei(10), wantErr: apperrors.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Withdraw(tt.caller, tt.amount, time.Now())
			assert.ErrorIs(t, err, tt.wantErr)
			assert.True(t, p.WithdrawnAmount.IsZero())
		})
	}

	require.NoError(t, p.Withdraw(beneficiary, domain.EtherToWei(3), time.Now()))
	assert.True(t, domain.EtherToWei(2).Equal(p.AvailableBalance()))

	// second withdrawal of the same size would double spend
	err := p.Withdraw(beneficiary, domain.EtherToWei(3), time.Now())
	assert.ErrorIs(t, err, apperrors.ErrInsufficientFunds)
	assert.True(t, domain.EtherToWei(3).Equal(p.WithdrawnAmount))
	assert.NoError(t, p.CheckInvariants())
}

func TestProject_ToggleStatus(t *testing.T) {
	p := newTestProject(t)

	assert.False(t, p.ToggleStatus(time.Now()))
	assert.True(t, p.ToggleStatus(time.Now()))
	assert.True(t, p.IsActive)
}

func TestProject_CheckInvariants(t *testing.T) {
	p := newTestProject(t)
	p.TotalDonated = decimal.NewFromInt(1)
	p.WithdrawnAmount = decimal.NewFromInt(2)

	assert.Error(t, p.CheckInvariants())
}
