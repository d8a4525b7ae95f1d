package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Project is a fundraising project held by the ledger.
// Name, Description, Beneficiary, FundraisingGoal and CreatedAt never change after creation.
type Project struct {
	ProjectID       int64           `json:"projectID"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Beneficiary     Address         `json:"beneficiary"`
	FundraisingGoal decimal.Decimal `json:"fundraisingGoal"` // target only, not a cap
	TotalDonated    decimal.Decimal `json:"totalDonated"`
	WithdrawnAmount decimal.Decimal `json:"withdrawnAmount"` // never exceeds TotalDonated
	IsActive        bool            `json:"isActive"`
	CreatedAt       time.Time       `json:"createdAt"`
	LastUpdatedAt   time.Time       `json:"lastUpdatedAt"`
}

// NewProject builds a fresh, active project with zero balances. The id is assigned by the store.
func NewProject(name, description string, beneficiary Address, goal decimal.Decimal, now time.Time) (*Project, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: project name is required", apperrors.ErrValidation)
	}
	if beneficiary.IsZero() {
		return nil, fmt.Errorf("%w: beneficiary is required", apperrors.ErrValidation)
	}
	if err := validateUint("fundraising goal", goal); err != nil {
		return nil, err
	}
	return &Project{
		Name:            name,
		Description:     description,
		Beneficiary:     beneficiary,
		FundraisingGoal: goal,
		TotalDonated:    decimal.Zero,
		WithdrawnAmount: decimal.Zero,
		IsActive:        true,
		CreatedAt:       now,
		LastUpdatedAt:   now,
	}, nil
}

// AvailableBalance is what the beneficiary may still withdraw.
func (p *Project) AvailableBalance() decimal.Decimal {
	return p.TotalDonated.Sub(p.WithdrawnAmount)
}

// AuthorizeBeneficiary fails unless caller is the project's beneficiary.
func (p *Project) AuthorizeBeneficiary(caller Address) error {
	if caller != p.Beneficiary {
		return fmt.Errorf("%w: only project beneficiary can call this function", apperrors.ErrUnauthorized)
	}
	return nil
}

// Donate adds amount to the running total. Donations past the goal are accepted.
func (p *Project) Donate(amount decimal.Decimal, now time.Time) error {
	if err := validatePositive("donation amount must be greater than 0", amount); err != nil {
		return err
	}
	if !p.IsActive {
		return fmt.Errorf("%w: project is not active", apperrors.ErrState)
	}
	total := p.TotalDonated.Add(amount)
	if total.GreaterThan(MaxAmount) {
		return fmt.Errorf("%w: donation would push the project total past 2^256-1", apperrors.ErrValidation)
	}
	p.TotalDonated = total
	p.LastUpdatedAt = now
	return nil
}

// Withdraw books a withdrawal by the beneficiary against the available balance.
func (p *Project) Withdraw(caller Address, amount decimal.Decimal, now time.Time) error {
	if err := p.AuthorizeBeneficiary(caller); err != nil {
		return err
	}
	if err := validatePositive("withdrawal amount must be greater than 0", amount); err != nil {
		return err
	}
	if amount.GreaterThan(p.AvailableBalance()) {
		return fmt.Errorf("%w: insufficient available balance: requested %s, available %s",
			apperrors.ErrInsufficientFunds, amount.String(), p.AvailableBalance().String())
	}
	p.WithdrawnAmount = p.WithdrawnAmount.Add(amount)
	p.LastUpdatedAt = now
	return nil
}

// ToggleStatus flips IsActive and returns the new value.
func (p *Project) ToggleStatus(now time.Time) bool {
	p.IsActive = !p.IsActive
	p.LastUpdatedAt = now
	return p.IsActive
}

// CheckInvariants verifies the accounting rules a stored project must satisfy.
func (p *Project) CheckInvariants() error {
	if p.WithdrawnAmount.IsNegative() || p.TotalDonated.IsNegative() {
		return fmt.Errorf("project %d has a negative balance", p.ProjectID)
	}
	if p.WithdrawnAmount.GreaterThan(p.TotalDonated) {
		return fmt.Errorf("project %d withdrawn %s exceeds donated %s", p.ProjectID, p.WithdrawnAmount, p.TotalDonated)
	}
	return nil
}
