package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// Donation is one accepted contribution. Index is its position in the project's donation list.
type Donation struct {
	ProjectID int64           `json:"projectID"`
	Index     int64           `json:"index"`
	Donor     Address         `json:"donor"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

// Expense is a beneficiary-reported spend. It is a log entry only and moves no funds.
type Expense struct {
	ProjectID   int64           `json:"projectID"`
	Index       int64           `json:"index"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Recipient   Address         `json:"recipient"`
	Timestamp   time.Time       `json:"timestamp"`
}

// NewExpense validates the expense fields. Amount follows unsigned-integer rules; zero is allowed.
func NewExpense(projectID int64, description string, amount decimal.Decimal, recipient Address, now time.Time) (*Expense, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: expense description is required", apperrors.ErrValidation)
	}
	if recipient.IsZero() {
		return nil, fmt.Errorf("%w: expense recipient is required", apperrors.ErrValidation)
	}
	if err := validateUint("expense amount", amount); err != nil {
		return nil, err
	}
	return &Expense{
		ProjectID:   projectID,
		Description: description,
		Amount:      amount,
		Recipient:   recipient,
		Timestamp:   now,
	}, nil
}

// Withdrawal records funds paid out to a beneficiary.
type Withdrawal struct {
	ProjectID   int64           `json:"projectID"`
	Index       int64           `json:"index"`
	Beneficiary Address         `json:"beneficiary"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
}
