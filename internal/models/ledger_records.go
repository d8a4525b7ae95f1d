package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

type Donation struct {
	ProjectID     int64           `db:"project_id"`
	DonationIndex int64           `db:"donation_index"`
	Donor         string          `db:"donor"`
	Amount        decimal.Decimal `db:"amount"`
	Message       string          `db:"message"`
	DonatedAt     time.Time       `db:"donated_at"`
}

type Expense struct {
	ProjectID    int64           `db:"project_id"`
	ExpenseIndex int64           `db:"expense_index"`
	Description  string          `db:"description"`
	Amount       decimal.Decimal `db:"amount"`
	Recipient    string          `db:"recipient"`
	RecordedAt   time.Time       `db:"recorded_at"`
}

type Withdrawal struct {
	ProjectID       int64           `db:"project_id"`
	WithdrawalIndex int64           `db:"withdrawal_index"`
	Beneficiary     string          `db:"beneficiary"`
	Amount          decimal.Decimal `db:"amount"`
	WithdrawnAt     time.Time       `db:"withdrawn_at"`
}

// LedgerEvent is a row of the ledger_events table. Payload holds the JSON body.
type LedgerEvent struct {
	Sequence  int64           `db:"sequence"`
	EventID   string          `db:"event_id"`
	EventType string          `db:"event_type"`
	ProjectID int64           `db:"project_id"`
	Caller    string          `db:"caller"`
	Payload   json.RawMessage `db:"payload"`
	EmittedAt time.Time       `db:"emitted_at"`
}
