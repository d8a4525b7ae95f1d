package dto

import (
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// DonateRequest carries a donation. Amount is the attached value in wei.
type DonateRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	Message string          `json:"message"`
}

// WithdrawFundsRequest carries a beneficiary withdrawal.
type WithdrawFundsRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// RecordExpenseRequest carries an expense log entry.
type RecordExpenseRequest struct {
	Description string          `json:"description" binding:"required"`
	Amount      decimal.Decimal `json:"amount" binding:"wei"`
	Recipient   string          `json:"recipient" binding:"required,eth_addr"`
}

// ListRecordsParams pages through an append-only per-project list.
type ListRecordsParams struct {
	Limit     int     `form:"limit,default=50" binding:"min=1,max=200"`
	NextToken *string `form:"nextToken"`
}

// ListEventsParams pages through the global event log.
type ListEventsParams struct {
	AfterSequence int64 `form:"afterSequence,default=0" binding:"min=0"`
	Limit         int   `form:"limit,default=100" binding:"min=1,max=500"`
}

type DonationResponse struct {
	ProjectID int64           `json:"projectID"`
	Index     int64           `json:"index"`
	Donor     string          `json:"donor"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
	Timestamp time.Time       `json:"timestamp"`
}

type ExpenseResponse struct {
	ProjectID   int64           `json:"projectID"`
	Index       int64           `json:"index"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient"`
	Timestamp   time.Time       `json:"timestamp"`
}

type WithdrawalResponse struct {
	ProjectID   int64           `json:"projectID"`
	Index       int64           `json:"index"`
	Beneficiary string          `json:"beneficiary"`
	Amount      decimal.Decimal `json:"amount"`
	Timestamp   time.Time       `json:"timestamp"`
}

// ListDonationsResponse is one page of donations together with the project's total count.
type ListDonationsResponse struct {
	Count     int64              `json:"count"`
	Donations []DonationResponse `json:"donations"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ListExpensesResponse is one page of expenses together with the project's total count.
type ListExpensesResponse struct {
	Count     int64             `json:"count"`
	Expenses  []ExpenseResponse `json:"expenses"`
	NextToken *string           `json:"nextToken,omitempty"`
}

// EventResponse is the wire form of a domain.LedgerEvent.
type EventResponse struct {
	Sequence  int64               `json:"sequence"`
	EventID   string              `json:"eventID"`
	Type      domain.EventType    `json:"type"`
	ProjectID int64               `json:"projectID"`
	Caller    string              `json:"caller"`
	Payload   domain.EventPayload `json:"payload"`
	EmittedAt time.Time           `json:"emittedAt"`
}

type ListEventsResponse struct {
	Events       []EventResponse `json:"events"`
	LastSequence int64           `json:"lastSequence"`
}

func ToDonationResponse(d *domain.Donation) DonationResponse {
	return DonationResponse{
		ProjectID: d.ProjectID,
		Index:     d.Index,
		Donor:     d.Donor.String(),
		Amount:    d.Amount,
		Message:   d.Message,
		Timestamp: d.Timestamp,
	}
}

func ToDonationResponses(ds []domain.Donation) []DonationResponse {
	res := make([]DonationResponse, len(ds))
	for i := range ds {
		res[i] = ToDonationResponse(&ds[i])
	}
	return res
}

func ToExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ProjectID:   e.ProjectID,
		Index:       e.Index,
		Description: e.Description,
		Amount:      e.Amount,
		Recipient:   e.Recipient.String(),
		Timestamp:   e.Timestamp,
	}
}

func ToExpenseResponses(es []domain.Expense) []ExpenseResponse {
	res := make([]ExpenseResponse, len(es))
	for i := range es {
		res[i] = ToExpenseResponse(&es[i])
	}
	return res
}

func ToWithdrawalResponses(ws []domain.Withdrawal) []WithdrawalResponse {
	res := make([]WithdrawalResponse, len(ws))
	for i, w := range ws {
		res[i] = WithdrawalResponse{
			ProjectID:   w.ProjectID,
			Index:       w.Index,
			Beneficiary: w.Beneficiary.String(),
			Amount:      w.Amount,
			Timestamp:   w.Timestamp,
		}
	}
	return res
}

// ToEventResponse converts a domain.LedgerEvent to its wire form.
func ToEventResponse(e *domain.LedgerEvent) EventResponse {
	return EventResponse{
		Sequence:  e.Sequence,
		EventID:   e.EventID,
		Type:      e.Type,
		ProjectID: e.ProjectID,
		Caller:    e.Caller.String(),
		Payload:   e.Payload,
		EmittedAt: e.EmittedAt,
	}
}

func ToEventResponses(events []domain.LedgerEvent) []EventResponse {
	res := make([]EventResponse, len(events))
	for i := range events {
		res[i] = ToEventResponse(&events[i])
	}
	return res
}
