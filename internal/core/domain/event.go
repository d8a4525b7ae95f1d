package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EventType names the state transition a LedgerEvent reports.
type EventType string

const (
	EventProjectCreated       EventType = "ProjectCreated"
	EventDonationReceived     EventType = "DonationReceived"
	EventFundsWithdrawn       EventType = "FundsWithdrawn"
	EventExpenseRecorded      EventType = "ExpenseRecorded"
	EventProjectStatusChanged EventType = "ProjectStatusChanged"
)

// EventPayload is implemented by the typed body of each event.
type EventPayload interface {
	EventType() EventType
}

type ProjectCreated struct {
	ProjectID   int64           `json:"projectId"`
	Name        string          `json:"name"`
	Beneficiary Address         `json:"beneficiary"`
	Goal        decimal.Decimal `json:"goal"`
}

type DonationReceived struct {
	ProjectID int64           `json:"projectId"`
	Donor     Address         `json:"donor"`
	Amount    decimal.Decimal `json:"amount"`
	Message   string          `json:"message"`
}

type FundsWithdrawn struct {
	ProjectID   int64           `json:"projectId"`
	Beneficiary Address         `json:"beneficiary"`
	Amount      decimal.Decimal `json:"amount"`
}

type ExpenseRecorded struct {
	ProjectID   int64           `json:"projectId"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Recipient   Address         `json:"recipient"`
}

type ProjectStatusChanged struct {
	ProjectID int64 `json:"projectId"`
	IsActive  bool  `json:"isActive"`
}

func (ProjectCreated) EventType() EventType       { return EventProjectCreated }
func (DonationReceived) EventType() EventType     { return EventDonationReceived }
func (FundsWithdrawn) EventType() EventType       { return EventFundsWithdrawn }
func (ExpenseRecorded) EventType() EventType      { return EventExpenseRecorded }
func (ProjectStatusChanged) EventType() EventType { return EventProjectStatusChanged }

// LedgerEvent is the single structured event emitted by a committed write.
// Sequence is assigned by the store when the event is appended to the log.
type LedgerEvent struct {
	Sequence  int64        `json:"sequence"`
	EventID   string       `json:"eventID"`
	Type      EventType    `json:"type"`
	ProjectID int64        `json:"projectID"`
	Caller    Address      `json:"caller"`
	Payload   EventPayload `json:"payload"`
	EmittedAt time.Time    `json:"emittedAt"`
}

// DecodeEventPayload restores the typed payload of a stored event.
func DecodeEventPayload(t EventType, raw []byte) (EventPayload, error) {
	var p EventPayload
	switch t {
	case EventProjectCreated:
		p = &ProjectCreated{}
	case EventDonationReceived:
		p = &DonationReceived{}
	case EventFundsWithdrawn:
		p = &FundsWithdrawn{}
	case EventExpenseRecorded:
		p = &ExpenseRecorded{}
	case EventProjectStatusChanged:
		p = &ProjectStatusChanged{}
	default:
		return nil, fmt.Errorf("unknown event type %q", t)
	}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("decode %s payload: %w", t, err)
	}
	return derefPayload(p), nil
}

func derefPayload(p EventPayload) EventPayload {
	switch v := p.(type) {
	case *ProjectCreated:
		return *v
	case *DonationReceived:
		return *v
	case *FundsWithdrawn:
		return *v
	case *ExpenseRecorded:
		return *v
	case *ProjectStatusChanged:
		return *v
	}
	return p
}
