package mapping

import (
	"encoding/json"
	"fmt"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/models"
)

// ToModelProject converts a domain Project to a model Project
func ToModelProject(d domain.Project) models.Project {
	return models.Project{
		ProjectID:       d.ProjectID,
		Name:            d.Name,
		Description:     d.Description,
		Beneficiary:     d.Beneficiary.String(),
		FundraisingGoal: d.FundraisingGoal,
		TotalDonated:    d.TotalDonated,
		WithdrawnAmount: d.WithdrawnAmount,
		IsActive:        d.IsActive,
		CreatedAt:       d.CreatedAt,
		LastUpdatedAt:   d.LastUpdatedAt,
	}
}

// ToDomainProject converts a model Project to a domain Project.
// Stored addresses were checksummed on the way in, so they are not parsed again.
func ToDomainProject(m models.Project) domain.Project {
	return domain.Project{
		ProjectID:       m.ProjectID,
		Name:            m.Name,
		Description:     m.Description,
		Beneficiary:     domain.Address(m.Beneficiary),
		FundraisingGoal: m.FundraisingGoal,
		TotalDonated:    m.TotalDonated,
		WithdrawnAmount: m.WithdrawnAmount,
		IsActive:        m.IsActive,
		CreatedAt:       m.CreatedAt.UTC(),
		LastUpdatedAt:   m.LastUpdatedAt.UTC(),
	}
}

func ToModelDonation(d domain.Donation) models.Donation {
	return models.Donation{
		ProjectID:     d.ProjectID,
		DonationIndex: d.Index,
		Donor:         d.Donor.String(),
		Amount:        d.Amount,
		Message:       d.Message,
		DonatedAt:     d.Timestamp,
	}
}

func ToDomainDonation(m models.Donation) domain.Donation {
	return domain.Donation{
		ProjectID: m.ProjectID,
		Index:     m.DonationIndex,
		Donor:     domain.Address(m.Donor),
		Amount:    m.Amount,
		Message:   m.Message,
		Timestamp: m.DonatedAt.UTC(),
	}
}

func ToModelExpense(d domain.Expense) models.Expense {
	return models.Expense{
		ProjectID:    d.ProjectID,
		ExpenseIndex: d.Index,
		Description:  d.Description,
		Amount:       d.Amount,
		Recipient:    d.Recipient.String(),
		RecordedAt:   d.Timestamp,
	}
}

func ToDomainExpense(m models.Expense) domain.Expense {
	return domain.Expense{
		ProjectID:   m.ProjectID,
		Index:       m.ExpenseIndex,
		Description: m.Description,
		Amount:      m.Amount,
		Recipient:   domain.Address(m.Recipient),
		Timestamp:   m.RecordedAt.UTC(),
	}
}

func ToModelWithdrawal(d domain.Withdrawal) models.Withdrawal {
	return models.Withdrawal{
		ProjectID:       d.ProjectID,
		WithdrawalIndex: d.Index,
		Beneficiary:     d.Beneficiary.String(),
		Amount:          d.Amount,
		WithdrawnAt:     d.Timestamp,
	}
}

func ToDomainWithdrawal(m models.Withdrawal) domain.Withdrawal {
	return domain.Withdrawal{
		ProjectID:   m.ProjectID,
		Index:       m.WithdrawalIndex,
		Beneficiary: domain.Address(m.Beneficiary),
		Amount:      m.Amount,
		Timestamp:   m.WithdrawnAt.UTC(),
	}
}

// ToModelLedgerEvent serializes the typed payload to JSON.
func ToModelLedgerEvent(d domain.LedgerEvent) (models.LedgerEvent, error) {
	payload, err := json.Marshal(d.Payload)
	if err != nil {
		return models.LedgerEvent{}, fmt.Errorf("encode %s payload: %w", d.Type, err)
	}
	return models.LedgerEvent{
		Sequence:  d.Sequence,
		EventID:   d.EventID,
		EventType: string(d.Type),
		ProjectID: d.ProjectID,
		Caller:    d.Caller.String(),
		Payload:   payload,
		EmittedAt: d.EmittedAt,
	}, nil
}

// ToDomainLedgerEvent restores the typed payload from its stored JSON.
func ToDomainLedgerEvent(m models.LedgerEvent) (domain.LedgerEvent, error) {
	eventType := domain.EventType(m.EventType)
	payload, err := domain.DecodeEventPayload(eventType, m.Payload)
	if err != nil {
		return domain.LedgerEvent{}, err
	}
	return domain.LedgerEvent{
		Sequence:  m.Sequence,
		EventID:   m.EventID,
		Type:      eventType,
		ProjectID: m.ProjectID,
		Caller:    domain.Address(m.Caller),
		Payload:   payload,
		EmittedAt: m.EmittedAt.UTC(),
	}, nil
}
