package services

import (
	"context"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/dto"
	"github.com/shopspring/decimal"
)

// LedgerReaderSvc defines read operations over committed ledger state.
type LedgerReaderSvc interface {
	// GetOwner returns the account allowed to create and toggle projects.
	GetOwner(ctx context.Context) (domain.Address, error)

	// GetProjectCount returns the number of projects ever created.
	GetProjectCount(ctx context.Context) (int64, error)

	// GetProject retrieves a project by id.
	GetProject(ctx context.Context, projectID int64) (*domain.Project, error)

	// ListProjects retrieves projects in id order.
	ListProjects(ctx context.Context, limit int, offset int) ([]domain.Project, error)

	GetAvailableBalance(ctx context.Context, projectID int64) (decimal.Decimal, error)
	GetWithdrawnAmount(ctx context.Context, projectID int64) (decimal.Decimal, error)

	// GetContractBalance returns the funds held across all projects.
	GetContractBalance(ctx context.Context) (decimal.Decimal, error)

	GetDonationCount(ctx context.Context, projectID int64) (int64, error)
	GetDonation(ctx context.Context, projectID int64, index int64) (*domain.Donation, error)
	ListDonations(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Donation, error)

	GetExpenseCount(ctx context.Context, projectID int64) (int64, error)
	GetExpense(ctx context.Context, projectID int64, index int64) (*domain.Expense, error)
	ListExpenses(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Expense, error)

	ListWithdrawals(ctx context.Context, projectID int64) ([]domain.Withdrawal, error)

	// ListEvents returns events with a sequence greater than afterSequence, oldest first.
	ListEvents(ctx context.Context, afterSequence int64, limit int) ([]domain.LedgerEvent, error)
}

// LedgerWriterSvc defines the state transitions of the ledger.
// Each call is atomic and returns the single event it emitted.
type LedgerWriterSvc interface {
	CreateProject(ctx context.Context, req dto.CreateProjectRequest, caller domain.Address) (*domain.LedgerEvent, error)
	Donate(ctx context.Context, projectID int64, req dto.DonateRequest, caller domain.Address) (*domain.LedgerEvent, error)
	WithdrawFunds(ctx context.Context, projectID int64, req dto.WithdrawFundsRequest, caller domain.Address) (*domain.LedgerEvent, error)
	RecordExpense(ctx context.Context, projectID int64, req dto.RecordExpenseRequest, caller domain.Address) (*domain.LedgerEvent, error)
	ToggleProjectStatus(ctx context.Context, projectID int64, caller domain.Address) (*domain.LedgerEvent, error)
}

// LedgerBootstrapSvc fixes the ledger owner on first start.
type LedgerBootstrapSvc interface {
	// Initialize stores owner if none is set and returns the effective owner.
	Initialize(ctx context.Context, owner domain.Address) (domain.Address, error)
}

// LedgerSvcFacade combines all ledger-related service interfaces
type LedgerSvcFacade interface {
	LedgerReaderSvc
	LedgerWriterSvc
	LedgerBootstrapSvc
}
