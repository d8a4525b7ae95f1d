package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// LedgerReader defines read operations over committed ledger state.
// Missing projects and out-of-range indexes are reported as apperrors.ErrNotFound.
type LedgerReader interface {
	// GetOwner returns the account that initialized the ledger.
	GetOwner(ctx context.Context) (domain.Address, error)

	CountProjects(ctx context.Context) (int64, error)
	FindProjectByID(ctx context.Context, projectID int64) (*domain.Project, error)
	ListProjects(ctx context.Context, limit int, offset int) ([]domain.Project, error)

	CountDonations(ctx context.Context, projectID int64) (int64, error)
	FindDonation(ctx context.Context, projectID int64, index int64) (*domain.Donation, error)
	// ListDonations returns up to limit donations starting at fromIndex, in index order.
	ListDonations(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Donation, error)

	CountExpenses(ctx context.Context, projectID int64) (int64, error)
	FindExpense(ctx context.Context, projectID int64, index int64) (*domain.Expense, error)
	ListExpenses(ctx context.Context, projectID int64, fromIndex int64, limit int) ([]domain.Expense, error)

	ListWithdrawals(ctx context.Context, projectID int64) ([]domain.Withdrawal, error)

	// SumAvailableBalances returns the funds held across all projects.
	SumAvailableBalances(ctx context.Context) (decimal.Decimal, error)

	// ListEvents returns up to limit events with a sequence greater than afterSequence.
	ListEvents(ctx context.Context, afterSequence int64, limit int) ([]domain.LedgerEvent, error)
}

// LedgerWriter defines the mutations available inside RunInTx.
type LedgerWriter interface {
	// EnsureOwner stores owner if the ledger has none yet and returns the stored owner.
	EnsureOwner(ctx context.Context, owner domain.Address, now time.Time) (domain.Address, error)

	// LockProject loads a project and holds it against concurrent writers until the unit commits.
	LockProject(ctx context.Context, projectID int64) (*domain.Project, error)

	// InsertProject assigns the next sequential id, stores the project and returns the id.
	InsertProject(ctx context.Context, project *domain.Project) (int64, error)

	// UpdateProjectState persists the mutable project fields (totals and status).
	UpdateProjectState(ctx context.Context, project domain.Project) error

	// InsertDonation, InsertExpense and InsertWithdrawal assign the next per-project index.
	InsertDonation(ctx context.Context, donation *domain.Donation) error
	InsertExpense(ctx context.Context, expense *domain.Expense) error
	InsertWithdrawal(ctx context.Context, withdrawal *domain.Withdrawal) error

	// AppendEvent assigns the next global sequence number and stores the event.
	AppendEvent(ctx context.Context, event *domain.LedgerEvent) error
}

// LedgerTx is the view of the store handed to a unit of work.
type LedgerTx interface {
	LedgerReader
	LedgerWriter
}

// LedgerRepositoryFacade combines read access with atomic units of work.
type LedgerRepositoryFacade interface {
	LedgerReader

	// RunInTx runs fn as one atomic unit. If fn returns an error nothing it wrote is kept.
	RunInTx(ctx context.Context, fn func(ctx context.Context, tx LedgerTx) error) error
}
