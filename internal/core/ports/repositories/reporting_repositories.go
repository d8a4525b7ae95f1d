package repositories

import (
	"context"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
)

// ReportingRepository defines aggregate queries used for statistics and rankings.
type ReportingRepository interface {
	// AggregateDonors groups all donations by donor. Order is unspecified.
	AggregateDonors(ctx context.Context) ([]domain.DonorSummary, error)

	// GetProjectActivity returns donation and expense aggregates for one project.
	GetProjectActivity(ctx context.Context, projectID int64) (*domain.ProjectActivity, error)

	// GetLedgerTotals sums balances over all projects. Owner is left empty.
	GetLedgerTotals(ctx context.Context) (*domain.LedgerSummary, error)
}
