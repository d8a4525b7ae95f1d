package services

import (
	"context"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
)

// ReportingService defines read-only aggregate reports over the ledger
type ReportingService interface {
	// DonorRanking orders donors by total amount or donation count, highest first.
	DonorRanking(ctx context.Context, rankBy domain.RankBy, limit int) ([]domain.DonorSummary, error)

	// ProjectStats summarises donations, withdrawals and expenses of one project
	ProjectStats(ctx context.Context, projectID int64) (*domain.ProjectStats, error)

	// LedgerSummary returns ledger-wide totals
	LedgerSummary(ctx context.Context) (*domain.LedgerSummary, error)
}
