package services

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/shopspring/decimal"
)

// reportingService implements the ReportingService interface
type reportingService struct {
	BaseService
	reportingRepo portsrepo.ReportingRepository
	ledgerRepo    portsrepo.LedgerReader
}

// NewReportingService creates a new reporting service
func NewReportingService(reportingRepo portsrepo.ReportingRepository, ledgerRepo portsrepo.LedgerReader) portssvc.ReportingService {
	return &reportingService{
		reportingRepo: reportingRepo,
		ledgerRepo:    ledgerRepo,
	}
}

// Ensure reportingService implements the ReportingService interface
var _ portssvc.ReportingService = (*reportingService)(nil)

// DonorRanking orders donors highest first. Ties are broken by the other metric, then by address.
func (s *reportingService) DonorRanking(ctx context.Context, rankBy domain.RankBy, limit int) ([]domain.DonorSummary, error) {
	if rankBy != domain.RankByAmount && rankBy != domain.RankByCount {
		return nil, fmt.Errorf("%w: rankBy must be %q or %q", apperrors.ErrValidation, domain.RankByAmount, domain.RankByCount)
	}

	donors, err := s.reportingRepo.AggregateDonors(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to aggregate donors")
		return nil, fmt.Errorf("failed to aggregate donors: %w", err)
	}

	byAmount := func(a, b domain.DonorSummary) int { return b.TotalAmount.Cmp(a.TotalAmount) }
	byCount := func(a, b domain.DonorSummary) int { return cmp.Compare(b.DonationCount, a.DonationCount) }
	primary, secondary := byAmount, byCount
	if rankBy == domain.RankByCount {
		primary, secondary = byCount, byAmount
	}
	slices.SortStableFunc(donors, func(a, b domain.DonorSummary) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		if c := secondary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.Donor, b.Donor)
	})

	if limit > 0 && len(donors) > limit {
		donors = donors[:limit]
	}

	s.LogInfo(ctx, "Donor ranking generated",
		slog.String("rank_by", string(rankBy)),
		slog.Int("donor_count", len(donors)))
	return donors, nil
}

// ProjectStats summarises donations, withdrawals and expenses of one project
func (s *reportingService) ProjectStats(ctx context.Context, projectID int64) (*domain.ProjectStats, error) {
	project, err := s.ledgerRepo.FindProjectByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	activity, err := s.reportingRepo.GetProjectActivity(ctx, projectID)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve project activity", slog.Int64("project_id", projectID))
		return nil, fmt.Errorf("failed to retrieve project activity: %w", err)
	}

	stats := &domain.ProjectStats{
		ProjectID:        project.ProjectID,
		DonationCount:    activity.DonationCount,
		UniqueDonors:     activity.UniqueDonors,
		TotalDonated:     project.TotalDonated,
		AverageDonation:  decimal.Zero,
		FundraisingGoal:  project.FundraisingGoal,
		ProgressPercent:  decimal.Zero,
		WithdrawnAmount:  project.WithdrawnAmount,
		AvailableBalance: project.AvailableBalance(),
		ExpenseCount:     activity.ExpenseCount,
		TotalExpenses:    activity.TotalExpenses,
	}
	if activity.DonationCount > 0 {
		// whole wei, rounded down
		stats.AverageDonation = project.TotalDonated.Div(decimal.NewFromInt(activity.DonationCount)).Floor()
	}
	if project.FundraisingGoal.IsPositive() {
		stats.ProgressPercent = project.TotalDonated.Mul(decimal.NewFromInt(100)).DivRound(project.FundraisingGoal, 2)
	}
	return stats, nil
}

// LedgerSummary returns ledger-wide totals
func (s *reportingService) LedgerSummary(ctx context.Context) (*domain.LedgerSummary, error) {
	summary, err := s.reportingRepo.GetLedgerTotals(ctx)
	if err != nil {
		s.LogError(ctx, err, "Failed to retrieve ledger totals")
		return nil, fmt.Errorf("failed to retrieve ledger totals: %w", err)
	}
	owner, err := s.ledgerRepo.GetOwner(ctx)
	if err != nil {
		return nil, err
	}
	summary.Owner = owner
	return summary, nil
}
