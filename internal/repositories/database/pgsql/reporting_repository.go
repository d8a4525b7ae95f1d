package pgsql

import (
	"context"
	"fmt"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
	ledger ledgerQueries
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
		ledger:         ledgerQueries{db: db},
	}
}

// AggregateDonors groups donations across every project by donor
func (r *reportingRepository) AggregateDonors(ctx context.Context) ([]domain.DonorSummary, error) {
	query := `
		SELECT donor, SUM(amount) AS total_amount, COUNT(*) AS donation_count, MAX(donated_at) AS last_donation_at
		FROM donations
		GROUP BY donor
	`
	rows, err := r.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error querying donor aggregates: %w", err)
	}
	defer rows.Close()

	var result []domain.DonorSummary
	for rows.Next() {
		var row domain.DonorSummary
		var donor string
		if err := rows.Scan(&donor, &row.TotalAmount, &row.DonationCount, &row.LastDonationAt); err != nil {
			return nil, fmt.Errorf("error scanning donor aggregate row: %w", err)
		}
		row.Donor = domain.Address(donor)
		row.LastDonationAt = row.LastDonationAt.UTC()
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating donor aggregate rows: %w", err)
	}
	return result, nil
}

// GetProjectActivity returns donation and expense aggregates for one project
func (r *reportingRepository) GetProjectActivity(ctx context.Context, projectID int64) (*domain.ProjectActivity, error) {
	if _, err := r.ledger.FindProjectByID(ctx, projectID); err != nil {
		return nil, err
	}

	query := `
		SELECT
			(SELECT COUNT(*) FROM donations WHERE project_id = $1),
			(SELECT COUNT(DISTINCT donor) FROM donations WHERE project_id = $1),
			(SELECT COUNT(*) FROM expenses WHERE project_id = $1),
			(SELECT COALESCE(SUM(amount), 0) FROM expenses WHERE project_id = $1)
	`
	act := &domain.ProjectActivity{TotalExpenses: decimal.Zero}
	err := r.Pool.QueryRow(ctx, query, projectID).Scan(
		&act.DonationCount,
		&act.UniqueDonors,
		&act.ExpenseCount,
		&act.TotalExpenses,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying activity of project %d: %w", projectID, err)
	}
	return act, nil
}

// GetLedgerTotals sums balances over all projects
func (r *reportingRepository) GetLedgerTotals(ctx context.Context) (*domain.LedgerSummary, error) {
	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE is_active),
			COALESCE(SUM(total_donated), 0),
			COALESCE(SUM(withdrawn_amount), 0),
			COALESCE(SUM(total_donated - withdrawn_amount), 0)
		FROM projects
	`
	sum := &domain.LedgerSummary{}
	err := r.Pool.QueryRow(ctx, query).Scan(
		&sum.ProjectCount,
		&sum.ActiveProjects,
		&sum.TotalDonated,
		&sum.TotalWithdrawn,
		&sum.ContractBalance,
	)
	if err != nil {
		return nil, fmt.Errorf("error querying ledger totals: %w", err)
	}
	return sum, nil
}
