package memory

import (
	"context"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

func (r *LedgerRepository) AggregateDonors(ctx context.Context) ([]domain.DonorSummary, error) {
	st := r.committed()
	byDonor := map[domain.Address]*domain.DonorSummary{}
	var order []domain.Address
	for pid := range st.projects {
		for _, d := range st.donations[int64(pid)] {
			sum, ok := byDonor[d.Donor]
			if !ok {
				sum = &domain.DonorSummary{Donor: d.Donor, TotalAmount: decimal.Zero}
				byDonor[d.Donor] = sum
				order = append(order, d.Donor)
			}
			sum.TotalAmount = sum.TotalAmount.Add(d.Amount)
			sum.DonationCount++
			if d.Timestamp.After(sum.LastDonationAt) {
				sum.LastDonationAt = d.Timestamp
			}
		}
	}
	res := make([]domain.DonorSummary, 0, len(order))
	for _, donor := range order {
		res = append(res, *byDonor[donor])
	}
	return res, nil
}

func (r *LedgerRepository) GetProjectActivity(ctx context.Context, projectID int64) (*domain.ProjectActivity, error) {
	st := r.committed()
	if _, err := st.findProject(projectID); err != nil {
		return nil, err
	}
	act := &domain.ProjectActivity{TotalExpenses: decimal.Zero}
	donors := map[domain.Address]struct{}{}
	for _, d := range st.donations[projectID] {
		act.DonationCount++
		donors[d.Donor] = struct{}{}
	}
	act.UniqueDonors = int64(len(donors))
	for _, e := range st.expenses[projectID] {
		act.ExpenseCount++
		act.TotalExpenses = act.TotalExpenses.Add(e.Amount)
	}
	return act, nil
}

func (r *LedgerRepository) GetLedgerTotals(ctx context.Context) (*domain.LedgerSummary, error) {
	st := r.committed()
	sum := &domain.LedgerSummary{
		ProjectCount:    int64(len(st.projects)),
		TotalDonated:    decimal.Zero,
		TotalWithdrawn:  decimal.Zero,
		ContractBalance: decimal.Zero,
	}
	for i := range st.projects {
		p := &st.projects[i]
		if p.IsActive {
			sum.ActiveProjects++
		}
		sum.TotalDonated = sum.TotalDonated.Add(p.TotalDonated)
		sum.TotalWithdrawn = sum.TotalWithdrawn.Add(p.WithdrawnAmount)
		sum.ContractBalance = sum.ContractBalance.Add(p.AvailableBalance())
	}
	return sum, nil
}
