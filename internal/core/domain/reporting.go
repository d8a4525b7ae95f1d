package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RankBy selects the ordering of the donor ranking.
type RankBy string

const (
	RankByAmount RankBy = "amount"
	RankByCount  RankBy = "count"
)

// DonorSummary aggregates every donation made by one account across all projects.
type DonorSummary struct {
	Donor          Address         `json:"donor"`
	TotalAmount    decimal.Decimal `json:"totalAmount"`
	DonationCount  int64           `json:"donationCount"`
	LastDonationAt time.Time       `json:"lastDonationAt"`
}

// ProjectStats summarises a single project's activity.
type ProjectStats struct {
	ProjectID        int64           `json:"projectID"`
	DonationCount    int64           `json:"donationCount"`
	UniqueDonors     int64           `json:"uniqueDonors"`
	TotalDonated     decimal.Decimal `json:"totalDonated"`
	AverageDonation  decimal.Decimal `json:"averageDonation"`
	FundraisingGoal  decimal.Decimal `json:"fundraisingGoal"`
	ProgressPercent  decimal.Decimal `json:"progressPercent"` // may exceed 100
	WithdrawnAmount  decimal.Decimal `json:"withdrawnAmount"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	ExpenseCount     int64           `json:"expenseCount"`
	TotalExpenses    decimal.Decimal `json:"totalExpenses"`
}

// LedgerSummary holds ledger-wide totals.
type LedgerSummary struct {
	Owner           Address         `json:"owner"`
	ProjectCount    int64           `json:"projectCount"`
	ActiveProjects  int64           `json:"activeProjects"`
	TotalDonated    decimal.Decimal `json:"totalDonated"`
	TotalWithdrawn  decimal.Decimal `json:"totalWithdrawn"`
	ContractBalance decimal.Decimal `json:"contractBalance"`
}

// ProjectActivity is the per-project aggregate the stores compute for stats.
type ProjectActivity struct {
	DonationCount int64
	UniqueDonors  int64
	ExpenseCount  int64
	TotalExpenses decimal.Decimal
}
