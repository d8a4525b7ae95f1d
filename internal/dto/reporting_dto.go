package dto

import (
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
)

// DonorRankingParams defines query parameters for the donor ranking report.
type DonorRankingParams struct {
	RankBy domain.RankBy `form:"rankBy,default=amount" binding:"oneof=amount count"`
	Limit  int           `form:"limit,default=10" binding:"min=1,max=100"`
}

// DonorRankingEntry is one row of the donor ranking.
type DonorRankingEntry struct {
	Rank int `json:"rank"`
	domain.DonorSummary
}

// DonorRankingResponse represents the donor ranking report response
type DonorRankingResponse struct {
	RankBy domain.RankBy       `json:"rankBy"`
	Donors []DonorRankingEntry `json:"donors"`
}

// ToDonorRankingResponse numbers the already-sorted donors starting at 1.
func ToDonorRankingResponse(rankBy domain.RankBy, donors []domain.DonorSummary) DonorRankingResponse {
	entries := make([]DonorRankingEntry, len(donors))
	for i, d := range donors {
		entries[i] = DonorRankingEntry{Rank: i + 1, DonorSummary: d}
	}
	return DonorRankingResponse{RankBy: rankBy, Donors: entries}
}
