package dto

import (
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/utils"
	"github.com/shopspring/decimal"
)

// CreateProjectRequest defines the data needed to create a new fundraising project.
// Amounts are whole numbers of the smallest currency unit (wei), sent as strings.
type CreateProjectRequest struct {
	Name            string          `json:"name" binding:"required"`
	Description     string          `json:"description"`
	Beneficiary     string          `json:"beneficiary" binding:"required,eth_addr"`
	FundraisingGoal decimal.Decimal `json:"fundraisingGoal" binding:"wei"`
}

// ProjectResponse mirrors domain.Project plus derived balances.
type ProjectResponse struct {
	ProjectID        int64           `json:"projectID"`
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Beneficiary      string          `json:"beneficiary"`
	FundraisingGoal  decimal.Decimal `json:"fundraisingGoal"`
	TotalDonated     decimal.Decimal `json:"totalDonated"`
	WithdrawnAmount  decimal.Decimal `json:"withdrawnAmount"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	TotalDonatedEth  string          `json:"totalDonatedEth"`
	IsActive         bool            `json:"isActive"`
	CreatedAt        time.Time       `json:"createdAt"`
}

// BalanceResponse defines the data returned for a project balance query.
type BalanceResponse struct {
	ProjectID        int64           `json:"projectID"`
	AvailableBalance decimal.Decimal `json:"availableBalance"`
	WithdrawnAmount  decimal.Decimal `json:"withdrawnAmount"`
}

// LedgerInfoResponse describes the ledger as a whole.
type LedgerInfoResponse struct {
	Owner           string          `json:"owner"`
	ProjectCount    int64           `json:"projectCount"`
	ContractBalance decimal.Decimal `json:"contractBalance"`
}

// ListProjectsParams defines query parameters for listing projects.
type ListProjectsParams struct {
	Limit  int `form:"limit,default=20" binding:"min=1,max=100"`
	Offset int `form:"offset,default=0" binding:"min=0"`
}

// ToProjectResponse converts a domain.Project to ProjectResponse DTO
func ToProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ProjectID:        p.ProjectID,
		Name:             p.Name,
		Description:      p.Description,
		Beneficiary:      p.Beneficiary.String(),
		FundraisingGoal:  p.FundraisingGoal,
		TotalDonated:     p.TotalDonated,
		WithdrawnAmount:  p.WithdrawnAmount,
		AvailableBalance: p.AvailableBalance(),
		TotalDonatedEth:  utils.FormatWeiAsEther(p.TotalDonated),
		IsActive:         p.IsActive,
		CreatedAt:        p.CreatedAt,
	}
}

// ListProjectsResponse is one page of projects and the total project count.
type ListProjectsResponse struct {
	Total    int64             `json:"total"`
	Projects []ProjectResponse `json:"projects"`
}

// ToListProjectResponse converts a page of domain.Project to ListProjectsResponse
func ToListProjectResponse(projects []domain.Project, total int64) ListProjectsResponse {
	res := make([]ProjectResponse, len(projects))
	for i := range projects {
		res[i] = ToProjectResponse(&projects[i])
	}
	return ListProjectsResponse{Total: total, Projects: res}
}
