package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Project is a row of the projects table.
type Project struct {
	ProjectID       int64           `db:"project_id"`
	Name            string          `db:"name"`
	Description     string          `db:"description"`
	Beneficiary     string          `db:"beneficiary"`
	FundraisingGoal decimal.Decimal `db:"fundraising_goal"`
	TotalDonated    decimal.Decimal `db:"total_donated"`
	WithdrawnAmount decimal.Decimal `db:"withdrawn_amount"`
	IsActive        bool            `db:"is_active"`
	CreatedAt       time.Time       `db:"created_at"`
	LastUpdatedAt   time.Time       `db:"last_updated_at"`
}
