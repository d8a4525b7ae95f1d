package services

import (
	"context"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
)

// TokenSvcFacade defines the interface for token management services.
type TokenSvcFacade interface {
	// GenerateAccessToken signs a bearer token whose subject is the account address.
	GenerateAccessToken(ctx context.Context, account domain.Address) (string, time.Time, error)

	// ParseAccessToken validates a bearer token and returns the account it was issued to.
	ParseAccessToken(ctx context.Context, token string) (domain.Address, error)
}
