package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/apperrors"
	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/platform/config"
	"github.com/SscSPs/charity_donation_ledger/internal/utils"
)

// tokenService issues and checks the bearer tokens that identify callers.
// The token subject is the caller's checksummed account address.
type tokenService struct {
	cfg *config.Config
}

// NewTokenService creates a new instance of tokenService.
func NewTokenService(cfg *config.Config) portssvc.TokenSvcFacade {
	return &tokenService{cfg: cfg}
}

// GenerateAccessToken creates a new JWT access token for account.
func (s *tokenService) GenerateAccessToken(ctx context.Context, account domain.Address) (string, time.Time, error) {
	if account.IsZero() {
		return "", time.Time{}, fmt.Errorf("%w: account address is required", apperrors.ErrValidation)
	}
	expiryTime := time.Now().Add(s.cfg.JWTExpiryDuration)
	token, err := utils.GenerateJWT(account.String(), s.cfg.JWTSecret, s.cfg.JWTExpiryDuration, s.cfg.JWTIssuer)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, expiryTime, nil
}

// ParseAccessToken validates token and returns the account it names.
// jwt errors are wrapped so callers can tell expiry from other failures.
func (s *tokenService) ParseAccessToken(ctx context.Context, token string) (domain.Address, error) {
	claims, err := utils.ParseAndValidateJWT(token, s.cfg.JWTSecret, s.cfg.JWTIssuer)
	if err != nil {
		return "", fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}
	account, err := domain.ParseAddress(claims.Subject)
	if err != nil {
		return "", fmt.Errorf("%w: token subject is not an account address", apperrors.ErrUnauthorized)
	}
	return account, nil
}
