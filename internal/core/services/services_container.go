package services

import (
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/charity_donation_ledger/internal/core/ports/services"
	"github.com/SscSPs/charity_donation_ledger/internal/platform/config"
)

// Adapters groups the outbound ports the services talk to.
// Nil Transferer or Publisher disable payouts or event fan-out.
type Adapters struct {
	Transferer   ports.FundsTransferer
	Publisher    ports.EventPublisher
	QuoteCache   ports.QuoteCache
	PriceSources []ports.PriceSource
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, adapters Adapters) *portssvc.ServiceContainer {
	container := &portssvc.ServiceContainer{}

	ledgerOpts := []LedgerServiceOption{}
	if adapters.Transferer != nil {
		ledgerOpts = append(ledgerOpts, WithFundsTransferer(adapters.Transferer))
	}
	if adapters.Publisher != nil {
		ledgerOpts = append(ledgerOpts, WithEventPublisher(adapters.Publisher))
	}
	container.Ledger = NewLedgerService(repos.LedgerRepo, ledgerOpts...)

	container.Reporting = NewReportingService(repos.ReportingRepo, repos.LedgerRepo)

	container.ExchangeRate = NewExchangeRateService(adapters.QuoteCache,
		WithPriceSources(adapters.PriceSources...),
		WithFallbackRate(cfg.PriceFallbackUSD),
	)

	container.TokenService = NewTokenService(cfg)

	return container
}

// Helper to check interface implementations at compile time
var (
	_ portssvc.LedgerSvcFacade  = (*ledgerService)(nil)
	_ portssvc.ReportingService = (*reportingService)(nil)
	_ portssvc.ExchangeRateSvc  = (*exchangeRateService)(nil)
	_ portssvc.TokenSvcFacade   = (*tokenService)(nil)
)
