package memory

import portsrepo "github.com/SscSPs/charity_donation_ledger/internal/core/ports/repositories"

// NewRepositoryProvider backs every repository with one shared in-memory store.
func NewRepositoryProvider() portsrepo.RepositoryProvider {
	store := NewLedgerRepository()
	return portsrepo.RepositoryProvider{
		LedgerRepo:    store,
		ReportingRepo: store,
	}
}
