// Package logsink provides log-only stand-ins for the payout and event adapters.
package logsink

import (
	"context"
	"log/slog"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
)

// Transferer logs payouts instead of sending them. Used when no broker is configured.
type Transferer struct{}

var _ ports.FundsTransferer = Transferer{}

func (Transferer) Transfer(ctx context.Context, w domain.Withdrawal) error {
	middleware.GetLoggerFromCtx(ctx).Info("Payout (log only)",
		slog.Int64("project_id", w.ProjectID),
		slog.Int64("withdrawal_index", w.Index),
		slog.String("beneficiary", w.Beneficiary.String()),
		slog.String("amount", w.Amount.String()))
	return nil
}

// Publisher logs events instead of publishing them.
type Publisher struct{}

var _ ports.EventPublisher = Publisher{}

func (Publisher) Publish(ctx context.Context, event domain.LedgerEvent) error {
	middleware.GetLoggerFromCtx(ctx).Debug("Ledger event",
		slog.Int64("sequence", event.Sequence),
		slog.String("type", string(event.Type)),
		slog.Int64("project_id", event.ProjectID))
	return nil
}
