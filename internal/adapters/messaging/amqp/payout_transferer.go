package amqp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/SscSPs/charity_donation_ledger/internal/core/ports"
	"github.com/SscSPs/charity_donation_ledger/internal/middleware"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
)

// PayoutInstruction asks the payout worker to send Amount to Beneficiary.
type PayoutInstruction struct {
	ProjectID       int64           `json:"projectId"`
	WithdrawalIndex int64           `json:"withdrawalIndex"`
	Beneficiary     domain.Address  `json:"beneficiary"`
	Amount          decimal.Decimal `json:"amount"`
	RequestedAt     time.Time       `json:"requestedAt"`
}

// PayoutTransferer hands withdrawals to the payout queue. A withdrawal only
// succeeds once the broker has confirmed the instruction.
type PayoutTransferer struct {
	pub messagePublisher
}

var _ ports.FundsTransferer = (*PayoutTransferer)(nil)

func NewPayoutTransferer(client *Client) *PayoutTransferer {
	return &PayoutTransferer{pub: client}
}

// PayoutMessageID is stable per withdrawal so the worker can drop redeliveries.
func PayoutMessageID(w domain.Withdrawal) string {
	return fmt.Sprintf("payout-%d-%d", w.ProjectID, w.Index)
}

func (t *PayoutTransferer) Transfer(ctx context.Context, withdrawal domain.Withdrawal) error {
	body, err := json.Marshal(PayoutInstruction{
		ProjectID:       withdrawal.ProjectID,
		WithdrawalIndex: withdrawal.Index,
		Beneficiary:     withdrawal.Beneficiary,
		Amount:          withdrawal.Amount,
		RequestedAt:     withdrawal.Timestamp,
	})
	if err != nil {
		return fmt.Errorf("marshal payout instruction: %w", err)
	}

	msgID := PayoutMessageID(withdrawal)
	err = t.pub.Publish(ctx, PayoutRoutingKey, amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    msgID,
		Timestamp:    withdrawal.Timestamp,
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("request payout %s: %w", msgID, err)
	}

	middleware.GetLoggerFromCtx(ctx).Info("Payout requested",
		slog.String("message_id", msgID),
		slog.String("beneficiary", withdrawal.Beneficiary.String()),
		slog.String("amount", withdrawal.Amount.String()))
	return nil
}
