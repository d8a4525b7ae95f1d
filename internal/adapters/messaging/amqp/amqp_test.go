package amqp

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/SscSPs/charity_donation_ledger/internal/core/domain"
	"github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, routingKey string, msg amqp091.Publishing) error {
	args := m.Called(ctx, routingKey, msg)
	return args.Error(0)
}

var beneficiary = domain.MustParseAddress("0xfB6916095ca1df60bB79Ce92cE3Ea74c37c5d359")

func TestEventPublisher_Publish(t *testing.T) {
	pub := new(MockMessagePublisher)
	p := &EventPublisher{pub: pub}

	event := domain.LedgerEvent{
		Sequence:  7,
		EventID:   "0b6f0c5e-5d55-4bb6-9a0e-2a3f6a1f9d11",
		Type:      domain.EventFundsWithdrawn,
		ProjectID: 1,
		Caller:    beneficiary,
		Payload:   domain.FundsWithdrawn{ProjectID: 1, Beneficiary: beneficiary, Amount: decimal.NewFromInt(5)},
		EmittedAt: time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC),
	}

	pub.On("Publish", mock.Anything, "ledger.FundsWithdrawn", mock.MatchedBy(func(msg amqp091.Publishing) bool {
		var body map[string]any
		if err := json.Unmarshal(msg.Body, &body); err != nil {
			return false
		}
		return msg.MessageId == event.EventID &&
			msg.DeliveryMode == amqp091.Persistent &&
			body["sequence"] == float64(7)
	})).Return(nil).Once()

	require.NoError(t, p.Publish(context.Background(), event))
	pub.AssertExpectations(t)
}

func TestEventPublisher_PublishError(t *testing.T) {
	pub := new(MockMessagePublisher)
	pub.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("channel closed")).Once()
	p := &EventPublisher{pub: pub}

	err := p.Publish(context.Background(), domain.LedgerEvent{Type: domain.EventProjectCreated, Payload: domain.ProjectCreated{}})
	assert.ErrorContains(t, err, "channel closed")
}

func TestPayoutTransferer_Transfer(t *testing.T) {
	pub := new(MockMessagePublisher)
	tr := &PayoutTransferer{pub: pub}
	w := domain.Withdrawal{ProjectID: 3, Index: 2, Beneficiary: beneficiary, Amount: decimal.RequireFromString("2000000000000000000"), Timestamp: time.Now().UTC()}

	var sent amqp091.Publishing
	pub.On("Publish", mock.Anything, PayoutRoutingKey, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(2).(amqp091.Publishing) }).
		Return(nil).Once()

	require.NoError(t, tr.Transfer(context.Background(), w))
	assert.Equal(t, "payout-3-2", sent.MessageId)

	var instr PayoutInstruction
	require.NoError(t, json.Unmarshal(sent.Body, &instr))
	assert.Equal(t, beneficiary, instr.Beneficiary)
	assert.True(t, instr.Amount.Equal(w.Amount))
	assert.Equal(t, int64(2), instr.WithdrawalIndex)
}

func TestPayoutTransferer_BrokerFailure(t *testing.T) {
	pub := new(MockMessagePublisher)
	pub.On("Publish", mock.Anything, PayoutRoutingKey, mock.Anything).Return(errors.New("broker nacked message")).Once()
	tr := &PayoutTransferer{pub: pub}

	err := tr.Transfer(context.Background(), domain.Withdrawal{ProjectID: 1, Index: 0, Beneficiary: beneficiary, Amount: decimal.NewFromInt(1)})
	assert.ErrorContains(t, err, "request payout payout-1-0")
}
