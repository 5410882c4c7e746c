package payment

import (
	"context"
	"errors"
	"math/rand/v2"
	"regexp"
	"testing"
	"time"

	"carmine/internal/config"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testCharge() ChargeRequest {
	return ChargeRequest{
		Card:          Card{Number: "1234 5678 9012 3456", ExpirationDate: "08/27", CVV: "123"},
		Amount:        decimal.NewFromInt(24500),
		TransactionID: "TRX-1-ABC",
	}
}

func TestSimulatedGateway_ApprovalRateFollowsConfig(t *testing.T) {
	g := newSimulatedGateway(0.7, 0, rand.New(rand.NewPCG(1, 2)), zap.NewNop())

	approved := 0
	const attempts = 2000
	for i := 0; i < attempts; i++ {
		if err := g.Charge(context.Background(), testCharge()); err == nil {
			approved++
		} else {
			require.ErrorIs(t, err, ErrDeclined)
		}
	}

	rate := float64(approved) / attempts
	assert.InDelta(t, 0.7, rate, 0.05)
}

func TestSimulatedGateway_ExtremeRates(t *testing.T) {
	always := newSimulatedGateway(1, 0, rand.New(rand.NewPCG(3, 4)), zap.NewNop())
	never := newSimulatedGateway(0, 0, rand.New(rand.NewPCG(5, 6)), zap.NewNop())

	for i := 0; i < 50; i++ {
		assert.NoError(t, always.Charge(context.Background(), testCharge()))
		assert.ErrorIs(t, never.Charge(context.Background(), testCharge()), ErrDeclined)
	}
}

func TestSimulatedGateway_CancelledDuringLatency(t *testing.T) {
	g := newSimulatedGateway(1, time.Hour, rand.New(rand.NewPCG(7, 8)), zap.NewNop())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := g.Charge(ctx, testCharge())
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.False(t, errors.Is(err, ErrDeclined))
}

func TestNewGateway_SelectsMode(t *testing.T) {
	assert.Equal(t, StaticGateway{Approve: true}, NewGateway(config.PaymentConfig{Mode: "approve"}, zap.NewNop()))
	assert.Equal(t, StaticGateway{Approve: false}, NewGateway(config.PaymentConfig{Mode: "decline"}, zap.NewNop()))
	assert.IsType(t, &SimulatedGateway{}, NewGateway(config.PaymentConfig{Mode: "simulated", SuccessRate: 0.7}, zap.NewNop()))
}

func TestNewTransactionID_Format(t *testing.T) {
	pattern := regexp.MustCompile(`^TRX-\d+-[A-Z0-9]{9}$`)
	now := time.UnixMilli(1700000000000)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		id := NewTransactionID(now)
		assert.Regexp(t, pattern, id)
		assert.Contains(t, id, "TRX-1700000000000-")
		assert.False(t, seen[id], "duplicate transaction id %s", id)
		seen[id] = true
	}
}
