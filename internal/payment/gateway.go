package payment

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"carmine/internal/config"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var ErrDeclined = errors.New("payment declined")

// ChargeRequest is a single charge attempt.
type ChargeRequest struct {
	Card          Card
	Amount        decimal.Decimal
	TransactionID string
}

// Gateway charges a card. Implementations must honour ctx cancellation and
// return ErrDeclined when the charge is refused.
type Gateway interface {
	Charge(ctx context.Context, req ChargeRequest) error
}

// SimulatedGateway stands in for a payment processor: it waits a fixed
// latency and approves a configurable fraction of charges.
type SimulatedGateway struct {
	successRate float64
	latency     time.Duration
	logger      *zap.Logger

	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSimulatedGateway creates a gateway approving successRate of charges.
func NewSimulatedGateway(successRate float64, latency time.Duration, logger *zap.Logger) *SimulatedGateway {
	return newSimulatedGateway(successRate, latency, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x9e3779b97f4a7c15)), logger)
}

func newSimulatedGateway(successRate float64, latency time.Duration, rnd *rand.Rand, logger *zap.Logger) *SimulatedGateway {
	if successRate < 0 {
		successRate = 0
	}
	if successRate > 1 {
		successRate = 1
	}
	return &SimulatedGateway{
		successRate: successRate,
		latency:     latency,
		logger:      logger,
		rnd:         rnd,
	}
}

func (g *SimulatedGateway) Charge(ctx context.Context, req ChargeRequest) error {
	if g.latency > 0 {
		timer := time.NewTimer(g.latency)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("payment interrupted: %w", ctx.Err())
		case <-timer.C:
		}
	}

	g.mu.Lock()
	roll := g.rnd.Float64()
	g.mu.Unlock()

	approved := roll < g.successRate
	g.logger.Info("Simulated charge processed",
		zap.String("transaction_id", req.TransactionID),
		zap.String("card_last4", req.Card.LastFour()),
		zap.String("amount", req.Amount.StringFixed(2)),
		zap.Bool("approved", approved),
	)

	if !approved {
		return ErrDeclined
	}
	return nil
}

// StaticGateway always approves or always declines, without delay.
type StaticGateway struct {
	Approve bool
}

func (g StaticGateway) Charge(ctx context.Context, req ChargeRequest) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("payment interrupted: %w", err)
	}
	if !g.Approve {
		return ErrDeclined
	}
	return nil
}

// NewGateway builds the gateway selected by configuration.
func NewGateway(cfg config.PaymentConfig, logger *zap.Logger) Gateway {
	switch cfg.Mode {
	case "approve":
		return StaticGateway{Approve: true}
	case "decline":
		return StaticGateway{Approve: false}
	default:
		return NewSimulatedGateway(cfg.SuccessRate, cfg.Latency, logger)
	}
}

// NewTransactionID returns "TRX-<unix millis>-<9 alphanumerics>". It is unique
// enough for display and audit but carries no collision guarantee.
func NewTransactionID(now time.Time) string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", ""))[:9]
	return fmt.Sprintf("TRX-%d-%s", now.UnixMilli(), suffix)
}
