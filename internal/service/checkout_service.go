package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carmine/internal/domain"
	"carmine/internal/payment"
	"carmine/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	ErrInvalidPayment  = errors.New("invalid payment details")
	ErrPaymentDeclined = errors.New("payment declined")
	ErrPaymentFailed   = errors.New("payment failed")
)

// CheckoutState is a step of a single checkout attempt.
type CheckoutState int

const (
	CheckoutIdle CheckoutState = iota
	CheckoutValidating
	CheckoutProcessing
	CheckoutCommitted
	CheckoutFailed
)

func (s CheckoutState) String() string {
	switch s {
	case CheckoutIdle:
		return "idle"
	case CheckoutValidating:
		return "validating"
	case CheckoutProcessing:
		return "processing"
	case CheckoutCommitted:
		return "committed"
	case CheckoutFailed:
		return "failed"
	default:
		return fmt.Sprintf("CheckoutState(%d)", int(s))
	}
}

// CheckoutRequest is a buyer's payment form plus the car being bought.
type CheckoutRequest struct {
	UserID uuid.UUID
	Card   payment.Card
	Car    domain.CarDetails
}

// CheckoutResult describes a committed purchase.
type CheckoutResult struct {
	PurchaseID    int64             `json:"purchaseId"`
	TransactionID string            `json:"transactionId"`
	UserID        uuid.UUID         `json:"userId"`
	Car           domain.CarDetails `json:"carDetails"`
}

// CheckoutService validates payment, charges it and records the purchase.
type CheckoutService interface {
	Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error)
}

type checkoutService struct {
	purchases repository.PurchaseRepository
	gateway   payment.Gateway
	logger    *zap.Logger
	now       func() time.Time
}

// NewCheckoutService creates a new instance of CheckoutService
func NewCheckoutService(purchases repository.PurchaseRepository, gateway payment.Gateway, logger *zap.Logger) CheckoutService {
	return &checkoutService{
		purchases: purchases,
		gateway:   gateway,
		logger:    logger,
		now:       time.Now,
	}
}

// checkoutRun tracks the state of one attempt and logs every transition.
type checkoutRun struct {
	state         CheckoutState
	transactionID string
	logger        *zap.Logger
}

func (r *checkoutRun) to(next CheckoutState, fields ...zap.Field) {
	r.logger.Info("Checkout state changed",
		append([]zap.Field{
			zap.String("transaction_id", r.transactionID),
			zap.Stringer("from", r.state),
			zap.Stringer("to", next),
		}, fields...)...,
	)
	r.state = next
}

// Checkout runs Idle → Validating → Processing → Committed. Invalid card
// details return to Idle with ErrInvalidPayment. A declined or failed charge
// ends in Failed. Only the Committed path writes a purchase record.
func (s *checkoutService) Checkout(ctx context.Context, req CheckoutRequest) (*CheckoutResult, error) {
	run := &checkoutRun{
		state:         CheckoutIdle,
		transactionID: payment.NewTransactionID(s.now()),
		logger:        s.logger,
	}

	run.to(CheckoutValidating)
	if err := req.Card.Validate(); err != nil {
		run.to(CheckoutIdle, zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrInvalidPayment, err)
	}

	run.to(CheckoutProcessing, zap.String("card_last4", req.Card.LastFour()))
	err := s.gateway.Charge(ctx, payment.ChargeRequest{
		Card:          req.Card,
		Amount:        req.Car.Price,
		TransactionID: run.transactionID,
	})
	if err != nil {
		run.to(CheckoutFailed, zap.Error(err))
		if errors.Is(err, payment.ErrDeclined) {
			return nil, ErrPaymentDeclined
		}
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	record := &domain.PurchaseRecord{
		CarID:         req.Car.CarID,
		Make:          req.Car.Make,
		Model:         req.Car.Model,
		Year:          req.Car.Year,
		Trim:          req.Car.Trim,
		Price:         req.Car.Price,
		Mileage:       req.Car.Mileage,
		ExteriorColor: req.Car.ExteriorColor,
		TransactionID: run.transactionID,
		PaymentStatus: domain.PaymentStatusCompleted,
		UserID:        req.UserID,
		Status:        domain.PurchaseStatusActive,
	}

	if err := s.purchases.Create(ctx, record); err != nil {
		// The charge already went through and is not reversed here.
		s.logger.Error("Charged payment could not be recorded",
			zap.String("transaction_id", run.transactionID),
			zap.String("user_id", req.UserID.String()),
			zap.Error(err),
		)
		run.to(CheckoutFailed, zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPaymentFailed, err)
	}

	run.to(CheckoutCommitted, zap.Int64("purchase_id", record.ID))

	return &CheckoutResult{
		PurchaseID:    record.ID,
		TransactionID: record.TransactionID,
		UserID:        record.UserID,
		Car:           record.Car(),
	}, nil
}
