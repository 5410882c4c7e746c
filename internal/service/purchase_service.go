package service

import (
	"context"
	"fmt"

	"carmine/internal/domain"
	"carmine/internal/repository"

	"github.com/google/uuid"
)

// PurchaseService reads a buyer's purchase history.
type PurchaseService interface {
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseRecord, error)
}

type purchaseService struct {
	purchases repository.PurchaseRepository
}

func NewPurchaseService(purchases repository.PurchaseRepository) PurchaseService {
	return &purchaseService{purchases: purchases}
}

func (s *purchaseService) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseRecord, error) {
	records, err := s.purchases.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	return records, nil
}
