package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"carmine/internal/domain"

	"github.com/google/uuid"
)

var ErrDuplicateTransaction = errors.New("purchase with this transaction id already exists")

// PurchaseRepository stores completed car purchases. Records are append-only.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *domain.PurchaseRecord) error
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseRecord, error)
}

type purchaseRepository struct {
	db *sql.DB
}

// NewPurchaseRepository creates a new instance of PurchaseRepository
func NewPurchaseRepository(db *sql.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

// Create inserts the record in a single statement and fills in the id and
// purchase date assigned by the database.
func (r *purchaseRepository) Create(ctx context.Context, p *domain.PurchaseRecord) error {
	query := `
		INSERT INTO purchases (
			car_id, make, model, year, trim, price, mileage, exterior_color,
			transaction_id, payment_status, user_id, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, purchase_date
	`

	err := r.db.QueryRowContext(
		ctx,
		query,
		p.CarID,
		p.Make,
		p.Model,
		p.Year,
		p.Trim,
		p.Price,
		p.Mileage,
		p.ExteriorColor,
		p.TransactionID,
		string(p.PaymentStatus),
		p.UserID,
		string(p.Status),
	).Scan(&p.ID, &p.PurchaseDate)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateTransaction
		}
		return fmt.Errorf("failed to create purchase: %w", err)
	}

	return nil
}

// ListByUser returns the user's purchases, newest first
func (r *purchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseRecord, error) {
	query := `
		SELECT id, car_id, make, model, year, trim, price, mileage, exterior_color,
		       purchase_date, transaction_id, payment_status, user_id, status
		FROM purchases
		WHERE user_id = $1
		ORDER BY purchase_date DESC, id DESC
	`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list purchases: %w", err)
	}
	defer rows.Close()

	purchases := []domain.PurchaseRecord{}
	for rows.Next() {
		var p domain.PurchaseRecord
		var paymentStatus, status string
		if err := rows.Scan(
			&p.ID,
			&p.CarID,
			&p.Make,
			&p.Model,
			&p.Year,
			&p.Trim,
			&p.Price,
			&p.Mileage,
			&p.ExteriorColor,
			&p.PurchaseDate,
			&p.TransactionID,
			&paymentStatus,
			&p.UserID,
			&status,
		); err != nil {
			return nil, fmt.Errorf("failed to scan purchase: %w", err)
		}
		p.PaymentStatus = domain.PaymentStatus(paymentStatus)
		p.Status = domain.PurchaseStatus(status)
		purchases = append(purchases, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate purchases: %w", err)
	}

	return purchases, nil
}
