package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus of a recorded purchase.
type PaymentStatus string

const PaymentStatusCompleted PaymentStatus = "Completed"

// PurchaseStatus is the lifecycle state of a purchased car.
type PurchaseStatus string

const PurchaseStatusActive PurchaseStatus = "Active"

// CarDetails is the snapshot of the listing being bought.
type CarDetails struct {
	CarID         string          `json:"carId" validate:"required,max=100"`
	Make          string          `json:"make" validate:"required,max=100"`
	Model         string          `json:"model" validate:"required,max=100"`
	Year          int             `json:"year" validate:"required,gte=1886,lte=2100"`
	Trim          string          `json:"trim" validate:"max=100"`
	Price         decimal.Decimal `json:"price"`
	Mileage       int             `json:"mileage" validate:"gte=0,lte=2147483647"`
	ExteriorColor string          `json:"exteriorColor" validate:"max=50"`
}

// MaxPrice is the exclusive upper bound of a purchase price. Prices are
// stored with two decimal places and at most ten integer digits.
var MaxPrice = decimal.New(1, 10)

// PriceProblem describes why price cannot be charged and stored, or returns
// the empty string when it can.
func PriceProblem(price decimal.Decimal) string {
	switch {
	case !price.IsPositive():
		return "Value must be greater than 0"
	case price.GreaterThanOrEqual(MaxPrice):
		return "Value must be less than " + MaxPrice.String()
	case !price.Equal(price.Truncate(2)):
		return "Value must have at most 2 decimal places"
	}
	return ""
}

// PurchaseRecord is an append-only row written once per successful checkout.
type PurchaseRecord struct {
	ID            int64           `json:"id" db:"id"`
	CarID         string          `json:"carId" db:"car_id"`
	Make          string          `json:"make" db:"make"`
	Model         string          `json:"model" db:"model"`
	Year          int             `json:"year" db:"year"`
	Trim          string          `json:"trim" db:"trim"`
	Price         decimal.Decimal `json:"price" db:"price"`
	Mileage       int             `json:"mileage" db:"mileage"`
	ExteriorColor string          `json:"exteriorColor" db:"exterior_color"`
	PurchaseDate  time.Time       `json:"purchaseDate" db:"purchase_date"`
	TransactionID string          `json:"transactionId" db:"transaction_id"`
	PaymentStatus PaymentStatus   `json:"paymentStatus" db:"payment_status"`
	UserID        uuid.UUID       `json:"userId" db:"user_id"`
	Status        PurchaseStatus  `json:"status" db:"status"`
}

// Car returns the car snapshot stored on the record.
func (p *PurchaseRecord) Car() CarDetails {
	return CarDetails{
		CarID:         p.CarID,
		Make:          p.Make,
		Model:         p.Model,
		Year:          p.Year,
		Trim:          p.Trim,
		Price:         p.Price,
		Mileage:       p.Mileage,
		ExteriorColor: p.ExteriorColor,
	}
}
