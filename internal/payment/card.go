// Package payment validates card input and charges it through a gateway.
package payment

import (
	"errors"
	"regexp"
	"strings"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{4}\s?\d{4}\s?\d{4}\s?\d{4}$`)
	expiryPattern     = regexp.MustCompile(`^\d{2}/\d{2}$`)
	cvvPattern        = regexp.MustCompile(`^\d{3}$`)
)

var ErrInvalidCard = errors.New("invalid card details")

// Card is the payment form as submitted.
type Card struct {
	Number         string
	ExpirationDate string
	CVV            string
}

// ValidCardNumber accepts 16 digits, optionally grouped in fours by single spaces.
func ValidCardNumber(s string) bool {
	return cardNumberPattern.MatchString(s)
}

// ValidExpiry accepts MM/YY. Only the shape is checked, so "13/99" passes.
func ValidExpiry(s string) bool {
	return expiryPattern.MatchString(s)
}

// ValidCVV accepts exactly three digits.
func ValidCVV(s string) bool {
	return cvvPattern.MatchString(s)
}

// FieldError names a card field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid card field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return "invalid card details: " + strings.Join(names, ", ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidCard
}

// Validate checks all card fields and reports each failing one.
func (c Card) Validate() error {
	var fields []FieldError
	if !ValidCardNumber(c.Number) {
		fields = append(fields, FieldError{Field: "cardNumber", Message: "Card number must be 16 digits"})
	}
	if !ValidExpiry(c.ExpirationDate) {
		fields = append(fields, FieldError{Field: "expirationDate", Message: "Expiration date must be MM/YY"})
	}
	if !ValidCVV(c.CVV) {
		fields = append(fields, FieldError{Field: "cvv", Message: "CVV must be 3 digits"})
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// LastFour returns the last four digits of the card number for logging.
func (c Card) LastFour() string {
	digits := strings.ReplaceAll(c.Number, " ", "")
	if len(digits) < 4 {
		return ""
	}
	return digits[len(digits)-4:]
}
