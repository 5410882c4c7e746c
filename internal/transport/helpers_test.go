package transport

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"carmine/internal/domain"
	"carmine/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const testSecret = "test-secret"

func bearer(t *testing.T, userID, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return "Bearer " + s
}

// errorEnvelope mirrors middleware.ErrorResponse with decoded details.
type errorEnvelope struct {
	Success *bool `json:"success"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Details struct {
			ValidationErrors []struct {
				Field   string `json:"field"`
				Message string `json:"message"`
			} `json:"validation_errors"`
		} `json:"details"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, body []byte) errorEnvelope {
	t.Helper()
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		t.Fatalf("failed to decode error envelope: %v: %s", err, body)
	}
	return env
}

func (e errorEnvelope) fields() []string {
	var out []string
	for _, v := range e.Error.Details.ValidationErrors {
		out = append(out, v.Field)
	}
	return out
}

type mockPurchaseRepository struct {
	mu      sync.Mutex
	records []domain.PurchaseRecord
	err     error
}

func (m *mockPurchaseRepository) Create(ctx context.Context, p *domain.PurchaseRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for _, r := range m.records {
		if r.TransactionID == p.TransactionID {
			return repository.ErrDuplicateTransaction
		}
	}
	p.ID = int64(len(m.records) + 1)
	p.PurchaseDate = time.Now().UTC()
	m.records = append(m.records, *p)
	return nil
}

func (m *mockPurchaseRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.PurchaseRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []domain.PurchaseRecord{}
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == userID {
			out = append(out, m.records[i])
		}
	}
	return out, nil
}

func (m *mockPurchaseRepository) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}

var errDatabaseDown = errors.New("database is down")
