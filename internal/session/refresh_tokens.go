package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const refreshKeyPrefix = "refresh:"

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// RefreshToken is a long-lived token exchanged for new access tokens.
type RefreshToken struct {
	UserID    uuid.UUID `json:"userId"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// RefreshTokenStore defines refresh token persistence
type RefreshTokenStore interface {
	Create(ctx context.Context, token *RefreshToken) error
	FindByToken(ctx context.Context, token string) (*RefreshToken, error)
	Revoke(ctx context.Context, token string) error
}

type refreshTokenStore struct {
	store Store
	now   func() time.Time
}

// NewRefreshTokenStore keeps refresh tokens in store until they expire.
func NewRefreshTokenStore(store Store) RefreshTokenStore {
	return &refreshTokenStore{store: store, now: time.Now}
}

// Create stores the token with a TTL matching its expiry
func (r *refreshTokenStore) Create(ctx context.Context, token *RefreshToken) error {
	ttl := token.ExpiresAt.Sub(r.now())
	if ttl <= 0 {
		return fmt.Errorf("failed to create refresh token: already expired")
	}

	raw, err := json.Marshal(token)
	if err != nil {
		return fmt.Errorf("failed to encode refresh token: %w", err)
	}
	if err := r.store.Set(ctx, refreshKeyPrefix+token.Token, raw, ttl); err != nil {
		return fmt.Errorf("failed to create refresh token: %w", err)
	}
	return nil
}

func (r *refreshTokenStore) FindByToken(ctx context.Context, token string) (*RefreshToken, error) {
	raw, err := r.store.Get(ctx, refreshKeyPrefix+token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrRefreshTokenNotFound
		}
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	var rt RefreshToken
	if err := json.Unmarshal(raw, &rt); err != nil {
		return nil, fmt.Errorf("failed to decode refresh token: %w", err)
	}
	return &rt, nil
}

// Revoke deletes the token so it can no longer be exchanged.
func (r *refreshTokenStore) Revoke(ctx context.Context, token string) error {
	if err := r.store.Delete(ctx, refreshKeyPrefix+token); err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}
