package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"carmine/internal/config"
	"carmine/internal/marketplace"

	"github.com/google/uuid"
)

const sessionKeyPrefix = "session:"

// Session is the state kept for one visitor between requests.
type Session struct {
	ID         string                   `json:"id"`
	UserID     string                   `json:"userId,omitempty"`
	Role       string                   `json:"role,omitempty"`
	RememberMe bool                     `json:"rememberMe"`
	Browse     *marketplace.BrowseState `json:"browse,omitempty"`
	CreatedAt  time.Time                `json:"createdAt"`
}

// Manager loads and saves sessions in a Store.
type Manager struct {
	store         Store
	ttl           time.Duration
	rememberMeTTL time.Duration
	now           func() time.Time
}

// NewManager creates a Manager using the TTLs from cfg.
func NewManager(store Store, cfg config.SessionConfig) *Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	rememberMeTTL := cfg.RememberMeTTL
	if rememberMeTTL <= 0 {
		rememberMeTTL = 30 * 24 * time.Hour
	}
	return &Manager{
		store:         store,
		ttl:           ttl,
		rememberMeTTL: rememberMeTTL,
		now:           time.Now,
	}
}

// New returns a fresh, unsaved session.
func (m *Manager) New() *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: m.now().UTC(),
	}
}

// TTL is how long s lives in the store after each save.
func (m *Manager) TTL(s *Session) time.Duration {
	if s.RememberMe {
		return m.rememberMeTTL
	}
	return m.ttl
}

// Load fetches a session by id. Unknown or expired ids return ErrNotFound.
func (m *Manager) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return nil, ErrNotFound
	}

	raw, err := m.store.Get(ctx, sessionKeyPrefix+id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to load session: %w", err)
	}

	var s Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

// Save writes s and refreshes its expiry.
func (m *Manager) Save(ctx context.Context, s *Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	if err := m.store.Set(ctx, sessionKeyPrefix+s.ID, raw, m.TTL(s)); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

// Destroy removes a session. Removing an unknown id is not an error.
func (m *Manager) Destroy(ctx context.Context, id string) error {
	if err := m.store.Delete(ctx, sessionKeyPrefix+id); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	return nil
}

// LoadOrNew loads id, or starts a new session under that id if it is unknown.
// An empty id gets a freshly generated one.
func (m *Manager) LoadOrNew(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return m.New(), nil
	}

	s, err := m.Load(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return &Session{ID: id, CreatedAt: m.now().UTC()}, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
