package repository

import (
	"context"
	"database/sql"
	"fmt"

	"carmine/internal/domain"
)

// ContactRepository stores support inbox messages.
type ContactRepository interface {
	Create(ctx context.Context, msg *domain.ContactMessage) error
	List(ctx context.Context, limit, offset int) ([]domain.ContactMessage, int, error)
}

type contactRepository struct {
	db *sql.DB
}

// NewContactRepository creates a new instance of ContactRepository
func NewContactRepository(db *sql.DB) ContactRepository {
	return &contactRepository{db: db}
}

func (r *contactRepository) Create(ctx context.Context, msg *domain.ContactMessage) error {
	query := `
		INSERT INTO contact_messages (id, name, email, subject, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.db.ExecContext(ctx, query, msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create contact message: %w", err)
	}

	return nil
}

// List returns one page of messages, newest first, and the total count
func (r *contactRepository) List(ctx context.Context, limit, offset int) ([]domain.ContactMessage, int, error) {
	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contact_messages`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count contact messages: %w", err)
	}

	query := `
		SELECT id, name, email, subject, message, created_at
		FROM contact_messages
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list contact messages: %w", err)
	}
	defer rows.Close()

	messages := []domain.ContactMessage{}
	for rows.Next() {
		var m domain.ContactMessage
		if err := rows.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Message, &m.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan contact message: %w", err)
		}
		messages = append(messages, m)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate contact messages: %w", err)
	}

	return messages, total, nil
}
