package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"carmine/internal/domain"
	"carmine/internal/repository"

	"github.com/google/uuid"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ContactPage is one page of the support inbox.
type ContactPage struct {
	Messages []domain.ContactMessage `json:"messages"`
	Total    int                     `json:"total"`
	Page     int                     `json:"page"`
	PageSize int                     `json:"page_size"`
}

// ContactService accepts and lists support inbox messages.
type ContactService interface {
	Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error)
	List(ctx context.Context, page, pageSize int) (*ContactPage, error)
}

type contactService struct {
	repo repository.ContactRepository
}

func NewContactService(repo repository.ContactRepository) ContactService {
	return &contactService{repo: repo}
}

func (s *contactService) Submit(ctx context.Context, name, email, subject, message string) (*domain.ContactMessage, error) {
	msg := &domain.ContactMessage{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(name),
		Email:     strings.TrimSpace(email),
		Subject:   strings.TrimSpace(subject),
		Message:   strings.TrimSpace(message),
		CreatedAt: time.Now().UTC(),
	}

	if err := s.repo.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to save contact message: %w", err)
	}
	return msg, nil
}

// List clamps page to >= 1 and pageSize to 1..MaxPageSize.
func (s *contactService) List(ctx context.Context, page, pageSize int) (*ContactPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	messages, total, err := s.repo.List(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list contact messages: %w", err)
	}

	return &ContactPage{
		Messages: messages,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
