package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"carmine/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContactRepository_CreateAndPaginate(t *testing.T) {
	_, err := testDB.Exec("DELETE FROM contact_messages")
	require.NoError(t, err)

	repo := NewContactRepository(testDB)
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, repo.Create(ctx, &domain.ContactMessage{
			ID:        uuid.New(),
			Name:      "Visitor",
			Email:     "visitor@example.com",
			Subject:   "Question",
			Message:   string(rune('a' + i)),
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	page, total, err := repo.List(ctx, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "e", page[0].Message)
	assert.Equal(t, "d", page[1].Message)

	last, _, err := repo.List(ctx, 2, 4)
	require.NoError(t, err)
	require.Len(t, last, 1)
	assert.Equal(t, "a", last[0].Message)
}

func TestContactRepository_ListCountError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM contact_messages`).
		WillReturnError(errors.New("connection reset"))

	_, _, err = NewContactRepository(db).List(context.Background(), 10, 0)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to count contact messages")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestContactRepository_CreateError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	msg := &domain.ContactMessage{ID: uuid.New(), Name: "n", Email: "e@x.io", Subject: "s", Message: "m", CreatedAt: time.Now()}
	mock.ExpectExec(`INSERT INTO contact_messages`).
		WithArgs(msg.ID, msg.Name, msg.Email, msg.Subject, msg.Message, msg.CreatedAt).
		WillReturnError(errors.New("disk full"))

	err = NewContactRepository(db).Create(context.Background(), msg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
