package services

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"trackmyfin/internal/core"
	"trackmyfin/internal/storage"
)

func newTestService(t *testing.T) (*RecordService, core.User) {
	t.Helper()
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	u, err := repo.CreateUser(context.Background(), core.User{
		Email:        "test@example.com",
		Name:         "Test",
		PasswordHash: "x",
	})
	require.NoError(t, err)

	// nil AMQP client: events are skipped, writes still succeed
	svc := NewRecordService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc, u
}

func TestCreateTransactionWithoutBroker(t *testing.T) {
	svc, u := newTestService(t)

	tx, err := svc.CreateTransaction(context.Background(), core.Transaction{
		UserID:      u.ID,
		Amount:      decimal.RequireFromString("19.99"),
		Kind:        core.Expense,
		Description: "Book",
		OccurredAt:  time.Now().UTC(),
	})
	require.NoError(t, err)
	assert.NotZero(t, tx.ID)
}

func TestCreateTransactionRejectsInvalid(t *testing.T) {
	svc, u := newTestService(t)

	_, err := svc.CreateTransaction(context.Background(), core.Transaction{
		UserID:      u.ID,
		Amount:      decimal.RequireFromString("-5"),
		Kind:        core.Expense,
		Description: "negative",
		OccurredAt:  time.Now().UTC(),
	})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestUpdateTransactionMissing(t *testing.T) {
	svc, u := newTestService(t)

	err := svc.UpdateTransaction(context.Background(), core.Transaction{
		ID:          999,
		UserID:      u.ID,
		Amount:      decimal.RequireFromString("5"),
		Kind:        core.Expense,
		Description: "ghost",
		OccurredAt:  time.Now().UTC(),
	})
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSalaryLifecycle(t *testing.T) {
	svc, u := newTestService(t)
	ctx := context.Background()

	sal, err := svc.CreateSalary(ctx, core.Salary{
		UserID:      u.ID,
		Amount:      decimal.RequireFromString("3000"),
		Description: "August",
		ReceivedAt:  time.Now().UTC(),
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSalary(ctx, u.ID, sal.ID))
	assert.ErrorIs(t, svc.DeleteSalary(ctx, u.ID, sal.ID), storage.ErrNotFound)
}

func TestCloseWithNilComponents(t *testing.T) {
	svc := &RecordService{}
	assert.NoError(t, svc.Close())
}
