package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
	"github.com/hongminglow/industico-be/internal/storage/memory"
)

var errUpdate = errors.New("update failed")

// failingUpdates wraps a store and fails every UpdateOne on orders.
type failingUpdates struct {
	storage.DocumentStore
	transactions int
}

func (f *failingUpdates) UpdateOne(ctx context.Context, collection string, filter storage.Filter, set models.Document, upsert bool) (storage.UpdateResult, error) {
	if collection == models.CollectionOrders {
		return storage.UpdateResult{}, errUpdate
	}
	return f.DocumentStore.UpdateOne(ctx, collection, filter, set, upsert)
}

func (f *failingUpdates) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	f.transactions++
	return f.DocumentStore.WithTransaction(ctx, fn)
}

func TestConfirmPaymentMarksOrderPaid(t *testing.T) {
	for _, transactional := range []bool{true, false} {
		ctx := context.Background()
		docs := memory.NewStore()
		repo := storage.NewRepository(docs, transactional)

		created, err := repo.CreateOrder(ctx, models.Document{"email": "a@example.com", "totalPrice": 19.99})
		require.NoError(t, err)

		payload := models.Document{"status": "succeeded", "transactionId": "pi_123", "amount": 19.99}
		res, err := repo.ConfirmPayment(ctx, created.InsertedID, payload)
		require.NoError(t, err)
		assert.Equal(t, int64(1), res.MatchedCount)
		assert.Equal(t, int64(1), res.ModifiedCount)

		order, err := repo.FindOrder(ctx, created.InsertedID)
		require.NoError(t, err)
		assert.Equal(t, true, order["paid"])
		assert.Equal(t, "succeeded", order["status"])
		assert.Equal(t, "pi_123", order["transactionId"])

		payments, err := docs.Find(ctx, models.CollectionPayments, storage.All())
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, created.InsertedID, payments[0]["orderId"])
		assert.Equal(t, "pi_123", payments[0]["transactionId"])
		assert.NotContains(t, payload, "orderId", "caller's payload must not be mutated")
	}
}

func TestConfirmPaymentForUnknownOrderKeepsPayment(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewStore()
	repo := storage.NewRepository(docs, true)

	res, err := repo.ConfirmPayment(ctx, "no-such-order", models.Document{"status": "succeeded"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), res.MatchedCount)

	payments, err := docs.Find(ctx, models.CollectionPayments, storage.All())
	require.NoError(t, err)
	assert.Len(t, payments, 1)
}

func TestConfirmPaymentRollsBackOnFailedOrderUpdate(t *testing.T) {
	for _, transactional := range []bool{true, false} {
		ctx := context.Background()
		docs := &failingUpdates{DocumentStore: memory.NewStore()}
		repo := storage.NewRepository(docs, transactional)

		_, err := repo.ConfirmPayment(ctx, "order-1", models.Document{"status": "succeeded"})
		assert.ErrorIs(t, err, errUpdate)

		payments, err := docs.Find(ctx, models.CollectionPayments, storage.All())
		require.NoError(t, err)
		assert.Empty(t, payments)

		if transactional {
			assert.Equal(t, 1, docs.transactions)
		} else {
			assert.Equal(t, 0, docs.transactions)
		}
	}
}

func TestRepeatedConfirmationAppendsPayments(t *testing.T) {
	ctx := context.Background()
	docs := memory.NewStore()
	repo := storage.NewRepository(docs, true)

	created, err := repo.CreateOrder(ctx, models.Document{"email": "a@example.com"})
	require.NoError(t, err)
	for i := 0; i < 2; i++ {
		_, err := repo.ConfirmPayment(ctx, created.InsertedID, models.Document{"status": "succeeded"})
		require.NoError(t, err)
	}

	payments, err := docs.Find(ctx, models.CollectionPayments, storage.All())
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestUpsertUserIsIdempotentByEmail(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(memory.NewStore(), true)

	_, err := repo.UpsertUser(ctx, "a@example.com", models.Document{"name": "Ann", "photo": "a.png"})
	require.NoError(t, err)
	_, err = repo.UpsertUser(ctx, "a@example.com", models.Document{"name": "Anna", "photo": "b.png"})
	require.NoError(t, err)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "a@example.com", users[0]["email"])
	assert.Equal(t, "Anna", users[0]["name"])
	assert.Equal(t, "b.png", users[0]["photo"])
}

func TestPromoteToAdmin(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewRepository(memory.NewStore(), true)

	missing, err := repo.PromoteToAdmin(ctx, "ghost@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(0), missing.MatchedCount)

	_, err = repo.UpsertUser(ctx, "a@example.com", models.Document{"name": "Ann"})
	require.NoError(t, err)
	res, err := repo.PromoteToAdmin(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.ModifiedCount)

	user, err := repo.FindUserByEmail(ctx, "a@example.com")
	require.NoError(t, err)
	assert.True(t, models.UserFromDocument(user).IsAdmin())
}
