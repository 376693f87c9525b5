// Package storagetest holds behaviour checks shared by every storage.DocumentStore backend.
package storagetest

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

var errOrderUpdate = errors.New("order update failed")

// failingOrderUpdates fails every UpdateOne on orders so compensation paths can be observed.
type failingOrderUpdates struct {
	storage.DocumentStore
}

func (f failingOrderUpdates) UpdateOne(ctx context.Context, collection string, filter storage.Filter, set models.Document, upsert bool) (storage.UpdateResult, error) {
	if collection == models.CollectionOrders {
		return storage.UpdateResult{}, errOrderUpdate
	}
	return f.DocumentStore.UpdateOne(ctx, collection, filter, set, upsert)
}

// Run exercises docs against the document semantics the repository relies on.
// Collections and emails are suffixed per run so live databases can be reused.
func Run(t *testing.T, docs storage.DocumentStore) {
	t.Helper()
	suffix := fmt.Sprintf("%d", time.Now().UnixNano())
	scratch := "conformance_" + suffix

	t.Run("InsertFindDelete", func(t *testing.T) {
		ctx := context.Background()

		empty, err := docs.Find(ctx, scratch+"_empty", storage.All())
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		res, err := docs.InsertOne(ctx, scratch, models.Document{"name": "Drill", "sku": "D-" + suffix})
		require.NoError(t, err)
		assert.True(t, res.Acknowledged)
		require.NotEmpty(t, res.InsertedID)

		doc, err := docs.FindOne(ctx, scratch, storage.ByID(res.InsertedID))
		require.NoError(t, err)
		assert.Equal(t, "Drill", doc.String("name"))

		bySKU, err := docs.Find(ctx, scratch, storage.ByField("sku", "D-"+suffix))
		require.NoError(t, err)
		assert.Len(t, bySKU, 1)

		del, err := docs.DeleteOne(ctx, scratch, storage.ByID(res.InsertedID))
		require.NoError(t, err)
		assert.Equal(t, int64(1), del.DeletedCount)

		_, err = docs.FindOne(ctx, scratch, storage.ByID(res.InsertedID))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("UnknownIdentifiersMatchNothing", func(t *testing.T) {
		ctx := context.Background()
		for _, id := range []string{"not-an-id", "ffffffffffffffffffffffff"} {
			_, err := docs.FindOne(ctx, scratch, storage.ByID(id))
			assert.ErrorIs(t, err, storage.ErrNotFound, id)

			del, err := docs.DeleteOne(ctx, scratch, storage.ByID(id))
			require.NoError(t, err, id)
			assert.Equal(t, int64(0), del.DeletedCount, id)

			upd, err := docs.UpdateOne(ctx, scratch, storage.ByID(id), models.Document{"paid": true}, false)
			require.NoError(t, err, id)
			assert.Equal(t, int64(0), upd.MatchedCount, id)
		}
	})

	t.Run("ClientChosenIDsAreUnique", func(t *testing.T) {
		ctx := context.Background()
		id := "client-" + suffix

		res, err := docs.InsertOne(ctx, scratch, models.Document{models.FieldID: id, "text": "first"})
		require.NoError(t, err)
		assert.Equal(t, id, res.InsertedID)

		_, err = docs.InsertOne(ctx, scratch, models.Document{models.FieldID: id, "text": "second"})
		assert.ErrorIs(t, err, storage.ErrAlreadyExists)

		found, err := docs.FindOne(ctx, scratch, storage.ByID(id))
		require.NoError(t, err)
		assert.Equal(t, "first", found.String("text"))

		del, err := docs.DeleteOne(ctx, scratch, storage.ByID(id))
		require.NoError(t, err)
		assert.Equal(t, int64(1), del.DeletedCount)
	})

	t.Run("UpsertMergesTopLevelFields", func(t *testing.T) {
		ctx := context.Background()
		email := "upsert-" + suffix + "@example.com"
		filter := storage.ByField(models.FieldEmail, email)

		first, err := docs.UpdateOne(ctx, scratch, filter, models.Document{"name": "Ann", "city": "Oslo"}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), first.UpsertedCount)
		assert.Equal(t, int64(0), first.MatchedCount)

		same, err := docs.UpdateOne(ctx, scratch, filter, models.Document{"name": "Ann"}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), same.MatchedCount)
		assert.Equal(t, int64(0), same.ModifiedCount)
		assert.Equal(t, int64(0), same.UpsertedCount)

		changed, err := docs.UpdateOne(ctx, scratch, filter, models.Document{"name": "Anna"}, true)
		require.NoError(t, err)
		assert.Equal(t, int64(1), changed.ModifiedCount)

		matches, err := docs.Find(ctx, scratch, filter)
		require.NoError(t, err)
		require.Len(t, matches, 1)
		assert.Equal(t, "Anna", matches[0].String("name"))
		assert.Equal(t, "Oslo", matches[0].String("city"))
		assert.Equal(t, email, matches[0].String(models.FieldEmail))

		missing, err := docs.UpdateOne(ctx, scratch, storage.ByField(models.FieldEmail, "nobody-"+suffix), models.Document{"name": "x"}, false)
		require.NoError(t, err)
		assert.Equal(t, storage.UpdateResult{Acknowledged: true}, missing)
	})

	t.Run("TransactionRollsBack", func(t *testing.T) {
		ctx := context.Background()
		marker := "tx-" + suffix
		boom := errors.New("boom")

		err := docs.WithTransaction(ctx, func(ctx context.Context) error {
			if _, err := docs.InsertOne(ctx, scratch, models.Document{"marker": marker}); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)

		found, err := docs.Find(ctx, scratch, storage.ByField("marker", marker))
		require.NoError(t, err)
		assert.Empty(t, found)

		require.NoError(t, docs.WithTransaction(ctx, func(ctx context.Context) error {
			_, err := docs.InsertOne(ctx, scratch, models.Document{"marker": marker})
			return err
		}))
		found, err = docs.Find(ctx, scratch, storage.ByField("marker", marker))
		require.NoError(t, err)
		assert.Len(t, found, 1)
	})

	t.Run("ConfirmPayment", func(t *testing.T) {
		ctx := context.Background()
		for _, transactional := range []bool{true, false} {
			repo := storage.NewRepository(docs, transactional)
			email := fmt.Sprintf("buyer-%s-%t@example.com", suffix, transactional)

			order, err := repo.CreateOrder(ctx, models.Document{models.FieldEmail: email, "totalPrice": 42.5})
			require.NoError(t, err)

			res, err := repo.ConfirmPayment(ctx, order.InsertedID, models.Document{
				models.FieldStatus:        "succeeded",
				models.FieldTransactionID: "pi_" + suffix,
			})
			require.NoError(t, err)
			assert.Equal(t, int64(1), res.MatchedCount)

			paid, err := repo.FindOrder(ctx, order.InsertedID)
			require.NoError(t, err)
			assert.Equal(t, true, paid[models.FieldPaid])
			assert.Equal(t, "pi_"+suffix, paid.String(models.FieldTransactionID))

			recorded, err := docs.Find(ctx, models.CollectionPayments, storage.ByField(models.FieldOrderID, order.InsertedID))
			require.NoError(t, err)
			assert.Len(t, recorded, 1)

			mine, err := repo.FindOrdersByEmail(ctx, email)
			require.NoError(t, err)
			assert.Len(t, mine, 1)

			_, err = repo.DeleteOrder(ctx, order.InsertedID)
			require.NoError(t, err)
			_, err = docs.DeleteOne(ctx, models.CollectionPayments, storage.ByField(models.FieldOrderID, order.InsertedID))
			require.NoError(t, err)
		}
	})

	t.Run("CompensatingDeleteRemovesClientIdentifiedPayment", func(t *testing.T) {
		ctx := context.Background()
		orderID := "order-" + suffix
		repo := storage.NewRepository(failingOrderUpdates{DocumentStore: docs}, false)

		_, err := repo.ConfirmPayment(ctx, orderID, models.Document{
			models.FieldID:     "payment-" + suffix,
			models.FieldStatus: "succeeded",
		})
		require.ErrorIs(t, err, errOrderUpdate)

		left, err := docs.Find(ctx, models.CollectionPayments, storage.ByField(models.FieldOrderID, orderID))
		require.NoError(t, err)
		assert.Empty(t, left)
	})
}
