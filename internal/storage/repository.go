package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/hongminglow/industico-be/internal/models"
)

// Ensure Repository satisfies the handler-facing interfaces at compile time.
var (
	_ ItemStore   = (*Repository)(nil)
	_ UserStore   = (*Repository)(nil)
	_ OrderStore  = (*Repository)(nil)
	_ ReviewStore = (*Repository)(nil)
)

// Repository maps storefront operations onto a DocumentStore, one store call per operation
// except for payment confirmation.
type Repository struct {
	docs          DocumentStore
	transactional bool
}

// NewRepository wraps docs. When transactional is false, payment confirmation falls back to
// a compensating delete instead of a store transaction.
func NewRepository(docs DocumentStore, transactional bool) *Repository {
	return &Repository{docs: docs, transactional: transactional}
}

func (r *Repository) ListItems(ctx context.Context) ([]models.Document, error) {
	return r.docs.Find(ctx, models.CollectionItems, All())
}

func (r *Repository) FindItem(ctx context.Context, id string) (models.Document, error) {
	return r.docs.FindOne(ctx, models.CollectionItems, ByID(id))
}

func (r *Repository) CreateItem(ctx context.Context, item models.Document) (InsertResult, error) {
	return r.docs.InsertOne(ctx, models.CollectionItems, item)
}

func (r *Repository) DeleteItem(ctx context.Context, id string) (DeleteResult, error) {
	return r.docs.DeleteOne(ctx, models.CollectionItems, ByID(id))
}

func (r *Repository) ListUsers(ctx context.Context) ([]models.Document, error) {
	return r.docs.Find(ctx, models.CollectionUsers, All())
}

func (r *Repository) FindUserByEmail(ctx context.Context, email string) (models.Document, error) {
	return r.docs.FindOne(ctx, models.CollectionUsers, ByField(models.FieldEmail, email))
}

// UpsertUser merges user's top-level fields into the document keyed by email, creating it if absent.
func (r *Repository) UpsertUser(ctx context.Context, email string, user models.Document) (UpdateResult, error) {
	return r.docs.UpdateOne(ctx, models.CollectionUsers, ByField(models.FieldEmail, email), user, true)
}

func (r *Repository) PromoteToAdmin(ctx context.Context, email string) (UpdateResult, error) {
	set := models.Document{models.FieldRole: models.RoleAdmin}
	return r.docs.UpdateOne(ctx, models.CollectionUsers, ByField(models.FieldEmail, email), set, false)
}

func (r *Repository) ListOrders(ctx context.Context) ([]models.Document, error) {
	return r.docs.Find(ctx, models.CollectionOrders, All())
}

func (r *Repository) FindOrdersByEmail(ctx context.Context, email string) ([]models.Document, error) {
	return r.docs.Find(ctx, models.CollectionOrders, ByField(models.FieldEmail, email))
}

func (r *Repository) FindOrder(ctx context.Context, id string) (models.Document, error) {
	return r.docs.FindOne(ctx, models.CollectionOrders, ByID(id))
}

func (r *Repository) CreateOrder(ctx context.Context, order models.Document) (InsertResult, error) {
	return r.docs.InsertOne(ctx, models.CollectionOrders, order)
}

func (r *Repository) DeleteOrder(ctx context.Context, id string) (DeleteResult, error) {
	return r.docs.DeleteOne(ctx, models.CollectionOrders, ByID(id))
}

// ConfirmPayment records payment against orderID and then marks the order paid.
// An unknown order is not an error: the payment is kept and the result reports no match.
func (r *Repository) ConfirmPayment(ctx context.Context, orderID string, payment models.Document) (UpdateResult, error) {
	if r.transactional {
		var result UpdateResult
		err := r.docs.WithTransaction(ctx, func(ctx context.Context) error {
			var err error
			result, err = r.confirm(ctx, orderID, payment)
			return err
		})
		if err != nil {
			return UpdateResult{}, err
		}
		return result, nil
	}

	inserted, err := r.docs.InsertOne(ctx, models.CollectionPayments, models.PaymentRecord(orderID, payment))
	if err != nil {
		return UpdateResult{}, fmt.Errorf("record payment: %w", err)
	}
	result, err := r.docs.UpdateOne(ctx, models.CollectionOrders, ByID(orderID), models.PaidOrderUpdate(payment), false)
	if err != nil {
		if _, rollbackErr := r.docs.DeleteOne(ctx, models.CollectionPayments, ByID(inserted.InsertedID)); rollbackErr != nil {
			log.Printf("confirm payment: rollback of payment %s failed: %v", inserted.InsertedID, rollbackErr)
		}
		return UpdateResult{}, fmt.Errorf("mark order paid: %w", err)
	}
	return result, nil
}

func (r *Repository) confirm(ctx context.Context, orderID string, payment models.Document) (UpdateResult, error) {
	if _, err := r.docs.InsertOne(ctx, models.CollectionPayments, models.PaymentRecord(orderID, payment)); err != nil {
		return UpdateResult{}, fmt.Errorf("record payment: %w", err)
	}
	result, err := r.docs.UpdateOne(ctx, models.CollectionOrders, ByID(orderID), models.PaidOrderUpdate(payment), false)
	if err != nil {
		return UpdateResult{}, fmt.Errorf("mark order paid: %w", err)
	}
	return result, nil
}

func (r *Repository) ListReviews(ctx context.Context) ([]models.Document, error) {
	return r.docs.Find(ctx, models.CollectionReviews, All())
}

func (r *Repository) CreateReview(ctx context.Context, review models.Document) (InsertResult, error) {
	return r.docs.InsertOne(ctx, models.CollectionReviews, review)
}
