package storage

import (
	"context"
	"errors"

	"github.com/hongminglow/industico-be/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// ErrUnknownDriver is returned when the configured store driver is not supported.
var ErrUnknownDriver = errors.New("unknown store driver")

// Filter selects documents by a single top-level field. The zero Filter matches every document.
type Filter struct {
	Field string
	Value any
}

// All matches every document in a collection.
func All() Filter { return Filter{} }

// ByID matches the document with the given identifier.
func ByID(id string) Filter { return Filter{Field: models.FieldID, Value: id} }

// ByField matches documents whose field equals value.
func ByField(field string, value any) Filter { return Filter{Field: field, Value: value} }

// IsAll reports whether the filter matches every document.
func (f Filter) IsAll() bool { return f.Field == "" }

// InsertResult mirrors the MongoDB driver's insertOne acknowledgement.
type InsertResult struct {
	Acknowledged bool   `json:"acknowledged"`
	InsertedID   string `json:"insertedId"`
}

// UpdateResult mirrors the MongoDB driver's updateOne acknowledgement.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
	UpsertedCount int64 `json:"upsertedCount"`
	UpsertedID    any   `json:"upsertedId"`
}

// DeleteResult mirrors the MongoDB driver's deleteOne acknowledgement.
type DeleteResult struct {
	Acknowledged bool  `json:"acknowledged"`
	DeletedCount int64 `json:"deletedCount"`
}

// DocumentStore is the minimal document-database surface every backend implements.
type DocumentStore interface {
	Find(ctx context.Context, collection string, filter Filter) ([]models.Document, error)
	// FindOne returns ErrNotFound when nothing matches.
	FindOne(ctx context.Context, collection string, filter Filter) (models.Document, error)
	InsertOne(ctx context.Context, collection string, doc models.Document) (InsertResult, error)
	// UpdateOne applies set as a top-level field merge, inserting filter+set when upsert is true and nothing matches.
	UpdateOne(ctx context.Context, collection string, filter Filter, set models.Document, upsert bool) (UpdateResult, error)
	DeleteOne(ctx context.Context, collection string, filter Filter) (DeleteResult, error)
	// WithTransaction runs fn so that every store call made with the ctx it receives commits or aborts together.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
	Migrate(ctx context.Context) error
	Close(ctx context.Context) error
}

// ItemStore captures the item catalogue operations needed by handlers.
type ItemStore interface {
	ListItems(ctx context.Context) ([]models.Document, error)
	FindItem(ctx context.Context, id string) (models.Document, error)
	CreateItem(ctx context.Context, item models.Document) (InsertResult, error)
	DeleteItem(ctx context.Context, id string) (DeleteResult, error)
}

// UserStore captures user persistence operations needed by handlers and the role gate.
type UserStore interface {
	ListUsers(ctx context.Context) ([]models.Document, error)
	FindUserByEmail(ctx context.Context, email string) (models.Document, error)
	UpsertUser(ctx context.Context, email string, user models.Document) (UpdateResult, error)
	PromoteToAdmin(ctx context.Context, email string) (UpdateResult, error)
}

// OrderStore captures order and payment operations needed by handlers.
type OrderStore interface {
	ListOrders(ctx context.Context) ([]models.Document, error)
	FindOrdersByEmail(ctx context.Context, email string) ([]models.Document, error)
	FindOrder(ctx context.Context, id string) (models.Document, error)
	CreateOrder(ctx context.Context, order models.Document) (InsertResult, error)
	DeleteOrder(ctx context.Context, id string) (DeleteResult, error)
	ConfirmPayment(ctx context.Context, orderID string, payment models.Document) (UpdateResult, error)
}

// ReviewStore captures review operations needed by handlers.
type ReviewStore interface {
	ListReviews(ctx context.Context) ([]models.Document, error)
	CreateReview(ctx context.Context, review models.Document) (InsertResult, error)
}
