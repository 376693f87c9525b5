package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

// Ensure Store satisfies the storage.DocumentStore interface at compile time.
var _ storage.DocumentStore = (*Store)(nil)

// Store provides MongoDB-backed persistence for the storefront collections.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewStore connects to uri, verifies the connection and selects database.
func NewStore(ctx context.Context, uri, database string) (*Store, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	return &Store{client: client, db: client.Database(database)}, nil
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

// Migrate creates the indexes the email lookups rely on.
func (s *Store) Migrate(ctx context.Context) error {
	users := mongo.IndexModel{
		Keys:    bson.D{{Key: models.FieldEmail, Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	}
	if _, err := s.db.Collection(models.CollectionUsers).Indexes().CreateOne(ctx, users); err != nil {
		return fmt.Errorf("create users email index: %w", err)
	}

	orders := mongo.IndexModel{Keys: bson.D{{Key: models.FieldEmail, Value: 1}}}
	if _, err := s.db.Collection(models.CollectionOrders).Indexes().CreateOne(ctx, orders); err != nil {
		return fmt.Errorf("create orders email index: %w", err)
	}

	payments := mongo.IndexModel{Keys: bson.D{{Key: models.FieldOrderID, Value: 1}}}
	if _, err := s.db.Collection(models.CollectionPayments).Indexes().CreateOne(ctx, payments); err != nil {
		return fmt.Errorf("create payments order index: %w", err)
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string, filter storage.Filter) ([]models.Document, error) {
	query := toBSON(filter)

	cur, err := s.db.Collection(collection).Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cur.Close(ctx)

	var raw []bson.M
	if err := cur.All(ctx, &raw); err != nil {
		return nil, fmt.Errorf("decode %s: %w", collection, err)
	}
	out := make([]models.Document, 0, len(raw))
	for _, doc := range raw {
		out = append(out, models.Document(doc))
	}
	return out, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter storage.Filter) (models.Document, error) {
	query := toBSON(filter)

	var doc bson.M
	if err := s.db.Collection(collection).FindOne(ctx, query).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return models.Document(doc), nil
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc models.Document) (storage.InsertResult, error) {
	res, err := s.db.Collection(collection).InsertOne(ctx, bson.M(doc))
	if err != nil {
		return storage.InsertResult{}, fmt.Errorf("insert %s: %w", collection, translate(err))
	}
	return storage.InsertResult{Acknowledged: true, InsertedID: idString(res.InsertedID)}, nil
}

func (s *Store) UpdateOne(ctx context.Context, collection string, filter storage.Filter, set models.Document, upsert bool) (storage.UpdateResult, error) {
	query := toBSON(filter)

	set = withoutID(set)
	if len(set) == 0 {
		// An empty $set is rejected by the server; only existence matters.
		return s.touch(ctx, collection, query, filter, upsert)
	}

	update := bson.M{"$set": bson.M(set)}
	res, err := s.db.Collection(collection).UpdateOne(ctx, query, update, options.Update().SetUpsert(upsert))
	if err != nil {
		return storage.UpdateResult{}, fmt.Errorf("update %s: %w", collection, translate(err))
	}

	result := storage.UpdateResult{
		Acknowledged:  true,
		MatchedCount:  res.MatchedCount,
		ModifiedCount: res.ModifiedCount,
		UpsertedCount: res.UpsertedCount,
	}
	if res.UpsertedID != nil {
		result.UpsertedID = idString(res.UpsertedID)
	}
	return result, nil
}

func (s *Store) touch(ctx context.Context, collection string, query bson.M, filter storage.Filter, upsert bool) (storage.UpdateResult, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, query, options.Count().SetLimit(1))
	if err != nil {
		return storage.UpdateResult{}, fmt.Errorf("update %s: %w", collection, err)
	}
	if n > 0 {
		return storage.UpdateResult{Acknowledged: true, MatchedCount: 1}, nil
	}
	if !upsert {
		return storage.UpdateResult{Acknowledged: true}, nil
	}
	doc := models.Document{}
	if !filter.IsAll() && filter.Field != models.FieldID {
		doc[filter.Field] = filter.Value
	}
	inserted, err := s.InsertOne(ctx, collection, doc)
	if err != nil {
		return storage.UpdateResult{}, err
	}
	return storage.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: inserted.InsertedID}, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection string, filter storage.Filter) (storage.DeleteResult, error) {
	query := toBSON(filter)

	res, err := s.db.Collection(collection).DeleteOne(ctx, query)
	if err != nil {
		return storage.DeleteResult{}, fmt.Errorf("delete %s: %w", collection, err)
	}
	return storage.DeleteResult{Acknowledged: true, DeletedCount: res.DeletedCount}, nil
}

// WithTransaction runs fn inside a session transaction. Requires a replica set or Atlas cluster.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := s.client.StartSession()
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}

// toBSON converts filter into a query. An _id that parses as an ObjectID is matched as one;
// any other string is matched verbatim, which finds documents inserted with a client-chosen id.
func toBSON(filter storage.Filter) bson.M {
	if filter.IsAll() {
		return bson.M{}
	}
	if filter.Field != models.FieldID {
		return bson.M{filter.Field: filter.Value}
	}

	id, ok := filter.Value.(string)
	if !ok {
		return bson.M{models.FieldID: filter.Value}
	}
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return bson.M{models.FieldID: id}
	}
	return bson.M{models.FieldID: oid}
}

func idString(id any) string {
	switch v := id.(type) {
	case primitive.ObjectID:
		return v.Hex()
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func translate(err error) error {
	if mongo.IsDuplicateKeyError(err) {
		return storage.ErrAlreadyExists
	}
	return err
}

func withoutID(doc models.Document) models.Document {
	if _, ok := doc[models.FieldID]; !ok {
		return doc
	}
	out := doc.Clone()
	delete(out, models.FieldID)
	return out
}
