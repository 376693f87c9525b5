package memory

import (
	"context"
	"fmt"
	"maps"
	"reflect"
	"sync"

	"github.com/google/uuid"

	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

// Ensure Store satisfies the storage.DocumentStore interface at compile time.
var _ storage.DocumentStore = (*Store)(nil)

// Store keeps collections in process memory. It backs local development and tests.
type Store struct {
	mu          sync.RWMutex
	txMu        sync.Mutex
	collections map[string][]models.Document
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{collections: make(map[string][]models.Document)}
}

func (s *Store) Find(_ context.Context, collection string, filter storage.Filter) ([]models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Document{}
	for _, doc := range s.collections[collection] {
		if matches(doc, filter) {
			out = append(out, doc.Clone())
		}
	}
	return out, nil
}

func (s *Store) FindOne(_ context.Context, collection string, filter storage.Filter) (models.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i := s.index(collection, filter); i >= 0 {
		return s.collections[collection][i].Clone(), nil
	}
	return nil, storage.ErrNotFound
}

func (s *Store) InsertOne(_ context.Context, collection string, doc models.Document) (storage.InsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := doc.Clone()
	id, ok := stored[models.FieldID].(string)
	if !ok || id == "" {
		id = uuid.NewString()
		stored[models.FieldID] = id
	} else if s.index(collection, storage.ByID(id)) >= 0 {
		return storage.InsertResult{}, fmt.Errorf("insert %s: %w", collection, storage.ErrAlreadyExists)
	}
	s.collections[collection] = append(s.collections[collection], stored)
	return storage.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *Store) UpdateOne(_ context.Context, collection string, filter storage.Filter, set models.Document, upsert bool) (storage.UpdateResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, filter)
	if i < 0 {
		if !upsert {
			return storage.UpdateResult{Acknowledged: true}, nil
		}
		id := uuid.NewString()
		doc := models.Document{models.FieldID: id}
		if !filter.IsAll() {
			doc[filter.Field] = filter.Value
		}
		maps.Copy(doc, set)
		doc[models.FieldID] = id
		s.collections[collection] = append(s.collections[collection], doc)
		return storage.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: id}, nil
	}

	current := s.collections[collection][i]
	updated := current.Clone()
	modified := false
	for k, v := range set {
		if k == models.FieldID {
			continue
		}
		if old, ok := updated[k]; !ok || !reflect.DeepEqual(old, v) {
			modified = true
		}
		updated[k] = v
	}
	s.collections[collection][i] = updated

	result := storage.UpdateResult{Acknowledged: true, MatchedCount: 1}
	if modified {
		result.ModifiedCount = 1
	}
	return result, nil
}

func (s *Store) DeleteOne(_ context.Context, collection string, filter storage.Filter) (storage.DeleteResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.index(collection, filter)
	if i < 0 {
		return storage.DeleteResult{Acknowledged: true}, nil
	}
	docs := s.collections[collection]
	s.collections[collection] = append(docs[:i:i], docs[i+1:]...)
	return storage.DeleteResult{Acknowledged: true, DeletedCount: 1}, nil
}

// WithTransaction serialises transactions and restores a snapshot of every collection when fn fails.
// Calls made outside a transaction are not isolated from it.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	snapshot := s.snapshot()
	if err := fn(ctx); err != nil {
		s.mu.Lock()
		s.collections = snapshot
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) Migrate(context.Context) error { return nil }

func (s *Store) Close(context.Context) error { return nil }

func (s *Store) snapshot() map[string][]models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string][]models.Document, len(s.collections))
	for name, docs := range s.collections {
		out[name] = append([]models.Document(nil), docs...)
	}
	return out
}

// index must be called with s.mu held.
func (s *Store) index(collection string, filter storage.Filter) int {
	for i, doc := range s.collections[collection] {
		if matches(doc, filter) {
			return i
		}
	}
	return -1
}

func matches(doc models.Document, filter storage.Filter) bool {
	if filter.IsAll() {
		return true
	}
	v, ok := doc[filter.Field]
	return ok && reflect.DeepEqual(v, filter.Value)
}
