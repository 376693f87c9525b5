package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hongminglow/industico-be/internal/models"
	"github.com/hongminglow/industico-be/internal/storage"
)

// Ensure Store satisfies the storage.DocumentStore interface at compile time.
var _ storage.DocumentStore = (*Store)(nil)

// Store keeps every collection in a single JSONB table keyed by (collection, id).
type Store struct {
	pool *pgxpool.Pool
}

// querier is satisfied by both the pool and an open transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type txKey struct{}

// NewStore creates a new Store and runs migrations.
func NewStore(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	s := &Store{pool: pool}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return s, nil
}

// Close releases database resources.
func (s *Store) Close(context.Context) error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Migrate creates the documents table and the indexes the email and order lookups rely on.
func (s *Store) Migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS documents (
			collection TEXT NOT NULL,
			id TEXT NOT NULL,
			body JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (collection, id)
		);`,
		`CREATE INDEX IF NOT EXISTS documents_email_idx ON documents (collection, (body->>'email'));`,
		`CREATE UNIQUE INDEX IF NOT EXISTS documents_users_email_unique_idx ON documents ((body->>'email')) WHERE collection = 'users';`,
		`CREATE INDEX IF NOT EXISTS documents_payments_order_idx ON documents ((body->>'orderId')) WHERE collection = 'payments';`,
	}
	for _, stmt := range stmts {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
	}
	return nil
}

func (s *Store) Find(ctx context.Context, collection string, filter storage.Filter) ([]models.Document, error) {
	cond, args, err := where(filter, []any{collection})
	if err != nil {
		return nil, err
	}
	rows, err := s.q(ctx).Query(ctx, `SELECT body FROM documents WHERE collection = $1`+cond+` ORDER BY created_at, id`, args...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	docs, err := pgx.CollectRows(rows, pgx.RowTo[models.Document])
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", collection, err)
	}
	if docs == nil {
		docs = []models.Document{}
	}
	return docs, nil
}

func (s *Store) FindOne(ctx context.Context, collection string, filter storage.Filter) (models.Document, error) {
	cond, args, err := where(filter, []any{collection})
	if err != nil {
		return nil, err
	}
	var doc models.Document
	row := s.q(ctx).QueryRow(ctx, `SELECT body FROM documents WHERE collection = $1`+cond+` ORDER BY created_at, id LIMIT 1`, args...)
	if err := row.Scan(&doc); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return doc, nil
}

func (s *Store) InsertOne(ctx context.Context, collection string, doc models.Document) (storage.InsertResult, error) {
	id, err := s.insert(ctx, collection, doc)
	if err != nil {
		return storage.InsertResult{}, err
	}
	return storage.InsertResult{Acknowledged: true, InsertedID: id}, nil
}

func (s *Store) UpdateOne(ctx context.Context, collection string, filter storage.Filter, set models.Document, upsert bool) (storage.UpdateResult, error) {
	cond, args, err := where(filter, []any{collection})
	if err != nil {
		return storage.UpdateResult{}, err
	}

	var id string
	row := s.q(ctx).QueryRow(ctx, `SELECT id FROM documents WHERE collection = $1`+cond+` ORDER BY created_at, id LIMIT 1`, args...)
	if err := row.Scan(&id); err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return storage.UpdateResult{}, fmt.Errorf("update %s: %w", collection, err)
		}
		if !upsert {
			return storage.UpdateResult{Acknowledged: true}, nil
		}
		doc := models.Document{}
		if !filter.IsAll() {
			doc[filter.Field] = filter.Value
		}
		for k, v := range set {
			doc[k] = v
		}
		delete(doc, models.FieldID)
		newID, err := s.insert(ctx, collection, doc)
		if err != nil {
			return storage.UpdateResult{}, err
		}
		return storage.UpdateResult{Acknowledged: true, UpsertedCount: 1, UpsertedID: newID}, nil
	}

	patch := set.Clone()
	delete(patch, models.FieldID)
	tag, err := s.q(ctx).Exec(ctx,
		`UPDATE documents SET body = body || $3::jsonb WHERE collection = $1 AND id = $2 AND body <> body || $3::jsonb`,
		collection, id, patch)
	if err != nil {
		return storage.UpdateResult{}, fmt.Errorf("update %s: %w", collection, translate(err))
	}
	return storage.UpdateResult{Acknowledged: true, MatchedCount: 1, ModifiedCount: tag.RowsAffected()}, nil
}

func (s *Store) DeleteOne(ctx context.Context, collection string, filter storage.Filter) (storage.DeleteResult, error) {
	cond, args, err := where(filter, []any{collection})
	if err != nil {
		return storage.DeleteResult{}, err
	}
	tag, err := s.q(ctx).Exec(ctx,
		`DELETE FROM documents WHERE collection = $1 AND id = (
			SELECT id FROM documents WHERE collection = $1`+cond+` ORDER BY created_at, id LIMIT 1
		)`, args...)
	if err != nil {
		return storage.DeleteResult{}, fmt.Errorf("delete %s: %w", collection, err)
	}
	return storage.DeleteResult{Acknowledged: true, DeletedCount: tag.RowsAffected()}, nil
}

// WithTransaction runs fn in a database transaction. Nested calls join the outer transaction.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return fn(ctx)
	}
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (s *Store) q(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(pgx.Tx); ok {
		return tx
	}
	return s.pool
}

func (s *Store) insert(ctx context.Context, collection string, doc models.Document) (string, error) {
	body := doc.Clone()
	id, ok := body[models.FieldID].(string)
	if !ok || id == "" {
		id = uuid.NewString()
	}
	body[models.FieldID] = id

	if _, err := s.q(ctx).Exec(ctx,
		`INSERT INTO documents (collection, id, body) VALUES ($1, $2, $3)`,
		collection, id, body); err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, translate(err))
	}
	return id, nil
}

// where appends the SQL condition for filter to a query whose first argument is the collection.
func where(filter storage.Filter, args []any) (string, []any, error) {
	if filter.IsAll() {
		return "", args, nil
	}
	if filter.Field == models.FieldID {
		return fmt.Sprintf(" AND id = $%d", len(args)+1), append(args, fmt.Sprint(filter.Value)), nil
	}
	value, err := json.Marshal(filter.Value)
	if err != nil {
		return "", nil, fmt.Errorf("encode filter on %s: %w", filter.Field, err)
	}
	cond := fmt.Sprintf(" AND body -> $%d::text = $%d::jsonb", len(args)+1, len(args)+2)
	return cond, append(args, filter.Field, json.RawMessage(value)), nil
}

func translate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return storage.ErrAlreadyExists
	}
	return err
}
