// Package docstore implements services.Store on MongoDB.
//
// Collections mirror the relational schema: users, books, borrowings,
// reviews and audit_events. Documents use string UUIDs as _id so ids are
// interchangeable with the SQLite backend.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mrlokans/bookshelf/internal/services"
)

const (
	usersCollection      = "users"
	booksCollection      = "books"
	borrowingsCollection = "borrowings"
	reviewsCollection    = "reviews"
	auditCollection      = "audit_events"
)

// Store is the MongoDB-backed store.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect dials MongoDB, verifies the connection and ensures indexes exist.
func Connect(ctx context.Context, uri, database string) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	store := New(client.Database(database))
	if err := store.EnsureIndexes(ctx); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return store, nil
}

// New wraps an existing database handle.
func New(db *mongo.Database) *Store {
	return &Store{
		client: db.Client(),
		db:     db,
		now:    time.Now,
	}
}

// EnsureIndexes creates the unique and lookup indexes every collection relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		usersCollection: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		booksCollection: {
			{Keys: bson.D{{Key: "isbn", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "adminId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		borrowingsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "bookId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "bookId", Value: 1}}},
		},
		reviewsCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "bookId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "bookId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		auditCollection: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "createdAt", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := s.db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}

// Ping checks that the primary is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the underlying client.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection(name string) *mongo.Collection {
	return s.db.Collection(name)
}

// translateError maps driver errors onto the services sentinels.
func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return services.ErrRecordNotFound
	case mongo.IsDuplicateKeyError(err):
		return fmt.Errorf("%w: %v", services.ErrDuplicateKey, err)
	}
	return err
}
