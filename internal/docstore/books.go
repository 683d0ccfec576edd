package docstore

import (
	"context"
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

var newestFirst = bson.D{{Key: "createdAt", Value: -1}}

func (s *Store) CreateBook(ctx context.Context, book *entities.Book) error {
	if book.ID == "" {
		book.ID = entities.NewID()
	}
	now := s.now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = now

	_, err := s.collection(booksCollection).InsertOne(ctx, book)
	return translateError(err)
}

func (s *Store) GetBookByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	if err := s.collection(booksCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&book); err != nil {
		return nil, translateError(err)
	}
	return &book, nil
}

func (s *Store) UpdateBook(ctx context.Context, book *entities.Book) error {
	book.UpdatedAt = s.now()
	result, err := s.collection(booksCollection).ReplaceOne(ctx, bson.M{"_id": book.ID}, book)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return services.ErrRecordNotFound
	}
	return nil
}

func (s *Store) ListBooks(ctx context.Context) ([]entities.Book, error) {
	return s.findBooks(ctx, bson.M{})
}

func (s *Store) ListBooksByAdmin(ctx context.Context, adminID string) ([]entities.Book, error) {
	return s.findBooks(ctx, bson.M{"adminId": adminID})
}

// SearchBooks matches the keyword literally and case-insensitively against
// title, author, category and ISBN.
func (s *Store) SearchBooks(ctx context.Context, keyword string) ([]entities.Book, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(keyword), Options: "i"}
	return s.findBooks(ctx, bson.M{"$or": bson.A{
		bson.M{"title": pattern},
		bson.M{"author": pattern},
		bson.M{"category": pattern},
		bson.M{"isbn": pattern},
	}})
}

func (s *Store) CountBooksByAdmin(ctx context.Context, adminID string) (int64, error) {
	count, err := s.collection(booksCollection).CountDocuments(ctx, bson.M{"adminId": adminID})
	return count, translateError(err)
}

func (s *Store) findBooks(ctx context.Context, filter bson.M) ([]entities.Book, error) {
	cursor, err := s.collection(booksCollection).Find(ctx, filter, options.Find().SetSort(newestFirst))
	if err != nil {
		return nil, translateError(err)
	}
	books := []entities.Book{}
	if err := cursor.All(ctx, &books); err != nil {
		return nil, translateError(err)
	}
	return books, nil
}

// DeleteBookCascade removes the book, its borrowings and its reviews inside a
// multi-document transaction. Requires a replica set or sharded cluster.
func (s *Store) DeleteBookCascade(ctx context.Context, bookID string) (*entities.Book, error) {
	session, err := s.client.StartSession()
	if err != nil {
		return nil, fmt.Errorf("start session: %w", err)
	}
	defer session.EndSession(ctx)

	result, err := session.WithTransaction(ctx, func(sc mongo.SessionContext) (interface{}, error) {
		var book entities.Book
		if err := s.collection(booksCollection).FindOneAndDelete(sc, bson.M{"_id": bookID}).Decode(&book); err != nil {
			return nil, err
		}
		if _, err := s.collection(borrowingsCollection).DeleteMany(sc, bson.M{"bookId": bookID}); err != nil {
			return nil, fmt.Errorf("delete borrowings: %w", err)
		}
		if _, err := s.collection(reviewsCollection).DeleteMany(sc, bson.M{"bookId": bookID}); err != nil {
			return nil, fmt.Errorf("delete reviews: %w", err)
		}
		return &book, nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	return result.(*entities.Book), nil
}
