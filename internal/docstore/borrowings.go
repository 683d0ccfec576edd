package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func (s *Store) CreateBorrowing(ctx context.Context, borrowing *entities.Borrowing) error {
	if borrowing.ID == "" {
		borrowing.ID = entities.NewID()
	}
	now := s.now()
	if borrowing.CreatedAt.IsZero() {
		borrowing.CreatedAt = now
	}
	borrowing.UpdatedAt = now

	_, err := s.collection(borrowingsCollection).InsertOne(ctx, borrowing)
	return translateError(err)
}

func (s *Store) HasBorrowing(ctx context.Context, userID, bookID string) (bool, error) {
	count, err := s.collection(borrowingsCollection).CountDocuments(ctx,
		bson.M{"userId": userID, "bookId": bookID},
		options.Count().SetLimit(1),
	)
	return count > 0, translateError(err)
}

// ListBorrowingsByUser returns the user's borrowings, newest first, each with
// its book attached. Borrowings whose book no longer exists keep a nil Book.
func (s *Store) ListBorrowingsByUser(ctx context.Context, userID string) ([]entities.Borrowing, error) {
	cursor, err := s.collection(borrowingsCollection).Find(ctx,
		bson.M{"userId": userID},
		options.Find().SetSort(newestFirst),
	)
	if err != nil {
		return nil, translateError(err)
	}
	borrowings := []entities.Borrowing{}
	if err := cursor.All(ctx, &borrowings); err != nil {
		return nil, translateError(err)
	}
	if len(borrowings) == 0 {
		return borrowings, nil
	}

	bookIDs := make([]string, 0, len(borrowings))
	for _, b := range borrowings {
		bookIDs = append(bookIDs, b.BookID)
	}
	books, err := s.findBooks(ctx, bson.M{"_id": bson.M{"$in": bookIDs}})
	if err != nil {
		return nil, err
	}
	byID := make(map[string]*entities.Book, len(books))
	for i := range books {
		byID[books[i].ID] = &books[i]
	}
	for i := range borrowings {
		borrowings[i].Book = byID[borrowings[i].BookID]
	}
	return borrowings, nil
}

// BorrowedBookIDs returns the ids of the user's borrowed books in borrow order.
func (s *Store) BorrowedBookIDs(ctx context.Context, userID string) ([]string, error) {
	cursor, err := s.collection(borrowingsCollection).Find(ctx,
		bson.M{"userId": userID},
		options.Find().
			SetSort(bson.D{{Key: "createdAt", Value: 1}}).
			SetProjection(bson.M{"bookId": 1}),
	)
	if err != nil {
		return nil, translateError(err)
	}

	var rows []struct {
		BookID string `bson:"bookId"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, translateError(err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.BookID)
	}
	return ids, nil
}

func (s *Store) CountBorrowingsByUser(ctx context.Context, userID string) (int64, error) {
	count, err := s.collection(borrowingsCollection).CountDocuments(ctx, bson.M{"userId": userID})
	return count, translateError(err)
}
