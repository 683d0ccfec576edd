package services

import (
	"context"
	"errors"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// Store-level sentinels. Every Store implementation maps its driver errors
// onto these so the workflows stay independent of the backing database.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrDuplicateKey   = errors.New("duplicate key")
)

// UserStore provides access to user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *entities.User) error
	GetUserByID(ctx context.Context, id string) (*entities.User, error)
	GetUserByEmail(ctx context.Context, email string) (*entities.User, error)
	UpdateUser(ctx context.Context, user *entities.User) error
}

// BookStore provides access to the catalog.
type BookStore interface {
	CreateBook(ctx context.Context, book *entities.Book) error
	GetBookByID(ctx context.Context, id string) (*entities.Book, error)
	UpdateBook(ctx context.Context, book *entities.Book) error
	ListBooks(ctx context.Context) ([]entities.Book, error)
	ListBooksByAdmin(ctx context.Context, adminID string) ([]entities.Book, error)
	SearchBooks(ctx context.Context, keyword string) ([]entities.Book, error)
	CountBooksByAdmin(ctx context.Context, adminID string) (int64, error)
}

// BorrowingStore provides access to borrowing records, the single source of
// truth for which books a user holds.
type BorrowingStore interface {
	CreateBorrowing(ctx context.Context, borrowing *entities.Borrowing) error
	HasBorrowing(ctx context.Context, userID, bookID string) (bool, error)
	// ListBorrowingsByUser returns the user's borrowings with Book populated, newest first.
	ListBorrowingsByUser(ctx context.Context, userID string) ([]entities.Borrowing, error)
	// BorrowedBookIDs returns the ids of the user's borrowed books in borrow order.
	BorrowedBookIDs(ctx context.Context, userID string) ([]string, error)
	CountBorrowingsByUser(ctx context.Context, userID string) (int64, error)
}

// ReviewStats summarizes the reviews left on a set of books.
type ReviewStats struct {
	Count   int64
	Average float64
}

// ReviewStore provides access to reviews.
type ReviewStore interface {
	// UpsertReview writes the review keyed on (UserID, BookID) in one atomic
	// operation and reports whether a new review was created.
	UpsertReview(ctx context.Context, review *entities.Review) (created bool, err error)
	GetReviewByID(ctx context.Context, id string) (*entities.Review, error)
	// ListReviewsByBook returns the book's reviews with authors populated, newest first.
	ListReviewsByBook(ctx context.Context, bookID string) ([]entities.Review, error)
	DeleteReview(ctx context.Context, id string) error
	// ReviewStatsForAdmin aggregates the reviews on every book owned by adminID.
	ReviewStatsForAdmin(ctx context.Context, adminID string) (ReviewStats, error)
}

// BookRemover deletes a book together with every record referencing it.
type BookRemover interface {
	// DeleteBookCascade removes the book, its borrowings and its reviews as a
	// single all-or-nothing unit and returns the deleted book.
	DeleteBookCascade(ctx context.Context, bookID string) (*entities.Book, error)
}

// Store is the full persistence contract implemented by each database backend.
type Store interface {
	UserStore
	BookStore
	BorrowingStore
	ReviewStore
	BookRemover
}

// AssetRemover disposes of uploaded assets that no record references.
type AssetRemover interface {
	RemoveAssets(ctx context.Context, assets ...storage.Asset)
}
