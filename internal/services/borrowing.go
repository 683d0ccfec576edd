package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

// BorrowingService records which books users hold. A user's borrowed book
// list is always derived from the borrowing records.
type BorrowingService struct {
	users      UserStore
	books      BookStore
	borrowings BorrowingStore
	now        func() time.Time
}

func NewBorrowingService(users UserStore, books BookStore, borrowings BorrowingStore) *BorrowingService {
	return &BorrowingService{
		users:      users,
		books:      books,
		borrowings: borrowings,
		now:        time.Now,
	}
}

// SetClock replaces the clock used for borrowing timestamps and expiries.
func (s *BorrowingService) SetClock(now func() time.Time) {
	s.now = now
}

// Borrow records that the user took the book. Subscribe access expires after
// entities.SubscriptionPeriod; Buy access never expires.
func (s *BorrowingService) Borrow(ctx context.Context, userID, bookID string, accessType entities.AccessType) (*entities.Borrowing, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" || accessType == "" {
		return nil, ErrBorrowFieldsRequired
	}
	if !accessType.Valid() {
		return nil, ErrInvalidAccessType
	}

	return s.record(ctx, userID, bookID, accessType, ErrAlreadyBorrowed)
}

// AddToLibrary records a Buy borrowing and returns the user with the derived
// borrowed book ids along with the borrowed books themselves.
func (s *BorrowingService) AddToLibrary(ctx context.Context, userID, bookID string) (*entities.User, []entities.Book, error) {
	bookID = strings.TrimSpace(bookID)
	if bookID == "" {
		return nil, nil, ErrBookIDRequired
	}

	if _, err := s.record(ctx, userID, bookID, entities.AccessTypeBuy, ErrAlreadyInLibrary); err != nil {
		return nil, nil, err
	}

	user, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	borrowings, err := s.borrowings.ListBorrowingsByUser(ctx, userID)
	if err != nil {
		return nil, nil, apperr.Unexpected("Failed to add book to library", err)
	}

	// Borrow order, oldest first, to match the derived id list
	books := make([]entities.Book, 0, len(borrowings))
	for i := len(borrowings) - 1; i >= 0; i-- {
		if borrowings[i].Book != nil {
			books = append(books, *borrowings[i].Book)
		}
	}
	return user, books, nil
}

func (s *BorrowingService) record(ctx context.Context, userID, bookID string, accessType entities.AccessType, alreadyErr error) (*entities.Borrowing, error) {
	if _, err := findUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	if _, err := s.books.GetBookByID(ctx, bookID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, apperr.Unexpected("Failed to borrow book", err)
	}

	exists, err := s.borrowings.HasBorrowing(ctx, userID, bookID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to borrow book", err)
	}
	if exists {
		return nil, alreadyErr
	}

	borrowing := entities.NewBorrowing(userID, bookID, accessType, s.now())
	if err := s.borrowings.CreateBorrowing(ctx, borrowing); err != nil {
		// Lost a race with a concurrent borrow of the same book
		if errors.Is(err, ErrDuplicateKey) {
			return nil, alreadyErr
		}
		return nil, apperr.Unexpected("Failed to borrow book", err)
	}
	return borrowing, nil
}

// ListBorrowed returns the user's borrowings with books attached, newest first.
func (s *BorrowingService) ListBorrowed(ctx context.Context, userID string) ([]entities.Borrowing, error) {
	if _, err := findUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	borrowings, err := s.borrowings.ListBorrowingsByUser(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to get all borrowed books", err)
	}
	return borrowings, nil
}

// CountBorrowed returns how many books the user holds.
func (s *BorrowingService) CountBorrowed(ctx context.Context, userID string) (int64, error) {
	if _, err := findUser(ctx, s.users, userID); err != nil {
		return 0, err
	}
	count, err := s.borrowings.CountBorrowingsByUser(ctx, userID)
	if err != nil {
		return 0, apperr.Unexpected("Failed to get number of borrowed books", err)
	}
	return count, nil
}

// loadUser fetches the user with the derived borrowed book ids filled in.
func (s *BorrowingService) loadUser(ctx context.Context, userID string) (*entities.User, error) {
	return loadUserWithBorrowed(ctx, s.users, s.borrowings, userID)
}

func loadUserWithBorrowed(ctx context.Context, users UserStore, borrowings BorrowingStore, userID string) (*entities.User, error) {
	user, err := findUser(ctx, users, userID)
	if err != nil {
		return nil, err
	}
	ids, err := borrowings.BorrowedBookIDs(ctx, userID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to load user", err)
	}
	user.BorrowedBooks = ids
	return user, nil
}

func findUser(ctx context.Context, users UserStore, userID string) (*entities.User, error) {
	user, err := users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Unexpected("Failed to load user", err)
	}
	return user, nil
}
