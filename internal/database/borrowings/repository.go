// Package borrowings provides database operations for borrowing records.
//
// Borrowings are the only record of which books a user holds; a user's
// borrowed book list is always read from here.
package borrowings

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBorrowing inserts a borrowing. The (user_id, book_id) unique index
// rejects a second borrowing of the same book.
func (r *Repository) CreateBorrowing(ctx context.Context, borrowing *entities.Borrowing) error {
	return r.db.WithContext(ctx).Omit("Book").Create(borrowing).Error
}

// HasBorrowing reports whether the user already borrowed the book.
func (r *Repository) HasBorrowing(ctx context.Context, userID, bookID string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Borrowing{}).
		Where("user_id = ? AND book_id = ?", userID, bookID).
		Count(&count).Error
	return count > 0, err
}

// ListBorrowingsByUser returns the user's borrowings with their books, newest first.
func (r *Repository) ListBorrowingsByUser(ctx context.Context, userID string) ([]entities.Borrowing, error) {
	var borrowings []entities.Borrowing
	err := r.db.WithContext(ctx).Preload("Book").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&borrowings).Error
	return borrowings, err
}

// BorrowedBookIDs returns the ids of the user's borrowed books in the order
// they were borrowed.
func (r *Repository) BorrowedBookIDs(ctx context.Context, userID string) ([]string, error) {
	ids := []string{}
	err := r.db.WithContext(ctx).Model(&entities.Borrowing{}).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Pluck("book_id", &ids).Error
	return ids, err
}

func (r *Repository) CountBorrowingsByUser(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Borrowing{}).Where("user_id = ?", userID).Count(&count).Error
	return count, err
}

// DeleteBorrowingsByBook removes every borrowing of a book.
// Returns the number of deleted borrowings.
func (r *Repository) DeleteBorrowingsByBook(ctx context.Context, bookID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&entities.Borrowing{})
	return result.RowsAffected, result.Error
}
