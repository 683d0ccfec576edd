// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	found, err := repo.SearchBooks(ctx, "tolkien")
package books

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	return r.db.WithContext(ctx).Create(book).Error
}

// GetBookByID retrieves a book by its ID.
func (r *Repository) GetBookByID(ctx context.Context, id string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// UpdateBook writes every column of an existing book. A book that no longer
// exists yields gorm.ErrRecordNotFound and is never re-inserted.
func (r *Repository) UpdateBook(ctx context.Context, book *entities.Book) error {
	result := r.db.WithContext(ctx).Model(book).Select("*").Updates(book)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListBooks returns the whole catalog, newest first.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&books).Error
	return books, err
}

// ListBooksByAdmin returns the books uploaded by an admin, newest first.
func (r *Repository) ListBooksByAdmin(ctx context.Context, adminID string) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Where("admin_id = ?", adminID).Order("created_at DESC").Find(&books).Error
	return books, err
}

func (r *Repository) CountBooksByAdmin(ctx context.Context, adminID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Where("admin_id = ?", adminID).Count(&count).Error
	return count, err
}

// SearchBooks matches the keyword as a case-insensitive substring of the
// title, author, category or ISBN.
func (r *Repository) SearchBooks(ctx context.Context, keyword string) ([]entities.Book, error) {
	var books []entities.Book
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"
	err := r.db.WithContext(ctx).
		Where(`search_text LIKE ? ESCAPE '\'`, pattern).
		Order("created_at DESC").
		Find(&books).Error
	return books, err
}

// BackfillSearchText fills the search column of rows written before it
// existed and returns how many rows were updated.
func (r *Repository) BackfillSearchText(ctx context.Context) (int, error) {
	var stale []entities.Book
	err := r.db.WithContext(ctx).Where("search_text IS NULL OR search_text = ''").Find(&stale).Error
	if err != nil {
		return 0, err
	}
	for i := range stale {
		err := r.db.WithContext(ctx).Model(&stale[i]).UpdateColumn("search_text", entities.BookSearchText(&stale[i])).Error
		if err != nil {
			return i, err
		}
	}
	return len(stale), nil
}

// DeleteBook removes a book and reports whether it existed.
func (r *Repository) DeleteBook(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Book{})
	return result.RowsAffected > 0, result.Error
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
