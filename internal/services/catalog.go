package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// BookInput carries the fields of a new book.
type BookInput struct {
	Title       string
	Author      string
	Category    string
	ISBN        string
	Description string
	BookPrice   float64
}

// BookUpdate carries a partial update. Empty strings and a zero price keep
// the stored values.
type BookUpdate struct {
	Title       string
	Author      string
	Category    string
	ISBN        string
	Description string
	BookPrice   float64
}

// BookFiles holds the optional files sent with a book. Class and Folder are
// assigned by the catalog.
type BookFiles struct {
	Cover    *storage.Upload
	Document *storage.Upload
}

func (f BookFiles) prepared() []*storage.Upload {
	if f.Cover != nil {
		f.Cover.Class, f.Cover.Folder = storage.ClassImage, CoversFolder
	}
	if f.Document != nil {
		f.Document.Class, f.Document.Folder = storage.ClassRaw, BooksFolder
	}
	return []*storage.Upload{f.Cover, f.Document}
}

type CatalogService struct {
	books   BookStore
	remover BookRemover
	assets  *AssetUploader
}

func NewCatalogService(books BookStore, remover BookRemover, assets *AssetUploader) *CatalogService {
	return &CatalogService{books: books, remover: remover, assets: assets}
}

// AddBook uploads the optional cover and document concurrently and stores
// the book owned by adminID. Assets are discarded if anything fails.
func (s *CatalogService) AddBook(ctx context.Context, adminID string, in BookInput, files BookFiles) (*entities.Book, error) {
	in = trimBookInput(in)
	if in.Title == "" || in.Author == "" || in.Category == "" || in.ISBN == "" || in.Description == "" || in.BookPrice <= 0 {
		return nil, ErrBookFieldsRequired
	}

	assets, err := s.assets.UploadAll(ctx, files.prepared()...)
	if err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:       in.Title,
		Author:      in.Author,
		Category:    in.Category,
		ISBN:        in.ISBN,
		Description: in.Description,
		BookPrice:   in.BookPrice,
		AdminID:     adminID,
	}
	setCover(book, assets[0])
	setDocument(book, assets[1])

	if err := s.books.CreateBook(ctx, book); err != nil {
		s.assets.Discard(ctx, assets...)
		if errors.Is(err, ErrDuplicateKey) {
			return nil, ErrDuplicateISBN
		}
		return nil, apperr.Unexpected("Failed to add book", err)
	}
	return book, nil
}

// UpdateBook applies a partial update. New files replace the stored ones,
// which are removed once the update is saved.
func (s *CatalogService) UpdateBook(ctx context.Context, bookID string, in BookUpdate, files BookFiles) (*entities.Book, error) {
	if in.BookPrice < 0 {
		return nil, ErrInvalidBookPrice
	}

	book, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	assets, err := s.assets.UploadAll(ctx, files.prepared()...)
	if err != nil {
		return nil, err
	}

	in = BookUpdate(trimBookInput(BookInput(in)))
	book.Title = firstNonEmpty(in.Title, book.Title)
	book.Author = firstNonEmpty(in.Author, book.Author)
	book.Category = firstNonEmpty(in.Category, book.Category)
	book.ISBN = firstNonEmpty(in.ISBN, book.ISBN)
	book.Description = firstNonEmpty(in.Description, book.Description)
	if in.BookPrice > 0 {
		book.BookPrice = in.BookPrice
	}
	replaced := []*storage.Asset{
		replacedAsset(storage.ClassImage, book.CoverPublicID, assets[0]),
		replacedAsset(storage.ClassRaw, book.BookPublicID, assets[1]),
	}
	setCover(book, assets[0])
	setDocument(book, assets[1])

	if err := s.books.UpdateBook(ctx, book); err != nil {
		s.assets.Discard(ctx, assets...)
		switch {
		case errors.Is(err, ErrDuplicateKey):
			return nil, ErrDuplicateISBN
		case errors.Is(err, ErrRecordNotFound):
			return nil, ErrBookNotFound
		}
		return nil, apperr.Unexpected("Failed to update book", err)
	}
	s.assets.Discard(ctx, replaced...)
	return book, nil
}

// DeleteBook removes the book along with its borrowings and reviews, then
// schedules removal of its cover and document.
func (s *CatalogService) DeleteBook(ctx context.Context, bookID string) (*entities.Book, error) {
	book, err := s.remover.DeleteBookCascade(ctx, bookID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, apperr.Unexpected("Failed to delete book", err)
	}
	s.assets.Discard(ctx,
		storedAsset(storage.ClassImage, book.CoverPublicID),
		storedAsset(storage.ClassRaw, book.BookPublicID),
	)
	return book, nil
}

// SearchBooks finds books whose title, author, category or ISBN contains the keyword.
func (s *CatalogService) SearchBooks(ctx context.Context, keyword string) ([]entities.Book, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, ErrKeywordRequired
	}
	books, err := s.books.SearchBooks(ctx, keyword)
	if err != nil {
		return nil, apperr.Unexpected("Failed to search books", err)
	}
	return books, nil
}

func (s *CatalogService) ListBooks(ctx context.Context) ([]entities.Book, error) {
	books, err := s.books.ListBooks(ctx)
	if err != nil {
		return nil, apperr.Unexpected("Failed to get all books", err)
	}
	return books, nil
}

// ListAdminBooks returns the books uploaded by the admin, newest first.
func (s *CatalogService) ListAdminBooks(ctx context.Context, adminID string) ([]entities.Book, error) {
	books, err := s.books.ListBooksByAdmin(ctx, adminID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to fetch books", err)
	}
	return books, nil
}

func (s *CatalogService) GetBook(ctx context.Context, bookID string) (*entities.Book, error) {
	book, err := s.books.GetBookByID(ctx, bookID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, apperr.Unexpected("Failed to get book", err)
	}
	return book, nil
}

// setCover points the book at an uploaded cover image. Nil keeps the current one.
func setCover(book *entities.Book, asset *storage.Asset) {
	if asset != nil {
		book.CoverURL, book.CoverPublicID = asset.URL, asset.PublicID
	}
}

func setDocument(book *entities.Book, asset *storage.Asset) {
	if asset != nil {
		book.BookURL, book.BookPublicID = asset.URL, asset.PublicID
	}
}

func trimBookInput(in BookInput) BookInput {
	in.Title = strings.TrimSpace(in.Title)
	in.Author = strings.TrimSpace(in.Author)
	in.Category = strings.TrimSpace(in.Category)
	in.ISBN = strings.TrimSpace(in.ISBN)
	in.Description = strings.TrimSpace(in.Description)
	return in
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
