package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

type BooksController struct {
	catalog   *services.CatalogService
	borrowing *services.BorrowingService
	auditor   *audit.Service
}

func NewBooksController(catalog *services.CatalogService, borrowing *services.BorrowingService, auditor *audit.Service) *BooksController {
	return &BooksController{
		catalog:   catalog,
		borrowing: borrowing,
		auditor:   auditor,
	}
}

// bookFiles opens the optional "cover" and "book" multipart files.
func bookFiles(c *gin.Context) (services.BookFiles, func(), error) {
	cover, closeCover, err := formUpload(c, "cover")
	if err != nil {
		return services.BookFiles{}, func() {}, err
	}
	document, closeDocument, err := formUpload(c, "book")
	if err != nil {
		closeCover()
		return services.BookFiles{}, func() {}, err
	}
	return services.BookFiles{Cover: cover, Document: document}, func() {
		closeCover()
		closeDocument()
	}, nil
}

func (bc *BooksController) AddBook(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req bookRequest
	if !bind(c, &req, bookRules) {
		return
	}
	files, closeFiles, err := bookFiles(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFiles()

	book, err := bc.catalog.AddBook(c.Request.Context(), identity.UserID, services.BookInput{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		ISBN:        req.ISBN,
		Description: req.Description,
		BookPrice:   req.BookPrice,
	}, files)
	bookID := ""
	if book != nil {
		bookID = book.ID
	}
	bc.auditor.LogCatalog(identity.UserID, audit.ActionBookAdd, bookID, req.Title, err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondCreated(c, "Book added successfully", gin.H{"book": book})
}

func (bc *BooksController) GetAllBooks(c *gin.Context) {
	books, err := bc.catalog.ListBooks(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	if len(books) == 0 {
		respondOK(c, "No books available", gin.H{"books": []entities.Book{}})
		return
	}
	respondOK(c, "List of all books", gin.H{"books": books})
}

func (bc *BooksController) GetBook(c *gin.Context) {
	book, err := bc.catalog.GetBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Book retrieved successfully", gin.H{"book": book})
}

func (bc *BooksController) UpdateBook(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req bookUpdateRequest
	if !bind(c, &req, updateRules) {
		return
	}
	files, closeFiles, err := bookFiles(c)
	if err != nil {
		respondError(c, err)
		return
	}
	defer closeFiles()

	bookID := c.Param("bookId")
	book, err := bc.catalog.UpdateBook(c.Request.Context(), bookID, services.BookUpdate{
		Title:       req.Title,
		Author:      req.Author,
		Category:    req.Category,
		ISBN:        req.ISBN,
		Description: req.Description,
		BookPrice:   req.BookPrice,
	}, files)
	title := req.Title
	if book != nil {
		title = book.Title
	}
	bc.auditor.LogCatalog(identity.UserID, audit.ActionBookUpdate, bookID, title, err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Book updated successfully", gin.H{"book": book})
}

// DeleteBook removes the book with its borrowings and reviews.
func (bc *BooksController) DeleteBook(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	bookID := c.Param("bookId")
	book, err := bc.catalog.DeleteBook(c.Request.Context(), bookID)
	title := ""
	if book != nil {
		title = book.Title
	}
	bc.auditor.LogCatalog(identity.UserID, audit.ActionBookDelete, bookID, title, err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Book deleted successfully", gin.H{"book": book})
}

func (bc *BooksController) SearchBooks(c *gin.Context) {
	books, err := bc.catalog.SearchBooks(c.Request.Context(), c.Query("keyword"))
	if err != nil {
		respondError(c, err)
		return
	}

	if len(books) == 0 {
		respondOK(c, "No books found", gin.H{"books": []entities.Book{}})
		return
	}
	respondOK(c, "Search results", gin.H{"books": books})
}

func (bc *BooksController) BorrowBook(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req borrowRequest
	if !bind(c, &req, borrowRules) {
		return
	}

	accessType := entities.AccessType(req.AccessType)
	record, err := bc.borrowing.Borrow(c.Request.Context(), identity.UserID, req.BookID, accessType)
	bc.auditor.LogBorrow(identity.UserID, audit.ActionBorrow, req.BookID, accessType, err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Book borrowed successfully", gin.H{"borrowingRecord": record})
}

// GetAllBorrowedBooks lists the caller's borrowings with their books, newest first.
func (bc *BooksController) GetAllBorrowedBooks(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	borrowings, err := bc.borrowing.ListBorrowed(c.Request.Context(), identity.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "All borrowed books"
	if len(borrowings) == 0 {
		message = "No borrowed books found"
		borrowings = []entities.Borrowing{}
	}
	respondOK(c, message, gin.H{"borrowedBooks": borrowings})
}
