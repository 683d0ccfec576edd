package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBooksController_AddBook(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.signUp(t, "Admin", "admin@example.com", "admin")
	memberToken := app.signUp(t, "Reader", "reader@example.com", "member")

	t.Run("stores the book with its cover", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"title":       "Concurrency in Go",
			"author":      "Katherine Cox-Buday",
			"category":    "Programming",
			"isbn":        "978-1491941195",
			"description": "Tools and techniques",
			"bookPrice":   "29.5",
		}, map[string]testFile{
			"cover": {name: "cover.png", content: "cover-bytes"},
			"book":  {name: "book.pdf", content: "%PDF-1.4"},
		})
		w := app.do(http.MethodPost, "/api/book/add", body, contentType, adminToken)

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decode(t, w)
		assert.Equal(t, "Book added successfully", resp["message"])
		book := object(t, resp, "book")
		assert.Equal(t, 29.5, book["bookPrice"])
		assert.NotEmpty(t, book["adminId"])

		coverURL := book["coverUrl"].(string)
		require.True(t, strings.HasPrefix(coverURL, "http://localhost/uploads/image/covers/"), coverURL)
		assert.True(t, strings.HasPrefix(book["bookUrl"].(string), "http://localhost/uploads/raw/books/"))

		// The cover is served from the uploads directory
		w = app.do(http.MethodGet, strings.TrimPrefix(coverURL, "http://localhost"), nil, "", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cover-bytes", w.Body.String())
	})

	t.Run("rejects a duplicate isbn", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{
			"title": "Copy", "author": "A", "category": "C", "isbn": "978-1491941195",
			"description": "D", "bookPrice": "10",
		}, nil)
		w := app.do(http.MethodPost, "/api/book/add", body, contentType, adminToken)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "A book with this ISBN already exists", decode(t, w)["message"])
	})

	t.Run("requires every field", func(t *testing.T) {
		for _, price := range []string{"", "0", "-3"} {
			body, contentType := multipartBody(t, map[string]string{
				"title": "T", "author": "A", "category": "C", "isbn": "1",
				"description": "D", "bookPrice": price,
			}, nil)
			w := app.do(http.MethodPost, "/api/book/add", body, contentType, adminToken)

			assert.Equal(t, http.StatusBadRequest, w.Code, "price %q", price)
			assert.Equal(t, "All fields are required", decode(t, w)["message"])
		}
	})

	t.Run("members cannot add books", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"title": "Nope"}, nil)
		w := app.do(http.MethodPost, "/api/book/add", body, contentType, memberToken)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "You do not have permission to perform this action", decode(t, w)["message"])
	})
}

func TestBooksController_ListAndGet(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.signUp(t, "Admin", "admin@example.com", "admin")
	memberToken := app.signUp(t, "Reader", "reader@example.com", "member")

	w := app.do(http.MethodGet, "/api/book/getAll", nil, "", memberToken)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.Equal(t, "No books available", resp["message"])
	assert.Empty(t, list(t, resp, "books"))

	bookID := app.addBook(t, adminToken, "Learning Go", "978-1492077213")
	app.addBook(t, adminToken, "Go in Action", "978-1617291784")

	w = app.do(http.MethodGet, "/api/book/getAll", nil, "", memberToken)
	resp = decode(t, w)
	assert.Equal(t, "List of all books", resp["message"])
	assert.Len(t, list(t, resp, "books"), 2)

	w = app.do(http.MethodGet, "/api/book/get/"+bookID, nil, "", memberToken)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode(t, w)
	assert.Equal(t, "Book retrieved successfully", resp["message"])
	assert.Equal(t, "Learning Go", object(t, resp, "book")["title"])

	w = app.do(http.MethodGet, "/api/book/get/missing", nil, "", memberToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book not found", decode(t, w)["message"])

	w = app.do(http.MethodGet, "/api/book/getAll", nil, "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBooksController_SearchBooks(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.signUp(t, "Admin", "admin@example.com", "admin")
	app.addBook(t, adminToken, "Network Programming with Go", "978-1718500884")

	tests := []struct {
		name    string
		query   string
		status  int
		message string
		count   int
	}{
		{"matches title case-insensitively", "?keyword=network", http.StatusOK, "Search results", 1},
		{"matches isbn", "?keyword=1718500", http.StatusOK, "Search results", 1},
		{"no matches", "?keyword=rust", http.StatusOK, "No books found", 0},
		{"missing keyword", "", http.StatusBadRequest, "Search keyword is required", -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.do(http.MethodGet, "/api/book/search"+tt.query, nil, "", "")

			assert.Equal(t, tt.status, w.Code)
			resp := decode(t, w)
			assert.Equal(t, tt.message, resp["message"])
			if tt.count >= 0 {
				assert.Len(t, list(t, resp, "books"), tt.count)
			}
		})
	}
}

func TestBooksController_UpdateBook(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.signUp(t, "Admin", "admin@example.com", "admin")
	bookID := app.addBook(t, adminToken, "Draft Title", "111")
	app.addBook(t, adminToken, "Other", "222")

	t.Run("applies a partial update", func(t *testing.T) {
		body, contentType := multipartBody(t, map[string]string{"title": "Final Title", "bookPrice": "12"}, nil)
		w := app.do(http.MethodPost, "/api/book/update/"+bookID, body, contentType, adminToken)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		resp := decode(t, w)
		assert.Equal(t, "Book updated successfully", resp["message"])
		book := object(t, resp, "book")
		assert.Equal(t, "Final Title", book["title"])
		assert.Equal(t, "Alan Donovan", book["author"])
		assert.Equal(t, float64(12), book["bookPrice"])
	})

	t.Run("rejects an isbn collision", func(t *testing.T) {
		w := app.doJSON(http.MethodPost, "/api/book/update/"+bookID, gin.H{"isbn": "222"}, adminToken)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "A book with this ISBN already exists", decode(t, w)["message"])
	})

	t.Run("rejects a negative price", func(t *testing.T) {
		w := app.doJSON(http.MethodPost, "/api/book/update/"+bookID, gin.H{"bookPrice": -1}, adminToken)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Book price must be a positive number", decode(t, w)["message"])
	})

	t.Run("unknown book", func(t *testing.T) {
		w := app.doJSON(http.MethodPost, "/api/book/update/missing", gin.H{"title": "X"}, adminToken)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestBooksController_DeleteBookCascades(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.signUp(t, "Admin", "admin@example.com", "admin")
	memberToken := app.signUp(t, "Reader", "reader@example.com", "member")
	bookID := app.addBook(t, adminToken, "Doomed", "333")

	w := app.doJSON(http.MethodPost, "/api/book/borrow", gin.H{"bookId": bookID, "accessType": "Buy"}, memberToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = app.doJSON(http.MethodPost, "/api/reviews/add/"+bookID, gin.H{"rating": 5, "comment": "Great"}, memberToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = app.do(http.MethodDelete, "/api/book/delete/"+bookID, nil, "", memberToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = app.do(http.MethodDelete, "/api/book/delete/"+bookID, nil, "", adminToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Book deleted successfully", decode(t, w)["message"])

	w = app.do(http.MethodGet, "/api/user/borrowedBooks", nil, "", memberToken)
	assert.Equal(t, float64(0), decode(t, w)["count"])

	w = app.do(http.MethodGet, "/api/reviews/getAll/"+bookID, nil, "", "")
	assert.Empty(t, list(t, decode(t, w), "reviews"))

	// The legacy GET form reports a missing book
	w = app.do(http.MethodGet, "/api/book/delete/"+bookID, nil, "", adminToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBooksController_Borrow(t *testing.T) {
	app := newTestApp(t)
	adminToken := app.signUp(t, "Admin", "admin@example.com", "admin")
	memberToken := app.signUp(t, "Reader", "reader@example.com", "member")
	bookID := app.addBook(t, adminToken, "Borrowable", "444")

	w := app.doJSON(http.MethodPost, "/api/book/borrow", gin.H{"bookId": bookID, "accessType": "Subscribe"}, memberToken)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	assert.Equal(t, "Book borrowed successfully", resp["message"])
	record := object(t, resp, "borrowingRecord")
	assert.Equal(t, "Subscribe", record["accessType"])
	assert.NotNil(t, record["accessExpiry"])

	tests := []struct {
		name    string
		payload gin.H
		status  int
		message string
	}{
		{"already borrowed", gin.H{"bookId": bookID, "accessType": "Buy"}, http.StatusBadRequest, "User has already borrowed this book"},
		{"missing access type", gin.H{"bookId": bookID}, http.StatusBadRequest, "Book ID and access type are required"},
		{"invalid access type", gin.H{"bookId": bookID, "accessType": "Rent"}, http.StatusBadRequest, "Invalid access type"},
		{"unknown book", gin.H{"bookId": "missing", "accessType": "Buy"}, http.StatusNotFound, "Book not found"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := app.doJSON(http.MethodPost, "/api/book/borrow", tt.payload, memberToken)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.message, decode(t, w)["message"])
		})
	}

	t.Run("lists borrowed books", func(t *testing.T) {
		w := app.do(http.MethodGet, "/api/book/getAllborrowedBooks", nil, "", memberToken)

		require.Equal(t, http.StatusOK, w.Code)
		resp := decode(t, w)
		assert.Equal(t, "All borrowed books", resp["message"])
		borrowed := list(t, resp, "borrowedBooks")
		require.Len(t, borrowed, 1)
		book := borrowed[0].(map[string]any)["book"].(map[string]any)
		assert.Equal(t, "Borrowable", book["title"])
	})

	t.Run("empty list for a new member", func(t *testing.T) {
		otherToken := app.signUp(t, "Other", "other@example.com", "member")
		w := app.do(http.MethodGet, "/api/book/getAllborrowedBooks", nil, "", otherToken)

		resp := decode(t, w)
		assert.Equal(t, "No borrowed books found", resp["message"])
		assert.Empty(t, list(t, resp, "borrowedBooks"))
	})
}
