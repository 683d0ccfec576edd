package services

import "github.com/mrlokans/bookshelf/internal/apperr"

// Workflow errors. Each is a single value so callers can match it with errors.Is.
var (
	ErrUserNotFound   = apperr.NotFound("User not found")
	ErrBookNotFound   = apperr.NotFound("Book not found")
	ErrReviewNotFound = apperr.NotFound("Review not found")

	ErrBorrowFieldsRequired = apperr.Validation("Book ID and access type are required")
	ErrBookIDRequired       = apperr.Validation("Book ID is required")
	ErrInvalidAccessType    = apperr.Validation("Invalid access type")
	ErrAlreadyBorrowed      = apperr.Conflict("User has already borrowed this book")
	ErrAlreadyInLibrary     = apperr.Conflict("Book already borrowed")

	ErrBookFieldsRequired = apperr.Validation("All fields are required")
	ErrInvalidBookPrice   = apperr.Validation("Book price must be a positive number")
	ErrDuplicateISBN      = apperr.Conflict("A book with this ISBN already exists")
	ErrKeywordRequired    = apperr.Validation("Search keyword is required")

	ErrInvalidRating   = apperr.Validation("Rating must be between 1 and 5")
	ErrReviewForbidden = apperr.Forbidden("Unauthorized to delete this review")

	ErrEmailExists = apperr.Conflict("Email already exists")
)
