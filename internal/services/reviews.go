package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
)

type ReviewService struct {
	users   UserStore
	books   BookStore
	reviews ReviewStore
}

func NewReviewService(users UserStore, books BookStore, reviews ReviewStore) *ReviewService {
	return &ReviewService{users: users, books: books, reviews: reviews}
}

// UpsertReview creates the user's review of the book, or replaces its rating
// and comment when one exists. Reports whether a review was created.
func (s *ReviewService) UpsertReview(ctx context.Context, userID, bookID string, rating int, comment string) (*entities.Review, bool, error) {
	if !entities.ValidRating(rating) {
		return nil, false, ErrInvalidRating
	}
	if _, err := findUser(ctx, s.users, userID); err != nil {
		return nil, false, err
	}
	if _, err := s.books.GetBookByID(ctx, bookID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, false, ErrBookNotFound
		}
		return nil, false, apperr.Unexpected("Failed to add review", err)
	}

	review := &entities.Review{
		UserID:  userID,
		BookID:  bookID,
		Rating:  rating,
		Comment: strings.TrimSpace(comment),
	}
	created, err := s.reviews.UpsertReview(ctx, review)
	if err != nil {
		return nil, false, apperr.Unexpected("Failed to add review", err)
	}
	return review, created, nil
}

// ListForBook returns the book's reviews with their authors, newest first.
func (s *ReviewService) ListForBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	reviews, err := s.reviews.ListReviewsByBook(ctx, bookID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to get reviews", err)
	}
	return reviews, nil
}

// DeleteReview removes a review. Only its author or an admin may delete it.
func (s *ReviewService) DeleteReview(ctx context.Context, requesterID, reviewID string) (*entities.Review, error) {
	review, err := s.reviews.GetReviewByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, apperr.Unexpected("Failed to delete review", err)
	}

	requester, err := findUser(ctx, s.users, requesterID)
	if err != nil {
		return nil, err
	}
	if review.UserID != requester.ID && !requester.IsAdmin() {
		return nil, ErrReviewForbidden
	}

	if err := s.reviews.DeleteReview(ctx, reviewID); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrReviewNotFound
		}
		return nil, apperr.Unexpected("Failed to delete review", err)
	}
	return review, nil
}
