// Package reviews provides database operations for book reviews.
package reviews

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Stats summarizes a set of reviews. Average is nil when there are none.
type Stats struct {
	Count   int64
	Average *float64
}

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// UpsertReview inserts the review or, when the user already reviewed the
// book, overwrites its rating and comment. The stored review is copied back
// into review. Reports whether a new review was created.
func (r *Repository) UpsertReview(ctx context.Context, review *entities.Review) (bool, error) {
	created := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&entities.Review{}).
			Where("user_id = ? AND book_id = ?", review.UserID, review.BookID).
			Count(&existing).Error; err != nil {
			return err
		}
		created = existing == 0

		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "book_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"rating", "comment", "updated_at"}),
		}).Create(review).Error
		if err != nil {
			return err
		}

		var stored entities.Review
		if err := tx.Where("user_id = ? AND book_id = ?", review.UserID, review.BookID).First(&stored).Error; err != nil {
			return err
		}
		*review = stored
		return nil
	})
	return created, err
}

func (r *Repository) GetReviewByID(ctx context.Context, id string) (*entities.Review, error) {
	var review entities.Review
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&review).Error
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// ListReviewsByBook returns the reviews of a book, newest first, each with
// its author's public fields.
func (r *Repository) ListReviewsByBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	reviews := []entities.Review{}
	err := r.db.WithContext(ctx).Where("book_id = ?", bookID).Order("created_at DESC").Find(&reviews).Error
	if err != nil || len(reviews) == 0 {
		return reviews, err
	}

	userIDs := make([]string, 0, len(reviews))
	for _, review := range reviews {
		userIDs = append(userIDs, review.UserID)
	}

	var authors []entities.ReviewAuthor
	err = r.db.WithContext(ctx).Model(&entities.User{}).
		Select("id", "fullname", "email").
		Where("id IN ?", userIDs).
		Find(&authors).Error
	if err != nil {
		return nil, err
	}

	byID := make(map[string]*entities.ReviewAuthor, len(authors))
	for i := range authors {
		byID[authors[i].ID] = &authors[i]
	}
	for i := range reviews {
		reviews[i].User = byID[reviews[i].UserID]
	}
	return reviews, nil
}

// DeleteReview removes a review and reports whether it existed.
func (r *Repository) DeleteReview(ctx context.Context, id string) (bool, error) {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entities.Review{})
	return result.RowsAffected > 0, result.Error
}

func (r *Repository) DeleteReviewsByBook(ctx context.Context, bookID string) (int64, error) {
	result := r.db.WithContext(ctx).Where("book_id = ?", bookID).Delete(&entities.Review{})
	return result.RowsAffected, result.Error
}

// StatsForAdmin aggregates the reviews on every book uploaded by adminID.
func (r *Repository) StatsForAdmin(ctx context.Context, adminID string) (Stats, error) {
	var stats Stats
	err := r.db.WithContext(ctx).Model(&entities.Review{}).
		Select("COUNT(reviews.id) AS count, AVG(reviews.rating) AS average").
		Joins("JOIN books ON books.id = reviews.book_id").
		Where("books.admin_id = ?", adminID).
		Scan(&stats).Error
	return stats, err
}
