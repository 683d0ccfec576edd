package entities

import (
	"time"

	"gorm.io/gorm"
)

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	UserID    string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_user_book,priority:1" json:"userId" bson:"userId"`
	BookID    string    `gorm:"size:36;not null;uniqueIndex:idx_reviews_user_book,priority:2;index" json:"bookId" bson:"bookId"`
	Rating    int       `gorm:"not null" json:"rating" bson:"rating"`
	Comment   string    `gorm:"type:text" json:"comment" bson:"comment"`
	CreatedAt time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" bson:"updatedAt"`

	User *ReviewAuthor `gorm:"-" json:"user,omitempty" bson:"-"`
}

// ReviewAuthor is the public projection of a user shown next to a review.
type ReviewAuthor struct {
	ID       string `json:"_id" bson:"_id"`
	Fullname string `json:"fullname" bson:"fullname"`
	Email    string `json:"email" bson:"email"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = NewID()
	}
	return nil
}

// ValidRating reports whether rating is within the accepted range.
func ValidRating(rating int) bool {
	return rating >= MinRating && rating <= MaxRating
}
