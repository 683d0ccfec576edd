package entities

import (
	"time"

	"gorm.io/gorm"
)

type AccessType string

const (
	AccessTypeBuy       AccessType = "Buy"
	AccessTypeSubscribe AccessType = "Subscribe"
)

// SubscriptionPeriod is how long a Subscribe borrowing grants access.
const SubscriptionPeriod = 10 * 24 * time.Hour

// Valid reports whether the access type is Buy or Subscribe.
func (a AccessType) Valid() bool {
	return a == AccessTypeBuy || a == AccessTypeSubscribe
}

type Borrowing struct {
	ID           string     `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	UserID       string     `gorm:"size:36;not null;uniqueIndex:idx_borrowings_user_book,priority:1" json:"userId" bson:"userId"`
	BookID       string     `gorm:"size:36;not null;uniqueIndex:idx_borrowings_user_book,priority:2;index" json:"bookId" bson:"bookId"`
	AccessType   AccessType `gorm:"size:20;not null" json:"accessType" bson:"accessType"`
	AccessExpiry *time.Time `json:"accessExpiry" bson:"accessExpiry"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt" bson:"updatedAt"`

	Book *Book `gorm:"foreignKey:BookID" json:"book,omitempty" bson:"-"`
}

func (b *Borrowing) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// NewBorrowing builds a borrowing record created at now. Subscribe access
// expires after SubscriptionPeriod; Buy access never expires.
func NewBorrowing(userID, bookID string, accessType AccessType, now time.Time) *Borrowing {
	b := &Borrowing{
		ID:         NewID(),
		UserID:     userID,
		BookID:     bookID,
		AccessType: accessType,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if accessType == AccessTypeSubscribe {
		expiry := now.Add(SubscriptionPeriod)
		b.AccessExpiry = &expiry
	}
	return b
}

// Expired reports whether a subscription has run out at the given time.
func (b *Borrowing) Expired(at time.Time) bool {
	return b.AccessExpiry != nil && at.After(*b.AccessExpiry)
}
