package entities

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

type Book struct {
	ID        string  `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Title     string  `gorm:"index;size:512;not null" json:"title" bson:"title"`
	Author    string  `gorm:"index;size:256;not null" json:"author" bson:"author"`
	Category  string  `gorm:"index;size:128;not null" json:"category" bson:"category"`
	ISBN      string  `gorm:"uniqueIndex;size:32;not null" json:"isbn" bson:"isbn"`
	AdminID   string  `gorm:"index;size:36;not null" json:"adminId" bson:"adminId"`
	BookPrice float64 `json:"bookPrice" bson:"bookPrice"`
	CoverURL  string  `gorm:"size:2048" json:"coverUrl" bson:"coverUrl"`
	BookURL   string  `gorm:"size:2048" json:"bookUrl" bson:"bookUrl"`
	// Storage ids of the uploaded files, kept so replaced or deleted files can be removed
	CoverPublicID string    `gorm:"size:512" json:"-" bson:"coverPublicId,omitempty"`
	BookPublicID  string    `gorm:"size:512" json:"-" bson:"bookPublicId,omitempty"`
	Description   string    `gorm:"type:text" json:"description" bson:"description"`
	CreatedAt     time.Time `gorm:"index" json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`

	// SearchText is the Unicode lower-cased concatenation of the searchable
	// fields. SQLite's LOWER() only folds ASCII, so matching runs against it.
	SearchText string `gorm:"type:text" json:"-" bson:"-"`
}

func (b *Book) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	return nil
}

// BeforeSave refreshes SearchText on every insert and update.
func (b *Book) BeforeSave(tx *gorm.DB) error {
	b.SearchText = BookSearchText(b)
	return nil
}

// BookSearchText joins the searchable fields, lower-cased, one per line.
func BookSearchText(b *Book) string {
	return strings.ToLower(strings.Join([]string{b.Title, b.Author, b.Category, b.ISBN}, "\n"))
}
