package entities

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string

const (
	UserRoleAdmin  UserRole = "admin"
	UserRoleMember UserRole = "member"
)

// Valid reports whether the role is one of the known roles.
func (r UserRole) Valid() bool {
	return r == UserRoleAdmin || r == UserRoleMember
}

type Profile struct {
	Bio          string `gorm:"size:1000" json:"bio" bson:"bio"`
	ProfilePhoto string `gorm:"size:2048" json:"profilePhoto" bson:"profilePhoto"`
	// Storage id of the uploaded photo, kept so a replaced photo can be removed
	PhotoPublicID string `gorm:"size:512" json:"-" bson:"photoPublicId,omitempty"`
}

type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"_id" bson:"_id"`
	Fullname     string    `gorm:"size:255;not null" json:"fullname" bson:"fullname"`
	Email        string    `gorm:"uniqueIndex;size:255;not null" json:"email" bson:"email"`
	PasswordHash string    `gorm:"size:255;not null" json:"-" bson:"password"`
	PhoneNumber  string    `gorm:"size:32" json:"phoneNumber,omitempty" bson:"phoneNumber,omitempty"`
	Role         UserRole  `gorm:"size:20;index;not null" json:"role" bson:"role"`
	Profile      Profile   `gorm:"embedded;embeddedPrefix:profile_" json:"profile" bson:"profile"`
	CreatedAt    time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt" bson:"updatedAt"`

	// BorrowedBooks is derived from the user's borrowing records and never stored.
	BorrowedBooks []string `gorm:"-" json:"borrowedBooks" bson:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}
