// Package users provides database operations for user accounts.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByEmail(ctx, "reader@example.com")
package users

import (
	"context"

	"gorm.io/gorm"

	"github.com/mrlokans/bookshelf/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser inserts a new user. The id is generated when empty.
func (r *Repository) CreateUser(ctx context.Context, user *entities.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUsersByIDs retrieves the users with the given ids, in no particular order.
func (r *Repository) GetUsersByIDs(ctx context.Context, ids []string) ([]entities.User, error) {
	var users []entities.User
	if len(ids) == 0 {
		return users, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error
	return users, err
}

// UpdateUser writes every column of an existing user. A user that no longer
// exists yields gorm.ErrRecordNotFound and is never re-inserted.
func (r *Repository) UpdateUser(ctx context.Context, user *entities.User) error {
	result := r.db.WithContext(ctx).Model(user).Select("*").Updates(user)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsersByRole returns how many users hold the role.
func (r *Repository) CountUsersByRole(ctx context.Context, role entities.UserRole) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.User{}).Where("role = ?", role).Count(&count).Error
	return count, err
}
