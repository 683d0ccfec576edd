package services

import (
	"context"
	"errors"
	"strings"

	"github.com/mrlokans/bookshelf/internal/apperr"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/storage"
)

// ProfileUpdate carries the optional profile fields. Empty values keep the
// stored ones.
type ProfileUpdate struct {
	Fullname    string
	Email       string
	PhoneNumber string
	Bio         string
}

type ProfileService struct {
	users      UserStore
	borrowings BorrowingStore
	assets     *AssetUploader
}

func NewProfileService(users UserStore, borrowings BorrowingStore, assets *AssetUploader) *ProfileService {
	return &ProfileService{users: users, borrowings: borrowings, assets: assets}
}

// GetUser returns the user with the derived borrowed book ids.
func (s *ProfileService) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	return loadUserWithBorrowed(ctx, s.users, s.borrowings, userID)
}

// UpdateProfile applies the changes and, when photo is set, replaces the
// profile photo with the uploaded image and removes the previous one.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate, photo *storage.Upload) (*entities.User, error) {
	user, err := s.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if photo != nil {
		photo.Class, photo.Folder = storage.ClassImage, ProfilesFolder
	}
	assets, err := s.assets.UploadAll(ctx, photo)
	if err != nil {
		return nil, err
	}

	user.Fullname = firstNonEmpty(strings.TrimSpace(in.Fullname), user.Fullname)
	user.Email = firstNonEmpty(NormalizeEmail(in.Email), user.Email)
	user.PhoneNumber = firstNonEmpty(strings.TrimSpace(in.PhoneNumber), user.PhoneNumber)
	user.Profile.Bio = firstNonEmpty(strings.TrimSpace(in.Bio), user.Profile.Bio)
	replaced := replacedAsset(storage.ClassImage, user.Profile.PhotoPublicID, assets[0])
	if photo := assets[0]; photo != nil {
		user.Profile.ProfilePhoto, user.Profile.PhotoPublicID = photo.URL, photo.PublicID
	}

	if err := s.users.UpdateUser(ctx, user); err != nil {
		s.assets.Discard(ctx, assets...)
		switch {
		case errors.Is(err, ErrDuplicateKey):
			return nil, ErrEmailExists
		case errors.Is(err, ErrRecordNotFound):
			return nil, ErrUserNotFound
		}
		return nil, apperr.Unexpected("Failed to update profile", err)
	}
	s.assets.Discard(ctx, replaced)
	return user, nil
}

// NormalizeEmail trims and lower-cases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
