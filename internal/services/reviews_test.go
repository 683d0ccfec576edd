package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

func TestReviewService_UpsertReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewReviewService(f.db, f.db, f.db)
	book := f.createBook(t, "isbn-1")

	for _, rating := range []int{0, 6} {
		_, _, err := svc.UpsertReview(ctx, f.member.ID, book.ID, rating, "")
		assert.ErrorIs(t, err, services.ErrInvalidRating, "rating %d", rating)
	}

	_, _, err := svc.UpsertReview(ctx, f.member.ID, "missing", 3, "")
	assert.ErrorIs(t, err, services.ErrBookNotFound)

	review, created, err := svc.UpsertReview(ctx, f.member.ID, book.ID, 3, " fine ")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "fine", review.Comment)

	updated, created, err := svc.UpsertReview(ctx, f.member.ID, book.ID, 5, "great")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, review.ID, updated.ID)
	assert.Equal(t, 5, updated.Rating)

	reviews, err := svc.ListForBook(ctx, book.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].User)
	assert.Equal(t, f.member.Email, reviews[0].User.Email)
}

func TestReviewService_DeleteReview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	svc := services.NewReviewService(f.db, f.db, f.db)
	book := f.createBook(t, "isbn-1")
	other := f.createUser(t, "other@example.com", entities.UserRoleMember)

	newReview := func(t *testing.T) *entities.Review {
		t.Helper()
		review, _, err := svc.UpsertReview(ctx, f.member.ID, book.ID, 4, "")
		require.NoError(t, err)
		return review
	}

	t.Run("other member is forbidden", func(t *testing.T) {
		review := newReview(t)
		_, err := svc.DeleteReview(ctx, other.ID, review.ID)
		assert.ErrorIs(t, err, services.ErrReviewForbidden)
	})

	t.Run("author can delete", func(t *testing.T) {
		review := newReview(t)
		deleted, err := svc.DeleteReview(ctx, f.member.ID, review.ID)
		require.NoError(t, err)
		assert.Equal(t, review.ID, deleted.ID)
	})

	t.Run("admin can delete", func(t *testing.T) {
		review := newReview(t)
		_, err := svc.DeleteReview(ctx, f.admin.ID, review.ID)
		require.NoError(t, err)

		_, err = svc.DeleteReview(ctx, f.admin.ID, review.ID)
		assert.ErrorIs(t, err, services.ErrReviewNotFound)
	})
}
