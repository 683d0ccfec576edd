package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookshelf/internal/audit"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

type ReviewsController struct {
	reviews *services.ReviewService
	auditor *audit.Service
}

func NewReviewsController(reviews *services.ReviewService, auditor *audit.Service) *ReviewsController {
	return &ReviewsController{reviews: reviews, auditor: auditor}
}

// AddReview creates the caller's review of the book, or updates it when
// one already exists.
func (rc *ReviewsController) AddReview(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	var req reviewRequest
	if !bind(c, &req, reviewRules) {
		return
	}

	review, created, err := rc.reviews.UpsertReview(c.Request.Context(), identity.UserID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}

	message := "Review updated successfully"
	if created {
		message = "Review added successfully"
	}
	respondOK(c, message, gin.H{"review": review})
}

func (rc *ReviewsController) GetReviews(c *gin.Context) {
	reviews, err := rc.reviews.ListForBook(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if reviews == nil {
		reviews = []entities.Review{}
	}

	respondOK(c, "Reviews fetched successfully", gin.H{"reviews": reviews})
}

// DeleteReview removes a review owned by the caller. Admins may delete any review.
func (rc *ReviewsController) DeleteReview(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}

	reviewID := c.Param("id")
	_, err := rc.reviews.DeleteReview(c.Request.Context(), identity.UserID, reviewID)
	rc.auditor.LogReview(identity.UserID, audit.ActionReviewDelete, reviewID, err)
	if err != nil {
		respondError(c, err)
		return
	}

	respondOK(c, "Review deleted successfully", nil)
}
