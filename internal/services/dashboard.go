package services

import (
	"context"
	"fmt"

	"github.com/mrlokans/bookshelf/internal/apperr"
)

// NoRating is shown as the average when an admin's books have no reviews.
const NoRating = "N/A"

// Dashboard is the admin overview.
type Dashboard struct {
	TotalUploadedBooks int64  `json:"totalUploadedBooks"`
	TotalReviews       int64  `json:"totalReviews"`
	AvgRating          string `json:"avgRating"`
}

type DashboardService struct {
	books   BookStore
	reviews ReviewStore
}

func NewDashboardService(books BookStore, reviews ReviewStore) *DashboardService {
	return &DashboardService{books: books, reviews: reviews}
}

// Dashboard summarizes the books uploaded by adminID and the reviews on them.
func (s *DashboardService) Dashboard(ctx context.Context, adminID string) (*Dashboard, error) {
	total, err := s.books.CountBooksByAdmin(ctx, adminID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to get dashboard data", err)
	}
	stats, err := s.reviews.ReviewStatsForAdmin(ctx, adminID)
	if err != nil {
		return nil, apperr.Unexpected("Failed to get dashboard data", err)
	}

	return &Dashboard{
		TotalUploadedBooks: total,
		TotalReviews:       stats.Count,
		AvgRating:          FormatAverage(stats),
	}, nil
}

// FormatAverage renders the average rating with two decimals, or NoRating.
func FormatAverage(stats ReviewStats) string {
	if stats.Count == 0 {
		return NoRating
	}
	return fmt.Sprintf("%.2f", stats.Average)
}
