package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

// UpsertReview writes the review keyed on (userId, bookId) with a single
// upserting update, then loads the stored document back into review.
func (s *Store) UpsertReview(ctx context.Context, review *entities.Review) (bool, error) {
	now := s.now()
	filter := bson.M{"userId": review.UserID, "bookId": review.BookID}
	update := bson.M{
		"$set": bson.M{
			"rating":    review.Rating,
			"comment":   review.Comment,
			"updatedAt": now,
		},
		"$setOnInsert": bson.M{
			"_id":       entities.NewID(),
			"createdAt": now,
		},
	}

	result, err := s.collection(reviewsCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return false, translateError(err)
	}

	var stored entities.Review
	if err := s.collection(reviewsCollection).FindOne(ctx, filter).Decode(&stored); err != nil {
		return false, translateError(err)
	}
	*review = stored
	return result.UpsertedCount > 0, nil
}

func (s *Store) GetReviewByID(ctx context.Context, id string) (*entities.Review, error) {
	var review entities.Review
	if err := s.collection(reviewsCollection).FindOne(ctx, bson.M{"_id": id}).Decode(&review); err != nil {
		return nil, translateError(err)
	}
	return &review, nil
}

func (s *Store) ListReviewsByBook(ctx context.Context, bookID string) ([]entities.Review, error) {
	cursor, err := s.collection(reviewsCollection).Find(ctx,
		bson.M{"bookId": bookID},
		options.Find().SetSort(newestFirst),
	)
	if err != nil {
		return nil, translateError(err)
	}
	reviews := []entities.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, translateError(err)
	}

	userIDs := make([]string, 0, len(reviews))
	for _, review := range reviews {
		userIDs = append(userIDs, review.UserID)
	}
	authors, err := s.authorsByID(ctx, userIDs)
	if err != nil {
		return nil, translateError(err)
	}
	for i := range reviews {
		reviews[i].User = authors[reviews[i].UserID]
	}
	return reviews, nil
}

func (s *Store) DeleteReview(ctx context.Context, id string) error {
	result, err := s.collection(reviewsCollection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return translateError(err)
	}
	if result.DeletedCount == 0 {
		return services.ErrRecordNotFound
	}
	return nil
}

// ReviewStatsForAdmin counts and averages the reviews on the admin's books.
func (s *Store) ReviewStatsForAdmin(ctx context.Context, adminID string) (services.ReviewStats, error) {
	cursor, err := s.collection(booksCollection).Find(ctx,
		bson.M{"adminId": adminID},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return services.ReviewStats{}, translateError(err)
	}
	var owned []struct {
		ID string `bson:"_id"`
	}
	if err := cursor.All(ctx, &owned); err != nil {
		return services.ReviewStats{}, translateError(err)
	}
	if len(owned) == 0 {
		return services.ReviewStats{}, nil
	}

	bookIDs := make([]string, 0, len(owned))
	for _, book := range owned {
		bookIDs = append(bookIDs, book.ID)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bookId": bson.M{"$in": bookIDs}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.M{"$sum": 1}},
			{Key: "average", Value: bson.M{"$avg": "$rating"}},
		}}},
	}
	agg, err := s.collection(reviewsCollection).Aggregate(ctx, pipeline)
	if err != nil {
		return services.ReviewStats{}, translateError(err)
	}
	var groups []struct {
		Count   int64   `bson:"count"`
		Average float64 `bson:"average"`
	}
	if err := agg.All(ctx, &groups); err != nil {
		return services.ReviewStats{}, translateError(err)
	}
	if len(groups) == 0 {
		return services.ReviewStats{}, nil
	}
	return services.ReviewStats{Count: groups[0].Count, Average: groups[0].Average}, nil
}
