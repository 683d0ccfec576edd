package docstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/bookshelf/internal/entities"
)

func (s *Store) LogEvent(ctx context.Context, event *entities.AuditEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = s.now()
	}
	_, err := s.collection(auditCollection).InsertOne(ctx, event)
	return err
}

func (s *Store) GetEvents(ctx context.Context, filter entities.AuditEventFilter) ([]entities.AuditEvent, int64, error) {
	filter = filter.Normalize()

	query := bson.M{}
	if filter.UserID != "" {
		query["userId"] = filter.UserID
	}
	if filter.EventType != "" {
		query["eventType"] = filter.EventType
	}

	total, err := s.collection(auditCollection).CountDocuments(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	cursor, err := s.collection(auditCollection).Find(ctx, query,
		options.Find().
			SetSort(newestFirst).
			SetSkip(int64(filter.Offset)).
			SetLimit(int64(filter.Limit)),
	)
	if err != nil {
		return nil, 0, err
	}
	events := []entities.AuditEvent{}
	if err := cursor.All(ctx, &events); err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

func (s *Store) DeleteOldEvents(ctx context.Context, olderThan time.Time) (int64, error) {
	result, err := s.collection(auditCollection).DeleteMany(ctx, bson.M{"createdAt": bson.M{"$lt": olderThan}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}
