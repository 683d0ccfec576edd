package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/services"
)

func (s *Store) CreateUser(ctx context.Context, user *entities.User) error {
	if user.ID == "" {
		user.ID = entities.NewID()
	}
	now := s.now()
	user.CreatedAt, user.UpdatedAt = now, now

	_, err := s.collection(usersCollection).InsertOne(ctx, user)
	return translateError(err)
}

func (s *Store) GetUserByID(ctx context.Context, id string) (*entities.User, error) {
	return s.findUser(ctx, bson.M{"_id": id})
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*entities.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *Store) findUser(ctx context.Context, filter bson.M) (*entities.User, error) {
	var user entities.User
	if err := s.collection(usersCollection).FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translateError(err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, user *entities.User) error {
	user.UpdatedAt = s.now()
	result, err := s.collection(usersCollection).ReplaceOne(ctx, bson.M{"_id": user.ID}, user)
	if err != nil {
		return translateError(err)
	}
	if result.MatchedCount == 0 {
		return services.ErrRecordNotFound
	}
	return nil
}

func (s *Store) CountUsersByRole(ctx context.Context, role entities.UserRole) (int64, error) {
	count, err := s.collection(usersCollection).CountDocuments(ctx, bson.M{"role": role})
	return count, translateError(err)
}

// authorsByID loads the public projection of the given users.
func (s *Store) authorsByID(ctx context.Context, ids []string) (map[string]*entities.ReviewAuthor, error) {
	authors := make(map[string]*entities.ReviewAuthor, len(ids))
	if len(ids) == 0 {
		return authors, nil
	}

	cursor, err := s.collection(usersCollection).Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"fullname": 1, "email": 1}),
	)
	if err != nil {
		return nil, err
	}
	var found []entities.ReviewAuthor
	if err := cursor.All(ctx, &found); err != nil {
		return nil, err
	}
	for i := range found {
		authors[found[i].ID] = &found[i]
	}
	return authors, nil
}
