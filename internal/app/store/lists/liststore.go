// internal/app/store/lists/liststore.go
package liststore

import (
	"context"
	"time"

	"github.com/dalemusser/hidapi/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("lists")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.List, error) {
	var l models.List
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		return models.List{}, err
	}
	return l, nil
}

func (s *Store) Upsert(ctx context.Context, l models.List) (models.List, error) {
	now := time.Now().UTC()
	if l.ID.IsZero() {
		l.ID = primitive.NewObjectID()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = now
	}
	l.UpdatedAt = now
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": l.ID}, l, options.Replace().SetUpsert(true))
	if err != nil {
		return models.List{}, err
	}
	return l, nil
}

// Remove deletes a list. Returns the number of documents deleted (0 or 1).
func (s *Store) Remove(ctx context.Context, id primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

// ListByOwner returns a user's lists ordered by name.
func (s *Store) ListByOwner(ctx context.Context, userID string) ([]models.List, error) {
	cur, err := s.c.Find(ctx, bson.M{"userid": userID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.List{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
