// internal/app/store/services/servicestore.go
package servicestore

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
	return &Store{c: db.Collection("services")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Service, error) {
	var svc models.Service
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&svc); err != nil {
		return models.Service{}, err
	}
	return svc, nil
}

func (s *Store) Upsert(ctx context.Context, svc models.Service) (models.Service, error) {
	now := time.Now().UTC()
	if svc.ID.IsZero() {
		svc.ID = primitive.NewObjectID()
	}
	if svc.CreatedAt.IsZero() {
		svc.CreatedAt = now
	}
	svc.UpdatedAt = now
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": svc.ID}, svc, options.Replace().SetUpsert(true))
	if err != nil {
		return models.Service{}, err
	}
	return svc, nil
}

// ListActiveAt returns the visible, active services of a location.
func (s *Store) ListActiveAt(ctx context.Context, locationID string) ([]models.Service, error) {
	filter := bson.M{"locationId": locationID, "status": true, "hidden": false}
	cur, err := s.c.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []models.Service{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
