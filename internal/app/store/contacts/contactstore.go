// internal/app/store/contacts/contactstore.go
package contactstore

import (
	"context"
	"sort"
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
	return &Store{c: db.Collection("contacts")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Contact, error) {
	var c models.Contact
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// GetGlobal returns the global contact of a profile.
func (s *Store) GetGlobal(ctx context.Context, profileID primitive.ObjectID) (models.Contact, error) {
	var c models.Contact
	filter := bson.M{"_profile": profileID, "type": models.ContactTypeGlobal}
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// FindActiveLocal returns the profile's checked-in contact at locationID.
func (s *Store) FindActiveLocal(ctx context.Context, profileID primitive.ObjectID, locationID string) (models.Contact, error) {
	var c models.Contact
	filter := bson.M{
		"_profile":   profileID,
		"type":       models.ContactTypeLocal,
		"locationId": locationID,
		"status":     true,
	}
	if err := s.c.FindOne(ctx, filter).Decode(&c); err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// Upsert writes the whole document, assigning an ID and CreatedAt to new
// contacts. The stored contact is returned.
func (s *Store) Upsert(ctx context.Context, c models.Contact) (models.Contact, error) {
	now := time.Now().UTC()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	c.UpdatedAt = now
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": c.ID}, c, options.Replace().SetUpsert(true))
	if err != nil {
		return models.Contact{}, err
	}
	return c, nil
}

// ActiveLocations returns the location ids where the profile is checked in.
func (s *Store) ActiveLocations(ctx context.Context, profileID primitive.ObjectID) ([]string, error) {
	filter := bson.M{"_profile": profileID, "type": models.ContactTypeLocal, "status": true}
	vals, err := s.c.Distinct(ctx, "locationId", filter)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		if loc, ok := v.(string); ok && loc != "" {
			out = append(out, loc)
		}
	}
	sort.Strings(out)
	return out, nil
}
