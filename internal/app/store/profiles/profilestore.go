// internal/app/store/profiles/profilestore.go
package profilestore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/hidapi/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var ErrDuplicateUserID = errors.New("a profile with this userid already exists")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// GetByUserID looks a profile up by its external identity string.
func (s *Store) GetByUserID(ctx context.Context, userID string) (models.Profile, error) {
	var p models.Profile
	if err := s.c.FindOne(ctx, bson.M{"userid": userID}).Decode(&p); err != nil {
		return models.Profile{}, err
	}
	return p, nil
}

// Upsert writes the whole profile, assigning an ID and CreatedAt when new.
func (s *Store) Upsert(ctx context.Context, p models.Profile) (models.Profile, error) {
	now := time.Now().UTC()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	_, err := s.c.ReplaceOne(ctx, bson.M{"_id": p.ID}, p, options.Replace().SetUpsert(true))
	if err != nil {
		if wafflemongo.IsDup(err) {
			return models.Profile{}, ErrDuplicateUserID
		}
		return models.Profile{}, err
	}
	return p, nil
}

// SetVerified marks the profile verified by the given user.
func (s *Store) SetVerified(ctx context.Context, id primitive.ObjectID, by string, at time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"verified":     true,
		"verifiedByID": by,
		"dateVerified": at.UTC(),
		"updatedAt":    time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// AddList records that the profile follows listID.
func (s *Store) AddList(ctx context.Context, id, listID primitive.ObjectID) error {
	return s.updateLists(ctx, id, bson.M{"$addToSet": bson.M{"lists": listID}})
}

// RemoveList stops the profile following listID.
func (s *Store) RemoveList(ctx context.Context, id, listID primitive.ObjectID) error {
	return s.updateLists(ctx, id, bson.M{"$pull": bson.M{"lists": listID}})
}

func (s *Store) updateLists(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	update["$set"] = bson.M{"updatedAt": time.Now().UTC()}
	res, err := s.c.UpdateByID(ctx, id, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// UnlinkList removes listID from every follower. Returns the number of
// profiles changed.
func (s *Store) UnlinkList(ctx context.Context, listID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"lists": listID}, bson.M{"$pull": bson.M{"lists": listID}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}
