// internal/app/store/clients/clientstore.go
package clientstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/hidapi/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrDuplicateClientID  = errors.New("a client with this id already exists")
	ErrInvalidCredentials = errors.New("invalid client credentials")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("clients")}
}

func (s *Store) GetByClientID(ctx context.Context, clientID string) (models.Client, error) {
	var c models.Client
	if err := s.c.FindOne(ctx, bson.M{"clientId": clientID}).Decode(&c); err != nil {
		return models.Client{}, err
	}
	return c, nil
}

// Create registers a client, storing only a bcrypt hash of secret.
func (s *Store) Create(ctx context.Context, clientID, name, secret string, trusted bool) (models.Client, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return models.Client{}, err
	}
	c := models.Client{
		ID:         primitive.NewObjectID(),
		ClientID:   clientID,
		Name:       name,
		SecretHash: string(hash),
		Trusted:    trusted,
		Status:     true,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Client{}, ErrDuplicateClientID
		}
		return models.Client{}, err
	}
	return c, nil
}

// Verify checks a client id / secret pair. Unknown, disabled and
// mismatched clients all return ErrInvalidCredentials.
func (s *Store) Verify(ctx context.Context, clientID, secret string) (models.Client, error) {
	c, err := s.GetByClientID(ctx, clientID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Client{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.Client{}, err
	}
	if !c.Status {
		return models.Client{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(c.SecretHash), []byte(secret)) != nil {
		return models.Client{}, ErrInvalidCredentials
	}
	return c, nil
}
