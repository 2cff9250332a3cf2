package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/dalemusser/hidapi/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateProfile inserts an active profile with the given user id and roles.
func (f *Fixtures) CreateProfile(ctx context.Context, userID string, roles ...string) models.Profile {
	f.t.Helper()

	now := time.Now().UTC()
	p := models.Profile{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Email:     userID + "@example.org",
		Roles:     roles,
		Status:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("CreateProfile(%q): %v", userID, err)
	}
	return p
}

// CreateCheckIn inserts an active local contact for profile at locationID.
func (f *Fixtures) CreateCheckIn(ctx context.Context, profile models.Profile, locationID string) models.Contact {
	f.t.Helper()

	now := time.Now().UTC()
	c := models.Contact{
		ID:         primitive.NewObjectID(),
		ProfileID:  profile.ID,
		Type:       models.ContactTypeLocal,
		LocationID: locationID,
		Status:     true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("contacts").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateCheckIn(%q): %v", locationID, err)
	}
	return c
}

// CreateClient registers an enabled API client with the given secret.
func (f *Fixtures) CreateClient(ctx context.Context, clientID, secret string, trusted bool) models.Client {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash secret: %v", err)
	}
	c := models.Client{
		ID:         primitive.NewObjectID(),
		ClientID:   clientID,
		Name:       clientID,
		SecretHash: string(hash),
		Trusted:    trusted,
		Status:     true,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := f.db.Collection("clients").InsertOne(ctx, c); err != nil {
		f.t.Fatalf("CreateClient(%q): %v", clientID, err)
	}
	return c
}
