package clientstore_test

import (
	"errors"
	"testing"

	clientstore "github.com/dalemusser/hidapi/internal/app/store/clients"
	"github.com/dalemusser/hidapi/internal/app/system/indexes"
	"github.com/dalemusser/hidapi/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
)

func TestStore_CreateAndVerify(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clientstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	c, err := store.Create(ctx, "reliefweb", "ReliefWeb", "s3cret", true)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.SecretHash == "" || c.SecretHash == "s3cret" {
		t.Fatal("expected secret to be hashed")
	}

	got, err := store.Verify(ctx, "reliefweb", "s3cret")
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if !got.Trusted {
		t.Error("expected trusted client")
	}

	tests := []struct {
		name, id, secret string
	}{
		{"wrong secret", "reliefweb", "nope"},
		{"unknown client", "ghost", "s3cret"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Verify(ctx, tt.id, tt.secret); !errors.Is(err, clientstore.ErrInvalidCredentials) {
				t.Errorf("expected ErrInvalidCredentials, got %v", err)
			}
		})
	}
}

func TestStore_VerifyDisabled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := clientstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, "old", "Old", "pw", false); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Collection("clients").UpdateOne(ctx, bson.M{"clientId": "old"}, bson.M{"$set": bson.M{"status": false}}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Verify(ctx, "old", "pw"); !errors.Is(err, clientstore.ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestStore_CreateDuplicate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatal(err)
	}
	store := clientstore.New(db)

	if _, err := store.Create(ctx, "dup", "A", "x", false); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Create(ctx, "dup", "B", "y", false); !errors.Is(err, clientstore.ErrDuplicateClientID) {
		t.Errorf("expected ErrDuplicateClientID, got %v", err)
	}
}
