package profilestore_test

import (
	"errors"
	"testing"
	"time"

	profilestore "github.com/dalemusser/hidapi/internal/app/store/profiles"
	"github.com/dalemusser/hidapi/internal/app/system/indexes"
	"github.com/dalemusser/hidapi/internal/domain/models"
	"github.com/dalemusser/hidapi/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestStore_UpsertAndGetByUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Upsert(ctx, models.Profile{UserID: "hid-ana", Roles: []string{"editor:hti"}, Status: true})
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	got, err := store.GetByUserID(ctx, "hid-ana")
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("ID: got %v, want %v", got.ID, p.ID)
	}
	if len(got.Roles) != 1 || got.Roles[0] != "editor:hti" {
		t.Errorf("Roles: got %v", got.Roles)
	}

	if _, err := store.GetByUserID(ctx, "nobody"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_Upsert_DuplicateUserID(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := profilestore.New(db)

	if _, err := store.Upsert(ctx, models.Profile{UserID: "hid-dup"}); err != nil {
		t.Fatal(err)
	}
	_, err := store.Upsert(ctx, models.Profile{UserID: "hid-dup"})
	if !errors.Is(err, profilestore.ErrDuplicateUserID) {
		t.Errorf("expected ErrDuplicateUserID, got %v", err)
	}
}

func TestStore_SetVerified(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	p, err := store.Upsert(ctx, models.Profile{UserID: "hid-bo"})
	if err != nil {
		t.Fatal(err)
	}
	at := time.Now().UTC()
	if err := store.SetVerified(ctx, p.ID, "hid-admin", at); err != nil {
		t.Fatalf("SetVerified failed: %v", err)
	}
	got, err := store.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.Verified || got.VerifiedBy != "hid-admin" || got.VerifiedAt == nil {
		t.Errorf("verification not recorded: %+v", got)
	}

	if err := store.SetVerified(ctx, primitive.NewObjectID(), "x", at); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Errorf("expected ErrNoDocuments, got %v", err)
	}
}

func TestStore_FollowLists(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := profilestore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	a, _ := store.Upsert(ctx, models.Profile{UserID: "hid-a"})
	b, _ := store.Upsert(ctx, models.Profile{UserID: "hid-b"})
	listID := primitive.NewObjectID()

	for _, id := range []primitive.ObjectID{a.ID, a.ID, b.ID} {
		if err := store.AddList(ctx, id, listID); err != nil {
			t.Fatalf("AddList failed: %v", err)
		}
	}
	got, _ := store.GetByID(ctx, a.ID)
	if len(got.Lists) != 1 {
		t.Errorf("AddList should not duplicate: got %v", got.Lists)
	}

	if err := store.RemoveList(ctx, a.ID, listID); err != nil {
		t.Fatalf("RemoveList failed: %v", err)
	}
	got, _ = store.GetByID(ctx, a.ID)
	if len(got.Lists) != 0 {
		t.Errorf("RemoveList: got %v", got.Lists)
	}

	n, err := store.UnlinkList(ctx, listID)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("UnlinkList: got %d, want 1", n)
	}
}
