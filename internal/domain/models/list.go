// internal/domain/models/list.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// List privacy settings.
const (
	ListPrivacyAll      = "all"      // anyone signed in
	ListPrivacyVerified = "verified" // verified profiles only
	ListPrivacySome     = "some"     // owner, editors and readers
	ListPrivacyMe       = "me"       // owner only
)

// List is a custom, shareable set of contacts. Unlike other resources a
// deleted list is removed from the collection.
type List struct {
	ID      primitive.ObjectID   `bson:"_id" json:"_id"`
	Name    string               `bson:"name" json:"name"`
	Owner   string               `bson:"userid" json:"userid"`
	Privacy string               `bson:"privacy" json:"privacy"`
	Readers []string             `bson:"readers,omitempty" json:"readers,omitempty"`
	Editors []string             `bson:"editors,omitempty" json:"editors,omitempty"`
	Users   []primitive.ObjectID `bson:"users,omitempty" json:"users,omitempty"` // contact ids

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
