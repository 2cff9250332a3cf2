// internal/domain/models/profile.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Profile is the identity record behind one or more contacts. It owns the
// role set and verification state.
//
// NOTE:
//   - Roles are only ever written from an authorized decision, never copied
//     straight from a request body.
//   - UserID is the external identity string (what bearer tokens carry);
//     ID is the Mongo document id contacts link to.
type Profile struct {
	ID     primitive.ObjectID `bson:"_id" json:"_id"`
	UserID string             `bson:"userid" json:"userid"`

	NameGiven   string `bson:"nameGiven,omitempty" json:"nameGiven,omitempty"`
	NameFamily  string `bson:"nameFamily,omitempty" json:"nameFamily,omitempty"`
	Email       string `bson:"email,omitempty" json:"email,omitempty"`
	Nationality string `bson:"nationality,omitempty" json:"nationality,omitempty"`

	Roles          []string         `bson:"roles,omitempty" json:"roles,omitempty"`
	OrgEditorRoles []OrgEditorGrant `bson:"orgEditorRoles,omitempty" json:"orgEditorRoles,omitempty"`

	Verified   bool       `bson:"verified" json:"verified"`
	VerifiedBy string     `bson:"verifiedByID,omitempty" json:"verifiedByID,omitempty"`
	VerifiedAt *time.Time `bson:"dateVerified,omitempty" json:"dateVerified,omitempty"`

	// Lists this profile follows.
	Lists []primitive.ObjectID `bson:"lists,omitempty" json:"lists,omitempty"`

	Status    bool      `bson:"status" json:"status"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OrgEditorGrant lets a user edit contacts of one organization within one
// operation, independent of the role set.
type OrgEditorGrant struct {
	OrganizationID string `bson:"organizationId" json:"organizationId"`
	LocationID     string `bson:"locationId" json:"locationId"`
}
